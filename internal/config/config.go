// Package config loads the recognized backlog options from hujson
// (JSON-with-comments) config files.
//
// Precedence, highest wins: defaults, global user config, project config,
// explicit overrides from the caller. The core packages receive a validated
// Config value; nothing here is process-global.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds every option the task engine consumes.
type Config struct {
	// IDPrefix is the identifier prefix, e.g. "TASK" for TASK-12.
	IDPrefix string `json:"id_prefix,omitempty"` //nolint:tagliatelle // snake_case for config file
	// ZeroPaddedIDs pads new identifier numbers to the observed width.
	ZeroPaddedIDs bool `json:"zero_padded_ids,omitempty"` //nolint:tagliatelle // snake_case for config file
	// Statuses is the ordered set of valid status values; the first is the
	// default for new tasks.
	Statuses []string `json:"statuses,omitempty"`
	// DoneStatuses is the terminal subset of Statuses: a dependency in one
	// of these does not block.
	DoneStatuses []string `json:"done_statuses,omitempty"` //nolint:tagliatelle // snake_case for config file
	// Priorities is the ordered set of valid priority values.
	Priorities []string `json:"priorities,omitempty"`
	// TasksDir is the root directory holding the active/draft/archived
	// scope directories.
	TasksDir string `json:"tasks_dir,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// Sources tracks which config files contributed, for diagnostics.
type Sources struct {
	Global  string
	Project string
}

// FileName is the project config file name.
const FileName = ".backlog.json"

// Validation and load errors.
var (
	ErrConfigRead     = errors.New("cannot read config file")
	ErrConfigInvalid  = errors.New("invalid config file")
	ErrNoStatuses     = errors.New("statuses cannot be empty")
	ErrUnknownDone    = errors.New("done_statuses entry not in statuses")
	ErrTasksDirEmpty  = errors.New("tasks_dir cannot be empty")
	ErrEmptyStatus    = errors.New("status names cannot be blank")
	ErrEmptyPriority  = errors.New("priority names cannot be blank")
	ErrPrefixHasDash  = errors.New("id_prefix must not end with '-'")
	ErrPrefixHasSpace = errors.New("id_prefix must not contain whitespace")
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IDPrefix:     "TASK",
		Statuses:     []string{"To Do", "In Progress", "Done"},
		DoneStatuses: []string{"Done"},
		Priorities:   []string{"low", "medium", "high"},
		TasksDir:     "backlog",
	}
}

// DefaultStatus is the status assigned to newly created tasks.
func (c Config) DefaultStatus() string {
	if len(c.Statuses) == 0 {
		return ""
	}

	return c.Statuses[0]
}

// IsTerminal reports whether status counts as done for blocking purposes.
func (c Config) IsTerminal(status string) bool {
	for _, done := range c.DoneStatuses {
		if strings.EqualFold(done, status) {
			return true
		}
	}

	return false
}

// ValidStatus reports whether status is one of the configured values.
func (c Config) ValidStatus(status string) bool {
	for _, s := range c.Statuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}

	return false
}

// ValidPriority reports whether priority is configured. The empty priority
// is always valid because the field is optional.
func (c Config) ValidPriority(priority string) bool {
	if priority == "" {
		return true
	}

	for _, p := range c.Priorities {
		if strings.EqualFold(p, priority) {
			return true
		}
	}

	return false
}

// globalPath returns the global config location:
// $XDG_CONFIG_HOME/backlog/config.json, else ~/.config/backlog/config.json.
func globalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "backlog", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "backlog", "config.json")
}

// Load resolves the effective configuration for a working directory.
// configPath, when non-empty, names an explicit project config file that
// must exist; otherwise the default project file is used if present.
func Load(workDir, configPath string) (Config, Sources, error) {
	cfg := Default()

	var sources Sources

	global := globalPath()
	if global != "" {
		loaded, found, err := loadFile(global)
		if err != nil {
			return Config{}, Sources{}, err
		}

		if found {
			sources.Global = global
			cfg = merge(cfg, loaded)
		}
	}

	projectFile := configPath
	required := configPath != ""

	if projectFile == "" {
		projectFile = filepath.Join(workDir, FileName)
	}

	loaded, found, err := loadFile(projectFile)
	if err != nil {
		return Config{}, Sources{}, err
	}

	if required && !found {
		return Config{}, Sources{}, fmt.Errorf("%w: %s", ErrConfigRead, projectFile)
	}

	if found {
		sources.Project = projectFile
		cfg = merge(cfg, loaded)
	}

	err = Validate(cfg)
	if err != nil {
		return Config{}, Sources{}, err
	}

	return cfg, sources, nil
}

// loadFile reads one hujson config file. A missing file is not an error.
func loadFile(path string) (Config, bool, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // config paths come from the user
	if os.IsNotExist(err) {
		return Config{}, false, nil
	}

	if err != nil {
		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigRead, path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
	}

	var cfg Config

	decoder := json.NewDecoder(strings.NewReader(string(standardized)))
	decoder.DisallowUnknownFields()

	err = decoder.Decode(&cfg)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// merge overlays non-zero fields of overlay onto base.
func merge(base, overlay Config) Config {
	if overlay.IDPrefix != "" {
		base.IDPrefix = overlay.IDPrefix
	}

	if overlay.ZeroPaddedIDs {
		base.ZeroPaddedIDs = true
	}

	if len(overlay.Statuses) > 0 {
		base.Statuses = overlay.Statuses
	}

	if len(overlay.DoneStatuses) > 0 {
		base.DoneStatuses = overlay.DoneStatuses
	}

	if len(overlay.Priorities) > 0 {
		base.Priorities = overlay.Priorities
	}

	if overlay.TasksDir != "" {
		base.TasksDir = overlay.TasksDir
	}

	return base
}

// Validate rejects configurations the engine cannot operate on.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.TasksDir) == "" {
		return ErrTasksDirEmpty
	}

	if len(cfg.Statuses) == 0 {
		return ErrNoStatuses
	}

	for _, status := range cfg.Statuses {
		if strings.TrimSpace(status) == "" {
			return ErrEmptyStatus
		}
	}

	for _, priority := range cfg.Priorities {
		if strings.TrimSpace(priority) == "" {
			return ErrEmptyPriority
		}
	}

	for _, done := range cfg.DoneStatuses {
		if !cfg.ValidStatus(done) {
			return fmt.Errorf("%w: %q", ErrUnknownDone, done)
		}
	}

	if strings.HasSuffix(cfg.IDPrefix, "-") {
		return ErrPrefixHasDash
	}

	if strings.ContainsAny(cfg.IDPrefix, " \t") {
		return ErrPrefixHasSpace
	}

	return nil
}
