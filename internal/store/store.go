// Package store reads and writes task files beneath a backlog root
// directory and exposes the field-level operations (create, update, toggle,
// move, delete) the task engine is driven through.
//
// The file is always the source of truth: every operation re-derives the
// record from text. Concurrent edits to the same file are serialized by a
// read-verify-write discipline — writes verify a content fingerprint
// captured at read time and surface ErrWriteConflict instead of overwriting
// an external edit. Edits to different files are fully independent.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/config"
)

// Scope names one of the storage areas a task file can live in. Moving a
// task between scopes relocates the file without changing its identifier.
type Scope string

// Storage scopes, as subdirectories of the backlog root.
const (
	ScopeActive   Scope = "tasks"
	ScopeDraft    Scope = "drafts"
	ScopeArchived Scope = "archive/tasks"
)

// scopeSearchOrder is the lookup order for operations addressed by bare
// identifier.
var scopeSearchOrder = []Scope{ScopeActive, ScopeDraft, ScopeArchived} //nolint:gochecknoglobals // package-level constant

const (
	dirPerms  = 0o750
	filePerms = 0o600

	taskFileExt = ".md"
)

// Fingerprint identifies one exact content state of a file. It is a hex
// SHA-256 of the raw bytes; any external modification changes it.
type Fingerprint string

// fingerprintOf hashes raw file content.
func fingerprintOf(content []byte) Fingerprint {
	sum := sha256.Sum256(content)

	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Store is a handle on one backlog root. It holds no caches and no mutable
// state beyond the root path and configuration; it is safe for concurrent
// use because every mutation is file-scoped and locked.
type Store struct {
	root string
	cfg  config.Config
	log  *slog.Logger
}

// Open returns a store for the backlog root directory. The directory does
// not have to exist yet; scope directories are created on first write.
func Open(root string, cfg config.Config, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.New("open store: root is empty")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{root: filepath.Clean(root), cfg: cfg, log: logger}, nil
}

// Root returns the backlog root directory.
func (s *Store) Root() string {
	return s.root
}

// Config returns the configuration the store operates under.
func (s *Store) Config() config.Config {
	return s.cfg
}

func (s *Store) scopeDir(scope Scope) string {
	return filepath.Join(s.root, filepath.FromSlash(string(scope)))
}

// taskPath returns the file path for an identifier within a scope.
func (s *Store) taskPath(scope Scope, id string) string {
	return filepath.Join(s.scopeDir(scope), id+taskFileExt)
}

// Read returns the raw content and fingerprint of one file. Callers keep
// the fingerprint for the duration of an edit session and pass it back to
// write operations for conflict detection.
func (s *Store) Read(path string) ([]byte, Fingerprint, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path derives from the store root
	if os.IsNotExist(err) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if err != nil {
		return nil, "", fmt.Errorf("read task file: %w", err)
	}

	return content, fingerprintOf(content), nil
}

// Write replaces the content of path, verifying expected against what is on
// disk immediately before writing (under the file's lock). An empty
// expected fingerprint means "create new": the file must not exist yet.
// The write itself is atomic (write-to-temp plus rename).
func (s *Store) Write(path string, content []byte, expected Fingerprint) error {
	err := os.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return fmt.Errorf("create scope directory: %w", err)
	}

	return withFileLock(path, func() error {
		current, readErr := os.ReadFile(path) //nolint:gosec // path derives from the store root

		switch {
		case os.IsNotExist(readErr):
			if expected != "" {
				return fmt.Errorf("%w: %s", ErrNotFound, path)
			}
		case readErr != nil:
			return fmt.Errorf("verify task file: %w", readErr)
		case expected == "":
			return fmt.Errorf("%w: %s", ErrExists, path)
		case fingerprintOf(current) != expected:
			return fmt.Errorf("%w: %s", ErrWriteConflict, path)
		}

		writeErr := atomic.WriteFile(path, bytes.NewReader(content))
		if writeErr != nil {
			return fmt.Errorf("write task file: %w", writeErr)
		}

		// atomic.WriteFile leaves temp-file permissions on new files.
		chmodErr := os.Chmod(path, filePerms)
		if chmodErr != nil {
			return fmt.Errorf("set task file permissions: %w", chmodErr)
		}

		return nil
	})
}

// List returns the task file paths in a scope, sorted by file name. A
// missing scope directory means no tasks, not an error.
func (s *Store) List(scope Scope) ([]string, error) {
	dir := s.scopeDir(scope)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list scope %s: %w", scope, err)
	}

	var paths []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), taskFileExt) {
			continue
		}

		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(paths)

	return paths, nil
}

// Delete removes a file permanently. Irreversible.
func (s *Store) Delete(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("delete task file: %w", err)
	}

	return nil
}

// Move relocates a file between scope directories without touching its
// content.
func (s *Store) Move(pathFrom, pathTo string) error {
	if _, err := os.Stat(pathTo); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, pathTo)
	}

	err := os.MkdirAll(filepath.Dir(pathTo), dirPerms)
	if err != nil {
		return fmt.Errorf("create scope directory: %w", err)
	}

	err = os.Rename(pathFrom, pathTo)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, pathFrom)
	}

	if err != nil {
		return fmt.Errorf("move task file: %w", err)
	}

	return nil
}

// findPath locates the file for id, searching active, then draft, then
// archived.
func (s *Store) findPath(id string) (string, Scope, error) {
	for _, scope := range scopeSearchOrder {
		path := s.taskPath(scope, id)
		if _, err := os.Stat(path); err == nil {
			return path, scope, nil
		}
	}

	return "", "", fmt.Errorf("%w: %s", ErrNotFound, id)
}
