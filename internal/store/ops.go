package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/dates"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/ids"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

// Entry is one task as loaded from disk: the parsed record plus the file
// facts an edit session needs to write it back safely.
type Entry struct {
	Task        task.Task
	Path        string
	Scope       Scope
	Fingerprint Fingerprint
	Info        task.ParseInfo
}

// Create writes a new task file into scope. A task with an empty ID gets
// the next free identifier: a dot sub-ID under its parent when Parent is
// set, otherwise the next top-level number. Status defaults to the first
// configured status and the creation date is stamped when absent. Returns
// ErrExists when a file for the identifier already exists in any scope.
func (s *Store) Create(scope Scope, t task.Task) (Entry, error) {
	if t.ID == "" {
		existing, err := s.allIDs()
		if err != nil {
			return Entry{}, err
		}

		if t.Parent != "" {
			t.ID = ids.NextSubtaskID(existing, t.Parent)
		} else {
			t.ID = ids.NextID(existing, s.cfg.IDPrefix, s.cfg.ZeroPaddedIDs)
		}
	}

	if _, _, err := s.findPath(t.ID); err == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrExists, t.ID)
	}

	if t.Status == "" {
		t.Status = s.cfg.DefaultStatus()
	}

	if t.Created == "" {
		t.Created = dates.Now()
	}

	path := s.taskPath(scope, t.ID)
	content := task.Serialize(t, task.SerializeOptions{})

	err := s.Write(path, content, "")
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Task:        t,
		Path:        path,
		Scope:       scope,
		Fingerprint: fingerprintOf(content),
	}, nil
}

// Get loads one task by identifier, searching active, draft, then archived
// scope. Parse warnings are logged, never fatal.
func (s *Store) Get(id string) (Entry, error) {
	path, scope, err := s.findPath(id)
	if err != nil {
		return Entry{}, err
	}

	return s.load(path, scope)
}

// LoadScope parses every task file in a scope. Files that fail to read are
// skipped with a log line; parse-level degradation only warns.
func (s *Store) LoadScope(scope Scope) ([]Entry, error) {
	paths, err := s.List(scope)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(paths))

	for _, path := range paths {
		entry, loadErr := s.load(path, scope)
		if loadErr != nil {
			s.log.Warn("skipping unreadable task file", "path", path, "error", loadErr)

			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *Store) load(path string, scope Scope) (Entry, error) {
	content, fp, err := s.Read(path)
	if err != nil {
		return Entry{}, err
	}

	t, info := task.Parse(content)

	for _, warning := range info.Warnings {
		s.log.Warn("task file parsed with degradation", "path", path, "warning", warning)
	}

	if t.ID == "" {
		// Filename is authoritative when the metadata lost its id.
		t.ID = strings.TrimSuffix(filepath.Base(path), taskFileExt)
	}

	return Entry{Task: t, Path: path, Scope: scope, Fingerprint: fp, Info: info}, nil
}

// Update applies a patch to the task on disk, reading the current file
// state first. Lost-update protection only spans the call itself; use
// UpdateWith to anchor the write to a fingerprint captured earlier.
func (s *Store) Update(id string, patch task.Patch) (Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return Entry{}, err
	}

	return s.UpdateWith(id, patch, entry.Fingerprint)
}

// UpdateWith applies a patch on top of the file state identified by
// expected. If the file changed since that fingerprint was taken the write
// is refused with ErrWriteConflict and the caller re-reads. The update
// stamps updated_date unless the patch sets it explicitly, and keeps the
// file's original line-ending convention.
func (s *Store) UpdateWith(id string, patch task.Patch, expected Fingerprint) (Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return Entry{}, err
	}

	if entry.Fingerprint != expected {
		return Entry{}, fmt.Errorf("%w: %s", ErrWriteConflict, entry.Path)
	}

	patch.Apply(&entry.Task)

	if patch.Updated == nil {
		entry.Task.Updated = dates.Now()
	}

	return s.write(entry, expected)
}

// ToggleChecklistItem flips the checked state of item number within a
// checklist group (task.GroupAcceptanceCriteria or
// task.GroupDefinitionOfDone). Returns ErrItemNotFound when no item carries
// that number.
func (s *Store) ToggleChecklistItem(id, kind string, number int) (Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return Entry{}, err
	}

	if !entry.Task.ToggleChecklistItem(kind, number) {
		return Entry{}, fmt.Errorf("%w: %s item #%d of %s", ErrItemNotFound, kind, number, id)
	}

	entry.Task.Updated = dates.Now()

	return s.write(entry, entry.Fingerprint)
}

// MoveScope relocates a task file between scopes, content untouched.
// Archiving, demoting to draft and promoting to active are all this one
// rename.
func (s *Store) MoveScope(id string, to Scope) (Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return Entry{}, err
	}

	if entry.Scope == to {
		return entry, nil
	}

	dest := s.taskPath(to, entry.Task.ID)

	err = s.Move(entry.Path, dest)
	if err != nil {
		return Entry{}, err
	}

	entry.Path = dest
	entry.Scope = to

	return entry, nil
}

// DeleteTask removes the task file permanently, wherever it lives.
func (s *Store) DeleteTask(id string) error {
	path, _, err := s.findPath(id)
	if err != nil {
		return err
	}

	return s.Delete(path)
}

// write serializes the entry's task back to its path, preserving the CRLF
// convention the file was read with, and refreshes the fingerprint.
func (s *Store) write(entry Entry, expected Fingerprint) (Entry, error) {
	content := task.Serialize(entry.Task, task.SerializeOptions{CRLF: entry.Info.CRLF})

	err := s.Write(entry.Path, content, expected)
	if err != nil {
		return Entry{}, err
	}

	entry.Fingerprint = fingerprintOf(content)

	return entry, nil
}

// allIDs collects the identifiers of every task file across all scopes,
// derived from filenames. ID allocation must see archived and draft tasks
// so retired numbers are never reissued.
func (s *Store) allIDs() ([]string, error) {
	var all []string

	for _, scope := range scopeSearchOrder {
		paths, err := s.List(scope)
		if err != nil {
			return nil, err
		}

		for _, path := range paths {
			all = append(all, strings.TrimSuffix(filepath.Base(path), taskFileExt))
		}
	}

	return all, nil
}

// IsNotFound reports whether err denotes a missing task or file.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
