// Package task defines the task record model and the codec between records
// and their on-disk text form (frontmatter metadata plus markdown body).
//
// The file is the source of truth: every read re-derives the record from
// text, and serialization is built to round-trip — parse(serialize(t))
// reproduces every field of t. Parsing is permissive and never fails; a file
// with malformed metadata degrades to an empty record with the whole input
// as description rather than losing data.
package task

import (
	"strings"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/frontmatter"
)

// Checklist group kinds. These are the two checklist groups the body format
// recognizes.
const (
	GroupAcceptanceCriteria = "acceptance_criteria"
	GroupDefinitionOfDone   = "definition_of_done"
)

// ChecklistItem is one checkbox line. Number is the display number after
// the "#" marker; legacy items carry no number and keep Number 0 — a stable
// number is never synthesized for them, so callers needing identity for
// legacy items must use text plus position.
type ChecklistItem struct {
	Number  int
	Text    string
	Checked bool
}

// Section is one named free-text block (Plan, Notes, ...). Content is
// stored with outer blank lines trimmed and LF endings.
type Section struct {
	Name    string
	Content string
}

// Task is the typed record behind one task file. Tasks, documents, and
// decisions share this shape.
type Task struct {
	ID           string
	Title        string
	Status       string
	Priority     string
	Labels       []string
	Assignees    []string
	Milestone    string
	Dependencies []string
	Parent       string
	Subtasks     []string

	// Ordinal is the manual ordering key among same-status siblings; nil
	// means the source file carries no ordinal field.
	Ordinal *float64

	// Created and Updated hold canonical date strings ("2006-01-02",
	// optionally with " 15:04"). Unrecognized source values are retained
	// verbatim so that nothing is lost on rewrite.
	Created string
	Updated string

	Description string
	Sections    []Section

	AcceptanceCriteria []ChecklistItem
	DefinitionOfDone   []ChecklistItem

	// Extras preserves metadata keys this tool does not recognize, in
	// source order, so foreign fields survive a read-modify-write cycle.
	Extras frontmatter.Fields
}

// Checklist returns the checklist group for kind, or nil for an unknown
// kind.
func (t *Task) Checklist(kind string) []ChecklistItem {
	switch kind {
	case GroupAcceptanceCriteria:
		return t.AcceptanceCriteria
	case GroupDefinitionOfDone:
		return t.DefinitionOfDone
	default:
		return nil
	}
}

// setChecklist stores items under kind. Unknown kinds are ignored.
func (t *Task) setChecklist(kind string, items []ChecklistItem) {
	switch kind {
	case GroupAcceptanceCriteria:
		t.AcceptanceCriteria = items
	case GroupDefinitionOfDone:
		t.DefinitionOfDone = items
	}
}

// Section returns the named section's content. Lookup is case-insensitive;
// the stored spelling wins on write.
func (t *Task) Section(name string) (string, bool) {
	for _, section := range t.Sections {
		if strings.EqualFold(section.Name, name) {
			return section.Content, true
		}
	}

	return "", false
}

// SetSection replaces or appends a named section. An empty content string
// keeps the section present (it may be a placeholder the user fills later).
func (t *Task) SetSection(name, content string) {
	for i := range t.Sections {
		if strings.EqualFold(t.Sections[i].Name, name) {
			t.Sections[i].Content = content

			return
		}
	}

	t.Sections = append(t.Sections, Section{Name: name, Content: content})
}

// OrdinalValue unpacks the optional ordinal.
func (t *Task) OrdinalValue() (float64, bool) {
	if t.Ordinal == nil {
		return 0, false
	}

	return *t.Ordinal, true
}

// SetOrdinal sets the ordinal field.
func (t *Task) SetOrdinal(value float64) {
	t.Ordinal = &value
}

// Canonical metadata keys in serialization order. Unrecognized keys follow
// in their source order. The order is fixed and intentional — not
// alphabetical — so rewrites are byte-stable regardless of input order.
var canonicalKeyOrder = []string{ //nolint:gochecknoglobals // package-level constant
	keyID,
	keyTitle,
	keyStatus,
	keyPriority,
	keyLabels,
	keyAssignees,
	keyMilestone,
	keyDependencies,
	keyParent,
	keySubtasks,
	keyOrdinal,
	keyCreated,
	keyUpdated,
}

const (
	keyID           = "id"
	keyTitle        = "title"
	keyStatus       = "status"
	keyPriority     = "priority"
	keyLabels       = "labels"
	keyAssignees    = "assignees"
	keyMilestone    = "milestone"
	keyDependencies = "dependencies"
	keyParent       = "parent_task_id"
	keySubtasks     = "subtasks"
	keyOrdinal      = "ordinal"
	keyCreated      = "created_date"
	keyUpdated      = "updated_date"
)

// keyAliases maps accepted metadata spellings to canonical keys. Lookup
// happens after generic camelCase -> snake_case folding, so "updatedDate"
// arrives here as "updated_date".
var keyAliases = map[string]string{ //nolint:gochecknoglobals // package-level constant
	"id":             keyID,
	"title":          keyTitle,
	"status":         keyStatus,
	"priority":       keyPriority,
	"labels":         keyLabels,
	"label":          keyLabels,
	"assignees":      keyAssignees,
	"assignee":       keyAssignees,
	"milestone":      keyMilestone,
	"dependencies":   keyDependencies,
	"depends_on":     keyDependencies,
	"parent":         keyParent,
	"parent_task_id": keyParent,
	"subtasks":       keySubtasks,
	"ordinal":        keyOrdinal,
	"created":        keyCreated,
	"created_date":   keyCreated,
	"updated":        keyUpdated,
	"updated_date":   keyUpdated,
}

// foldKey normalizes a metadata key: trims space, converts camelCase to
// snake_case, lowercases, and resolves known aliases to the canonical key.
// Unknown keys come back folded with ok=false and are preserved as extras.
func foldKey(raw string) (string, bool) {
	var builder strings.Builder

	for i, r := range strings.TrimSpace(raw) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				builder.WriteByte('_')
			}

			builder.WriteRune(r + ('a' - 'A'))

			continue
		}

		builder.WriteRune(r)
	}

	folded := builder.String()
	if canonical, ok := keyAliases[folded]; ok {
		return canonical, true
	}

	return folded, false
}
