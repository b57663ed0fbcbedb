package task_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/frontmatter"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

func parseText(t *testing.T, text string) (task.Task, task.ParseInfo) {
	t.Helper()

	return task.Parse([]byte(text))
}

// Contract: a well-formed file decodes every metadata field and body block.
func Test_Parse_ReturnsFullRecord_When_FileWellFormed(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"---",
		"id: TASK-12",
		"title: Wire up the exporter",
		"status: In Progress",
		"priority: high",
		"labels: [backend, urgent]",
		"assignees: [alice, bob]",
		"milestone: v2.0",
		"dependencies: [TASK-5, TASK-9]",
		"parent_task_id: TASK-3",
		"subtasks: [TASK-12.1]",
		"ordinal: 1500",
		"created_date: 2026-01-10",
		"updated_date: 2026-02-09 16:50",
		"---",
		"",
		"## Description",
		"",
		"Export the dataset nightly.",
		"",
		"## Acceptance Criteria",
		"",
		"- [ ] #1 Exporter runs on schedule",
		"- [x] #2 Failures page the on-call",
		"",
		"## Definition of Done",
		"",
		"- [ ] #1 Docs updated",
		"",
		"<!-- SECTION:BEGIN:Plan -->",
		"## Plan",
		"",
		"Start with a dry run.",
		"<!-- SECTION:END:Plan -->",
		"",
	}, "\n")

	got, info := parseText(t, text)

	if len(info.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", info.Warnings)
	}

	ord := 1500.0
	want := task.Task{
		ID:           "TASK-12",
		Title:        "Wire up the exporter",
		Status:       "In Progress",
		Priority:     "high",
		Labels:       []string{"backend", "urgent"},
		Assignees:    []string{"alice", "bob"},
		Milestone:    "v2.0",
		Dependencies: []string{"TASK-5", "TASK-9"},
		Parent:       "TASK-3",
		Subtasks:     []string{"TASK-12.1"},
		Ordinal:      &ord,
		Created:      "2026-01-10",
		Updated:      "2026-02-09 16:50",
		Description:  "Export the dataset nightly.",
		Sections:     []task.Section{{Name: "Plan", Content: "Start with a dry run."}},
		AcceptanceCriteria: []task.ChecklistItem{
			{Number: 1, Text: "Exporter runs on schedule"},
			{Number: 2, Text: "Failures page the on-call", Checked: true},
		},
		DefinitionOfDone: []task.ChecklistItem{
			{Number: 1, Text: "Docs updated"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

// Contract: malformed metadata degrades to an empty record with the whole
// input preserved as body — never an error, never data loss.
func Test_Parse_TreatsWholeInputAsBody_When_MetadataMalformed(t *testing.T) {
	t.Parallel()

	text := "---\n{ not: [valid frontmatter\n---\nSome body text.\n"

	got, info := parseText(t, text)

	if got.ID != "" || got.Status != "" {
		t.Fatalf("metadata leaked into record: %+v", got)
	}

	if len(info.Warnings) == 0 {
		t.Fatal("expected a recovery warning")
	}

	if !strings.Contains(got.Description, "Some body text.") {
		t.Fatalf("body lost: %q", got.Description)
	}

	if !strings.Contains(got.Description, "not: [valid frontmatter") {
		t.Fatalf("malformed block dropped from body: %q", got.Description)
	}
}

// Contract: values that look numeric-with-symbols stay verbatim strings.
func Test_Parse_PreservesCurrencyString_When_ValueLooksNumeric(t *testing.T) {
	t.Parallel()

	text := "---\nid: TASK-1\nbudget: $15,000\n---\n"

	got, _ := parseText(t, text)

	value, ok := got.Extras.Get("budget")
	if !ok {
		t.Fatal("budget extra missing")
	}

	if value.Scalar != "$15,000" {
		t.Fatalf("budget = %q, want %q", value.Scalar, "$15,000")
	}
}

// Contract: snake_case and camelCase spellings fold to one canonical field;
// conflicting non-empty values resolve last-wins (documented ambiguity).
func Test_Parse_MergesFieldSpellings_When_BothCasesPresent(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"---",
		"id: TASK-2",
		"createdDate: 2026-01-01",
		"parent: TASK-1",
		"assignee: carol",
		"updated_date: 2026-01-05",
		"updatedDate: 2026-01-07",
		"---",
		"",
	}, "\n")

	got, _ := parseText(t, text)

	if got.Created != "2026-01-01" {
		t.Fatalf("Created = %q, want 2026-01-01", got.Created)
	}

	if got.Parent != "TASK-1" {
		t.Fatalf("Parent = %q, want TASK-1", got.Parent)
	}

	if diff := cmp.Diff([]string{"carol"}, got.Assignees); diff != "" {
		t.Fatalf("Assignees mismatch (-want +got):\n%s", diff)
	}

	if got.Updated != "2026-01-07" {
		t.Fatalf("Updated = %q, want last-wins 2026-01-07", got.Updated)
	}

	if len(got.Extras) != 0 {
		t.Fatalf("aliases leaked into extras: %+v", got.Extras)
	}
}

// Contract: legacy date spellings normalize; unparseable dates are retained
// verbatim with a warning, never dropped.
func Test_Parse_NormalizesDates_When_LegacyOrUnparseable(t *testing.T) {
	t.Parallel()

	text := "---\nid: TASK-3\ncreated_date: 05-03-26\nupdated_date: next tuesday\n---\n"

	got, info := parseText(t, text)

	if got.Created != "2026-03-05" {
		t.Fatalf("Created = %q, want 2026-03-05", got.Created)
	}

	if got.Updated != "next tuesday" {
		t.Fatalf("Updated = %q, want verbatim retention", got.Updated)
	}

	if len(info.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", info.Warnings)
	}
}

// Contract: both checklist syntaxes parse; legacy items get no number and
// case-insensitive check marks count as checked.
func Test_Parse_ReadsChecklist_When_LegacyAndNumberedMixed(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"---",
		"id: TASK-4",
		"---",
		"## Acceptance Criteria",
		"",
		"- [x] #1 done thing",
		"- [X] done thing legacy",
		"- [ ] #3 open thing",
		"",
	}, "\n")

	got, _ := parseText(t, text)

	want := []task.ChecklistItem{
		{Number: 1, Text: "done thing", Checked: true},
		{Number: 0, Text: "done thing legacy", Checked: true},
		{Number: 3, Text: "open thing", Checked: false},
	}
	if diff := cmp.Diff(want, got.AcceptanceCriteria); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

// Contract: headings bound sections when no markers exist; a file without
// any metadata block is all body.
func Test_Parse_FallsBackToHeadings_When_NoMarkersOrMetadata(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"Intro paragraph without frontmatter.",
		"",
		"## Notes",
		"",
		"Remember the edge cases.",
		"",
		"## Plan",
		"Step one.",
		"",
	}, "\n")

	got, _ := parseText(t, text)

	if got.Description != "Intro paragraph without frontmatter." {
		t.Fatalf("Description = %q", got.Description)
	}

	want := []task.Section{
		{Name: "Notes", Content: "Remember the edge cases."},
		{Name: "Plan", Content: "Step one."},
	}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

// Contract: an unparseable ordinal is kept as an extra and the record is
// treated as ordinal-less.
func Test_Parse_KeepsRawOrdinal_When_NotNumeric(t *testing.T) {
	t.Parallel()

	text := "---\nid: TASK-5\nordinal: first!\n---\n"

	got, info := parseText(t, text)

	if got.Ordinal != nil {
		t.Fatalf("Ordinal = %v, want nil", *got.Ordinal)
	}

	value, ok := got.Extras.Get("ordinal")
	if !ok || value.Scalar != "first!" {
		t.Fatalf("raw ordinal not retained: %+v", got.Extras)
	}

	if len(info.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", info.Warnings)
	}
}

// Contract: CRLF files parse identically and report their ending style.
func Test_Parse_ReportsCRLF_When_WindowsEndings(t *testing.T) {
	t.Parallel()

	text := "---\r\nid: TASK-6\r\ntitle: Windows file\r\n---\r\n\r\n## Description\r\n\r\nBody.\r\n"

	got, info := parseText(t, text)

	if !info.CRLF {
		t.Fatal("CRLF not detected")
	}

	if got.ID != "TASK-6" || got.Description != "Body." {
		t.Fatalf("record mismatch: %+v", got)
	}
}

// Contract: block-form and inline sequences decode identically through the
// task layer too.
func Test_Parse_AcceptsBlockSequences_When_ProducerUsesBlockForm(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"---",
		"id: TASK-7",
		"dependencies:",
		"  - TASK-1",
		"  - TASK-2",
		"labels: single",
		"---",
		"",
	}, "\n")

	got, _ := parseText(t, text)

	if diff := cmp.Diff([]string{"TASK-1", "TASK-2"}, got.Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}

	// A bare scalar on a sequence field reads as a single-entry list.
	if diff := cmp.Diff([]string{"single"}, got.Labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

// Contract: unrecognized keys survive in source order.
func Test_Parse_PreservesExtras_When_KeysUnknown(t *testing.T) {
	t.Parallel()

	text := "---\nid: TASK-8\nx_custom: keep me\nanother: [a, b]\n---\n"

	got, _ := parseText(t, text)

	want := frontmatter.Fields{
		{Key: "x_custom", Value: frontmatter.ScalarValue("keep me")},
		{Key: "another", Value: frontmatter.ListValue([]string{"a", "b"})},
	}
	if diff := cmp.Diff(want, got.Extras); diff != "" {
		t.Fatalf("extras mismatch (-want +got):\n%s", diff)
	}
}
