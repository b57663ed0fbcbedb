package task

// Patch is a field-level update against an existing record. Nil pointers
// leave the field untouched; set pointers replace it wholesale. This is the
// unit the store's update operation applies between read and rewrite.
type Patch struct {
	Title        *string
	Status       *string
	Priority     *string
	Labels       *[]string
	Assignees    *[]string
	Milestone    *string
	Dependencies *[]string
	Parent       *string
	Subtasks     *[]string

	// Ordinal replaces the ordering key; ClearOrdinal removes it. Setting
	// both is a caller bug and Ordinal wins.
	Ordinal      *float64
	ClearOrdinal bool

	Created *string
	Updated *string

	Description *string

	// Sections replaces (or appends) sections by name; sections not named
	// here stay untouched.
	Sections []Section

	AcceptanceCriteria *[]ChecklistItem
	DefinitionOfDone   *[]ChecklistItem
}

// Apply mutates t with every field the patch sets.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}

	if p.Status != nil {
		t.Status = *p.Status
	}

	if p.Priority != nil {
		t.Priority = *p.Priority
	}

	if p.Labels != nil {
		t.Labels = *p.Labels
	}

	if p.Assignees != nil {
		t.Assignees = *p.Assignees
	}

	if p.Milestone != nil {
		t.Milestone = *p.Milestone
	}

	if p.Dependencies != nil {
		t.Dependencies = *p.Dependencies
	}

	if p.Parent != nil {
		t.Parent = *p.Parent
	}

	if p.Subtasks != nil {
		t.Subtasks = *p.Subtasks
	}

	switch {
	case p.Ordinal != nil:
		value := *p.Ordinal
		t.Ordinal = &value
	case p.ClearOrdinal:
		t.Ordinal = nil
	}

	if p.Created != nil {
		t.Created = *p.Created
	}

	if p.Updated != nil {
		t.Updated = *p.Updated
	}

	if p.Description != nil {
		t.Description = *p.Description
	}

	for _, section := range p.Sections {
		t.SetSection(section.Name, section.Content)
	}

	if p.AcceptanceCriteria != nil {
		t.AcceptanceCriteria = *p.AcceptanceCriteria
	}

	if p.DefinitionOfDone != nil {
		t.DefinitionOfDone = *p.DefinitionOfDone
	}
}

// ToggleChecklistItem flips the checked state of the numbered item in the
// given group. When duplicate numbers exist the first match in document
// order toggles, deterministically. Returns false when no item carries the
// number; legacy unnumbered items (Number 0) are never addressable here.
func (t *Task) ToggleChecklistItem(kind string, number int) bool {
	if number <= 0 {
		return false
	}

	items := t.Checklist(kind)
	for i := range items {
		if items[i].Number == number {
			items[i].Checked = !items[i].Checked

			return true
		}
	}

	return false
}
