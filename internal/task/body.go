package task

import (
	"regexp"
	"strconv"
	"strings"
)

// Body layout markers. Named sections are demarcated with explicit
// begin/end comments on write; on read both the markers and plain "##"
// headings are recognized, because hand-edited files tend to drop markers.
const (
	sectionBeginPrefix = "<!-- SECTION:BEGIN:"
	sectionEndPrefix   = "<!-- SECTION:END:"
	markerSuffix       = " -->"
)

// Canonical checklist group headings.
const (
	headingDescription        = "Description"
	headingAcceptanceCriteria = "Acceptance Criteria"
	headingDefinitionOfDone   = "Definition of Done"
)

// checklistRe matches both item syntaxes: "- [ ] #3 text" and the legacy
// unnumbered "- [x] text". The bracket check is case-insensitive.
var checklistRe = regexp.MustCompile(`^- \[([ xX])\] (?:#(\d+) )?(.*)$`)

// parseChecklistLine decodes one checklist line. ok is false for anything
// that is not a checklist item.
func parseChecklistLine(line string) (ChecklistItem, bool) {
	match := checklistRe.FindStringSubmatch(line)
	if match == nil {
		return ChecklistItem{}, false
	}

	item := ChecklistItem{
		Checked: match[1] == "x" || match[1] == "X",
		Text:    match[3],
	}

	if match[2] != "" {
		number, err := strconv.Atoi(match[2])
		if err == nil {
			item.Number = number
		}
	}

	return item, true
}

// groupKindForHeading maps a heading to a checklist group kind.
func groupKindForHeading(heading string) (string, bool) {
	switch {
	case strings.EqualFold(heading, headingAcceptanceCriteria):
		return GroupAcceptanceCriteria, true
	case strings.EqualFold(heading, headingDefinitionOfDone):
		return GroupDefinitionOfDone, true
	default:
		return "", false
	}
}

// cutHeading returns the heading text of a "## Heading" line.
func cutHeading(line string) (string, bool) {
	text, ok := strings.CutPrefix(line, "## ")
	if !ok {
		return "", false
	}

	return strings.TrimSpace(text), true
}

// cutSectionMarker decodes "<!-- SECTION:BEGIN:Name -->" style lines.
func cutSectionMarker(line, prefix string) (string, bool) {
	trimmed := strings.TrimSpace(line)

	inner, ok := strings.CutPrefix(trimmed, prefix)
	if !ok {
		return "", false
	}

	name, ok := strings.CutSuffix(inner, markerSuffix)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(name), true
}

// extractBody decodes the markdown body into the description, checklist
// groups, and named sections of t. The body arrives with LF endings.
func extractBody(t *Task, body string) {
	lines := strings.Split(body, "\n")

	var description []string

	idx := 0
	for idx < len(lines) {
		line := lines[idx]

		if name, ok := cutSectionMarker(line, sectionBeginPrefix); ok {
			content, next := collectMarkedSection(lines, idx+1, name)
			t.Sections = append(t.Sections, Section{Name: name, Content: content})
			idx = next

			continue
		}

		heading, isHeading := cutHeading(line)
		if !isHeading {
			description = append(description, line)
			idx++

			continue
		}

		switch {
		case strings.EqualFold(heading, headingDescription):
			content, next := collectPlainSection(lines, idx+1)
			description = append(description, content)
			idx = next
		default:
			kind, isGroup := groupKindForHeading(heading)
			if isGroup {
				items, next := collectChecklist(lines, idx+1)
				t.setChecklist(kind, items)
				idx = next

				continue
			}

			content, next := collectPlainSection(lines, idx+1)
			t.Sections = append(t.Sections, Section{Name: heading, Content: content})
			idx = next
		}
	}

	t.Description = trimBlank(strings.Join(description, "\n"))
}

// collectMarkedSection gathers lines until the matching END marker (or EOF
// for unterminated markers). A leading "## Name" heading inside the marked
// region is the serializer's own furniture and is dropped.
func collectMarkedSection(lines []string, start int, name string) (string, int) {
	var content []string

	idx := start
	for idx < len(lines) {
		line := lines[idx]

		if endName, ok := cutSectionMarker(line, sectionEndPrefix); ok {
			if endName == "" || strings.EqualFold(endName, name) {
				idx++

				break
			}
		}

		content = append(content, line)
		idx++
	}

	trimmed := content
	if len(trimmed) > 0 {
		if heading, ok := cutHeading(strings.TrimSpace(trimmed[0])); ok && strings.EqualFold(heading, name) {
			trimmed = trimmed[1:]
		}
	}

	return trimBlank(strings.Join(trimmed, "\n")), idx
}

// collectPlainSection gathers lines until the next boundary (heading or
// section marker) or EOF.
func collectPlainSection(lines []string, start int) (string, int) {
	var content []string

	idx := start
	for idx < len(lines) {
		line := lines[idx]

		if _, ok := cutHeading(line); ok {
			break
		}

		if _, ok := cutSectionMarker(line, sectionBeginPrefix); ok {
			break
		}

		content = append(content, line)
		idx++
	}

	return trimBlank(strings.Join(content, "\n")), idx
}

// collectChecklist gathers checklist items until the next boundary.
// Non-item lines inside the group (blank lines, stray prose) are tolerated
// and skipped.
func collectChecklist(lines []string, start int) ([]ChecklistItem, int) {
	var items []ChecklistItem

	idx := start
	for idx < len(lines) {
		line := lines[idx]

		if _, ok := cutHeading(line); ok {
			break
		}

		if _, ok := cutSectionMarker(line, sectionBeginPrefix); ok {
			break
		}

		if item, ok := parseChecklistLine(line); ok {
			items = append(items, item)
		}

		idx++
	}

	return items, idx
}

// trimBlank removes leading and trailing blank lines while preserving
// interior layout, including indentation of the first content line.
func trimBlank(s string) string {
	lines := strings.Split(s, "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return strings.Join(lines[start:end], "\n")
}
