package task

import (
	"strconv"
	"strings"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/frontmatter"
)

// SerializeOptions control the text form of a record.
type SerializeOptions struct {
	// CRLF emits Windows line endings; set from ParseInfo.CRLF when
	// rewriting an existing file so its ending style is preserved.
	CRLF bool
}

// Serialize writes a record back to its file text. The output is stable:
// metadata keys emit in the fixed canonical order (unrecognized keys follow
// in source order), list fields always use the inline form, and parsing the
// result yields the record back field for field.
func Serialize(t Task, opts SerializeOptions) []byte {
	var builder strings.Builder

	builder.Write(frontmatter.Encode(metadataFields(t)))

	body := bodyText(t)
	if body != "" {
		builder.WriteByte('\n')
		builder.WriteString(body)
	}

	out := builder.String()
	if opts.CRLF {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}

	return []byte(out)
}

// metadataFields assembles the frontmatter block in canonical order.
// Absent fields are omitted entirely; empty-but-present lists emit as "[]"
// so that the distinction survives a round trip.
func metadataFields(t Task) frontmatter.Fields {
	fields := make(frontmatter.Fields, 0, len(canonicalKeyOrder)+len(t.Extras))

	for _, key := range canonicalKeyOrder {
		switch key {
		case keyID:
			fields = appendScalar(fields, key, t.ID)
		case keyTitle:
			fields = appendScalar(fields, key, t.Title)
		case keyStatus:
			fields = appendScalar(fields, key, t.Status)
		case keyPriority:
			fields = appendScalar(fields, key, t.Priority)
		case keyLabels:
			fields = appendList(fields, key, t.Labels)
		case keyAssignees:
			fields = appendList(fields, key, t.Assignees)
		case keyMilestone:
			fields = appendScalar(fields, key, t.Milestone)
		case keyDependencies:
			fields = appendList(fields, key, t.Dependencies)
		case keyParent:
			fields = appendScalar(fields, key, t.Parent)
		case keySubtasks:
			fields = appendList(fields, key, t.Subtasks)
		case keyOrdinal:
			if t.Ordinal != nil {
				value := strconv.FormatFloat(*t.Ordinal, 'f', -1, 64)
				fields = append(fields, frontmatter.Field{Key: key, Value: frontmatter.ScalarValue(value)})
			}
		case keyCreated:
			fields = appendScalar(fields, key, t.Created)
		case keyUpdated:
			fields = appendScalar(fields, key, t.Updated)
		}
	}

	return append(fields, t.Extras...)
}

func appendScalar(fields frontmatter.Fields, key, value string) frontmatter.Fields {
	if value == "" {
		return fields
	}

	return append(fields, frontmatter.Field{Key: key, Value: frontmatter.ScalarValue(value)})
}

func appendList(fields frontmatter.Fields, key string, list []string) frontmatter.Fields {
	// nil means the field was absent; a non-nil empty list was present as
	// "[]" in the source and stays that way.
	if list == nil {
		return fields
	}

	return append(fields, frontmatter.Field{Key: key, Value: frontmatter.ListValue(list)})
}

// bodyText assembles the markdown body: description, checklist groups,
// then named sections wrapped in explicit markers.
func bodyText(t Task) string {
	var blocks []string

	if t.Description != "" {
		blocks = append(blocks, "## "+headingDescription+"\n\n"+t.Description)
	}

	if len(t.AcceptanceCriteria) > 0 {
		blocks = append(blocks, checklistBlock(headingAcceptanceCriteria, t.AcceptanceCriteria))
	}

	if len(t.DefinitionOfDone) > 0 {
		blocks = append(blocks, checklistBlock(headingDefinitionOfDone, t.DefinitionOfDone))
	}

	for _, section := range t.Sections {
		blocks = append(blocks, sectionBlock(section))
	}

	if len(blocks) == 0 {
		return ""
	}

	return strings.Join(blocks, "\n\n") + "\n"
}

func checklistBlock(heading string, items []ChecklistItem) string {
	var builder strings.Builder

	builder.WriteString("## ")
	builder.WriteString(heading)
	builder.WriteString("\n")

	for _, item := range items {
		builder.WriteString("\n- [")

		if item.Checked {
			builder.WriteString("x")
		} else {
			builder.WriteString(" ")
		}

		builder.WriteString("] ")

		if item.Number > 0 {
			builder.WriteString("#")
			builder.WriteString(strconv.Itoa(item.Number))
			builder.WriteString(" ")
		}

		builder.WriteString(item.Text)
	}

	return builder.String()
}

func sectionBlock(section Section) string {
	var builder strings.Builder

	builder.WriteString(sectionBeginPrefix)
	builder.WriteString(section.Name)
	builder.WriteString(markerSuffix)
	builder.WriteString("\n## ")
	builder.WriteString(section.Name)

	if section.Content != "" {
		builder.WriteString("\n\n")
		builder.WriteString(section.Content)
	}

	builder.WriteString("\n")
	builder.WriteString(sectionEndPrefix)
	builder.WriteString(section.Name)
	builder.WriteString(markerSuffix)

	return builder.String()
}
