package task

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/dates"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/frontmatter"
)

// ParseInfo carries read-side facts that are not part of the record itself.
type ParseInfo struct {
	// CRLF is true when the source used Windows line endings; rewrites
	// must preserve the original style.
	CRLF bool

	// Warnings lists recovered problems (malformed metadata, unparseable
	// dates). They are advisory — parsing never fails — and callers may
	// log them.
	Warnings []string
}

// Parse decodes a task file. It never returns an error: malformed metadata
// degrades to an empty metadata block with the whole input as body, and
// unparseable field values are retained verbatim rather than dropped.
func Parse(src []byte) (Task, ParseInfo) {
	var (
		t    Task
		info ParseInfo
	)

	info.CRLF = bytes.Contains(src, []byte("\r\n"))

	text := string(src)
	if info.CRLF {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}

	block, body, found := frontmatter.Split([]byte(text))
	if found {
		fields, err := frontmatter.Decode(block)
		if err != nil {
			// Degrade to no metadata; the full input stays readable as body.
			info.Warnings = append(info.Warnings, fmt.Sprintf("metadata ignored: %v", err))
			body = []byte(text)
			fields = nil
		}

		applyFields(&t, fields, &info)
	}

	extractBody(&t, strings.TrimLeft(string(body), "\n"))

	return t, info
}

// applyFields maps decoded metadata onto the record. Fields are visited in
// source order; snake_case and camelCase spellings fold to one canonical
// key. A later non-empty value replaces an earlier one (last wins — a
// documented ambiguity of the format); empty values never clobber data.
func applyFields(t *Task, fields frontmatter.Fields, info *ParseInfo) {
	for _, field := range fields {
		canonical, recognized := foldKey(field.Key)
		if !recognized {
			t.Extras = appendExtra(t.Extras, field.Key, field.Value)

			continue
		}

		switch canonical {
		case keyID:
			setScalar(&t.ID, field.Value)
		case keyTitle:
			setScalar(&t.Title, field.Value)
		case keyStatus:
			setScalar(&t.Status, field.Value)
		case keyPriority:
			setScalar(&t.Priority, field.Value)
		case keyLabels:
			setList(&t.Labels, field.Value)
		case keyAssignees:
			setList(&t.Assignees, field.Value)
		case keyMilestone:
			setScalar(&t.Milestone, field.Value)
		case keyDependencies:
			setList(&t.Dependencies, field.Value)
		case keyParent:
			setScalar(&t.Parent, field.Value)
		case keySubtasks:
			setList(&t.Subtasks, field.Value)
		case keyOrdinal:
			applyOrdinal(t, field, info)
		case keyCreated:
			applyDate(&t.Created, field.Value, canonical, info)
		case keyUpdated:
			applyDate(&t.Updated, field.Value, canonical, info)
		}
	}
}

// setScalar applies the last-non-empty-wins merge rule for scalar fields.
func setScalar(dst *string, value frontmatter.Value) {
	scalar := scalarOf(value)
	if scalar == "" && *dst != "" {
		return
	}

	*dst = scalar
}

// setList accepts both list values and bare scalars (a single-entry list is
// often written without brackets by hand).
func setList(dst *[]string, value frontmatter.Value) {
	var list []string

	switch value.Kind {
	case frontmatter.KindList:
		list = value.List
	case frontmatter.KindScalar:
		if value.Scalar != "" {
			list = []string{value.Scalar}
		}
	}

	if len(list) == 0 && len(*dst) > 0 {
		return
	}

	if list != nil || value.Kind == frontmatter.KindList {
		*dst = list
	}
}

// scalarOf flattens a value to a scalar; a list collapses to its first
// entry, which loses nothing for fields that are scalar by contract.
func scalarOf(value frontmatter.Value) string {
	if value.Kind == frontmatter.KindList {
		if len(value.List) == 0 {
			return ""
		}

		return value.List[0]
	}

	return value.Scalar
}

func applyOrdinal(t *Task, field frontmatter.Field, info *ParseInfo) {
	raw := strings.TrimSpace(scalarOf(field.Value))
	if raw == "" {
		return
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Keep the unparseable value as an extra so the rewrite does not
		// lose it; ordering treats the record as ordinal-less.
		info.Warnings = append(info.Warnings, fmt.Sprintf("ordinal %q is not numeric", raw))
		t.Extras = appendExtra(t.Extras, field.Key, field.Value)

		return
	}

	t.Ordinal = &parsed
}

func applyDate(dst *string, value frontmatter.Value, key string, info *ParseInfo) {
	raw := scalarOf(value)
	if raw == "" && *dst != "" {
		return
	}

	normalized, ok := dates.Normalize(raw)
	if !ok && raw != "" {
		info.Warnings = append(info.Warnings, fmt.Sprintf("%s %q is not a recognized date", key, raw))
	}

	*dst = normalized
}

// appendExtra keeps unrecognized keys in first-seen order with last-wins
// values, mirroring the duplicate-key rule of the decoder.
func appendExtra(extras frontmatter.Fields, key string, value frontmatter.Value) frontmatter.Fields {
	for i := range extras {
		if extras[i].Key == key {
			extras[i].Value = value

			return extras
		}
	}

	return append(extras, frontmatter.Field{Key: key, Value: value})
}
