// Package frontmatter splits task files into a metadata block and body, and
// decodes that block using a restricted, deterministic YAML subset.
//
// Supported constructs:
//
//	---
//	id: TASK-12
//	title: "Fix: the parser"
//	labels: [bug, urgent]
//	assignees:
//	  - alice
//	  - bob
//	---
//
// Every scalar decodes as a string. There is deliberately no numeric,
// boolean, or date coercion: a value like "$15,000" must survive a
// read-modify-write cycle byte for byte, so interpretation belongs to the
// layer that knows what the field means. Lists contain only strings and are
// accepted in both the inline and the block form; serialization always emits
// the inline form.
//
// Not supported: nested maps, multi-line strings, anchors, aliases, tags,
// and flow mappings. Files produced by foreign tools may use more YAML than
// this; Decode reports an error in that case and the caller degrades to
// treating the whole file as body.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter is the fence line that opens and closes a metadata block.
const Delimiter = "---"

// Kind discriminates the two value shapes the subset allows.
type Kind uint8

// Value shapes.
const (
	KindScalar Kind = iota
	KindList
)

// Value is one decoded metadata value: a verbatim string scalar or a list of
// strings.
type Value struct {
	Kind   Kind
	Scalar string
	List   []string
}

// ScalarValue wraps a string scalar.
func ScalarValue(s string) Value {
	return Value{Kind: KindScalar, Scalar: s}
}

// ListValue wraps a string list.
func ListValue(items []string) Value {
	return Value{Kind: KindList, List: items}
}

// Field is one key/value pair. Fields keep their source order so that keys
// this tool does not recognize round-trip in place.
type Field struct {
	Key   string
	Value Value
}

// Fields is an ordered metadata block.
type Fields []Field

// Get returns the value for key. When the source carried duplicate keys the
// last occurrence wins; that matches the observed behavior of the reference
// format and is documented rather than fixed.
func (fs Fields) Get(key string) (Value, bool) {
	for i := len(fs) - 1; i >= 0; i-- {
		if fs[i].Key == key {
			return fs[i].Value, true
		}
	}

	return Value{}, false
}

// Split separates a leading metadata block from the body.
//
// The block must open with a "---" line at the very start of the input and
// close with another "---" line. When either fence is missing the whole
// input is returned as body with found=false; Split never fails. The
// returned block excludes the fence lines, and the body starts immediately
// after the closing fence line. CRLF input is handled; returned slices alias
// the input.
func Split(src []byte) (block, body []byte, found bool) {
	rest, ok := cutFenceLine(src)
	if !ok {
		return nil, src, false
	}

	offset := len(src) - len(rest)

	for len(rest) > 0 {
		line, tail := nextLine(rest)
		if isFence(line) {
			// rest still starts at the fence line, so the block ends here.
			return src[offset : len(src)-len(rest)], tail, true
		}

		rest = tail
	}

	// Unterminated block: treat the whole input as body.
	return nil, src, false
}

// cutFenceLine consumes an opening fence line at the start of src.
func cutFenceLine(src []byte) ([]byte, bool) {
	line, rest := nextLine(src)
	if !isFence(line) {
		return nil, false
	}

	return rest, true
}

func isFence(line []byte) bool {
	return string(trimCR(line)) == Delimiter
}

// nextLine returns the first line of src (without the newline) and the rest.
func nextLine(src []byte) (line, rest []byte) {
	idx := bytes.IndexByte(src, '\n')
	if idx < 0 {
		return src, nil
	}

	return src[:idx], src[idx+1:]
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}

	return line
}

// Decode parses a metadata block (the text between the fences) into ordered
// fields. A structural error (a non-blank line that is neither a key, a list
// item, nor a comment) fails the whole block; the task parser then treats
// the file as having no metadata at all.
func Decode(block []byte) (Fields, error) {
	var (
		out     Fields
		rest    = block
		lineNum int
	)

	for len(rest) > 0 {
		var raw []byte

		raw, rest = nextLine(rest)
		lineNum++

		line := string(trimCR(raw))
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			return nil, decodeErr(lineNum, "unexpected indentation")
		}

		key, rawValue, ok := strings.Cut(line, ":")
		if !ok {
			return nil, decodeErr(lineNum, "missing ':'")
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, decodeErr(lineNum, "empty key")
		}

		value := strings.TrimSpace(rawValue)

		switch {
		case value == "":
			var list []string

			list, rest, lineNum = decodeBlockList(rest, lineNum)
			if list == nil {
				// A bare key with no indented items decodes as an empty
				// scalar, not an error; sparse producers emit these.
				out = upsert(out, key, ScalarValue(""))

				continue
			}

			out = upsert(out, key, ListValue(list))
		case strings.HasPrefix(value, "["):
			if !strings.HasSuffix(value, "]") {
				return nil, decodeErr(lineNum, "unterminated list")
			}

			out = upsert(out, key, ListValue(decodeInlineList(value)))
		default:
			out = upsert(out, key, ScalarValue(unquote(stripTrailingComment(value))))
		}
	}

	return out, nil
}

// upsert appends key or replaces its value in place. Duplicate keys are a
// known ambiguity in the wild; the last occurrence wins.
func upsert(fs Fields, key string, value Value) Fields {
	for i := range fs {
		if fs[i].Key == key {
			fs[i].Value = value

			return fs
		}
	}

	return append(fs, Field{Key: key, Value: value})
}

// decodeBlockList consumes indented "- item" lines following a bare key.
// Returns nil when the next non-blank line is not an indented list item.
func decodeBlockList(rest []byte, lineNum int) ([]string, []byte, int) {
	items := []string{}

	for len(rest) > 0 {
		raw, tail := nextLine(rest)
		line := string(trimCR(raw))
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			rest = tail
			lineNum++

			continue
		}

		indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		if !indented || !strings.HasPrefix(trimmed, "- ") {
			break
		}

		item := strings.TrimSpace(strings.TrimPrefix(trimmed, "- "))
		items = append(items, unquote(item))

		rest = tail
		lineNum++
	}

	if len(items) == 0 {
		return nil, rest, lineNum
	}

	return items, rest, lineNum
}

// decodeInlineList tokenizes the bracket interior, splitting only on commas
// outside quotes. Encode quotes any item containing a comma, so a quoted
// "Doe, John" must come back as one item, and a quoted "" stays an
// empty-string item.
func decodeInlineList(value string) []string {
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []string{}
	}

	items := []string{}

	var (
		token strings.Builder
		quote byte
	)

	flush := func() {
		item := strings.TrimSpace(token.String())
		token.Reset()

		if item == "" {
			return
		}

		items = append(items, unquote(item))
	}

	for i := 0; i < len(inner); i++ {
		c := inner[i]

		switch {
		case quote != 0:
			token.WriteByte(c)

			if c == '\\' && quote == '"' && i+1 < len(inner) {
				i++
				token.WriteByte(inner[i])

				continue
			}

			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c

			token.WriteByte(c)
		case c == ',':
			flush()
		default:
			token.WriteByte(c)
		}
	}

	flush()

	return items
}

// stripTrailingComment removes an unquoted trailing "#" comment. Quoted
// values keep their content untouched.
func stripTrailingComment(value string) string {
	if strings.HasPrefix(value, "\"") || strings.HasPrefix(value, "'") {
		return value
	}

	if idx := strings.Index(value, " #"); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}

	return value
}

// unquote removes a matched pair of single or double quotes. Everything
// else is returned verbatim — no escapes beyond what strconv handles, no
// type coercion ever.
func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		if parsed, err := strconv.Unquote(value); err == nil {
			return parsed
		}

		return value
	}

	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}

	return value
}

// Encode serializes fields between "---" fences with LF endings. Order is
// the caller's: the task serializer passes the canonical field order with
// unrecognized keys appended in first-seen order. Lists always emit the
// inline form; that is an intentional divergence from producers that use the
// block form, and both shapes decode identically.
func Encode(fields Fields) []byte {
	var builder strings.Builder

	builder.WriteString(Delimiter)
	builder.WriteByte('\n')

	for _, field := range fields {
		builder.WriteString(field.Key)
		builder.WriteByte(':')

		switch field.Value.Kind {
		case KindScalar:
			builder.WriteByte(' ')
			builder.WriteString(quoteIfNeeded(field.Value.Scalar))
		case KindList:
			builder.WriteString(" [")

			for i, item := range field.Value.List {
				if i > 0 {
					builder.WriteString(", ")
				}

				builder.WriteString(quoteIfNeeded(item))
			}

			builder.WriteByte(']')
		}

		builder.WriteByte('\n')
	}

	builder.WriteString(Delimiter)
	builder.WriteByte('\n')

	return []byte(builder.String())
}

// quoteIfNeeded wraps values that would not survive Decode verbatim.
func quoteIfNeeded(value string) string {
	if value == "" {
		return `""`
	}

	needsQuotes := strings.ContainsAny(value, "[]\"'\n") ||
		strings.Contains(value, ": ") ||
		strings.Contains(value, " #") ||
		strings.Contains(value, ",") ||
		strings.HasPrefix(value, "#") ||
		strings.HasPrefix(value, "- ") ||
		value != strings.TrimSpace(value)

	if !needsQuotes {
		return value
	}

	return strconv.Quote(value)
}

func decodeErr(line int, msg string) error {
	return fmt.Errorf("decode frontmatter line %d: %s", line, msg)
}
