// Package format renders a record stream as vicut's three output shapes:
// delimiter-joined lines, one-line-per-record templates, and a JSON array
// of objects. JSON assembly leans on the teacher's own (indirect, now
// promoted to direct) JSON stack — github.com/tidwall/sjson to build each
// object key by key in field order, github.com/tidwall/gjson to validate
// the result, and github.com/tidwall/pretty to render compact or indented
// output — rather than round-tripping through encoding/json structs.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/vicut/internal/record"
	"github.com/dshills/vicut/internal/vierr"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// fieldKey returns the key a field renders under: its explicit Name, or
// field_N where N is this field's 1-based rank among the record's unnamed
// fields only — not its position among all fields (spec.md §4.6, §6:
// "{{N}} for the Nth unnamed field").
func fieldKey(f record.Field, unnamedRank int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("field_%d", unnamedRank)
}

// Delimiter joins each record's field texts with delim; records are
// separated by "\n".
func Delimiter(records []record.Record, delim string) string {
	lines := make([]string, len(records))
	for i, r := range records {
		texts := make([]string, len(r.Fields))
		for j, f := range r.Fields {
			texts[j] = f.Text
		}
		lines[i] = strings.Join(texts, delim)
	}
	return strings.Join(lines, "\n")
}

// JSON renders records as a JSON array of objects, one per record, keys in
// field order. pretty controls indentation; the compact form matches what
// --json alone produces.
func JSON(records []record.Record, prettyPrint bool) (string, error) {
	objs := make([]string, len(records))
	for i, r := range records {
		obj := "{}"
		var err error
		unnamed := 0
		for j, f := range r.Fields {
			if f.Name == "" {
				unnamed++
			}
			obj, err = sjson.Set(obj, fieldKey(f, unnamed), f.Text)
			if err != nil {
				return "", vierr.Newf(vierr.InternalError, "encoding record %d field %d: %v", i, j, err)
			}
		}
		objs[i] = obj
	}

	arr := "[" + strings.Join(objs, ",") + "]"
	if !gjson.Valid(arr) {
		return "", vierr.New(vierr.InternalError, "assembled invalid json output")
	}

	b := []byte(arr)
	if prettyPrint {
		b = pretty.Pretty(b)
	} else {
		b = pretty.Ugly(b)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// Template renders one line per record by interpolating tmpl: "{{N}}" for
// the Nth (1-based) unnamed field — ranked among that record's unnamed
// fields only, matching the field_N JSON key, not the field's position
// among all fields — "{{name}}" for a named field, "\{{" for a literal
// "{{". A name that no record in the run ever produces is a fatal
// TemplateError; a placeholder valid in general but absent from a
// particular record renders as an empty string.
func Template(records []record.Record, tmpl string) (string, error) {
	placeholders, err := parseTemplate(tmpl)
	if err != nil {
		return "", err
	}

	known := knownNames(records)
	for _, p := range placeholders {
		if p.kind == placeholderName {
			if _, ok := known[p.name]; !ok {
				return "", vierr.Newf(vierr.TemplateError, "unknown field %q in template", p.name)
			}
		}
	}

	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = renderTemplate(placeholders, r)
	}
	return strings.Join(lines, "\n"), nil
}

func knownNames(records []record.Record) map[string]struct{} {
	names := make(map[string]struct{})
	for _, r := range records {
		for _, f := range r.Fields {
			if f.Name != "" {
				names[f.Name] = struct{}{}
			}
		}
	}
	return names
}

type placeholderKind int

const (
	placeholderLiteral placeholderKind = iota
	placeholderPosition
	placeholderName
)

type placeholder struct {
	kind placeholderKind
	text string // literal text, when kind == placeholderLiteral
	name string // field name, when kind == placeholderName
	n    int    // 1-based position, when kind == placeholderPosition
}

// parseTemplate splits tmpl into a sequence of literal and placeholder
// segments, honoring "\{{" as an escaped literal "{{".
func parseTemplate(tmpl string) ([]placeholder, error) {
	var out []placeholder
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			out = append(out, placeholder{kind: placeholderLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(tmpl) {
		switch {
		case strings.HasPrefix(tmpl[i:], `\{{`):
			lit.WriteString("{{")
			i += 3
		case strings.HasPrefix(tmpl[i:], "{{"):
			end := strings.Index(tmpl[i+2:], "}}")
			if end < 0 {
				return nil, vierr.New(vierr.TemplateError, "unterminated {{ placeholder")
			}
			inner := strings.TrimSpace(tmpl[i+2 : i+2+end])
			flushLit()
			if n, err := strconv.Atoi(inner); err == nil {
				out = append(out, placeholder{kind: placeholderPosition, n: n})
			} else {
				out = append(out, placeholder{kind: placeholderName, name: inner})
			}
			i += 2 + end + 2
		default:
			lit.WriteByte(tmpl[i])
			i++
		}
	}
	flushLit()
	return out, nil
}

func renderTemplate(placeholders []placeholder, r record.Record) string {
	var unnamed []string
	for _, f := range r.Fields {
		if f.Name == "" {
			unnamed = append(unnamed, f.Text)
		}
	}

	var out strings.Builder
	for _, p := range placeholders {
		switch p.kind {
		case placeholderLiteral:
			out.WriteString(p.text)
		case placeholderPosition:
			if p.n >= 1 && p.n <= len(unnamed) {
				out.WriteString(unnamed[p.n-1])
			}
		case placeholderName:
			for _, f := range r.Fields {
				if f.Name == p.name {
					out.WriteString(f.Text)
					break
				}
			}
		}
	}
	return out.String()
}
