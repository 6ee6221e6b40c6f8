package format

import (
	"strings"
	"testing"

	"github.com/dshills/vicut/internal/record"
	"github.com/dshills/vicut/internal/vibuf"
)

func field(name, text string) record.Field {
	return record.Field{Name: name, Text: text, Start: vibuf.Position{}, End: vibuf.Position{}}
}

func TestDelimiterJoinsFieldsAndRecords(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("", "foo"), field("", "bar")}},
		{Fields: []record.Field{field("", "baz")}},
	}
	got := Delimiter(records, ",")
	want := "foo,bar\nbaz"
	if got != want {
		t.Errorf("Delimiter = %q, want %q", got, want)
	}
}

func TestJSONUnnamedFieldsUseFieldN(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("", "a"), field("", "b"), field("", "c")}},
	}
	got, err := JSON(records, false)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := `[{"field_1":"a","field_2":"b","field_3":"c"}]`
	if got != want {
		t.Errorf("JSON = %q, want %q", got, want)
	}
}

func TestJSONNamedFieldsPreserveOrder(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("host", "example.com"), field("port", "443")}},
	}
	got, err := JSON(records, false)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := `[{"host":"example.com","port":"443"}]`
	if got != want {
		t.Errorf("JSON = %q, want %q", got, want)
	}
}

func TestJSONPrettyIndents(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("a", "1")}},
	}
	got, err := JSON(records, true)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(got, "\n") {
		t.Errorf("pretty JSON has no newlines: %q", got)
	}
	if !strings.Contains(got, "  ") {
		t.Errorf("pretty JSON has no indentation: %q", got)
	}
}

func TestTemplatePositionalAndNamed(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("host", "example.com"), field("", "443"), field("", "tcp")}},
	}
	got, err := Template(records, "{{host}}:{{2}}")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	want := "example.com:tcp"
	if got != want {
		t.Errorf("Template = %q, want %q", got, want)
	}
}

func TestTemplatePositionRanksUnnamedFieldsOnly(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("host", "example.com"), field("", "443")}},
	}
	got, err := Template(records, "{{1}}")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	want := "443"
	if got != want {
		t.Errorf("Template = %q, want %q (the only unnamed field, despite being at overall position 2)", got, want)
	}
}

func TestJSONFieldNRanksUnnamedFieldsOnly(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("host", "example.com"), field("", "443")}},
	}
	got, err := JSON(records, false)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := `[{"host":"example.com","field_1":"443"}]`
	if got != want {
		t.Errorf("JSON = %q, want %q", got, want)
	}
}

func TestTemplateMultipleRecordsJoinedByNewline(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("", "one")}},
		{Fields: []record.Field{field("", "two")}},
	}
	got, err := Template(records, "[{{1}}]")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	want := "[one]\n[two]"
	if got != want {
		t.Errorf("Template = %q, want %q", got, want)
	}
}

func TestTemplateEscapedBraces(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("", "x")}},
	}
	got, err := Template(records, `\{{literal}} {{1}}`)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	want := "{{literal}} x"
	if got != want {
		t.Errorf("Template = %q, want %q", got, want)
	}
}

func TestTemplateUnmatchedNameIsEmptyWhenKnownElsewhere(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("host", "a.example.com"), field("port", "80")}},
		{Fields: []record.Field{field("host", "b.example.com")}},
	}
	got, err := Template(records, "{{host}}/{{port}}")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	want := "a.example.com/80\nb.example.com/"
	if got != want {
		t.Errorf("Template = %q, want %q", got, want)
	}
}

func TestTemplateUnknownNameIsFatal(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("host", "example.com")}},
	}
	_, err := Template(records, "{{hostt}}")
	if err == nil {
		t.Fatal("expected TemplateError for unknown field name, got nil")
	}
}

func TestTemplatePositionPastRecordFieldCountIsEmpty(t *testing.T) {
	records := []record.Record{
		{Fields: []record.Field{field("", "only")}},
	}
	got, err := Template(records, "{{1}}-{{2}}")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	want := "only-"
	if got != want {
		t.Errorf("Template = %q, want %q", got, want)
	}
}

func TestTemplateUnterminatedPlaceholderErrors(t *testing.T) {
	records := []record.Record{{Fields: []record.Field{field("", "x")}}}
	_, err := Template(records, "{{1")
	if err == nil {
		t.Fatal("expected error for unterminated placeholder, got nil")
	}
}
