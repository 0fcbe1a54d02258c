package tmpl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name     string
		template string
		fields   map[string]string
		want     string
	}{
		{"unknown placeholder kept", "{{id}}-{{missing}}", map[string]string{"id": "7"}, "7-{{missing}}"},
		{"repeated key", "{{id}}/{{id}}", map[string]string{"id": "a"}, "a/a"},
		{"no recursion", "{{title}}", map[string]string{"title": "{{id}}", "id": "x"}, "{{id}}"},
		{"empty value", "[{{description}}]", map[string]string{"description": ""}, "[]"},
		{"spaces not a placeholder", "{{ id }}", map[string]string{"id": "7"}, "{{ id }}"},
		{"dash not an identifier", "{{created-by}}", map[string]string{"created-by": "x"}, "{{created-by}}"},
		{"triple braces", "{{{id}}}", map[string]string{"id": "7"}, "{7}"},
		{"nil fields", "{{id}}", nil, "{{id}}"},
		{"no placeholders", "plain text", map[string]string{"id": "7"}, "plain text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.template, tc.fields); got != tc.want {
				t.Fatalf("Render(%q) = %q, want %q", tc.template, got, tc.want)
			}
		})
	}
}

func TestDefaultTemplateUsesAllTicketFields(t *testing.T) {
	want := []string{"id", "title", "description", "priority_label", "priority", "type_label", "status", "created_by", "created_at", "updated_at"}
	if got := Placeholders(DefaultTemplate); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected placeholders %v", got)
	}
}

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.txt")
	if err := os.WriteFile(path, []byte("file {{id}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, origin, err := Load("inline {{id}}", path, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "file {{id}}" || origin != OriginFile {
		t.Fatalf("unexpected template %q from %s", got, origin)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")

	got, origin, err := Load("inline {{id}}", missing, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "inline {{id}}" || origin != OriginInline {
		t.Fatalf("unexpected template %q from %s", got, origin)
	}

	got, origin, err = Load("", missing, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != DefaultTemplate || origin != OriginDefault {
		t.Fatalf("expected default template, got %s", origin)
	}
}

func TestLoadDirectoryIsAnError(t *testing.T) {
	_, _, err := Load("", t.TempDir(), nil)
	if err == nil || !strings.Contains(err.Error(), "read template file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
