package naming

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Post", "post"},
		{"BlogPost", "blog_post"},
		{"createdAt", "created_at"},
		{"HTTPServer", "http_server"},
		{"clientMutationId", "client_mutation_id"},
		{"*posts.Post", "posts_post"},
		{"already_snake", "already_snake"},
		{"Item2Name", "item2_name"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToSnake(tt.in); got != tt.want {
				t.Errorf("ToSnake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"title", "title"},
		{"created_at", "createdAt"},
		{"is_deleted", "isDeleted"},
		{"_private_key", "_privateKey"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToCamel(tt.in); got != tt.want {
				t.Errorf("ToCamel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCamelize(t *testing.T) {
	in := map[string]any{
		"created_at": "x",
		"nested_map": map[string]any{"first_name": "a"},
		"list_value": []any{map[string]any{"last_name": "b"}, 1},
	}
	want := map[string]any{
		"createdAt": "x",
		"nestedMap": map[string]any{"firstName": "a"},
		"listValue": []any{map[string]any{"lastName": "b"}, 1},
	}

	if diff := cmp.Diff(want, Camelize(in)); diff != "" {
		t.Errorf("Camelize() mismatch (-want +got):\n%s", diff)
	}

	errs := Camelize(map[string][]string{"first_name": {"cannot be blank"}})
	if diff := cmp.Diff(map[string][]string{"firstName": {"cannot be blank"}}, errs); diff != "" {
		t.Errorf("Camelize() errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSnakeKeys(t *testing.T) {
	got := SnakeKeys(map[string]any{"publishedAt": 1, "title": "t"})
	want := map[string]any{"published_at": 1, "title": "t"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SnakeKeys() mismatch (-want +got):\n%s", diff)
	}
}
