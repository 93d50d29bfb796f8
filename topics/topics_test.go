package topics

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		topic   string
		want    bool
	}{
		{
			name:    "exact match",
			pattern: "a/foo",
			topic:   "a/foo",
			want:    true,
		},
		{
			name:    "exact mismatch",
			pattern: "a/foo",
			topic:   "a/baz",
			want:    false,
		},
		{
			name:    "literal pattern does not prefix-match",
			pattern: "a",
			topic:   "a/foo",
			want:    false,
		},
		{
			name:    "single-level matches one segment",
			pattern: "a/+",
			topic:   "a/b",
			want:    true,
		},
		{
			name:    "single-level does not match parent",
			pattern: "a/+",
			topic:   "a",
			want:    false,
		},
		{
			name:    "single-level does not match two segments",
			pattern: "a/+",
			topic:   "a/b/c",
			want:    false,
		},
		{
			name:    "single-level mid-pattern",
			pattern: "hub/+/status",
			topic:   "hub/lamp/status",
			want:    true,
		},
		{
			name:    "single-level mid-pattern mismatch",
			pattern: "hub/+/status",
			topic:   "hub/lamp/brightness",
			want:    false,
		},
		{
			name:    "multi-level matches parent itself",
			pattern: "a/#",
			topic:   "a",
			want:    true,
		},
		{
			name:    "multi-level matches child",
			pattern: "a/#",
			topic:   "a/b",
			want:    true,
		},
		{
			name:    "multi-level matches deep descendant",
			pattern: "a/#",
			topic:   "a/b/c",
			want:    true,
		},
		{
			name:    "multi-level does not match sibling",
			pattern: "a/#",
			topic:   "b/c",
			want:    false,
		},
		{
			name:    "bare multi-level matches everything",
			pattern: "#",
			topic:   "a/b/c",
			want:    true,
		},
		{
			name:    "multi-level not in final position is invalid",
			pattern: "a/#/b",
			topic:   "a/x/b",
			want:    false,
		},
		{
			name:    "pattern longer than topic",
			pattern: "a/b/c",
			topic:   "a/b",
			want:    false,
		},
		{
			name:    "topic longer than pattern",
			pattern: "a/b",
			topic:   "a/b/c",
			want:    false,
		},
		{
			name:    "combined wildcards",
			pattern: "hub/+/#",
			topic:   "hub/lamp/status/on",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.pattern, tt.topic); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
		})
	}
}

func TestHasWildcard(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"a/foo", false},
		{"a/+", true},
		{"a/#", true},
		{"#", true},
		{"a/+/b", true},
		{"a+b/c", false}, // wildcard must be a whole segment
	}

	for _, tt := range tests {
		if got := HasWildcard(tt.pattern); got != tt.want {
			t.Errorf("HasWildcard(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestIsChild(t *testing.T) {
	tests := []struct {
		parent string
		topic  string
		want   bool
	}{
		{"a", "a/foo", true},
		{"a", "a/foo/bar", true},
		{"a", "a", false},
		{"a", "ab/foo", false},
		{"a/foo", "a/foobar", false},
	}

	for _, tt := range tests {
		if got := IsChild(tt.parent, tt.topic); got != tt.want {
			t.Errorf("IsChild(%q, %q) = %v, want %v", tt.parent, tt.topic, got, tt.want)
		}
	}
}
