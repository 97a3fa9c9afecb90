package util

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{
			name:  "shorter than limit",
			input: "hello",
			max:   10,
			want:  "hello",
		},
		{
			name:  "exactly at limit",
			input: "hello",
			max:   5,
			want:  "hello",
		},
		{
			name:  "longer than limit",
			input: "hello world",
			max:   5,
			want:  "hello",
		},
		{
			name:  "zero limit keeps value",
			input: "hello",
			max:   0,
			want:  "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.max)
			if got != tt.want {
				t.Fatalf("unexpected truncated value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateLongInput(t *testing.T) {
	input := strings.Repeat("x", 4000)
	got := Truncate(input, 3000)
	if len(got) != 3000 {
		t.Fatalf("expected 3000 bytes, got %d", len(got))
	}
}

func TestDedupeStrings(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "no duplicates",
			input: []string{"a", "b", "c"},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "duplicates keep first-seen order",
			input: []string{"b", "a", "b", "c", "a"},
			want:  []string{"b", "a", "c"},
		},
		{
			name:  "empty",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeStrings(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("unexpected length: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("unexpected order: got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
