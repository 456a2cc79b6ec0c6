package repository

import "testing"

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Cálculo", want: "Cálculo"},
		{name: "percent", input: "100%", want: `100\%`},
		{name: "underscore", input: "CS_101", want: `CS\_101`},
		{name: "backslash", input: `a\b`, want: `a\\b`},
		{name: "mixed", input: `%_\`, want: `\%\_\\`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeLike(tt.input); got != tt.want {
				t.Errorf("escapeLike(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
