package llmclient

import "testing"

func TestExtractBalancedJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "surrounding prose",
			in:   "Sure, here is the analysis:\n" + `{"a": 1, "b": 2}` + "\nLet me know if you need anything else.",
			want: `{"a": 1, "b": 2}`,
		},
		{
			name: "nested braces",
			in:   `{"outer": {"inner": 1}}`,
			want: `{"outer": {"inner": 1}}`,
		},
		{
			name: "braces inside a quoted string are ignored",
			in:   `{"text": "a { b } c"}`,
			want: `{"text": "a { b } c"}`,
		},
		{
			name: "escaped quote inside string",
			in:   `{"text": "she said \"hi\""}`,
			want: `{"text": "she said \"hi\""}`,
		},
		{
			name: "no braces at all",
			in:   "no json here",
			want: "",
		},
		{
			name: "unbalanced braces",
			in:   `{"a": 1`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractBalancedJSON(tt.in); got != tt.want {
				t.Errorf("extractBalancedJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
