package tasks

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleConfirmer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase", "YES\n", true},
		{"padded", "  y  \n", true},
		{"plain no", "n\n", false},
		{"empty line", "\n", false},
		{"garbage", "sure why not\n", false},
		{"eof without input", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsoleConfirmer(strings.NewReader(tc.input), &out)

			got := c.Confirm("Add track?")
			if got != tc.want {
				t.Errorf("Confirm() with input %q = %v, want %v", tc.input, got, tc.want)
			}
			if !strings.Contains(out.String(), "(y/N)") {
				t.Errorf("prompt %q should show the y/N hint", out.String())
			}
		})
	}

	t.Run("sequential prompts consume one line each", func(t *testing.T) {
		var out bytes.Buffer
		c := NewConsoleConfirmer(strings.NewReader("y\nn\ny\n"), &out)

		answers := []bool{c.Confirm("one?"), c.Confirm("two?"), c.Confirm("three?")}
		want := []bool{true, false, true}
		for i := range want {
			if answers[i] != want[i] {
				t.Errorf("answer %d = %v, want %v", i, answers[i], want[i])
			}
		}
	})
}
