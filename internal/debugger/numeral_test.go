package debugger

import "testing"

func TestParseNumberFormats(t *testing.T) {
	cases := []struct {
		in   string
		want uint16
	}{
		{"0x1F", 0x1F},
		{"0X1f", 0x1F},
		{"1Fh", 0x1F},
		{"0b101", 0b101},
		{"101b", 0b101},
		{"0o17", 0o17},
		{"42", 42},
	}
	for _, c := range cases {
		got, err := ParseNumber(c.in)
		if err != nil {
			t.Errorf("ParseNumber(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseNumber(%q) = 0x%04X, want 0x%04X", c.in, got, c.want)
		}
	}
}

func TestParseNumberRejectsGarbage(t *testing.T) {
	if _, err := ParseNumber("not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric string")
	}
}

func TestParseNumberRejectsOverflow(t *testing.T) {
	if _, err := ParseNumber("0x10000"); err == nil {
		t.Fatal("expected an error for a value exceeding 16 bits")
	}
}
