package mask

import "testing"

func TestLast4(t *testing.T) {
	cases := []struct{ in, want string }{
		{"4539578763621486", "****1486"},
		{"123456789", "****6789"},
		{" 123456789 ", "****6789"},
		{"123", "****"},
		{"", "****"},
	}
	for _, c := range cases {
		if got := Last4(c.in); got != c.want {
			t.Errorf("Last4(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if got := Email("jane.doe@example.com"); got != "j***@example.com" {
		t.Fatalf("Email = %q", got)
	}
	if got := Email("broken"); got != "***" {
		t.Fatalf("Email(broken) = %q", got)
	}
}
