package id

import (
	"encoding/hex"
	"regexp"
	"testing"
)

var (
	reHex32   = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reDigits9 = regexp.MustCompile(`^[1-9][0-9]{8}$`)
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewDigits_NineDigitRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		got, err := NewDigits(9)
		if err != nil {
			t.Fatalf("NewDigits: %v", err)
		}
		if !reDigits9.MatchString(got) {
			t.Fatalf("not a 9-digit number without leading zero: %q", got)
		}
	}
}

func TestNewDigits_RejectsBadLength(t *testing.T) {
	for _, n := range []int{0, -1, 19} {
		if _, err := NewDigits(n); err == nil {
			t.Fatalf("expected error for n=%d", n)
		}
	}
}

func TestNewLuhn_SixteenDigitsAndValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		got, err := NewLuhn('4', 16)
		if err != nil {
			t.Fatalf("NewLuhn: %v", err)
		}
		if len(got) != 16 || got[0] != '4' {
			t.Fatalf("unexpected layout: %q", got)
		}
		if !LuhnValid(got) {
			t.Fatalf("generated number fails luhn: %q", got)
		}
	}
}

func TestLuhnValid_KnownValues(t *testing.T) {
	cases := map[string]bool{
		"4539578763621486": true,
		"4539578763621487": false,
		"79927398713":      true,
		"12a4":             false,
		"0":                false,
	}
	for in, want := range cases {
		if got := LuhnValid(in); got != want {
			t.Errorf("LuhnValid(%q) = %v, want %v", in, got, want)
		}
	}
}
