package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"-4.50", "-4.5", true},
		{" 2.50 ", "2.5", true},
		{"1e3", "1000", true},
		{"0", "0", true},
		{"1,23", "0", false},
		{"abc", "0", false},
		{"1.2.3", "0", false},
		{"NaN", "0", false},
		{"", "0", false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if got.String() != tc.out {
			t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
		}
	}
}
