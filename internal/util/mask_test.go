package util

import "testing"

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"abc":                       "***",
		"  xvz1evFS4wEEPTGEFPHBog ": "x…g",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
