package keystore

import (
	"testing"
	"time"
)

func Test_parseExpiration(t *testing.T) {
	valid := []struct {
		spec string
		want time.Duration
	}{
		{"1s", time.Second},
		{"90s", 90 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"-1s", -time.Second},
	}
	for _, tt := range valid {
		d, err := parseExpiration(tt.spec)
		if err != nil {
			t.Fatalf("parseExpiration(%q): %v", tt.spec, err)
		}
		if d != tt.want {
			t.Fatalf("parseExpiration(%q) = %v, want %v", tt.spec, d, tt.want)
		}
	}

	invalid := []string{"", "5", "s", "d", "abc", "-3x", "1.5s", "10 m", "m10"}
	for _, spec := range invalid {
		if _, err := parseExpiration(spec); err == nil {
			t.Fatalf("parseExpiration(%q): expected error", spec)
		}
	}
}
