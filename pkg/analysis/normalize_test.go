package analysis

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "Pay the fine at https://example.com", "Pay the fine at https://example.com"},
		{"empty", "", ""},
		{"fullwidth letters", "ＤＭＶ final notice", "DMV final notice"},
		{"zero width space", "d​m​v", "dmv"},
		{"zero width joiner", "pay‍ment", "payment"},
		{"bom stripped", "\uFEFFlicense suspended", "license suspended"},
		{"accents kept", "café tomorrow", "café tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
