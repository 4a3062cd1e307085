package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "valid E.164 format",
			input:  "+918123456789",
			region: "IN",
			want:   "+918123456789",
		},
		{
			name:   "with spaces",
			input:  "+91 81234 56789",
			region: "IN",
			want:   "+918123456789",
		},
		{
			name:   "with dashes",
			input:  "+91-81234-56789",
			region: "IN",
			want:   "+918123456789",
		},
		{
			name:   "national number uses default region",
			input:  "081234 56789",
			region: "IN",
			want:   "+918123456789",
		},
		{
			name:   "lowercase region",
			input:  "8123456789",
			region: "in",
			want:   "+918123456789",
		},
		{
			name:   "international number ignores default region",
			input:  "+1 (201) 555-0123",
			region: "IN",
			want:   "+12015550123",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +918123456789  ",
			region: "IN",
			want:   "+918123456789",
		},
		{
			name:   "empty string",
			input:  "",
			region: "IN",
			want:   "",
		},
		{
			name:   "only whitespace",
			input:  "   ",
			region: "IN",
			want:   "",
		},
		{
			name:   "letters",
			input:  "invalid-phone",
			region: "IN",
			want:   "",
		},
		{
			name:   "too short",
			input:  "+91 12",
			region: "IN",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.region)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("+91 81234 56789", "IN")
	twice := NormalizePhone(once, "IN")
	if once != twice {
		t.Errorf("not idempotent: %q then %q", once, twice)
	}
}
