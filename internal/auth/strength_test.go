package auth

import "testing"

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password  string
		wantScore int
		wantLabel string
	}{
		{"", 0, StrengthWeak},
		{"abc", 0, StrengthWeak},
		{"abcdef", 1, StrengthWeak},
		{"abcdefgh", 2, StrengthWeak},
		{"Abcdefgh", 3, StrengthFair},
		{"Abcdefg1", 4, StrengthStrong},
		{"Abcdef12!", 5, StrengthVeryStrong},
		{"ab1!", 2, StrengthWeak},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := PasswordStrength(tt.password)
			if got.Score != tt.wantScore {
				t.Errorf("PasswordStrength(%q).Score = %d, want %d", tt.password, got.Score, tt.wantScore)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("PasswordStrength(%q).Label = %q, want %q", tt.password, got.Label, tt.wantLabel)
			}
		})
	}
}
