package auth

import "unicode"

// Strength labels, weakest first
const (
	StrengthWeak       = "Weak"
	StrengthFair       = "Fair"
	StrengthStrong     = "Strong"
	StrengthVeryStrong = "Very Strong"
)

// MinPasswordLength is the shortest password accepted on create or change
const MinPasswordLength = 6

// Strength is a heuristic password score from 0 to 5
type Strength struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// PasswordStrength scores one point each for length >= 6, length >= 8,
// an uppercase letter, a digit and a symbol.
func PasswordStrength(password string) Strength {
	score := 0
	n := len([]rune(password))
	if n >= 6 {
		score++
	}
	if n >= 8 {
		score++
	}

	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}
	for _, ok := range []bool{upper, digit, symbol} {
		if ok {
			score++
		}
	}

	return Strength{Score: score, Label: strengthLabel(score)}
}

func strengthLabel(score int) string {
	switch {
	case score <= 2:
		return StrengthWeak
	case score == 3:
		return StrengthFair
	case score == 4:
		return StrengthStrong
	default:
		return StrengthVeryStrong
	}
}
