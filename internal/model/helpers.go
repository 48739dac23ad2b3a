package model

// StrPtr returns nil for an empty string so optional columns store NULL
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal dereferences p, treating nil as ""
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
