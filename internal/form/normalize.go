package form

import "strings"

// Normalize strips characters a field never accepts. Names keep ASCII
// letters (and spaces when allowSpace); phone numbers keep digits; email is
// returned unchanged.
func Normalize(field Field, value string, allowSpace bool) string {
	switch field {
	case FieldName:
		return strings.Map(func(r rune) rune {
			if isASCIILetter(r) || (allowSpace && r == ' ') {
				return r
			}
			return -1
		}, value)
	case FieldPhone:
		return strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, value)
	default:
		return value
	}
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
