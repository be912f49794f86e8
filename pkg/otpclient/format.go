package otpclient

import "strings"

// codeLength matches the service-side code length.
const codeLength = 6

// CleanInput strips non-digit characters from user input and truncates
// the result to the code length: "12 34-56abc" -> "123456".
func CleanInput(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == codeLength {
				break
			}
		}
	}
	return b.String()
}

// ValidFormat reports whether s is exactly six digits once whitespace
// is removed. Unlike CleanInput it does not discard arbitrary
// characters: "12345a" is rejected, not repaired.
func ValidFormat(s string) bool {
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != codeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatForDisplay inserts a space at the midpoint for readability:
// "123456" -> "123 456". Inputs of any other length are returned unchanged.
func FormatForDisplay(code string) string {
	if len(code) != codeLength {
		return code
	}
	return code[:codeLength/2] + " " + code[codeLength/2:]
}
