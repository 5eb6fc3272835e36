package widget

import "strings"

// Mask names accepted in widget params. Masks are cosmetic: the masked
// display string is the value carried upward, never an unmasked form.
const (
	MaskPhone    = "phone"
	MaskIDNumber = "id-number"
	MaskNumeric  = "numeric"
)

var maskPatterns = map[string]string{
	MaskPhone:    "(###) ###-####",
	MaskIDNumber: "###-#######-#",
}

// ApplyMask formats the input under the named mask. Unknown masks return the
// input unchanged; the numeric mask keeps digits only.
func ApplyMask(mask, in string) string {
	digits := digitsOf(in)
	switch mask {
	case MaskNumeric:
		return digits
	default:
		pattern, ok := maskPatterns[mask]
		if !ok {
			return in
		}
		return applyPattern(pattern, digits)
	}
}

func applyPattern(pattern, digits string) string {
	var b strings.Builder
	i := 0
	for _, r := range pattern {
		if i >= len(digits) {
			break
		}
		if r == '#' {
			b.WriteByte(digits[i])
			i++
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
