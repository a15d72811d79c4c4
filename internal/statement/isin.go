package statement

import "regexp"

// isinPattern matches a 12-character ISIN: 2-letter country code,
// 9 alphanumerics, 1 check digit.
var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidISIN reports whether s matches the ISIN format. It does not verify
// the check digit; see ChecksumOK.
func ValidISIN(s string) bool {
	return isinPattern.MatchString(s)
}

// ChecksumOK verifies the ISIN check digit using the Luhn algorithm over the
// digit expansion of the identifier (letters become two digits: A=10 .. Z=35).
// Callers should check ValidISIN first; malformed input returns false.
func ChecksumOK(s string) bool {
	if !ValidISIN(s) {
		return false
	}

	digits := make([]int, 0, len(s)*2)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return false
		}
	}

	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		// the rightmost digit is the check digit itself; doubling starts
		// at the digit to its left
		if i == len(digits)-1 {
			sum += d
			continue
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}
