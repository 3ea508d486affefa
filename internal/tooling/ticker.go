package tooling

import (
	"fmt"
	"regexp"
)

var sixDigit = regexp.MustCompile(`^\d{6}$`)

// ValidateTicker reports INVALID_PARAM when the ticker is not a bare
// six-digit A-share code.
func ValidateTicker(ticker string) error {
	if !sixDigit.MatchString(ticker) {
		return fmt.Errorf("invalid param: ticker %q is not a six-digit A-share code", ticker)
	}
	return nil
}

// NormalizeTicker appends the market suffix:
// .SH for codes starting with 6 or 9, .SZ for 0/2/3, .BJ for 4/8.
func NormalizeTicker(ticker string) (string, error) {
	if err := ValidateTicker(ticker); err != nil {
		return "", err
	}
	switch ticker[0] {
	case '6', '9':
		return ticker + ".SH", nil
	case '0', '2', '3':
		return ticker + ".SZ", nil
	case '4', '8':
		return ticker + ".BJ", nil
	default:
		return "", fmt.Errorf("invalid param: ticker %q has no known market suffix", ticker)
	}
}
