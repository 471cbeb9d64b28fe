package enums

import "fmt"

// FlagReason names the shortage disposition a picker records for units that
// cannot be verified.
type FlagReason string

const (
	FlagReasonOutOfStock FlagReason = "out_of_stock"
	FlagReasonDamaged    FlagReason = "damaged"
)

var validFlagReasons = []FlagReason{
	FlagReasonOutOfStock,
	FlagReasonDamaged,
}

// String implements fmt.Stringer.
func (f FlagReason) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FlagReason.
func (f FlagReason) IsValid() bool {
	for _, candidate := range validFlagReasons {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFlagReason converts raw input into a FlagReason.
func ParseFlagReason(value string) (FlagReason, error) {
	for _, candidate := range validFlagReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid flag reason %q", value)
}
