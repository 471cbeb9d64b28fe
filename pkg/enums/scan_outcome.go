package enums

// ScanOutcome classifies what the resolver did with a decoded barcode.
type ScanOutcome string

const (
	ScanOutcomePicked        ScanOutcome = "picked"
	ScanOutcomeNotFound      ScanOutcome = "not_found"
	ScanOutcomeAlreadyPicked ScanOutcome = "already_picked"
	ScanOutcomeDuplicate     ScanOutcome = "duplicate"
	ScanOutcomeRejected      ScanOutcome = "rejected"
)

// String implements fmt.Stringer.
func (s ScanOutcome) String() string {
	return string(s)
}
