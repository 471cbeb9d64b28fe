package fulfillment

import (
	"fmt"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
)

// Disposition is one of the mutually exclusive buckets a picked unit can
// land in. Every unit of a line item is either still unresolved or sits in
// exactly one bucket.
type Disposition string

const (
	DispositionVerified   Disposition = "verified"
	DispositionOutOfStock Disposition = "out_of_stock"
	DispositionDamaged    Disposition = "damaged"
)

// DispositionForReason maps a flag reason to the bucket it consumes.
func DispositionForReason(reason enums.FlagReason) (Disposition, error) {
	switch reason {
	case enums.FlagReasonOutOfStock:
		return DispositionOutOfStock, nil
	case enums.FlagReasonDamaged:
		return DispositionDamaged, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown flag reason %q", reason))
	}
}

// Ledger tracks how the ordered quantity of a single line item has been
// accounted for. It is a value type; Apply returns a new ledger and never
// mutates the receiver.
type Ledger struct {
	Quantity   int
	Verified   int
	OutOfStock int
	Damaged    int
}

// Sum is the number of units already placed in a bucket.
func (l Ledger) Sum() int {
	return l.Verified + l.OutOfStock + l.Damaged
}

// Remaining is the number of units still unaccounted for.
func (l Ledger) Remaining() int {
	return l.Quantity - l.Sum()
}

// Resolved reports whether every ordered unit has a disposition.
func (l Ledger) Resolved() bool {
	return l.Sum() == l.Quantity
}

func (l Ledger) bucket(d Disposition) int {
	switch d {
	case DispositionVerified:
		return l.Verified
	case DispositionOutOfStock:
		return l.OutOfStock
	case DispositionDamaged:
		return l.Damaged
	}
	return 0
}

// CanApply reports whether moving delta units into the given bucket keeps
// the ledger consistent. It returns nil when the move is legal.
func (l Ledger) CanApply(d Disposition, delta int) error {
	if delta == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "ledger delta must be non-zero")
	}
	if delta > 0 && l.Sum()+delta > l.Quantity {
		return pkgerrors.New(pkgerrors.CodeQuantityExceeded,
			fmt.Sprintf("cannot account for %d more unit(s): %d of %d already resolved", delta, l.Sum(), l.Quantity))
	}
	if delta < 0 && l.bucket(d)+delta < 0 {
		return pkgerrors.New(pkgerrors.CodeUnderflow,
			fmt.Sprintf("cannot remove %d unit(s) from %s: only %d recorded", -delta, d, l.bucket(d)))
	}
	return nil
}

// Apply moves delta units into (or, when negative, out of) the given bucket.
func (l Ledger) Apply(d Disposition, delta int) (Ledger, error) {
	if err := l.CanApply(d, delta); err != nil {
		return l, err
	}
	out := l
	switch d {
	case DispositionVerified:
		out.Verified += delta
	case DispositionOutOfStock:
		out.OutOfStock += delta
	case DispositionDamaged:
		out.Damaged += delta
	default:
		return l, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown disposition %q", d))
	}
	return out, nil
}

// Reset returns the ledger with every bucket emptied.
func (l Ledger) Reset() Ledger {
	return Ledger{Quantity: l.Quantity}
}

// Validate checks the structural invariant. A ledger loaded from storage
// should always pass; a failure means the row was corrupted outside the
// application.
func (l Ledger) Validate() error {
	if l.Quantity < 0 || l.Verified < 0 || l.OutOfStock < 0 || l.Damaged < 0 {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation, "ledger counters must be non-negative")
	}
	if l.Sum() > l.Quantity {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation,
			fmt.Sprintf("ledger accounts for %d unit(s) but only %d were ordered", l.Sum(), l.Quantity))
	}
	return nil
}
