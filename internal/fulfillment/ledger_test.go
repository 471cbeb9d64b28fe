package fulfillment

import (
	"testing"

	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
)

func TestLedgerApplyWithinBounds(t *testing.T) {
	ledger := Ledger{Quantity: 3}

	next, err := ledger.Apply(DispositionVerified, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Verified != 2 || next.Sum() != 2 || next.Remaining() != 1 {
		t.Fatalf("unexpected ledger state %+v", next)
	}
	if next.Resolved() {
		t.Fatalf("ledger should not be resolved at 2 of 3")
	}

	next, err = next.Apply(DispositionDamaged, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Resolved() || next.Damaged != 1 {
		t.Fatalf("expected resolved ledger, got %+v", next)
	}

	// The original ledger is untouched; Apply is value-semantic.
	if ledger.Sum() != 0 {
		t.Fatalf("source ledger mutated: %+v", ledger)
	}
}

func TestLedgerApplyOverflow(t *testing.T) {
	ledger := Ledger{Quantity: 3, Verified: 2, Damaged: 1}

	_, err := ledger.Apply(DispositionVerified, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeQuantityExceeded) {
		t.Fatalf("expected quantity exceeded, got %v", err)
	}
	if ledger.Sum() != 3 {
		t.Fatalf("rejected apply must not mutate the ledger: %+v", ledger)
	}
}

func TestLedgerApplyUnderflow(t *testing.T) {
	ledger := Ledger{Quantity: 2}

	_, err := ledger.Apply(DispositionVerified, -1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}

	ledger.OutOfStock = 1
	_, err = ledger.Apply(DispositionDamaged, -1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnderflow) {
		t.Fatalf("underflow is per bucket, got %v", err)
	}
}

func TestLedgerApplyZeroDelta(t *testing.T) {
	ledger := Ledger{Quantity: 1}
	if _, err := ledger.Apply(DispositionVerified, 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLedgerInversePair(t *testing.T) {
	ledger := Ledger{Quantity: 5, Verified: 1, OutOfStock: 2}

	plus, err := ledger.Apply(DispositionVerified, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	minus, err := plus.Apply(DispositionVerified, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minus != ledger {
		t.Fatalf("pickPlus then pickMinus must restore the ledger: %+v vs %+v", minus, ledger)
	}
}

func TestLedgerReset(t *testing.T) {
	ledger := Ledger{Quantity: 4, Verified: 1, OutOfStock: 2, Damaged: 1}
	reset := ledger.Reset()
	if reset.Sum() != 0 || reset.Quantity != 4 {
		t.Fatalf("unexpected reset result %+v", reset)
	}
}

func TestLedgerValidate(t *testing.T) {
	valid := Ledger{Quantity: 3, Verified: 1, OutOfStock: 1, Damaged: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	corrupt := Ledger{Quantity: 2, Verified: 2, Damaged: 1}
	if err := corrupt.Validate(); !pkgerrors.HasCode(err, pkgerrors.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}

	negative := Ledger{Quantity: 2, Verified: -1}
	if err := negative.Validate(); !pkgerrors.HasCode(err, pkgerrors.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation for negative bucket, got %v", err)
	}
}
