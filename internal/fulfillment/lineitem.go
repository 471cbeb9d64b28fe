package fulfillment

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
)

// LedgerOf projects the persisted counters of a line item into a Ledger.
func LedgerOf(item *models.OrderLineItem) Ledger {
	return Ledger{
		Quantity:   item.Quantity,
		Verified:   item.VerifiedQty,
		OutOfStock: item.OutOfStockQty,
		Damaged:    item.DamagedQty,
	}
}

func writeLedger(item *models.OrderLineItem, l Ledger) {
	item.VerifiedQty = l.Verified
	item.OutOfStockQty = l.OutOfStock
	item.DamagedQty = l.Damaged
}

// Resolved reports whether every ordered unit of the item has a disposition.
func Resolved(item *models.OrderLineItem) bool {
	return LedgerOf(item).Resolved()
}

// Remaining is the number of units of the item still unaccounted for.
func Remaining(item *models.OrderLineItem) int {
	return LedgerOf(item).Remaining()
}

// HasSubstitution reports whether a substitution record is attached.
func HasSubstitution(item *models.OrderLineItem) bool {
	return item.SubProductID != nil
}

// NeedsApproval reports whether the item requires an admin decision before
// the order can finish packing. Flagged units and substitutions both force a
// review.
func NeedsApproval(item *models.OrderLineItem) bool {
	return item.OutOfStockQty+item.DamagedQty > 0 || HasSubstitution(item)
}

// PackTarget is the number of units the packer is expected to place: the
// ordered quantity minus the units flagged short, plus any substitute units.
func PackTarget(item *models.OrderLineItem) int {
	return item.Quantity - item.OutOfStockQty - item.DamagedQty + item.SubQty
}

// Packed reports whether the item's pack counter has reached its target.
func Packed(item *models.OrderLineItem) bool {
	return item.PackedQty == PackTarget(item)
}

// PickPlus verifies count units of the item. The ledger rejects any pick that
// would push the accounted total past the ordered quantity.
func PickPlus(item *models.OrderLineItem, count int) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pick count must be positive")
	}
	next, err := LedgerOf(item).Apply(DispositionVerified, count)
	if err != nil {
		return err
	}
	writeLedger(item, next)
	return nil
}

// PickMinus reverts a single verified unit.
func PickMinus(item *models.OrderLineItem) error {
	next, err := LedgerOf(item).Apply(DispositionVerified, -1)
	if err != nil {
		return err
	}
	writeLedger(item, next)
	return nil
}

// Flag records count units as unavailable for the given reason.
func Flag(item *models.OrderLineItem, reason enums.FlagReason, count int) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "flag count must be positive")
	}
	disposition, err := DispositionForReason(reason)
	if err != nil {
		return err
	}
	next, err := LedgerOf(item).Apply(disposition, count)
	if err != nil {
		return err
	}
	writeLedger(item, next)
	return nil
}

// Substitute flags up to count remaining units for the given reason and
// attaches a substitution record pointing at the replacement variant. When
// the shortage was already flagged the ledger is left untouched and only the
// record is written; a later call replaces the record wholesale. The recorded
// substitute quantity never exceeds the flagged shortage, so the pack target
// stays within the ordered quantity.
func Substitute(item *models.OrderLineItem, reason enums.FlagReason, count int, productID, variantID uuid.UUID) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "substitute count must be positive")
	}
	disposition, err := DispositionForReason(reason)
	if err != nil {
		return err
	}
	ledger := LedgerOf(item)
	consumed := count
	if remaining := ledger.Remaining(); consumed > remaining {
		consumed = remaining
	}
	if consumed > 0 {
		next, err := ledger.Apply(disposition, consumed)
		if err != nil {
			return err
		}
		writeLedger(item, next)
	}
	item.SubProductID = &productID
	item.SubVariantID = &variantID
	if flagged := item.OutOfStockQty + item.DamagedQty; count > flagged {
		item.SubQty = flagged
	} else {
		item.SubQty = count
	}
	// Replacing the substitution voids any earlier admin decision.
	item.Approved = false
	return nil
}

// Undo resets the item to its imported state: every bucket emptied, the
// substitution record cleared, any approval revoked. The ordered quantity and
// the pack counter are untouched.
func Undo(item *models.OrderLineItem) {
	writeLedger(item, LedgerOf(item).Reset())
	item.SubProductID = nil
	item.SubVariantID = nil
	item.SubQty = 0
	item.Approved = false
}

// PackPlus records count packed units, bounded by the item's pack target.
func PackPlus(item *models.OrderLineItem, count int) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pack count must be positive")
	}
	target := PackTarget(item)
	if item.PackedQty+count > target {
		return pkgerrors.New(pkgerrors.CodeQuantityExceeded,
			fmt.Sprintf("cannot pack %d more unit(s): %d of %d already packed", count, item.PackedQty, target))
	}
	item.PackedQty += count
	return nil
}

// PackMinus reverts a single packed unit.
func PackMinus(item *models.OrderLineItem) error {
	if item.PackedQty == 0 {
		return pkgerrors.New(pkgerrors.CodeUnderflow, "no packed units to remove")
	}
	item.PackedQty--
	return nil
}
