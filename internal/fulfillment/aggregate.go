package fulfillment

import (
	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

// Progress is the derived view of an order the floor screens poll. It is
// computed from the loaded rows on every read; nothing here is persisted.
type Progress struct {
	Status             enums.OrderStatus `json:"status"`
	TotalItems         int               `json:"total_items"`
	ResolvedItems      int               `json:"resolved_items"`
	TotalUnits         int               `json:"total_units"`
	VerifiedUnits      int               `json:"verified_units"`
	FlaggedUnits       int               `json:"flagged_units"`
	SubstitutedItems   int               `json:"substituted_items"`
	PackedUnits        int               `json:"packed_units"`
	PackTargetUnits    int               `json:"pack_target_units"`
	ToteCount          int               `json:"tote_count"`
	PendingApprovals   int               `json:"pending_approvals"`
	ApprovalComplete   bool              `json:"approval_complete"`
	CanCompletePicking bool              `json:"can_complete_picking"`
	CanCompletePacking bool              `json:"can_complete_packing"`
}

// AllResolved reports whether every line item of the order is fully
// dispositioned.
func AllResolved(items []models.OrderLineItem) bool {
	for i := range items {
		if !Resolved(&items[i]) {
			return false
		}
	}
	return true
}

// ApprovalComplete reports whether every item that needs an admin decision
// has received one. An order with no flagged or substituted items passes
// trivially.
func ApprovalComplete(items []models.OrderLineItem) bool {
	for i := range items {
		if NeedsApproval(&items[i]) && !items[i].Approved {
			return false
		}
	}
	return true
}

// CanCompletePicking is the gate for the picking -> picked transition: every
// item resolved and at least one tote bound.
func CanCompletePicking(items []models.OrderLineItem, totes []models.Tote) bool {
	return len(items) > 0 && AllResolved(items) && len(totes) > 0
}

// CanCompletePacking is the gate for the packing -> packed transition: every
// item packed to its target and every pending approval decided.
func CanCompletePacking(items []models.OrderLineItem) bool {
	if !ApprovalComplete(items) {
		return false
	}
	for i := range items {
		if !Packed(&items[i]) {
			return false
		}
	}
	return true
}

// BuildProgress computes the derived order view from its loaded associations.
func BuildProgress(order *models.Order) Progress {
	p := Progress{
		Status:     order.Status,
		TotalItems: len(order.Items),
		ToteCount:  len(order.Totes),
	}
	for i := range order.Items {
		item := &order.Items[i]
		p.TotalUnits += item.Quantity
		p.VerifiedUnits += item.VerifiedQty
		p.FlaggedUnits += item.OutOfStockQty + item.DamagedQty
		p.PackedUnits += item.PackedQty
		p.PackTargetUnits += PackTarget(item)
		if Resolved(item) {
			p.ResolvedItems++
		}
		if HasSubstitution(item) {
			p.SubstitutedItems++
		}
		if NeedsApproval(item) && !item.Approved {
			p.PendingApprovals++
		}
	}
	p.ApprovalComplete = p.PendingApprovals == 0
	p.CanCompletePicking = CanCompletePicking(order.Items, order.Totes)
	p.CanCompletePacking = CanCompletePacking(order.Items)
	return p
}
