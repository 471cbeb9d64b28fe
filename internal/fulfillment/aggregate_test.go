package fulfillment

import (
	"testing"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

func TestCanCompletePickingGate(t *testing.T) {
	orderID := uuid.New()
	items := []models.OrderLineItem{
		{ID: uuid.New(), OrderID: orderID, Quantity: 2, VerifiedQty: 2},
		{ID: uuid.New(), OrderID: orderID, Quantity: 1, VerifiedQty: 1},
	}
	totes := []models.Tote{{ID: uuid.New(), Name: "T-01", OrderID: &orderID}}

	if !CanCompletePicking(items, totes) {
		t.Fatalf("expected gate open with resolved items and a tote")
	}

	// Unresolving one item flips the gate.
	items[0].VerifiedQty = 1
	if CanCompletePicking(items, totes) {
		t.Fatalf("expected gate closed with an unresolved item")
	}
	items[0].VerifiedQty = 2

	// Removing the tote flips it too.
	if CanCompletePicking(items, nil) {
		t.Fatalf("expected gate closed without totes")
	}

	if CanCompletePicking(nil, totes) {
		t.Fatalf("an order without items cannot complete picking")
	}
}

func TestApprovalGateIgnoresPlainItems(t *testing.T) {
	subProduct := uuid.New()
	items := []models.OrderLineItem{
		{ID: uuid.New(), Quantity: 2, VerifiedQty: 2},
		{ID: uuid.New(), Quantity: 1, OutOfStockQty: 1, SubProductID: &subProduct, SubQty: 1},
	}

	if ApprovalComplete(items) {
		t.Fatalf("expected gate closed with an undecided flagged item")
	}

	items[1].Approved = true
	if !ApprovalComplete(items) {
		t.Fatalf("expected gate open once the flagged item is approved")
	}
}

func TestApprovalCompleteTrivially(t *testing.T) {
	items := []models.OrderLineItem{
		{ID: uuid.New(), Quantity: 1, VerifiedQty: 1},
	}
	if !ApprovalComplete(items) {
		t.Fatalf("order with no flagged items passes trivially")
	}
}

func TestCanCompletePackingGate(t *testing.T) {
	items := []models.OrderLineItem{
		{ID: uuid.New(), Quantity: 2, VerifiedQty: 2, PackedQty: 2},
		{ID: uuid.New(), Quantity: 1, DamagedQty: 1, Approved: true, PackedQty: 0},
	}

	if !CanCompletePacking(items) {
		t.Fatalf("expected gate open: plain item packed, flagged item approved with target 0")
	}

	items[0].PackedQty = 1
	if CanCompletePacking(items) {
		t.Fatalf("expected gate closed with an unpacked item")
	}
	items[0].PackedQty = 2

	items[1].Approved = false
	if CanCompletePacking(items) {
		t.Fatalf("expected gate closed with an undecided flagged item")
	}
}

func TestBuildProgress(t *testing.T) {
	orderID := uuid.New()
	subProduct := uuid.New()
	order := &models.Order{
		ID:     orderID,
		Status: enums.OrderStatusPicking,
		Items: []models.OrderLineItem{
			{ID: uuid.New(), OrderID: orderID, Quantity: 3, VerifiedQty: 2, DamagedQty: 1, PackedQty: 1},
			{ID: uuid.New(), OrderID: orderID, Quantity: 2, OutOfStockQty: 2, SubProductID: &subProduct, SubQty: 2},
		},
		Totes: []models.Tote{{ID: uuid.New(), Name: "T-07", OrderID: &orderID}},
	}

	progress := BuildProgress(order)

	if progress.TotalItems != 2 || progress.ResolvedItems != 2 {
		t.Fatalf("unexpected item counts %+v", progress)
	}
	if progress.TotalUnits != 5 || progress.VerifiedUnits != 2 || progress.FlaggedUnits != 3 {
		t.Fatalf("unexpected unit counts %+v", progress)
	}
	if progress.SubstitutedItems != 1 || progress.PendingApprovals != 2 {
		t.Fatalf("unexpected approval counts %+v", progress)
	}
	// Targets: 3-1+0=2 for the first item, 2-2+2=2 for the second.
	if progress.PackTargetUnits != 4 || progress.PackedUnits != 1 {
		t.Fatalf("unexpected pack counts %+v", progress)
	}
	if !progress.CanCompletePicking {
		t.Fatalf("expected picking gate open %+v", progress)
	}
	if progress.ApprovalComplete || progress.CanCompletePacking {
		t.Fatalf("expected packing gates closed %+v", progress)
	}
}
