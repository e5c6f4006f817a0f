package relief

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/status"
)

func alloc(inv *models.Inventory, qty int64) PackageLineInput {
	return PackageLineInput{InventoryID: inv.InventoryID, ItemQty: decimalOf(qty)}
}

func TestPackageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	water := f.stockUp(t, f.main, f.water, 100)
	rice := f.stockUp(t, f.main, f.rice, 10)
	req := f.approved(t, line(f.water, 50), line(f.rice, 20))

	pkg, err := f.s.CreatePackage(ctx, &PackageInput{
		ReliefRqstID: req.ReliefRqstID,
		WarehouseID:  f.main.WarehouseID,
		Items:        []PackageLineInput{alloc(water, 50), alloc(rice, 10)},
	}, "lo1")
	require.NoError(t, err)
	assert.Equal(t, status.PackageProcessing, pkg.StatusCode)
	assert.Equal(t, f.agency.AgencyID, pkg.AgencyID)
	require.Len(t, pkg.Items, 2)
	assert.Equal(t, "EACH", pkg.Items[0].UOMCode)

	stored, err := f.s.GetRequest(ctx, req.ReliefRqstID)
	require.NoError(t, err)
	assert.Equal(t, status.RequestPartFilled, stored.StatusCode)
	for _, l := range stored.Items {
		switch l.ItemID {
		case f.water.ItemID:
			assert.Equal(t, status.ItemFilled, l.StatusCode)
			qtyEqual(t, 50, l.IssueQty)
		case f.rice.ItemID:
			assert.Equal(t, status.ItemPartlyFilled, l.StatusCode)
			qtyEqual(t, 10, l.Outstanding())
		}
	}

	inv, err := f.stock.GetInventory(ctx, water.InventoryID)
	require.NoError(t, err)
	qtyEqual(t, 100, inv.UsableQty)
	qtyEqual(t, 50, inv.ReservedQty)
	qtyEqual(t, 50, inv.Available())

	_, err = f.s.ApprovePackage(ctx, pkg.ReliefPkgID, &repo.VersionInput{VersionNbr: 1}, "lm1")
	verr := requireValidation(t, err, httpio.CodeInvalidState)
	assert.Contains(t, verr.Message, "Processing")

	done, err := f.s.CompletePackage(ctx, pkg.ReliefPkgID, &repo.VersionInput{VersionNbr: 1}, "lo1")
	require.NoError(t, err)
	assert.Equal(t, status.PackageCompleted, done.StatusCode)

	ok, err := f.s.ApprovePackage(ctx, pkg.ReliefPkgID, &repo.VersionInput{VersionNbr: 2}, "lm1")
	require.NoError(t, err)
	assert.Equal(t, status.PackageVerified, ok.StatusCode)
	require.NotNil(t, ok.VerifyByID)
	assert.Equal(t, "lm1", *ok.VerifyByID)

	sent, err := f.s.DispatchPackage(ctx, pkg.ReliefPkgID, &DispatchInput{VersionInput: repo.VersionInput{VersionNbr: 3}, TransportModeText: "JDF truck"}, "lo1")
	require.NoError(t, err)
	assert.Equal(t, status.PackageDispatched, sent.StatusCode)
	require.NotNil(t, sent.DispatchDtime)
	assert.Equal(t, "JDF truck", sent.TransportModeText)

	inv, err = f.stock.GetInventory(ctx, water.InventoryID)
	require.NoError(t, err)
	qtyEqual(t, 50, inv.UsableQty)
	qtyEqual(t, 0, inv.ReservedQty)

	_, err = f.s.DispatchPackage(ctx, pkg.ReliefPkgID, &DispatchInput{VersionInput: repo.VersionInput{VersionNbr: 4}}, "lo1")
	requireValidation(t, err, httpio.CodeInvalidState)

	dispatched, err := f.s.ListPackages(ctx, repo.ListOptions{Status: "dispatched"})
	require.NoError(t, err)
	assert.Len(t, dispatched, 1)
}

func TestCreatePackage_FillsRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	main := f.stockUp(t, f.main, f.water, 30)
	sub := f.stockUp(t, f.sub, f.water, 30)
	req := f.approved(t, line(f.water, 50))

	_, err := f.s.CreatePackage(ctx, &PackageInput{ReliefRqstID: req.ReliefRqstID, WarehouseID: f.main.WarehouseID, Items: []PackageLineInput{alloc(main, 30)}}, "lo1")
	require.NoError(t, err)
	_, err = f.s.CreatePackage(ctx, &PackageInput{ReliefRqstID: req.ReliefRqstID, WarehouseID: f.sub.WarehouseID, Items: []PackageLineInput{alloc(sub, 30)}}, "lo1")
	verr := requireValidation(t, err, httpio.CodeValidation)
	assert.Contains(t, verr.Message, "Only 20 of item")

	_, err = f.s.CreatePackage(ctx, &PackageInput{ReliefRqstID: req.ReliefRqstID, WarehouseID: f.sub.WarehouseID, Items: []PackageLineInput{alloc(sub, 20)}}, "lo1")
	require.NoError(t, err)

	stored, err := f.s.GetRequest(ctx, req.ReliefRqstID)
	require.NoError(t, err)
	assert.Equal(t, status.RequestFilled, stored.StatusCode)

	_, err = f.s.CreatePackage(ctx, &PackageInput{ReliefRqstID: req.ReliefRqstID, WarehouseID: f.sub.WarehouseID, Items: []PackageLineInput{alloc(sub, 1)}}, "lo1")
	requireValidation(t, err, httpio.CodeInvalidState)
}

func TestCreatePackage_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	water := f.stockUp(t, f.main, f.water, 100)
	rice := f.stockUp(t, f.main, f.rice, 5)
	subWater := f.stockUp(t, f.sub, f.water, 100)
	draft := f.draft(t, line(f.water, 10))
	req := f.approved(t, line(f.water, 10), line(f.rice, 10))
	other := f.approved(t, line(f.water, 10))

	_, err := f.s.CreatePackage(ctx, &PackageInput{ReliefRqstID: draft.ReliefRqstID, WarehouseID: f.main.WarehouseID, Items: []PackageLineInput{alloc(water, 1)}}, "lo1")
	requireValidation(t, err, httpio.CodeInvalidState)

	tests := []struct {
		name    string
		rqst    int64
		items   []PackageLineInput
		message string
	}{
		{"other warehouse's stock", req.ReliefRqstID, []PackageLineInput{alloc(subWater, 1)}, "not held at"},
		{"item not requested", other.ReliefRqstID, []PackageLineInput{alloc(rice, 1)}, "was not requested"},
		{"more than available", req.ReliefRqstID, []PackageLineInput{alloc(rice, 6)}, "Only 5 EACH"},
		{"repeated line", req.ReliefRqstID, []PackageLineInput{alloc(water, 1), alloc(water, 1)}, "more than once"},
		{"zero quantity", req.ReliefRqstID, []PackageLineInput{alloc(water, 0)}, "greater than zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.s.CreatePackage(ctx, &PackageInput{ReliefRqstID: tt.rqst, WarehouseID: f.main.WarehouseID, Items: tt.items}, "lo1")
			verr := requireValidation(t, err, httpio.CodeValidation)
			assert.Contains(t, verr.Message, tt.message)
		})
	}

	inv, err := f.stock.GetInventory(ctx, water.InventoryID)
	require.NoError(t, err)
	qtyEqual(t, 0, inv.ReservedQty)
	assert.Equal(t, 1, inv.VersionNbr, "rejected allocations roll back")
}
