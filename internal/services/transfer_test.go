package services

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
)

func newTransferFixture(t *testing.T, units ...entities.EquipmentUnit) (TransferServiceInterface, *fakeTransferRepo, *fakeHistoryRepo, *fakeUnitRepo, *fakeNotifier) {
	t.Helper()
	unitRepo := newFakeUnitRepo(units...)
	transferRepo := newFakeTransferRepo()
	historyRepo := &fakeHistoryRepo{}
	notifier := &fakeNotifier{}
	aggregator := NewAggregator(unitRepo, newFakeEquipmentRepo(), newFakeBranchRepo(), newFakeUserRepo(), newFakeCacheRepo(), zap.NewNop())
	svc := NewTransferService(fakeTxManager{}, transferRepo, historyRepo, unitRepo, aggregator, notifier, zap.NewNop())
	return svc, transferRepo, historyRepo, unitRepo, notifier
}

func TestCreateTransferMovesUnits(t *testing.T) {
	svc, transferRepo, _, unitRepo, notifier := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusInStock},
	)

	ctx := authedCtx(7, entities.RoleManager, 1)
	result, err := svc.CreateTransfer(ctx, dto.CreateTransferDTO{
		UnitIDs:    []uint64{1, 2},
		ToBranchID: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	transfer := transferRepo.transfers[result.ID]
	require.NotNil(t, transfer)
	assert.Equal(t, entities.TransferStatusPending, transfer.Status)
	assert.Equal(t, uint64(1), transfer.FromBranchID)
	assert.Equal(t, uint64(7), transfer.ApproverID)

	for _, id := range []uint64{1, 2} {
		unit, err := unitRepo.FindUnit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entities.UnitStatusMoving, unit.Status)
		assert.Equal(t, uint64(1), unit.BranchID, "unit must not relocate before completion")
	}

	require.Len(t, transferRepo.details, 2)
	assert.Equal(t, entities.UnitStatusActive, transferRepo.details[0].PreviousStatus)
	assert.Equal(t, entities.UnitStatusInStock, transferRepo.details[1].PreviousStatus)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventTransferCreated, notifier.events[0].kind)
}

func TestCreateTransferRejectsSameBranch(t *testing.T) {
	svc, _, _, _, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
	)

	_, err := svc.CreateTransfer(authedCtx(7, entities.RoleManager, 1), dto.CreateTransferDTO{
		UnitIDs:    []uint64{1},
		ToBranchID: 1,
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Transfer destination branch matches the source branch")
}

func TestCreateTransferRejectsBlockedUnit(t *testing.T) {
	svc, _, _, _, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusTemporaryUrgent},
	)

	_, err := svc.CreateTransfer(authedCtx(7, entities.RoleManager, 1), dto.CreateTransferDTO{
		UnitIDs:    []uint64{1, 2},
		ToBranchID: 2,
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot transfer equipment unit in status: TemporaryUrgent")
}

func TestCreateTransferRejectsUnitAlreadyAtDestination(t *testing.T) {
	svc, _, _, _, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusActive},
	)

	_, err := svc.CreateTransfer(authedCtx(7, entities.RoleManager, 1), dto.CreateTransferDTO{
		UnitIDs:    []uint64{1, 2},
		ToBranchID: 2,
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Equipment unit 2 is already at the destination branch")
}

func TestCompleteTransferRelocatesAndWritesHistory(t *testing.T) {
	svc, transferRepo, historyRepo, unitRepo, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusInStock},
	)

	ctx := authedCtx(7, entities.RoleManager, 1)
	created, err := svc.CreateTransfer(ctx, dto.CreateTransferDTO{UnitIDs: []uint64{1, 2}, ToBranchID: 2})
	require.NoError(t, err)

	receiverCtx := authedCtx(9, entities.RoleStaff, 2)
	require.NoError(t, svc.CompleteTransfer(receiverCtx, created.ID, dto.CompleteTransferDTO{}))

	transfer := transferRepo.transfers[created.ID]
	assert.Equal(t, entities.TransferStatusCompleted, transfer.Status)
	require.NotNil(t, transfer.ReceiverID)
	assert.Equal(t, uint64(9), *transfer.ReceiverID)

	for _, id := range []uint64{1, 2} {
		unit, err := unitRepo.FindUnit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entities.UnitStatusInStock, unit.Status)
		assert.Equal(t, uint64(2), unit.BranchID)
	}

	// exactly one audit row per unit
	require.Len(t, historyRepo.histories, 2)
	seen := map[uint64]int{}
	for _, h := range historyRepo.histories {
		seen[h.UnitID]++
		assert.Equal(t, created.ID, h.TransferID)
		assert.Equal(t, uint64(1), h.FromBranchID)
		assert.Equal(t, uint64(2), h.ToBranchID)
		assert.Equal(t, uint64(9), h.ReceiverID)
	}
	assert.Equal(t, map[uint64]int{1: 1, 2: 1}, seen)
}

func TestCompleteTransferRejectsNonPending(t *testing.T) {
	svc, _, historyRepo, _, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(7, entities.RoleManager, 1)
	created, err := svc.CreateTransfer(ctx, dto.CreateTransferDTO{UnitIDs: []uint64{1}, ToBranchID: 2})
	require.NoError(t, err)
	require.NoError(t, svc.CompleteTransfer(ctx, created.ID, dto.CompleteTransferDTO{}))

	err = svc.CompleteTransfer(ctx, created.ID, dto.CompleteTransferDTO{})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot complete transfer in status: completed")
	assert.Len(t, historyRepo.histories, 1, "no duplicate history rows")
}

func TestCancelTransferRoundTrip(t *testing.T) {
	svc, transferRepo, historyRepo, unitRepo, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(7, entities.RoleManager, 1)
	created, err := svc.CreateTransfer(ctx, dto.CreateTransferDTO{UnitIDs: []uint64{1}, ToBranchID: 2})
	require.NoError(t, err)

	// phase one: mark the intent only
	require.NoError(t, svc.CancelTransfer(ctx, created.ID))
	assert.Equal(t, entities.TransferStatusCancelRequested, transferRepo.transfers[created.ID].Status)
	unit, _ := unitRepo.FindUnit(ctx, 1)
	assert.Equal(t, entities.UnitStatusMoving, unit.Status, "units untouched until confirmation")

	// phase two: units return to stock at the source branch
	require.NoError(t, svc.ConfirmCancelTransfer(ctx, created.ID))
	assert.Equal(t, entities.TransferStatusCancelled, transferRepo.transfers[created.ID].Status)
	unit, _ = unitRepo.FindUnit(ctx, 1)
	assert.Equal(t, entities.UnitStatusInStock, unit.Status)
	assert.Equal(t, uint64(1), unit.BranchID, "cancelled units never relocate")

	assert.Empty(t, historyRepo.histories, "cancellation leaves no audit rows")
}

func TestCancelTransferRejectsCompleted(t *testing.T) {
	svc, _, _, _, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(7, entities.RoleManager, 1)
	created, err := svc.CreateTransfer(ctx, dto.CreateTransferDTO{UnitIDs: []uint64{1}, ToBranchID: 2})
	require.NoError(t, err)
	require.NoError(t, svc.CompleteTransfer(ctx, created.ID, dto.CompleteTransferDTO{}))

	err = svc.CancelTransfer(ctx, created.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot cancel transfer in status: completed")
}

func TestCreateTransferHonorsExplicitStartDate(t *testing.T) {
	svc, transferRepo, _, _, _ := newTransferFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 1, Status: entities.UnitStatusActive},
	)

	start := null.TimeFrom(mustParseTime(t, "2026-10-01T09:00:00Z"))
	created, err := svc.CreateTransfer(authedCtx(7, entities.RoleManager, 1), dto.CreateTransferDTO{
		UnitIDs:       []uint64{1},
		ToBranchID:    2,
		MoveStartDate: start,
	})
	require.NoError(t, err)
	assert.True(t, transferRepo.transfers[created.ID].MoveStartDate.Equal(start.Time))
}
