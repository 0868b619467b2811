package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
)

func newDisposalFixture(t *testing.T, units ...entities.EquipmentUnit) (DisposalServiceInterface, *fakeDisposalRepo, *fakeUnitRepo, *fakeNotifier) {
	t.Helper()
	unitRepo := newFakeUnitRepo(units...)
	disposalRepo := newFakeDisposalRepo()
	notifier := &fakeNotifier{}
	aggregator := NewAggregator(unitRepo, newFakeEquipmentRepo(), newFakeBranchRepo(), newFakeUserRepo(), newFakeCacheRepo(), zap.NewNop())
	svc := NewDisposalService(fakeTxManager{}, disposalRepo, unitRepo, aggregator, notifier, zap.NewNop())
	return svc, disposalRepo, unitRepo, notifier
}

func TestCreateDisposalSumsDetailValues(t *testing.T) {
	svc, disposalRepo, unitRepo, notifier := newDisposalFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusActive},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusInStock},
	)

	ctx := authedCtx(5, entities.RoleAdmin, 2)
	id, err := svc.CreateDisposal(ctx, dto.CreateDisposalDTO{
		Items: []dto.DisposalItemDTO{
			{UnitID: 1, ValueRecovered: 120.50},
			{UnitID: 2, ValueRecovered: 79.50},
		},
	})
	require.NoError(t, err)

	disposal := disposalRepo.disposals[id]
	require.NotNil(t, disposal)
	assert.Equal(t, float64(200), disposal.TotalValue, "header total equals the sum of the details")
	assert.Equal(t, uint64(5), disposal.UserID)
	assert.Equal(t, uint64(2), disposal.BranchID, "branch resolved from the caller's token")

	require.Len(t, disposalRepo.details, 2)
	for _, unitID := range []uint64{1, 2} {
		unit, _ := unitRepo.FindUnit(ctx, unitID)
		assert.Equal(t, entities.UnitStatusDisposed, unit.Status)
	}

	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventDisposalCreated, notifier.events[0].kind)
	assert.Equal(t, float64(200), notifier.events[0].payload["total_value"])
}

func TestCreateDisposalRequiresBranchClaim(t *testing.T) {
	svc, disposalRepo, _, _ := newDisposalFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusActive},
	)

	_, err := svc.CreateDisposal(authedCtx(5, entities.RoleAdmin, 0), dto.CreateDisposalDTO{
		Items: []dto.DisposalItemDTO{{UnitID: 1, ValueRecovered: 10}},
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidBranchID)
	assert.Empty(t, disposalRepo.disposals)
}

func TestCreateDisposalRejectsBlockedUnit(t *testing.T) {
	svc, _, _, _ := newDisposalFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusMoving},
	)

	_, err := svc.CreateDisposal(authedCtx(5, entities.RoleAdmin, 2), dto.CreateDisposalDTO{
		Items: []dto.DisposalItemDTO{{UnitID: 1, ValueRecovered: 10}},
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot dispose equipment unit in status: Moving")
}

func TestCreateDisposalRejectsAlreadyDisposed(t *testing.T) {
	svc, _, _, _ := newDisposalFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusDisposed},
	)

	_, err := svc.CreateDisposal(authedCtx(5, entities.RoleAdmin, 2), dto.CreateDisposalDTO{
		Items: []dto.DisposalItemDTO{{UnitID: 1, ValueRecovered: 10}},
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot dispose equipment unit in status: Disposed")
}

func TestFindDisposalProjectsDetails(t *testing.T) {
	svc, _, _, _ := newDisposalFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 2, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleAdmin, 2)
	id, err := svc.CreateDisposal(ctx, dto.CreateDisposalDTO{
		Items: []dto.DisposalItemDTO{{UnitID: 1, ValueRecovered: 33}},
	})
	require.NoError(t, err)

	found, err := svc.FindDisposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, float64(33), found.TotalValue)
	require.Len(t, found.Details, 1)
	assert.Equal(t, uint64(1), found.Details[0].Unit.ID)
	assert.Equal(t, float64(33), found.Details[0].ValueRecovered)
}
