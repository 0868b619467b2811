package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
)

func newMaintenanceFixture(t *testing.T, units ...entities.EquipmentUnit) (MaintenanceServiceInterface, *fakeMaintenanceRepo, *fakeUnitRepo, *fakeNotifier) {
	t.Helper()
	unitRepo := newFakeUnitRepo(units...)
	maintenanceRepo := newFakeMaintenanceRepo()
	notifier := &fakeNotifier{}
	aggregator := NewAggregator(unitRepo, newFakeEquipmentRepo(), newFakeBranchRepo(), newFakeUserRepo(), newFakeCacheRepo(), zap.NewNop())
	svc := NewMaintenanceService(fakeTxManager{}, maintenanceRepo, unitRepo, aggregator, notifier, zap.NewNop())
	return svc, maintenanceRepo, unitRepo, notifier
}

func TestCreateMaintenanceClaimsUnit(t *testing.T) {
	svc, maintenanceRepo, unitRepo, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "Belt slipping"})
	require.NoError(t, err)

	m := maintenanceRepo.maintenances[id]
	require.NotNil(t, m)
	assert.Equal(t, uint64(3), m.BranchID, "branch comes from the unit, not the caller")
	assert.Equal(t, uint64(5), m.AssignerID)
	assert.False(t, m.UnderWarranty)

	unit, _ := unitRepo.FindUnit(ctx, 1)
	assert.Equal(t, entities.UnitStatusTemporaryUrgent, unit.Status)
}

func TestCreateMaintenanceRejectsBlockedUnit(t *testing.T) {
	svc, maintenanceRepo, _, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusTemporaryUrgent},
	)

	_, err := svc.CreateMaintenance(authedCtx(5, entities.RoleManager, 3), dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot create maintenance for equipment unit in status: TemporaryUrgent")
	assert.Empty(t, maintenanceRepo.maintenances)
}

func TestCreateMaintenanceSnapshotsWarranty(t *testing.T) {
	warrantyEnd := time.Now().Add(24 * time.Hour)
	svc, maintenanceRepo, _, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusInStock, WarrantyEndDate: &warrantyEnd},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "Covered repair"})
	require.NoError(t, err)
	assert.True(t, maintenanceRepo.maintenances[id].UnderWarranty)
}

func TestCreateMaintenanceExpiredWarranty(t *testing.T) {
	warrantyEnd := time.Now().Add(-24 * time.Hour)
	svc, maintenanceRepo, _, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusInStock, WarrantyEndDate: &warrantyEnd},
	)

	id, err := svc.CreateMaintenance(authedCtx(5, entities.RoleManager, 3), dto.CreateMaintenanceDTO{UnitID: 1, Reason: "Out of coverage"})
	require.NoError(t, err)
	assert.False(t, maintenanceRepo.maintenances[id].UnderWarranty)
}

func TestProgressMaintenanceAssignsTechnician(t *testing.T) {
	svc, maintenanceRepo, unitRepo, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.ProgressMaintenance(ctx, id, dto.ProgressMaintenanceDTO{TechnicianID: 11}))
	unit, _ := unitRepo.FindUnit(ctx, 1)
	assert.Equal(t, entities.UnitStatusInProgress, unit.Status)
	require.NotNil(t, maintenanceRepo.maintenances[id].TechnicianID)
	assert.Equal(t, uint64(11), *maintenanceRepo.maintenances[id].TechnicianID)

	// repeated progress overwrites the technician, no double-progress guard
	require.NoError(t, svc.ProgressMaintenance(ctx, id, dto.ProgressMaintenanceDTO{TechnicianID: 12}))
	assert.Equal(t, uint64(12), *maintenanceRepo.maintenances[id].TechnicianID)
}

func TestProgressMaintenanceRejectsForeignState(t *testing.T) {
	svc, maintenanceRepo, unitRepo, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.NoError(t, err)

	// unit got pulled out of the episode by some other path
	unitRepo.units[1].Status = entities.UnitStatusMoving
	err = svc.ProgressMaintenance(ctx, id, dto.ProgressMaintenanceDTO{TechnicianID: 11})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot progress maintenance for equipment unit in status: Moving")
	assert.Nil(t, maintenanceRepo.maintenances[id].TechnicianID)
}

func TestCompleteMaintenanceSuccessWaivesWarrantyCost(t *testing.T) {
	warrantyEnd := time.Now().Add(24 * time.Hour)
	svc, maintenanceRepo, unitRepo, notifier := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive, WarrantyEndDate: &warrantyEnd},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.NoError(t, err)
	require.NoError(t, svc.ProgressMaintenance(ctx, id, dto.ProgressMaintenanceDTO{TechnicianID: 11}))

	require.NoError(t, svc.CompleteMaintenance(ctx, id, dto.CompleteMaintenanceDTO{Status: "ready", Cost: 150}))

	unit, _ := unitRepo.FindUnit(ctx, 1)
	assert.Equal(t, entities.UnitStatusReady, unit.Status)

	require.Len(t, maintenanceRepo.invoices, 1)
	assert.Equal(t, float64(0), maintenanceRepo.invoices[0].Cost, "warranty snapshot waives the fee")

	require.NotEmpty(t, notifier.events)
	assert.Equal(t, EventMaintenanceCompleted, notifier.events[len(notifier.events)-1].kind)
}

func TestCompleteMaintenanceChargesWithoutWarranty(t *testing.T) {
	svc, maintenanceRepo, _, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.CompleteMaintenance(ctx, id, dto.CompleteMaintenanceDTO{Status: "ready", Cost: 150}))
	require.Len(t, maintenanceRepo.invoices, 1)
	assert.Equal(t, float64(150), maintenanceRepo.invoices[0].Cost)
}

func TestCompleteMaintenanceFailureSkipsInvoice(t *testing.T) {
	svc, maintenanceRepo, unitRepo, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.CompleteMaintenance(ctx, id, dto.CompleteMaintenanceDTO{Status: "failed", Cost: 150}))

	unit, _ := unitRepo.FindUnit(ctx, 1)
	assert.Equal(t, entities.UnitStatusFailed, unit.Status)
	assert.Empty(t, maintenanceRepo.invoices, "no invoice on failed completion")
	require.NotNil(t, maintenanceRepo.maintenances[id].Result)
	assert.False(t, *maintenanceRepo.maintenances[id].Result)
}

func TestCompleteMaintenanceRejectsTerminalUnit(t *testing.T) {
	svc, _, unitRepo, _ := newMaintenanceFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 3, Status: entities.UnitStatusActive},
	)

	ctx := authedCtx(5, entities.RoleManager, 3)
	id, err := svc.CreateMaintenance(ctx, dto.CreateMaintenanceDTO{UnitID: 1, Reason: "x"})
	require.NoError(t, err)
	require.NoError(t, svc.CompleteMaintenance(ctx, id, dto.CompleteMaintenanceDTO{Status: "ready"}))

	unit, _ := unitRepo.FindUnit(ctx, 1)
	require.Equal(t, entities.UnitStatusReady, unit.Status)

	err = svc.CompleteMaintenance(ctx, id, dto.CompleteMaintenanceDTO{Status: "ready"})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot complete maintenance for equipment unit in status: Ready")
}
