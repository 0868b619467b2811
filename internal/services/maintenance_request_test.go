package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
)

type requestFixture struct {
	svc             MaintenanceRequestServiceInterface
	requestRepo     *fakeRequestRepo
	maintenanceRepo *fakeMaintenanceRepo
	unitRepo        *fakeUnitRepo
	notifier        *fakeNotifier
	scheduler       *fakeScheduler
}

func newRequestFixture(t *testing.T, units ...entities.EquipmentUnit) *requestFixture {
	t.Helper()
	f := &requestFixture{
		requestRepo:     newFakeRequestRepo(),
		maintenanceRepo: newFakeMaintenanceRepo(),
		unitRepo:        newFakeUnitRepo(units...),
		notifier:        &fakeNotifier{},
		scheduler:       &fakeScheduler{},
	}
	aggregator := NewAggregator(f.unitRepo, newFakeEquipmentRepo(), newFakeBranchRepo(), newFakeUserRepo(), newFakeCacheRepo(), zap.NewNop())
	f.svc = NewMaintenanceRequestService(fakeTxManager{}, f.requestRepo, f.maintenanceRepo, f.unitRepo,
		aggregator, f.notifier, f.scheduler, "UTC", zap.NewNop())
	return f
}

func TestCreateRequestLeavesUnitsUntouched(t *testing.T) {
	f := newRequestFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusActive},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusInStock},
	)

	ctx := authedCtx(5, entities.RoleManager, 4)
	id, err := f.svc.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		UnitIDs:     []uint64{1, 2},
		ScheduledAt: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	request := f.requestRepo.requests[id]
	require.NotNil(t, request)
	assert.Equal(t, entities.RequestStatusPending, request.Status)
	assert.Equal(t, uint64(4), request.BranchID)

	for _, unitID := range []uint64{1, 2} {
		unit, _ := f.unitRepo.FindUnit(ctx, unitID)
		assert.NotEqual(t, entities.UnitStatusTemporaryUrgent, unit.Status, "units are claimed only when the job fires")
	}

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, EventMaintenanceRequestCreated, f.notifier.events[0].kind)
	assert.Equal(t, []string{entities.RoleTechnician}, f.notifier.events[0].roles)
}

func TestCreateRequestNotifiesNamedTechnicians(t *testing.T) {
	f := newRequestFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusActive},
	)

	_, err := f.svc.CreateRequest(authedCtx(5, entities.RoleManager, 4), dto.CreateMaintenanceRequestDTO{
		UnitIDs:       []uint64{1},
		ScheduledAt:   time.Now().Add(time.Hour),
		TechnicianIDs: []uint64{21, 22},
	})
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, []uint64{21, 22}, f.notifier.events[0].userIDs)
	assert.Empty(t, f.notifier.events[0].roles)
}

func TestConfirmRequestSchedulesJob(t *testing.T) {
	f := newRequestFixture(t)
	scheduledAt := time.Now().Add(2 * time.Hour)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5, ScheduledAt: scheduledAt, Status: entities.RequestStatusPending,
	})

	require.NoError(t, f.svc.ConfirmRequest(authedCtx(6, entities.RoleAdmin, 4), 1))

	request := f.requestRepo.requests[1]
	assert.Equal(t, entities.RequestStatusConfirmed, request.Status)
	require.NotNil(t, request.ConfirmedBy)
	assert.Equal(t, uint64(6), *request.ConfirmedBy)
	require.NotNil(t, request.JobRef)

	require.Len(t, f.scheduler.jobs, 1)
	job := f.scheduler.jobs[0]
	assert.True(t, job.fireAt.Equal(scheduledAt), "future fire times pass through unchanged")
	assert.Equal(t, "UTC", job.timezone)
	assert.Equal(t, "job-ref-"+job.name, *request.JobRef)

	trigger, ok := job.payload.(dto.MaintenanceTriggerDTO)
	require.True(t, ok)
	assert.Equal(t, uint64(1), trigger.RequestID)
}

func TestConfirmRequestNudgesPastFireTime(t *testing.T) {
	f := newRequestFixture(t)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now().Add(-time.Hour),
		Status:      entities.RequestStatusPending,
	})

	before := time.Now()
	require.NoError(t, f.svc.ConfirmRequest(authedCtx(6, entities.RoleAdmin, 4), 1))
	after := time.Now()

	require.Len(t, f.scheduler.jobs, 1)
	fireAt := f.scheduler.jobs[0].fireAt
	assert.False(t, fireAt.Before(before.Add(scheduleLeadTime)), "stale fire time must be nudged forward")
	assert.False(t, fireAt.After(after.Add(scheduleLeadTime)))
}

func TestConfirmRequestSchedulerFailureAborts(t *testing.T) {
	f := newRequestFixture(t)
	f.scheduler.failErr = errors.New("trigger backend unreachable")
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      entities.RequestStatusPending,
	})

	err := f.svc.ConfirmRequest(authedCtx(6, entities.RoleAdmin, 4), 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to register deferred maintenance job")
	assert.Nil(t, f.requestRepo.requests[1].JobRef)
	assert.Empty(t, f.notifier.events, "no confirmation fan-out on failure")
}

func TestConfirmRequestRejectsNonPending(t *testing.T) {
	f := newRequestFixture(t)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      entities.RequestStatusCancelled,
	})

	err := f.svc.ConfirmRequest(authedCtx(6, entities.RoleAdmin, 4), 1)
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot confirm maintenance request in status: cancelled")
	assert.Empty(t, f.scheduler.jobs)
}

func TestCancelRequestAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		actorID uint64
		role    string
		wantErr string
	}{
		{name: "assigner may cancel", actorID: 5, role: entities.RoleStaff},
		{name: "admin may cancel", actorID: 99, role: entities.RoleAdmin},
		{name: "manager may cancel", actorID: 99, role: entities.RoleManager},
		{name: "other staff may not", actorID: 99, role: entities.RoleStaff,
			wantErr: "Only the assigner or a privileged user can cancel a maintenance request"},
		{name: "other technician may not", actorID: 99, role: entities.RoleTechnician,
			wantErr: "Only the assigner or a privileged user can cancel a maintenance request"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newRequestFixture(t)
			f.requestRepo.addRequest(entities.MaintenanceRequest{
				ID: 1, BranchID: 4, AssignerID: 5,
				ScheduledAt: time.Now().Add(time.Hour),
				Status:      entities.RequestStatusPending,
			})

			err := f.svc.CancelRequest(authedCtx(tc.actorID, tc.role, 4), 1)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tc.wantErr)
				assert.Equal(t, entities.RequestStatusPending, f.requestRepo.requests[1].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entities.RequestStatusCancelled, f.requestRepo.requests[1].Status)
		})
	}
}

func TestCancelRequestRejectsConfirmed(t *testing.T) {
	f := newRequestFixture(t)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      entities.RequestStatusConfirmed,
	})

	err := f.svc.CancelRequest(authedCtx(5, entities.RoleStaff, 4), 1)
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot cancel maintenance request in status: confirmed")
}

func TestTriggerConvertsUnitsToMaintenances(t *testing.T) {
	warrantyEnd := time.Now().Add(72 * time.Hour)
	note := "quarterly service"
	f := newRequestFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusActive, WarrantyEndDate: &warrantyEnd},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusInStock},
	)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5, Note: &note,
		ScheduledAt: time.Now(), Status: entities.RequestStatusConfirmed,
	})
	f.requestRepo.addDetail(entities.MaintenanceRequestDetail{RequestID: 1, UnitID: 1})
	f.requestRepo.addDetail(entities.MaintenanceRequestDetail{RequestID: 1, UnitID: 2})

	require.NoError(t, f.svc.TriggerScheduledMaintenance(authedCtx(5, entities.RoleManager, 4), dto.MaintenanceTriggerDTO{RequestID: 1}))

	require.Len(t, f.maintenanceRepo.maintenances, 2)
	for _, m := range f.maintenanceRepo.maintenances {
		assert.Equal(t, scheduledMaintenanceReason, m.Reason)
		assert.Equal(t, uint64(5), m.AssignerID, "assigner carries over from the request")
		require.NotNil(t, m.Detail)
		assert.Equal(t, note, *m.Detail)
	}

	ctx := authedCtx(5, entities.RoleManager, 4)
	for _, unitID := range []uint64{1, 2} {
		unit, _ := f.unitRepo.FindUnit(ctx, unitID)
		assert.Equal(t, entities.UnitStatusTemporaryUrgent, unit.Status)
	}

	details, _ := f.requestRepo.FindDetailsByRequestID(ctx, 1)
	for _, d := range details {
		assert.NotNil(t, d.MaintenanceID, "each detail records its episode")
	}
}

func TestTriggerIsIdempotent(t *testing.T) {
	f := newRequestFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusActive},
	)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now(), Status: entities.RequestStatusConfirmed,
	})
	f.requestRepo.addDetail(entities.MaintenanceRequestDetail{RequestID: 1, UnitID: 1})

	ctx := authedCtx(5, entities.RoleManager, 4)
	require.NoError(t, f.svc.TriggerScheduledMaintenance(ctx, dto.MaintenanceTriggerDTO{RequestID: 1}))
	require.Len(t, f.maintenanceRepo.maintenances, 1)

	// redelivered job: already-converted details are skipped
	require.NoError(t, f.svc.TriggerScheduledMaintenance(ctx, dto.MaintenanceTriggerDTO{RequestID: 1}))
	assert.Len(t, f.maintenanceRepo.maintenances, 1, "no duplicate episodes on redelivery")
}

func TestTriggerSkipsBusyUnits(t *testing.T) {
	f := newRequestFixture(t,
		entities.EquipmentUnit{ID: 1, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusMoving},
		entities.EquipmentUnit{ID: 2, EquipmentID: 10, BranchID: 4, Status: entities.UnitStatusActive},
	)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now(), Status: entities.RequestStatusConfirmed,
	})
	f.requestRepo.addDetail(entities.MaintenanceRequestDetail{RequestID: 1, UnitID: 1})
	f.requestRepo.addDetail(entities.MaintenanceRequestDetail{RequestID: 1, UnitID: 2})

	// busy unit is skipped, the rest of the batch still converts
	require.NoError(t, f.svc.TriggerScheduledMaintenance(authedCtx(5, entities.RoleManager, 4), dto.MaintenanceTriggerDTO{RequestID: 1}))
	require.Len(t, f.maintenanceRepo.maintenances, 1)
	for _, m := range f.maintenanceRepo.maintenances {
		assert.Equal(t, uint64(2), m.UnitID)
	}
}

func TestTriggerRejectsUnconfirmedRequest(t *testing.T) {
	f := newRequestFixture(t)
	f.requestRepo.addRequest(entities.MaintenanceRequest{
		ID: 1, BranchID: 4, AssignerID: 5,
		ScheduledAt: time.Now(), Status: entities.RequestStatusPending,
	})

	err := f.svc.TriggerScheduledMaintenance(authedCtx(5, entities.RoleManager, 4), dto.MaintenanceTriggerDTO{RequestID: 1})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot start scheduled maintenance for request in status: pending")
}
