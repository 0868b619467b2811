package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/scheduler"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

// minimum lead time the deferred-job backend accepts; stale fire times are
// nudged forward instead of rejected.
const scheduleLeadTime = time.Minute

const scheduledMaintenanceReason = "Scheduled maintenance"

type MaintenanceRequestServiceInterface interface {
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.MaintenanceRequestResponseDTO, uint64, error)
	FindRequest(ctx context.Context, id uint64) (*dto.MaintenanceRequestResponseDTO, error)
	CreateRequest(ctx context.Context, data dto.CreateMaintenanceRequestDTO) (uint64, error)
	ConfirmRequest(ctx context.Context, id uint64) error
	CancelRequest(ctx context.Context, id uint64) error
	// TriggerScheduledMaintenance is the deferred-job callback: it converts
	// each unit of a confirmed request into a real maintenance episode.
	TriggerScheduledMaintenance(ctx context.Context, data dto.MaintenanceTriggerDTO) error
}

type MaintenanceRequestService struct {
	txManager       repositories.TxManagerInterface
	requestRepo     repositories.MaintenanceRequestRepositoryInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	unitRepo        repositories.UnitRepositoryInterface
	aggregator      AggregatorInterface
	notifier        NotificationServiceInterface
	scheduler       scheduler.ServiceInterface
	timezone        string
	logger          *zap.Logger
}

func NewMaintenanceRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.MaintenanceRequestRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	unitRepo repositories.UnitRepositoryInterface,
	aggregator AggregatorInterface,
	notifier NotificationServiceInterface,
	schedulerClient scheduler.ServiceInterface,
	timezone string,
	logger *zap.Logger,
) MaintenanceRequestServiceInterface {
	return &MaintenanceRequestService{
		txManager:       txManager,
		requestRepo:     requestRepo,
		maintenanceRepo: maintenanceRepo,
		unitRepo:        unitRepo,
		aggregator:      aggregator,
		notifier:        notifier,
		scheduler:       schedulerClient,
		timezone:        timezone,
		logger:          logger,
	}
}

// CreateRequest batches units under one pending record. Unlike a maintenance
// episode, no unit status changes here; the units are claimed only when the
// deferred job fires.
func (s *MaintenanceRequestService) CreateRequest(ctx context.Context, data dto.CreateMaintenanceRequestDTO) (uint64, error) {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return 0, err
	}

	firstUnit, err := s.unitRepo.FindUnit(ctx, data.UnitIDs[0])
	if err != nil {
		return 0, err
	}

	var requestID uint64
	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		requestID, err = s.requestRepo.CreateRequestInTx(ctx, tx, entities.MaintenanceRequest{
			BranchID:      firstUnit.BranchID,
			AssignerID:    actorID,
			ScheduledAt:   data.ScheduledAt,
			TechnicianIDs: data.TechnicianIDs,
			Status:        entities.RequestStatusPending,
			Note:          data.Note,
		})
		if err != nil {
			return err
		}

		for _, unitID := range data.UnitIDs {
			if _, err := s.requestRepo.CreateDetailInTx(ctx, tx, entities.MaintenanceRequestDetail{
				RequestID: requestID,
				UnitID:    unitID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	payload := map[string]interface{}{
		"request_id":   requestID,
		"scheduled_at": data.ScheduledAt,
		"unit_ids":     data.UnitIDs,
	}
	if len(data.TechnicianIDs) > 0 {
		s.notifier.NotifyUsers(ctx, EventMaintenanceRequestCreated, payload, data.TechnicianIDs)
	} else {
		s.notifier.Notify(ctx, EventMaintenanceRequestCreated, payload, []string{entities.RoleTechnician})
	}

	return requestID, nil
}

// ConfirmRequest flips a pending request to confirmed and registers the
// one-time deferred job. The two happen in one transaction: a scheduler
// failure aborts the confirm, so a "confirmed but unscheduled" state is never
// persisted. Fire times in the past or within the lead window are nudged to
// now plus one minute; the trigger backend rejects immediate times.
func (s *MaintenanceRequestService) ConfirmRequest(ctx context.Context, id uint64) error {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return err
	}
	if request.Status != entities.RequestStatusPending {
		return apperrors.NewStateConflictError("Cannot confirm maintenance request in status: %s", request.Status)
	}

	now := time.Now()
	fireAt := request.ScheduledAt
	if !fireAt.After(now.Add(scheduleLeadTime)) {
		fireAt = now.Add(scheduleLeadTime)
	}

	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		ok, err := s.requestRepo.TryConfirm(ctx, tx, id, actorID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewStateConflictError("Cannot confirm maintenance request in status: %s", request.Status)
		}

		jobName := "maintenance-request-" + uuid.NewString()
		jobRef, err := s.scheduler.Schedule(ctx, jobName, fireAt, s.timezone, dto.MaintenanceTriggerDTO{
			RequestID: id,
			JobRef:    jobName,
		})
		if err != nil {
			return fmt.Errorf("failed to register deferred maintenance job: %w", err)
		}

		return s.requestRepo.SetJobRef(ctx, tx, id, jobRef)
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, EventMaintenanceRequestConfirm, map[string]interface{}{
		"request_id": id,
		"fire_at":    fireAt,
	}, []string{entities.RoleAdmin, entities.RoleManager})

	return nil
}

// CancelRequest is legal only from pending, and only for the original
// assigner or a privileged actor. A confirmed request cannot be cancelled
// through this path.
func (s *MaintenanceRequestService) CancelRequest(ctx context.Context, id uint64) error {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	role := utils.RoleFromContext(ctx)

	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return err
	}

	privileged := role == entities.RoleAdmin || role == entities.RoleManager
	if request.AssignerID != actorID && !privileged {
		return apperrors.NewHttpError(403, "Only the assigner or a privileged user can cancel a maintenance request", apperrors.ErrForbidden)
	}

	ok, err := s.requestRepo.TryCancel(ctx, nil, id)
	if err != nil {
		return err
	}
	if !ok {
		live, err := s.requestRepo.FindRequest(ctx, id)
		if err != nil {
			return err
		}
		return apperrors.NewStateConflictError("Cannot cancel maintenance request in status: %s", live.Status)
	}
	return nil
}

// TriggerScheduledMaintenance handles the at-least-once callback. Each unit
// converts in its own transaction; already-converted details are skipped so a
// redelivered job is harmless, and a unit that left its stable state since
// confirmation is logged and skipped rather than failing the whole batch.
func (s *MaintenanceRequestService) TriggerScheduledMaintenance(ctx context.Context, data dto.MaintenanceTriggerDTO) error {
	request, err := s.requestRepo.FindRequest(ctx, data.RequestID)
	if err != nil {
		return err
	}
	if request.Status != entities.RequestStatusConfirmed {
		return apperrors.NewStateConflictError("Cannot start scheduled maintenance for request in status: %s", request.Status)
	}

	details, err := s.requestRepo.FindDetailsByRequestID(ctx, data.RequestID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, detail := range details {
		if detail.MaintenanceID != nil {
			continue
		}

		err := s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
			unit, err := s.unitRepo.FindUnitInTx(ctx, tx, detail.UnitID)
			if err != nil {
				return err
			}

			current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, detail.UnitID,
				entities.UnitStatusTemporaryUrgent, enrollableStatuses...)
			if err != nil {
				return err
			}
			if !ok {
				return errCannotCreateMaintenance(current)
			}

			underWarranty := unit.WarrantyEndDate != nil && !unit.WarrantyEndDate.Before(now)
			maintenanceID, err := s.maintenanceRepo.CreateMaintenanceInTx(ctx, tx, entities.Maintenance{
				UnitID:        detail.UnitID,
				BranchID:      unit.BranchID,
				AssignerID:    request.AssignerID,
				Reason:        scheduledMaintenanceReason,
				Detail:        request.Note,
				StartDate:     now,
				UnderWarranty: underWarranty,
			})
			if err != nil {
				return err
			}

			return s.requestRepo.SetDetailMaintenanceID(ctx, tx, detail.ID, maintenanceID)
		})
		if err != nil {
			if apperrors.IsStateConflict(err) {
				s.logger.Warn("skipping unit during scheduled maintenance trigger",
					zap.Uint64("requestId", data.RequestID),
					zap.Uint64("unitId", detail.UnitID),
					zap.Error(err),
				)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *MaintenanceRequestService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.MaintenanceRequestResponseDTO, uint64, error) {
	requests, total, err := s.requestRepo.GetRequests(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(requests) == 0 {
		return []dto.MaintenanceRequestResponseDTO{}, total, nil
	}

	requestIDs := make([]uint64, 0, len(requests))
	refs := RefSet{}
	for _, r := range requests {
		requestIDs = append(requestIDs, r.ID)
		refs.BranchIDs = append(refs.BranchIDs, r.BranchID)
		refs.UserIDs = append(refs.UserIDs, r.AssignerID)
		refs.UserIDs = append(refs.UserIDs, r.TechnicianIDs...)
		if r.ConfirmedBy != nil {
			refs.UserIDs = append(refs.UserIDs, *r.ConfirmedBy)
		}
	}

	details, err := s.requestRepo.FindDetailsByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, 0, err
	}
	detailsByRequest := make(map[uint64][]entities.MaintenanceRequestDetail, len(requests))
	for _, d := range details {
		detailsByRequest[d.RequestID] = append(detailsByRequest[d.RequestID], d)
		refs.UnitIDs = append(refs.UnitIDs, d.UnitID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.MaintenanceRequestResponseDTO, 0, len(requests))
	for _, r := range requests {
		result = append(result, projectMaintenanceRequest(r, detailsByRequest[r.ID], lookup))
	}
	return result, total, nil
}

func (s *MaintenanceRequestService) FindRequest(ctx context.Context, id uint64) (*dto.MaintenanceRequestResponseDTO, error) {
	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.requestRepo.FindDetailsByRequestID(ctx, id)
	if err != nil {
		return nil, err
	}

	refs := RefSet{BranchIDs: []uint64{request.BranchID}, UserIDs: []uint64{request.AssignerID}}
	refs.UserIDs = append(refs.UserIDs, request.TechnicianIDs...)
	if request.ConfirmedBy != nil {
		refs.UserIDs = append(refs.UserIDs, *request.ConfirmedBy)
	}
	for _, d := range details {
		refs.UnitIDs = append(refs.UnitIDs, d.UnitID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, err
	}

	projected := projectMaintenanceRequest(*request, details, lookup)
	return &projected, nil
}

func projectMaintenanceRequest(r entities.MaintenanceRequest, details []entities.MaintenanceRequestDetail, lookup *Lookup) dto.MaintenanceRequestResponseDTO {
	projected := dto.MaintenanceRequestResponseDTO{
		ID:          r.ID,
		Branch:      lookup.ShortBranch(r.BranchID),
		Assigner:    lookup.ShortUser(r.AssignerID),
		Status:      string(r.Status),
		ScheduledAt: fmtTime(r.ScheduledAt),
		JobRef:      r.JobRef,
		Note:        r.Note,
		Details:     make([]dto.MaintenanceRequestDetailDTO, 0, len(details)),
		CreatedAt:   fmtTime(r.CreatedAt),
	}
	for _, technicianID := range r.TechnicianIDs {
		projected.Technicians = append(projected.Technicians, lookup.ShortUser(technicianID))
	}
	if r.ConfirmedBy != nil {
		confirmer := lookup.ShortUser(*r.ConfirmedBy)
		projected.ConfirmedBy = &confirmer
	}
	for _, d := range details {
		projected.Details = append(projected.Details, dto.MaintenanceRequestDetailDTO{
			ID:            d.ID,
			Unit:          lookup.ShortUnit(d.UnitID),
			MaintenanceID: d.MaintenanceID,
		})
	}
	return projected
}
