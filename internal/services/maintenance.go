package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

var maintenanceNotifyRoles = []string{entities.RoleAdmin, entities.RoleManager}

type MaintenanceServiceInterface interface {
	GetMaintenances(ctx context.Context, filter types.Filter) ([]dto.MaintenanceResponseDTO, uint64, error)
	FindMaintenance(ctx context.Context, id uint64) (*dto.MaintenanceResponseDTO, error)
	CreateMaintenance(ctx context.Context, data dto.CreateMaintenanceDTO) (uint64, error)
	ProgressMaintenance(ctx context.Context, id uint64, data dto.ProgressMaintenanceDTO) error
	CompleteMaintenance(ctx context.Context, id uint64, data dto.CompleteMaintenanceDTO) error
}

type MaintenanceService struct {
	txManager       repositories.TxManagerInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	unitRepo        repositories.UnitRepositoryInterface
	aggregator      AggregatorInterface
	notifier        NotificationServiceInterface
	logger          *zap.Logger
}

func NewMaintenanceService(
	txManager repositories.TxManagerInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	unitRepo repositories.UnitRepositoryInterface,
	aggregator AggregatorInterface,
	notifier NotificationServiceInterface,
	logger *zap.Logger,
) MaintenanceServiceInterface {
	return &MaintenanceService{
		txManager:       txManager,
		maintenanceRepo: maintenanceRepo,
		unitRepo:        unitRepo,
		aggregator:      aggregator,
		notifier:        notifier,
		logger:          logger,
	}
}

// CreateMaintenance opens a repair episode. The branch comes from the unit,
// never from caller input, and the warranty flag is a frozen snapshot taken
// now: a warranty expiring mid-repair still waives the invoice fee.
func (s *MaintenanceService) CreateMaintenance(ctx context.Context, data dto.CreateMaintenanceDTO) (uint64, error) {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return 0, err
	}

	unit, err := s.unitRepo.FindUnit(ctx, data.UnitID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	underWarranty := unit.WarrantyEndDate != nil && !unit.WarrantyEndDate.Before(now)

	var maintenanceID uint64
	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, data.UnitID,
			entities.UnitStatusTemporaryUrgent, enrollableStatuses...)
		if err != nil {
			return err
		}
		if !ok {
			return errCannotCreateMaintenance(current)
		}

		maintenanceID, err = s.maintenanceRepo.CreateMaintenanceInTx(ctx, tx, entities.Maintenance{
			UnitID:        data.UnitID,
			BranchID:      unit.BranchID,
			AssignerID:    actorID,
			Reason:        data.Reason,
			Detail:        data.Detail,
			StartDate:     now,
			UnderWarranty: underWarranty,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	return maintenanceID, nil
}

// ProgressMaintenance attaches a technician and moves the unit to in-progress.
// A repeated call overwrites the technician; there is no double-progress
// guard.
func (s *MaintenanceService) ProgressMaintenance(ctx context.Context, id uint64, data dto.ProgressMaintenanceDTO) error {
	m, err := s.maintenanceRepo.FindMaintenance(ctx, id)
	if err != nil {
		return err
	}

	return s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, m.UnitID, entities.UnitStatusInProgress,
			entities.UnitStatusTemporaryUrgent, entities.UnitStatusInProgress)
		if err != nil {
			return err
		}
		if !ok {
			return errCannotProgressMaintenance(current)
		}

		return s.maintenanceRepo.Progress(ctx, tx, id, data.TechnicianID, data.Reason)
	})
}

// CompleteMaintenance closes the episode with the caller-chosen terminal
// status. The invoice exists only on success; cost is waived when the frozen
// warranty flag was set at creation.
func (s *MaintenanceService) CompleteMaintenance(ctx context.Context, id uint64, data dto.CompleteMaintenanceDTO) error {
	m, err := s.maintenanceRepo.FindMaintenance(ctx, id)
	if err != nil {
		return err
	}

	terminal := entities.UnitStatusReady
	if data.Status == string(entities.UnitStatusFailed) {
		terminal = entities.UnitStatusFailed
	}
	success := terminal == entities.UnitStatusReady
	endDate := time.Now()

	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, m.UnitID, terminal,
			entities.UnitStatusInProgress, entities.UnitStatusTemporaryUrgent)
		if err != nil {
			return err
		}
		if !ok {
			return errCannotCompleteMaintenance(current)
		}

		if err := s.maintenanceRepo.CompleteInTx(ctx, tx, id, endDate, success, data.Detail); err != nil {
			return err
		}

		if success {
			cost := data.Cost
			if m.UnderWarranty {
				cost = 0
			}
			if _, err := s.maintenanceRepo.CreateInvoiceInTx(ctx, tx, entities.MaintenanceInvoice{
				MaintenanceID: id,
				Cost:          cost,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, EventMaintenanceCompleted, map[string]interface{}{
		"maintenance_id": id,
		"unit_id":        m.UnitID,
		"result":         success,
	}, maintenanceNotifyRoles)

	return nil
}

func (s *MaintenanceService) GetMaintenances(ctx context.Context, filter types.Filter) ([]dto.MaintenanceResponseDTO, uint64, error) {
	maintenances, total, err := s.maintenanceRepo.GetMaintenances(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(maintenances) == 0 {
		return []dto.MaintenanceResponseDTO{}, total, nil
	}

	maintenanceIDs := make([]uint64, 0, len(maintenances))
	refs := RefSet{}
	for _, m := range maintenances {
		maintenanceIDs = append(maintenanceIDs, m.ID)
		refs.UnitIDs = append(refs.UnitIDs, m.UnitID)
		refs.BranchIDs = append(refs.BranchIDs, m.BranchID)
		refs.UserIDs = append(refs.UserIDs, m.AssignerID)
		if m.TechnicianID != nil {
			refs.UserIDs = append(refs.UserIDs, *m.TechnicianID)
		}
	}

	invoices, err := s.maintenanceRepo.FindInvoicesByMaintenanceIDs(ctx, maintenanceIDs)
	if err != nil {
		return nil, 0, err
	}
	invoiceByMaintenance := make(map[uint64]entities.MaintenanceInvoice, len(invoices))
	for _, inv := range invoices {
		invoiceByMaintenance[inv.MaintenanceID] = inv
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.MaintenanceResponseDTO, 0, len(maintenances))
	for _, m := range maintenances {
		var invoice *entities.MaintenanceInvoice
		if inv, ok := invoiceByMaintenance[m.ID]; ok {
			invoice = &inv
		}
		result = append(result, projectMaintenance(m, invoice, lookup))
	}
	return result, total, nil
}

func (s *MaintenanceService) FindMaintenance(ctx context.Context, id uint64) (*dto.MaintenanceResponseDTO, error) {
	m, err := s.maintenanceRepo.FindMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}

	refs := RefSet{
		UnitIDs:   []uint64{m.UnitID},
		BranchIDs: []uint64{m.BranchID},
		UserIDs:   []uint64{m.AssignerID},
	}
	if m.TechnicianID != nil {
		refs.UserIDs = append(refs.UserIDs, *m.TechnicianID)
	}

	invoices, err := s.maintenanceRepo.FindInvoicesByMaintenanceIDs(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	var invoice *entities.MaintenanceInvoice
	if len(invoices) > 0 {
		invoice = &invoices[0]
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, err
	}

	projected := projectMaintenance(*m, invoice, lookup)
	return &projected, nil
}

func projectMaintenance(m entities.Maintenance, invoice *entities.MaintenanceInvoice, lookup *Lookup) dto.MaintenanceResponseDTO {
	projected := dto.MaintenanceResponseDTO{
		ID:            m.ID,
		Unit:          lookup.ShortUnit(m.UnitID),
		Branch:        lookup.ShortBranch(m.BranchID),
		Assigner:      lookup.ShortUser(m.AssignerID),
		Reason:        m.Reason,
		Detail:        m.Detail,
		StartDate:     fmtTime(m.StartDate),
		EndDate:       fmtTimePtr(m.EndDate),
		UnderWarranty: m.UnderWarranty,
		Result:        m.Result,
	}
	if m.TechnicianID != nil {
		technician := lookup.ShortUser(*m.TechnicianID)
		projected.Technician = &technician
	}
	if invoice != nil {
		projected.Invoice = &dto.MaintenanceInvoiceDTO{
			ID:        invoice.ID,
			Cost:      invoice.Cost,
			CreatedAt: fmtTime(invoice.CreatedAt),
		}
	}
	return projected
}
