package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

var transferNotifyRoles = []string{entities.RoleAdmin, entities.RoleManager}

type TransferServiceInterface interface {
	GetTransfers(ctx context.Context, filter types.Filter) ([]dto.TransferResponseDTO, uint64, error)
	FindTransfer(ctx context.Context, id uint64) (*dto.TransferResponseDTO, error)
	CreateTransfer(ctx context.Context, data dto.CreateTransferDTO) (*dto.TransferResponseDTO, error)
	CompleteTransfer(ctx context.Context, id uint64, data dto.CompleteTransferDTO) error
	CancelTransfer(ctx context.Context, id uint64) error
	ConfirmCancelTransfer(ctx context.Context, id uint64) error
	GetTransferHistories(ctx context.Context, filter types.Filter) ([]dto.TransferHistoryResponseDTO, uint64, error)
	ExportTransferHistory(ctx context.Context, filter types.Filter) (*excelize.File, error)
}

type TransferService struct {
	txManager    repositories.TxManagerInterface
	transferRepo repositories.TransferRepositoryInterface
	historyRepo  repositories.TransferHistoryRepositoryInterface
	unitRepo     repositories.UnitRepositoryInterface
	aggregator   AggregatorInterface
	notifier     NotificationServiceInterface
	logger       *zap.Logger
}

func NewTransferService(
	txManager repositories.TxManagerInterface,
	transferRepo repositories.TransferRepositoryInterface,
	historyRepo repositories.TransferHistoryRepositoryInterface,
	unitRepo repositories.UnitRepositoryInterface,
	aggregator AggregatorInterface,
	notifier NotificationServiceInterface,
	logger *zap.Logger,
) TransferServiceInterface {
	return &TransferService{
		txManager:    txManager,
		transferRepo: transferRepo,
		historyRepo:  historyRepo,
		unitRepo:     unitRepo,
		aggregator:   aggregator,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateTransfer enrolls a batch of units into one move. The source branch is
// resolved from the first listed unit; every unit must be in a stable status
// and not already at the destination. All writes land in one transaction.
func (s *TransferService) CreateTransfer(ctx context.Context, data dto.CreateTransferDTO) (*dto.TransferResponseDTO, error) {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	firstUnit, err := s.unitRepo.FindUnit(ctx, data.UnitIDs[0])
	if err != nil {
		return nil, err
	}
	fromBranchID := firstUnit.BranchID

	if data.ToBranchID == fromBranchID {
		return nil, apperrors.NewBadRequestError("Transfer destination branch matches the source branch")
	}

	moveStartDate := time.Now()
	if data.MoveStartDate.Valid {
		moveStartDate = data.MoveStartDate.Time
	}

	var transferID uint64
	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		transferID, err = s.transferRepo.CreateTransferInTx(ctx, tx, entities.Transfer{
			FromBranchID:  fromBranchID,
			ToBranchID:    data.ToBranchID,
			ApproverID:    actorID,
			Description:   data.Description,
			Status:        entities.TransferStatusPending,
			MoveStartDate: moveStartDate,
		})
		if err != nil {
			return err
		}

		for _, unitID := range data.UnitIDs {
			unit, err := s.unitRepo.FindUnitInTx(ctx, tx, unitID)
			if err != nil {
				return err
			}
			if unit.BranchID == data.ToBranchID {
				return apperrors.NewBadRequestError("Equipment unit %d is already at the destination branch", unitID)
			}

			current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, unitID, entities.UnitStatusMoving, enrollableStatuses...)
			if err != nil {
				return err
			}
			if !ok {
				return errCannotTransfer(current)
			}

			if _, err := s.transferRepo.CreateDetailInTx(ctx, tx, entities.TransferDetail{
				TransferID:     transferID,
				UnitID:         unitID,
				PreviousStatus: unit.Status,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, EventTransferCreated, map[string]interface{}{
		"transfer_id":    transferID,
		"from_branch_id": fromBranchID,
		"to_branch_id":   data.ToBranchID,
		"unit_ids":       data.UnitIDs,
	}, transferNotifyRoles)

	return s.FindTransfer(ctx, transferID)
}

// CompleteTransfer is the only producer of transfer history rows: one row per
// unit, appended in the same transaction that relocates the units.
func (s *TransferService) CompleteTransfer(ctx context.Context, id uint64, data dto.CompleteTransferDTO) error {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	transfer, err := s.transferRepo.FindTransfer(ctx, id)
	if err != nil {
		return err
	}
	if transfer.Status != entities.TransferStatusPending {
		return apperrors.NewStateConflictError("Cannot complete transfer in status: %s", transfer.Status)
	}

	receiveDate := time.Now()
	if data.MoveReceiveDate.Valid {
		receiveDate = data.MoveReceiveDate.Time
	}

	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		ok, err := s.transferRepo.CompleteInTx(ctx, tx, id, actorID, receiveDate)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewStateConflictError("Cannot complete transfer in status: %s", transfer.Status)
		}

		details, err := s.transferRepo.FindDetailsByTransferID(ctx, tx, id)
		if err != nil {
			return err
		}

		for _, detail := range details {
			current, ok, err := s.unitRepo.TryUpdateStatusAndBranch(ctx, tx, detail.UnitID,
				entities.UnitStatusInStock, transfer.ToBranchID, entities.UnitStatusMoving)
			if err != nil {
				return err
			}
			if !ok {
				return errCannotReceive(detail.UnitID, current)
			}

			if _, err := s.historyRepo.CreateHistoryInTx(ctx, tx, entities.TransferHistory{
				UnitID:       detail.UnitID,
				FromBranchID: transfer.FromBranchID,
				ToBranchID:   transfer.ToBranchID,
				TransferID:   id,
				ReceiverID:   actorID,
				Description:  transfer.Description,
				MovedAt:      receiveDate,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, EventTransferCompleted, map[string]interface{}{
		"transfer_id":  id,
		"to_branch_id": transfer.ToBranchID,
	}, transferNotifyRoles)

	return nil
}

// CancelTransfer is phase one of the two-phase cancel: it only marks the
// intent, no unit is touched until the cancellation is confirmed.
func (s *TransferService) CancelTransfer(ctx context.Context, id uint64) error {
	ok, err := s.transferRepo.TryUpdateStatus(ctx, nil, id, entities.TransferStatusCancelRequested, entities.TransferStatusPending)
	if err != nil {
		return err
	}
	if !ok {
		transfer, err := s.transferRepo.FindTransfer(ctx, id)
		if err != nil {
			return err
		}
		return apperrors.NewStateConflictError("Cannot cancel transfer in status: %s", transfer.Status)
	}
	return nil
}

func (s *TransferService) ConfirmCancelTransfer(ctx context.Context, id uint64) error {
	return s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		ok, err := s.transferRepo.TryUpdateStatus(ctx, tx, id, entities.TransferStatusCancelled, entities.TransferStatusCancelRequested)
		if err != nil {
			return err
		}
		if !ok {
			transfer, err := s.transferRepo.FindTransfer(ctx, id)
			if err != nil {
				return err
			}
			return apperrors.NewStateConflictError("Cannot confirm cancellation of transfer in status: %s", transfer.Status)
		}

		details, err := s.transferRepo.FindDetailsByTransferID(ctx, tx, id)
		if err != nil {
			return err
		}

		// Revert without relocating: the units never left the source branch.
		for _, detail := range details {
			current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, detail.UnitID,
				entities.UnitStatusInStock, entities.UnitStatusMoving)
			if err != nil {
				return err
			}
			if !ok {
				return errCannotRelease(detail.UnitID, current)
			}
		}
		return nil
	})
}

func (s *TransferService) GetTransfers(ctx context.Context, filter types.Filter) ([]dto.TransferResponseDTO, uint64, error) {
	transfers, total, err := s.transferRepo.GetTransfers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(transfers) == 0 {
		return []dto.TransferResponseDTO{}, total, nil
	}

	transferIDs := make([]uint64, 0, len(transfers))
	for _, t := range transfers {
		transferIDs = append(transferIDs, t.ID)
	}

	details, err := s.transferRepo.FindDetailsByTransferIDs(ctx, transferIDs)
	if err != nil {
		return nil, 0, err
	}
	detailsByTransfer := make(map[uint64][]entities.TransferDetail, len(transfers))
	for _, d := range details {
		detailsByTransfer[d.TransferID] = append(detailsByTransfer[d.TransferID], d)
	}

	refs := RefSet{}
	for _, t := range transfers {
		refs.BranchIDs = append(refs.BranchIDs, t.FromBranchID, t.ToBranchID)
		refs.UserIDs = append(refs.UserIDs, t.ApproverID)
		if t.ReceiverID != nil {
			refs.UserIDs = append(refs.UserIDs, *t.ReceiverID)
		}
	}
	for _, d := range details {
		refs.UnitIDs = append(refs.UnitIDs, d.UnitID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.TransferResponseDTO, 0, len(transfers))
	for _, t := range transfers {
		result = append(result, projectTransfer(t, detailsByTransfer[t.ID], lookup))
	}
	return result, total, nil
}

func (s *TransferService) FindTransfer(ctx context.Context, id uint64) (*dto.TransferResponseDTO, error) {
	transfer, err := s.transferRepo.FindTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.transferRepo.FindDetailsByTransferID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	refs := RefSet{BranchIDs: []uint64{transfer.FromBranchID, transfer.ToBranchID}, UserIDs: []uint64{transfer.ApproverID}}
	if transfer.ReceiverID != nil {
		refs.UserIDs = append(refs.UserIDs, *transfer.ReceiverID)
	}
	for _, d := range details {
		refs.UnitIDs = append(refs.UnitIDs, d.UnitID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, err
	}

	projected := projectTransfer(*transfer, details, lookup)
	return &projected, nil
}

func (s *TransferService) GetTransferHistories(ctx context.Context, filter types.Filter) ([]dto.TransferHistoryResponseDTO, uint64, error) {
	histories, total, err := s.historyRepo.GetHistories(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(histories) == 0 {
		return []dto.TransferHistoryResponseDTO{}, total, nil
	}

	refs := RefSet{}
	for _, h := range histories {
		refs.UnitIDs = append(refs.UnitIDs, h.UnitID)
		refs.BranchIDs = append(refs.BranchIDs, h.FromBranchID, h.ToBranchID)
		refs.UserIDs = append(refs.UserIDs, h.ReceiverID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.TransferHistoryResponseDTO, 0, len(histories))
	for _, h := range histories {
		result = append(result, dto.TransferHistoryResponseDTO{
			ID:          h.ID,
			Unit:        lookup.ShortUnit(h.UnitID),
			FromBranch:  lookup.ShortBranch(h.FromBranchID),
			ToBranch:    lookup.ShortBranch(h.ToBranchID),
			TransferID:  h.TransferID,
			Receiver:    lookup.ShortUser(h.ReceiverID),
			Description: h.Description,
			MovedAt:     fmtTime(h.MovedAt),
		})
	}
	return result, total, nil
}

// ExportTransferHistory renders the audit trail as a spreadsheet: one header
// row plus one row per history record.
func (s *TransferService) ExportTransferHistory(ctx context.Context, filter types.Filter) (*excelize.File, error) {
	filter.WithPagination = false
	histories, _, err := s.GetTransferHistories(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Transfer History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("failed to drop default sheet", zap.Error(err))
	}

	headers := []string{"ID", "Unit", "Equipment", "From Branch", "To Branch", "Transfer ID", "Receiver", "Description", "Moved At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, h := range histories {
		description := ""
		if h.Description != nil {
			description = *h.Description
		}
		row := []interface{}{
			h.ID, h.Unit.ID, h.Unit.Equipment.Name, h.FromBranch.Name, h.ToBranch.Name,
			h.TransferID, h.Receiver.FullName, description, h.MovedAt,
		}
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write history row %d: %w", i+1, err)
			}
		}
	}

	return f, nil
}

func projectTransfer(t entities.Transfer, details []entities.TransferDetail, lookup *Lookup) dto.TransferResponseDTO {
	projected := dto.TransferResponseDTO{
		ID:              t.ID,
		FromBranch:      lookup.ShortBranch(t.FromBranchID),
		ToBranch:        lookup.ShortBranch(t.ToBranchID),
		Approver:        lookup.ShortUser(t.ApproverID),
		Description:     t.Description,
		Status:          string(t.Status),
		MoveStartDate:   fmtTime(t.MoveStartDate),
		MoveReceiveDate: fmtTimePtr(t.MoveReceiveDate),
		Details:         make([]dto.TransferDetailResponseDTO, 0, len(details)),
		CreatedAt:       fmtTime(t.CreatedAt),
	}
	if t.ReceiverID != nil {
		receiver := lookup.ShortUser(*t.ReceiverID)
		projected.Receiver = &receiver
	}
	for _, d := range details {
		projected.Details = append(projected.Details, dto.TransferDetailResponseDTO{
			ID:             d.ID,
			Unit:           lookup.ShortUnit(d.UnitID),
			PreviousStatus: string(d.PreviousStatus),
		})
	}
	return projected
}
