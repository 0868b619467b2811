package services

import (
	"context"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
)

type UnitServiceInterface interface {
	GetUnits(ctx context.Context, filter types.Filter) ([]dto.UnitResponseDTO, uint64, error)
	FindUnit(ctx context.Context, id uint64) (*dto.UnitResponseDTO, error)
	CreateUnit(ctx context.Context, data dto.CreateUnitDTO) (uint64, error)
	UpdateUnit(ctx context.Context, id uint64, data dto.UpdateUnitDTO) error
	DeleteUnit(ctx context.Context, id uint64) error
	// ActivateUnit puts a stocked unit into service; StockUnit pulls an active
	// unit back to stock. Both are guarded single-step transitions.
	ActivateUnit(ctx context.Context, id uint64) error
	StockUnit(ctx context.Context, id uint64) error
}

type UnitService struct {
	unitRepo   repositories.UnitRepositoryInterface
	aggregator AggregatorInterface
	logger     *zap.Logger
}

func NewUnitService(
	unitRepo repositories.UnitRepositoryInterface,
	aggregator AggregatorInterface,
	logger *zap.Logger,
) UnitServiceInterface {
	return &UnitService{unitRepo: unitRepo, aggregator: aggregator, logger: logger}
}

func (s *UnitService) GetUnits(ctx context.Context, filter types.Filter) ([]dto.UnitResponseDTO, uint64, error) {
	units, total, err := s.unitRepo.GetUnits(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	unitIDs := make([]uint64, 0, len(units))
	branchIDs := make([]uint64, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
		branchIDs = append(branchIDs, u.BranchID)
	}

	lookup, err := s.aggregator.Resolve(ctx, RefSet{UnitIDs: unitIDs, BranchIDs: branchIDs})
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.UnitResponseDTO, 0, len(units))
	for _, u := range units {
		result = append(result, projectUnit(u, lookup))
	}
	return result, total, nil
}

func (s *UnitService) FindUnit(ctx context.Context, id uint64) (*dto.UnitResponseDTO, error) {
	unit, err := s.unitRepo.FindUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	lookup, err := s.aggregator.Resolve(ctx, RefSet{UnitIDs: []uint64{unit.ID}, BranchIDs: []uint64{unit.BranchID}})
	if err != nil {
		return nil, err
	}

	projected := projectUnit(*unit, lookup)
	return &projected, nil
}

func (s *UnitService) CreateUnit(ctx context.Context, data dto.CreateUnitDTO) (uint64, error) {
	unit := entities.EquipmentUnit{
		EquipmentID: data.EquipmentID,
		BranchID:    data.BranchID,
		Status:      entities.UnitStatusInStock,
		Cost:        data.Cost,
		Description: data.Description,
	}
	if data.WarrantyStartDate.Valid {
		unit.WarrantyStartDate = &data.WarrantyStartDate.Time
	}
	if data.WarrantyEndDate.Valid {
		unit.WarrantyEndDate = &data.WarrantyEndDate.Time
	}

	return s.unitRepo.CreateUnit(ctx, unit)
}

func (s *UnitService) UpdateUnit(ctx context.Context, id uint64, data dto.UpdateUnitDTO) error {
	return s.unitRepo.UpdateUnit(ctx, id, data)
}

func (s *UnitService) DeleteUnit(ctx context.Context, id uint64) error {
	return s.unitRepo.DeleteUnit(ctx, id)
}

func (s *UnitService) ActivateUnit(ctx context.Context, id uint64) error {
	current, ok, err := s.unitRepo.TryUpdateStatus(ctx, nil, id, entities.UnitStatusActive, entities.UnitStatusInStock)
	if err != nil {
		return err
	}
	if !ok {
		return errCannotActivate(current)
	}
	return nil
}

func (s *UnitService) StockUnit(ctx context.Context, id uint64) error {
	current, ok, err := s.unitRepo.TryUpdateStatus(ctx, nil, id, entities.UnitStatusInStock, entities.UnitStatusActive)
	if err != nil {
		return err
	}
	if !ok {
		return errCannotStock(current)
	}
	return nil
}

func projectUnit(u entities.EquipmentUnit, lookup *Lookup) dto.UnitResponseDTO {
	short := lookup.ShortUnit(u.ID)
	return dto.UnitResponseDTO{
		ID:                u.ID,
		Status:            string(u.Status),
		Cost:              u.Cost,
		Description:       u.Description,
		WarrantyStartDate: fmtTimePtr(u.WarrantyStartDate),
		WarrantyEndDate:   fmtTimePtr(u.WarrantyEndDate),
		Equipment:         short.Equipment,
		Branch:            lookup.ShortBranch(u.BranchID),
		CreatedAt:         fmtTime(u.CreatedAt),
		UpdatedAt:         fmtTime(u.UpdatedAt),
	}
}
