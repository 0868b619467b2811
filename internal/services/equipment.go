package services

import (
	"context"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
)

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentResponseDTO, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentResponseDTO, error)
	CreateEquipment(ctx context.Context, data dto.CreateEquipmentDTO) (uint64, error)
	UpdateEquipment(ctx context.Context, id uint64, data dto.UpdateEquipmentDTO) error
}

type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	vendorRepo    repositories.VendorRepositoryInterface
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	vendorRepo repositories.VendorRepositoryInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{equipmentRepo: equipmentRepo, vendorRepo: vendorRepo, logger: logger}
}

func (s *EquipmentService) GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentResponseDTO, uint64, error) {
	equipments, total, err := s.equipmentRepo.GetEquipments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(equipments) == 0 {
		return []dto.EquipmentResponseDTO{}, total, nil
	}

	vendorIDs := make([]uint64, 0, len(equipments))
	for _, e := range equipments {
		vendorIDs = append(vendorIDs, e.VendorID)
	}
	vendors, err := s.vendorRepo.FindVendorsByIDs(ctx, distinct(vendorIDs))
	if err != nil {
		return nil, 0, err
	}
	vendorByID := make(map[uint64]entities.Vendor, len(vendors))
	for _, v := range vendors {
		vendorByID[v.ID] = v
	}

	result := make([]dto.EquipmentResponseDTO, 0, len(equipments))
	for _, e := range equipments {
		result = append(result, projectEquipment(e, vendorByID))
	}
	return result, total, nil
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentResponseDTO, error) {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	vendorByID := make(map[uint64]entities.Vendor)
	if vendor, err := s.vendorRepo.FindVendor(ctx, equipment.VendorID); err == nil {
		vendorByID[vendor.ID] = *vendor
	}

	projected := projectEquipment(*equipment, vendorByID)
	return &projected, nil
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, data dto.CreateEquipmentDTO) (uint64, error) {
	if _, err := s.vendorRepo.FindVendor(ctx, data.VendorID); err != nil {
		return 0, err
	}

	return s.equipmentRepo.CreateEquipment(ctx, entities.Equipment{
		Name:        data.Name,
		Category:    data.Category,
		Model:       data.Model,
		VendorID:    data.VendorID,
		Description: data.Description,
	})
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uint64, data dto.UpdateEquipmentDTO) error {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return err
	}

	if data.Name != nil {
		equipment.Name = *data.Name
	}
	if data.Category != nil {
		equipment.Category = *data.Category
	}
	if data.Model != nil {
		equipment.Model = data.Model
	}
	if data.VendorID != nil {
		equipment.VendorID = *data.VendorID
	}
	if data.Description != nil {
		equipment.Description = data.Description
	}

	return s.equipmentRepo.UpdateEquipment(ctx, *equipment)
}

func projectEquipment(e entities.Equipment, vendorByID map[uint64]entities.Vendor) dto.EquipmentResponseDTO {
	projected := dto.EquipmentResponseDTO{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Model:       e.Model,
		Vendor:      dto.ShortVendorDTO{ID: e.VendorID},
		Description: e.Description,
		CreatedAt:   fmtTime(e.CreatedAt),
		UpdatedAt:   fmtTime(e.UpdatedAt),
	}
	if vendor, ok := vendorByID[e.VendorID]; ok {
		projected.Vendor.Name = vendor.Name
	}
	return projected
}
