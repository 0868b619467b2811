package services

import (
	"context"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
)

type VendorServiceInterface interface {
	GetVendors(ctx context.Context, filter types.Filter) ([]entities.Vendor, uint64, error)
	FindVendor(ctx context.Context, id uint64) (*entities.Vendor, error)
	CreateVendor(ctx context.Context, data dto.CreateVendorDTO) (uint64, error)
}

type VendorService struct {
	vendorRepo repositories.VendorRepositoryInterface
	logger     *zap.Logger
}

func NewVendorService(vendorRepo repositories.VendorRepositoryInterface, logger *zap.Logger) VendorServiceInterface {
	return &VendorService{vendorRepo: vendorRepo, logger: logger}
}

func (s *VendorService) GetVendors(ctx context.Context, filter types.Filter) ([]entities.Vendor, uint64, error) {
	return s.vendorRepo.GetVendors(ctx, filter)
}

func (s *VendorService) FindVendor(ctx context.Context, id uint64) (*entities.Vendor, error) {
	return s.vendorRepo.FindVendor(ctx, id)
}

func (s *VendorService) CreateVendor(ctx context.Context, data dto.CreateVendorDTO) (uint64, error) {
	return s.vendorRepo.CreateVendor(ctx, entities.Vendor{
		Name:        data.Name,
		ContactName: data.ContactName,
		PhoneNumber: data.PhoneNumber,
		Email:       data.Email,
		Address:     data.Address,
	})
}
