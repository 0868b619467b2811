package services

import (
	"context"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
)

type BranchServiceInterface interface {
	GetBranches(ctx context.Context, filter types.Filter) ([]entities.Branch, uint64, error)
	FindBranch(ctx context.Context, id uint64) (*entities.Branch, error)
	CreateBranch(ctx context.Context, data dto.CreateBranchDTO) (uint64, error)
	UpdateBranch(ctx context.Context, id uint64, data dto.UpdateBranchDTO) error
}

type BranchService struct {
	branchRepo repositories.BranchRepositoryInterface
	logger     *zap.Logger
}

func NewBranchService(branchRepo repositories.BranchRepositoryInterface, logger *zap.Logger) BranchServiceInterface {
	return &BranchService{branchRepo: branchRepo, logger: logger}
}

func (s *BranchService) GetBranches(ctx context.Context, filter types.Filter) ([]entities.Branch, uint64, error) {
	return s.branchRepo.GetBranches(ctx, filter)
}

func (s *BranchService) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	return s.branchRepo.FindBranch(ctx, id)
}

func (s *BranchService) CreateBranch(ctx context.Context, data dto.CreateBranchDTO) (uint64, error) {
	return s.branchRepo.CreateBranch(ctx, entities.Branch{
		Name:        data.Name,
		ShortName:   data.ShortName,
		Address:     data.Address,
		PhoneNumber: data.PhoneNumber,
		Email:       data.Email,
	})
}

func (s *BranchService) UpdateBranch(ctx context.Context, id uint64, data dto.UpdateBranchDTO) error {
	branch, err := s.branchRepo.FindBranch(ctx, id)
	if err != nil {
		return err
	}

	if data.Name != nil {
		branch.Name = *data.Name
	}
	if data.ShortName != nil {
		branch.ShortName = *data.ShortName
	}
	if data.Address != nil {
		branch.Address = data.Address
	}
	if data.PhoneNumber != nil {
		branch.PhoneNumber = data.PhoneNumber
	}
	if data.Email != nil {
		branch.Email = data.Email
	}

	return s.branchRepo.UpdateBranch(ctx, *branch)
}
