package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

type DisposalServiceInterface interface {
	GetDisposals(ctx context.Context, filter types.Filter) ([]dto.DisposalResponseDTO, uint64, error)
	FindDisposal(ctx context.Context, id uint64) (*dto.DisposalResponseDTO, error)
	CreateDisposal(ctx context.Context, data dto.CreateDisposalDTO) (uint64, error)
}

type DisposalService struct {
	txManager    repositories.TxManagerInterface
	disposalRepo repositories.DisposalRepositoryInterface
	unitRepo     repositories.UnitRepositoryInterface
	aggregator   AggregatorInterface
	notifier     NotificationServiceInterface
	logger       *zap.Logger
}

func NewDisposalService(
	txManager repositories.TxManagerInterface,
	disposalRepo repositories.DisposalRepositoryInterface,
	unitRepo repositories.UnitRepositoryInterface,
	aggregator AggregatorInterface,
	notifier NotificationServiceInterface,
	logger *zap.Logger,
) DisposalServiceInterface {
	return &DisposalService{
		txManager:    txManager,
		disposalRepo: disposalRepo,
		unitRepo:     unitRepo,
		aggregator:   aggregator,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateDisposal decommissions a batch of units. The total is the sum of the
// detail values and is written together with the details in one transaction,
// so a reader never sees a header whose total lags its rows.
func (s *DisposalService) CreateDisposal(ctx context.Context, data dto.CreateDisposalDTO) (uint64, error) {
	actorID, err := utils.ActorFromContext(ctx)
	if err != nil {
		return 0, err
	}
	branchID, err := utils.BranchFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, item := range data.Items {
		total += item.ValueRecovered
	}

	var disposalID uint64
	err = s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		disposalID, err = s.disposalRepo.CreateDisposalInTx(ctx, tx, entities.Disposal{
			UserID:     actorID,
			BranchID:   branchID,
			Note:       data.Note,
			TotalValue: total,
		})
		if err != nil {
			return err
		}

		for _, item := range data.Items {
			current, ok, err := s.unitRepo.TryUpdateStatus(ctx, tx, item.UnitID,
				entities.UnitStatusDisposed, enrollableStatuses...)
			if err != nil {
				return err
			}
			if !ok {
				return errCannotDispose(current)
			}

			if _, err := s.disposalRepo.CreateDetailInTx(ctx, tx, entities.DisposalDetail{
				DisposalID:     disposalID,
				UnitID:         item.UnitID,
				ValueRecovered: item.ValueRecovered,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.notifier.Notify(ctx, EventDisposalCreated, map[string]interface{}{
		"disposal_id": disposalID,
		"total_value": total,
	}, []string{entities.RoleAdmin, entities.RoleManager})

	return disposalID, nil
}

func (s *DisposalService) GetDisposals(ctx context.Context, filter types.Filter) ([]dto.DisposalResponseDTO, uint64, error) {
	disposals, total, err := s.disposalRepo.GetDisposals(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(disposals) == 0 {
		return []dto.DisposalResponseDTO{}, total, nil
	}

	disposalIDs := make([]uint64, 0, len(disposals))
	refs := RefSet{}
	for _, d := range disposals {
		disposalIDs = append(disposalIDs, d.ID)
		refs.BranchIDs = append(refs.BranchIDs, d.BranchID)
		refs.UserIDs = append(refs.UserIDs, d.UserID)
	}

	details, err := s.disposalRepo.FindDetailsByDisposalIDs(ctx, disposalIDs)
	if err != nil {
		return nil, 0, err
	}
	detailsByDisposal := make(map[uint64][]entities.DisposalDetail, len(disposals))
	for _, d := range details {
		detailsByDisposal[d.DisposalID] = append(detailsByDisposal[d.DisposalID], d)
		refs.UnitIDs = append(refs.UnitIDs, d.UnitID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.DisposalResponseDTO, 0, len(disposals))
	for _, d := range disposals {
		result = append(result, projectDisposal(d, detailsByDisposal[d.ID], lookup))
	}
	return result, total, nil
}

func (s *DisposalService) FindDisposal(ctx context.Context, id uint64) (*dto.DisposalResponseDTO, error) {
	disposal, err := s.disposalRepo.FindDisposal(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.disposalRepo.FindDetailsByDisposalID(ctx, id)
	if err != nil {
		return nil, err
	}

	refs := RefSet{BranchIDs: []uint64{disposal.BranchID}, UserIDs: []uint64{disposal.UserID}}
	for _, d := range details {
		refs.UnitIDs = append(refs.UnitIDs, d.UnitID)
	}

	lookup, err := s.aggregator.Resolve(ctx, refs)
	if err != nil {
		return nil, err
	}

	projected := projectDisposal(*disposal, details, lookup)
	return &projected, nil
}

func projectDisposal(d entities.Disposal, details []entities.DisposalDetail, lookup *Lookup) dto.DisposalResponseDTO {
	projected := dto.DisposalResponseDTO{
		ID:         d.ID,
		User:       lookup.ShortUser(d.UserID),
		Branch:     lookup.ShortBranch(d.BranchID),
		Note:       d.Note,
		TotalValue: d.TotalValue,
		Details:    make([]dto.DisposalDetailResponseDTO, 0, len(details)),
		CreatedAt:  fmtTime(d.CreatedAt),
	}
	for _, detail := range details {
		projected.Details = append(projected.Details, dto.DisposalDetailResponseDTO{
			ID:             detail.ID,
			Unit:           lookup.ShortUnit(detail.UnitID),
			ValueRecovered: detail.ValueRecovered,
		})
	}
	return projected
}
