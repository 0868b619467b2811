package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
)

const userCacheTTL = 10 * time.Minute

// RefSet is the distinct foreign ids referenced across one listing page.
type RefSet struct {
	UnitIDs   []uint64
	BranchIDs []uint64
	UserIDs   []uint64
}

// Lookup holds the batch-resolved foreign rows, keyed by id, so each primary
// row can be projected with O(1) map lookups.
type Lookup struct {
	Units     map[uint64]entities.EquipmentUnit
	Equipment map[uint64]entities.Equipment
	Branches  map[uint64]dto.ShortBranchDTO
	Users     map[uint64]dto.ShortUserDTO
}

type AggregatorInterface interface {
	Resolve(ctx context.Context, refs RefSet) (*Lookup, error)
}

// Aggregator avoids N+1 lookups on list endpoints: one batch-get per foreign
// collection instead of one round trip per row. Users are the exception (no
// batch-get on the identity side), so they resolve per-id behind a Redis
// cache.
type Aggregator struct {
	unitRepo      repositories.UnitRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	branchRepo    repositories.BranchRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	cacheRepo     repositories.CacheRepositoryInterface
	logger        *zap.Logger
}

func NewAggregator(
	unitRepo repositories.UnitRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	branchRepo repositories.BranchRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) AggregatorInterface {
	return &Aggregator{
		unitRepo:      unitRepo,
		equipmentRepo: equipmentRepo,
		branchRepo:    branchRepo,
		userRepo:      userRepo,
		cacheRepo:     cacheRepo,
		logger:        logger,
	}
}

// Resolve batch-fetches every referenced collection. The three collections
// are independent reads and run concurrently.
func (a *Aggregator) Resolve(ctx context.Context, refs RefSet) (*Lookup, error) {
	lookup := &Lookup{
		Units:     make(map[uint64]entities.EquipmentUnit),
		Equipment: make(map[uint64]entities.Equipment),
		Branches:  make(map[uint64]dto.ShortBranchDTO),
		Users:     make(map[uint64]dto.ShortUserDTO),
	}

	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = a.resolveUnits(ctx, distinct(refs.UnitIDs), lookup)
	}()
	go func() {
		defer wg.Done()
		errs[1] = a.resolveBranches(ctx, distinct(refs.BranchIDs), lookup)
	}()
	go func() {
		defer wg.Done()
		errs[2] = a.resolveUsers(ctx, distinct(refs.UserIDs), lookup)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return lookup, nil
}

func (a *Aggregator) resolveUnits(ctx context.Context, ids []uint64, lookup *Lookup) error {
	if len(ids) == 0 {
		return nil
	}

	units, err := a.unitRepo.FindUnitsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	equipmentIDs := make([]uint64, 0, len(units))
	for _, u := range units {
		lookup.Units[u.ID] = u
		equipmentIDs = append(equipmentIDs, u.EquipmentID)
	}

	equipments, err := a.equipmentRepo.FindEquipmentsByIDs(ctx, distinct(equipmentIDs))
	if err != nil {
		return err
	}
	for _, e := range equipments {
		lookup.Equipment[e.ID] = e
	}
	return nil
}

func (a *Aggregator) resolveBranches(ctx context.Context, ids []uint64, lookup *Lookup) error {
	if len(ids) == 0 {
		return nil
	}

	branches, err := a.branchRepo.FindBranchesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, b := range branches {
		lookup.Branches[b.ID] = dto.ShortBranchDTO{ID: b.ID, Name: b.Name}
	}
	return nil
}

// resolveUsers is the one remaining per-id lookup; the Redis cache in front
// keeps repeat ids off the identity store.
func (a *Aggregator) resolveUsers(ctx context.Context, ids []uint64, lookup *Lookup) error {
	for _, id := range ids {
		user, err := a.lookupUser(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		lookup.Users[id] = *user
	}
	return nil
}

func (a *Aggregator) lookupUser(ctx context.Context, id uint64) (*dto.ShortUserDTO, error) {
	key := userCacheKey(id)

	if cached, err := a.cacheRepo.Get(ctx, key); err == nil {
		var short dto.ShortUserDTO
		if err := json.Unmarshal([]byte(cached), &short); err == nil {
			return &short, nil
		}
	}

	user, err := a.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	short := &dto.ShortUserDTO{ID: user.ID, FullName: user.FullName, Role: user.Role}

	if data, err := json.Marshal(short); err == nil {
		if err := a.cacheRepo.Set(ctx, key, string(data), userCacheTTL); err != nil {
			a.logger.Warn("failed to cache user lookup", zap.Uint64("userId", id), zap.Error(err))
		}
	}
	return short, nil
}

func userCacheKey(id uint64) string {
	return "user:short:" + strconv.FormatUint(id, 10)
}

// ShortUnit projects a resolved unit plus its equipment line.
func (l *Lookup) ShortUnit(unitID uint64) dto.ShortUnitDTO {
	unit, ok := l.Units[unitID]
	if !ok {
		return dto.ShortUnitDTO{ID: unitID}
	}
	short := dto.ShortUnitDTO{ID: unit.ID, Status: string(unit.Status)}
	if equipment, ok := l.Equipment[unit.EquipmentID]; ok {
		short.Equipment = dto.ShortEquipmentDTO{ID: equipment.ID, Name: equipment.Name, Category: equipment.Category}
	}
	return short
}

func (l *Lookup) ShortBranch(branchID uint64) dto.ShortBranchDTO {
	if branch, ok := l.Branches[branchID]; ok {
		return branch
	}
	return dto.ShortBranchDTO{ID: branchID}
}

func (l *Lookup) ShortUser(userID uint64) dto.ShortUserDTO {
	if user, ok := l.Users[userID]; ok {
		return user
	}
	return dto.ShortUserDTO{ID: userID}
}

func fmtTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func distinct(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
