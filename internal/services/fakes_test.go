package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/contextkeys"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

// In-memory doubles for the repository layer. They honor the same contracts
// as the pgx-backed implementations (guarded writes report the live status,
// missing rows yield apperrors.ErrNotFound) so the workflow logic under test
// behaves exactly as it does against the real store.

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed
}

func authedCtx(userID uint64, role string, branchID uint64) context.Context {
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, userID)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	return context.WithValue(ctx, contextkeys.BranchIDKey, branchID)
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeUnitRepo struct {
	units  map[uint64]*entities.EquipmentUnit
	nextID uint64
}

func newFakeUnitRepo(units ...entities.EquipmentUnit) *fakeUnitRepo {
	repo := &fakeUnitRepo{units: make(map[uint64]*entities.EquipmentUnit), nextID: 1}
	for i := range units {
		u := units[i]
		repo.units[u.ID] = &u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (r *fakeUnitRepo) GetUnits(ctx context.Context, filter types.Filter) ([]entities.EquipmentUnit, uint64, error) {
	out := make([]entities.EquipmentUnit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, *u)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeUnitRepo) FindUnit(ctx context.Context, id uint64) (*entities.EquipmentUnit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUnitRepo) FindUnitInTx(ctx context.Context, q repositories.Querier, id uint64) (*entities.EquipmentUnit, error) {
	return r.FindUnit(ctx, id)
}

func (r *fakeUnitRepo) FindUnitsByIDs(ctx context.Context, ids []uint64) ([]entities.EquipmentUnit, error) {
	out := make([]entities.EquipmentUnit, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.units[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) CreateUnit(ctx context.Context, unit entities.EquipmentUnit) (uint64, error) {
	unit.ID = r.nextID
	r.nextID++
	r.units[unit.ID] = &unit
	return unit.ID, nil
}

func (r *fakeUnitRepo) UpdateUnit(ctx context.Context, id uint64, data dto.UpdateUnitDTO) error {
	if _, ok := r.units[id]; !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *fakeUnitRepo) TryUpdateStatus(ctx context.Context, q repositories.Querier, id uint64, to entities.UnitStatus, expected ...entities.UnitStatus) (entities.UnitStatus, bool, error) {
	return r.tryUpdate(id, to, nil, expected)
}

func (r *fakeUnitRepo) TryUpdateStatusAndBranch(ctx context.Context, q repositories.Querier, id uint64, to entities.UnitStatus, branchID uint64, expected ...entities.UnitStatus) (entities.UnitStatus, bool, error) {
	return r.tryUpdate(id, to, &branchID, expected)
}

func (r *fakeUnitRepo) tryUpdate(id uint64, to entities.UnitStatus, branchID *uint64, expected []entities.UnitStatus) (entities.UnitStatus, bool, error) {
	u, ok := r.units[id]
	if !ok {
		return "", false, apperrors.ErrNotFound
	}
	for _, status := range expected {
		if u.Status == status {
			u.Status = to
			if branchID != nil {
				u.BranchID = *branchID
			}
			return to, true, nil
		}
	}
	return u.Status, false, nil
}

func (r *fakeUnitRepo) DeleteUnit(ctx context.Context, id uint64) error {
	if _, ok := r.units[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.units, id)
	return nil
}

type fakeTransferRepo struct {
	transfers map[uint64]*entities.Transfer
	details   []entities.TransferDetail
	nextID    uint64
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uint64]*entities.Transfer), nextID: 1}
}

func (r *fakeTransferRepo) GetTransfers(ctx context.Context, filter types.Filter) ([]entities.Transfer, uint64, error) {
	out := make([]entities.Transfer, 0, len(r.transfers))
	for _, t := range r.transfers {
		out = append(out, *t)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeTransferRepo) FindTransfer(ctx context.Context, id uint64) (*entities.Transfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTransferRepo) CreateTransferInTx(ctx context.Context, tx pgx.Tx, transfer entities.Transfer) (uint64, error) {
	transfer.ID = r.nextID
	r.nextID++
	transfer.CreatedAt = time.Now()
	r.transfers[transfer.ID] = &transfer
	return transfer.ID, nil
}

func (r *fakeTransferRepo) TryUpdateStatus(ctx context.Context, q repositories.Querier, id uint64, to entities.TransferStatus, expected ...entities.TransferStatus) (bool, error) {
	t, ok := r.transfers[id]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	for _, status := range expected {
		if t.Status == status {
			t.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransferRepo) CompleteInTx(ctx context.Context, tx pgx.Tx, id uint64, receiverID uint64, receiveDate time.Time) (bool, error) {
	t, ok := r.transfers[id]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if t.Status != entities.TransferStatusPending {
		return false, nil
	}
	t.Status = entities.TransferStatusCompleted
	t.ReceiverID = &receiverID
	t.MoveReceiveDate = &receiveDate
	return true, nil
}

func (r *fakeTransferRepo) CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.TransferDetail) (uint64, error) {
	detail.ID = uint64(len(r.details) + 1)
	r.details = append(r.details, detail)
	return detail.ID, nil
}

func (r *fakeTransferRepo) FindDetailsByTransferID(ctx context.Context, q repositories.Querier, transferID uint64) ([]entities.TransferDetail, error) {
	out := make([]entities.TransferDetail, 0)
	for _, d := range r.details {
		if d.TransferID == transferID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) FindDetailsByTransferIDs(ctx context.Context, transferIDs []uint64) ([]entities.TransferDetail, error) {
	out := make([]entities.TransferDetail, 0)
	for _, id := range transferIDs {
		details, _ := r.FindDetailsByTransferID(ctx, nil, id)
		out = append(out, details...)
	}
	return out, nil
}

type fakeHistoryRepo struct {
	histories []entities.TransferHistory
}

func (r *fakeHistoryRepo) CreateHistoryInTx(ctx context.Context, tx pgx.Tx, history entities.TransferHistory) (uint64, error) {
	history.ID = uint64(len(r.histories) + 1)
	r.histories = append(r.histories, history)
	return history.ID, nil
}

func (r *fakeHistoryRepo) GetHistories(ctx context.Context, filter types.Filter) ([]entities.TransferHistory, uint64, error) {
	return append([]entities.TransferHistory(nil), r.histories...), uint64(len(r.histories)), nil
}

func (r *fakeHistoryRepo) FindByUnitID(ctx context.Context, unitID uint64) ([]entities.TransferHistory, error) {
	out := make([]entities.TransferHistory, 0)
	for _, h := range r.histories {
		if h.UnitID == unitID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeMaintenanceRepo struct {
	maintenances map[uint64]*entities.Maintenance
	invoices     []entities.MaintenanceInvoice
	nextID       uint64
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{maintenances: make(map[uint64]*entities.Maintenance), nextID: 1}
}

func (r *fakeMaintenanceRepo) GetMaintenances(ctx context.Context, filter types.Filter) ([]entities.Maintenance, uint64, error) {
	out := make([]entities.Maintenance, 0, len(r.maintenances))
	for _, m := range r.maintenances {
		out = append(out, *m)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeMaintenanceRepo) FindMaintenance(ctx context.Context, id uint64) (*entities.Maintenance, error) {
	m, ok := r.maintenances[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMaintenanceRepo) CreateMaintenanceInTx(ctx context.Context, tx pgx.Tx, m entities.Maintenance) (uint64, error) {
	m.ID = r.nextID
	r.nextID++
	r.maintenances[m.ID] = &m
	return m.ID, nil
}

func (r *fakeMaintenanceRepo) Progress(ctx context.Context, q repositories.Querier, id uint64, technicianID uint64, reason *string) error {
	m, ok := r.maintenances[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.TechnicianID = &technicianID
	if reason != nil {
		m.Reason = *reason
	}
	return nil
}

func (r *fakeMaintenanceRepo) CompleteInTx(ctx context.Context, tx pgx.Tx, id uint64, endDate time.Time, result bool, detail *string) error {
	m, ok := r.maintenances[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.EndDate = &endDate
	m.Result = &result
	if detail != nil {
		m.Detail = detail
	}
	return nil
}

func (r *fakeMaintenanceRepo) CreateInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice entities.MaintenanceInvoice) (uint64, error) {
	invoice.ID = uint64(len(r.invoices) + 1)
	r.invoices = append(r.invoices, invoice)
	return invoice.ID, nil
}

func (r *fakeMaintenanceRepo) FindInvoicesByMaintenanceIDs(ctx context.Context, maintenanceIDs []uint64) ([]entities.MaintenanceInvoice, error) {
	out := make([]entities.MaintenanceInvoice, 0)
	for _, inv := range r.invoices {
		for _, id := range maintenanceIDs {
			if inv.MaintenanceID == id {
				out = append(out, inv)
			}
		}
	}
	return out, nil
}

type fakeRequestRepo struct {
	requests map[uint64]*entities.MaintenanceRequest
	details  []entities.MaintenanceRequestDetail
	nextID   uint64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uint64]*entities.MaintenanceRequest), nextID: 1}
}

func (r *fakeRequestRepo) addRequest(request entities.MaintenanceRequest) {
	copied := request
	r.requests[copied.ID] = &copied
	if copied.ID >= r.nextID {
		r.nextID = copied.ID + 1
	}
}

func (r *fakeRequestRepo) addDetail(detail entities.MaintenanceRequestDetail) {
	detail.ID = uint64(len(r.details) + 1)
	r.details = append(r.details, detail)
}

func (r *fakeRequestRepo) GetRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	out := make([]entities.MaintenanceRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, *req)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeRequestRepo) FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) CreateRequestInTx(ctx context.Context, tx pgx.Tx, request entities.MaintenanceRequest) (uint64, error) {
	request.ID = r.nextID
	r.nextID++
	r.requests[request.ID] = &request
	return request.ID, nil
}

func (r *fakeRequestRepo) CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.MaintenanceRequestDetail) (uint64, error) {
	detail.ID = uint64(len(r.details) + 1)
	r.details = append(r.details, detail)
	return detail.ID, nil
}

func (r *fakeRequestRepo) TryConfirm(ctx context.Context, q repositories.Querier, id uint64, confirmerID uint64) (bool, error) {
	req, ok := r.requests[id]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if req.Status != entities.RequestStatusPending {
		return false, nil
	}
	req.Status = entities.RequestStatusConfirmed
	req.ConfirmedBy = &confirmerID
	return true, nil
}

func (r *fakeRequestRepo) TryCancel(ctx context.Context, q repositories.Querier, id uint64) (bool, error) {
	req, ok := r.requests[id]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if req.Status != entities.RequestStatusPending {
		return false, nil
	}
	req.Status = entities.RequestStatusCancelled
	return true, nil
}

func (r *fakeRequestRepo) SetJobRef(ctx context.Context, q repositories.Querier, id uint64, jobRef string) error {
	req, ok := r.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.JobRef = &jobRef
	return nil
}

func (r *fakeRequestRepo) FindDetailsByRequestID(ctx context.Context, requestID uint64) ([]entities.MaintenanceRequestDetail, error) {
	out := make([]entities.MaintenanceRequestDetail, 0)
	for _, d := range r.details {
		if d.RequestID == requestID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) FindDetailsByRequestIDs(ctx context.Context, requestIDs []uint64) ([]entities.MaintenanceRequestDetail, error) {
	out := make([]entities.MaintenanceRequestDetail, 0)
	for _, id := range requestIDs {
		details, _ := r.FindDetailsByRequestID(ctx, id)
		out = append(out, details...)
	}
	return out, nil
}

func (r *fakeRequestRepo) SetDetailMaintenanceID(ctx context.Context, q repositories.Querier, detailID uint64, maintenanceID uint64) error {
	for i := range r.details {
		if r.details[i].ID == detailID {
			id := maintenanceID
			r.details[i].MaintenanceID = &id
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeDisposalRepo struct {
	disposals map[uint64]*entities.Disposal
	details   []entities.DisposalDetail
	nextID    uint64
}

func newFakeDisposalRepo() *fakeDisposalRepo {
	return &fakeDisposalRepo{disposals: make(map[uint64]*entities.Disposal), nextID: 1}
}

func (r *fakeDisposalRepo) GetDisposals(ctx context.Context, filter types.Filter) ([]entities.Disposal, uint64, error) {
	out := make([]entities.Disposal, 0, len(r.disposals))
	for _, d := range r.disposals {
		out = append(out, *d)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeDisposalRepo) FindDisposal(ctx context.Context, id uint64) (*entities.Disposal, error) {
	d, ok := r.disposals[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDisposalRepo) CreateDisposalInTx(ctx context.Context, tx pgx.Tx, disposal entities.Disposal) (uint64, error) {
	disposal.ID = r.nextID
	r.nextID++
	disposal.CreatedAt = time.Now()
	r.disposals[disposal.ID] = &disposal
	return disposal.ID, nil
}

func (r *fakeDisposalRepo) CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.DisposalDetail) (uint64, error) {
	detail.ID = uint64(len(r.details) + 1)
	r.details = append(r.details, detail)
	return detail.ID, nil
}

func (r *fakeDisposalRepo) FindDetailsByDisposalID(ctx context.Context, disposalID uint64) ([]entities.DisposalDetail, error) {
	out := make([]entities.DisposalDetail, 0)
	for _, d := range r.details {
		if d.DisposalID == disposalID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDisposalRepo) FindDetailsByDisposalIDs(ctx context.Context, disposalIDs []uint64) ([]entities.DisposalDetail, error) {
	out := make([]entities.DisposalDetail, 0)
	for _, id := range disposalIDs {
		details, _ := r.FindDetailsByDisposalID(ctx, id)
		out = append(out, details...)
	}
	return out, nil
}

type fakePlanRepo struct {
	plans  map[uint64]*entities.MaintenancePlan
	nextID uint64
}

func newFakePlanRepo(plans ...entities.MaintenancePlan) *fakePlanRepo {
	repo := &fakePlanRepo{plans: make(map[uint64]*entities.MaintenancePlan), nextID: 1}
	for i := range plans {
		p := plans[i]
		repo.plans[p.ID] = &p
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (r *fakePlanRepo) GetPlans(ctx context.Context, filter types.Filter) ([]entities.MaintenancePlan, uint64, error) {
	out := make([]entities.MaintenancePlan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, *p)
	}
	return out, uint64(len(out)), nil
}

func (r *fakePlanRepo) FindPlan(ctx context.Context, id uint64) (*entities.MaintenancePlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlanRepo) CreatePlan(ctx context.Context, plan entities.MaintenancePlan) (uint64, error) {
	plan.ID = r.nextID
	r.nextID++
	r.plans[plan.ID] = &plan
	return plan.ID, nil
}

func (r *fakePlanRepo) UpdatePlan(ctx context.Context, id uint64, frequency *string, nextDueDate *time.Time, active *bool) error {
	p, ok := r.plans[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if frequency != nil {
		p.Frequency = *frequency
	}
	if nextDueDate != nil {
		p.NextDueDate = *nextDueDate
	}
	if active != nil {
		p.Active = *active
	}
	return nil
}

func (r *fakePlanRepo) FindDue(ctx context.Context, now time.Time) ([]entities.MaintenancePlan, error) {
	out := make([]entities.MaintenancePlan, 0)
	for _, p := range r.plans {
		if p.Active && !p.NextDueDate.After(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) AdvanceNextDue(ctx context.Context, id uint64, nextDueDate time.Time) error {
	p, ok := r.plans[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.NextDueDate = nextDueDate
	return nil
}

type fakeEquipmentRepo struct {
	equipments map[uint64]entities.Equipment
}

func newFakeEquipmentRepo(equipments ...entities.Equipment) *fakeEquipmentRepo {
	repo := &fakeEquipmentRepo{equipments: make(map[uint64]entities.Equipment)}
	for _, e := range equipments {
		repo.equipments[e.ID] = e
	}
	return repo
}

func (r *fakeEquipmentRepo) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	out := make([]entities.Equipment, 0, len(r.equipments))
	for _, e := range r.equipments {
		out = append(out, e)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeEquipmentRepo) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	e, ok := r.equipments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEquipmentRepo) FindEquipmentsByIDs(ctx context.Context, ids []uint64) ([]entities.Equipment, error) {
	out := make([]entities.Equipment, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.equipments[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) CreateEquipment(ctx context.Context, equipment entities.Equipment) (uint64, error) {
	equipment.ID = uint64(len(r.equipments) + 1)
	r.equipments[equipment.ID] = equipment
	return equipment.ID, nil
}

func (r *fakeEquipmentRepo) UpdateEquipment(ctx context.Context, equipment entities.Equipment) error {
	if _, ok := r.equipments[equipment.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.equipments[equipment.ID] = equipment
	return nil
}

type fakeBranchRepo struct {
	branches map[uint64]entities.Branch
}

func newFakeBranchRepo(branches ...entities.Branch) *fakeBranchRepo {
	repo := &fakeBranchRepo{branches: make(map[uint64]entities.Branch)}
	for _, b := range branches {
		repo.branches[b.ID] = b
	}
	return repo
}

func (r *fakeBranchRepo) GetBranches(ctx context.Context, filter types.Filter) ([]entities.Branch, uint64, error) {
	out := make([]entities.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, b)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeBranchRepo) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBranchRepo) FindBranchesByIDs(ctx context.Context, ids []uint64) ([]entities.Branch, error) {
	out := make([]entities.Branch, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.branches[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBranchRepo) CreateBranch(ctx context.Context, branch entities.Branch) (uint64, error) {
	branch.ID = uint64(len(r.branches) + 1)
	r.branches[branch.ID] = branch
	return branch.ID, nil
}

func (r *fakeBranchRepo) UpdateBranch(ctx context.Context, branch entities.Branch) error {
	if _, ok := r.branches[branch.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.branches[branch.ID] = branch
	return nil
}

type fakeUserRepo struct {
	users   map[uint64]entities.User
	lookups int
}

func newFakeUserRepo(users ...entities.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint64]entities.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	r.lookups++
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindUsersByIDs(ctx context.Context, ids []uint64) ([]entities.User, error) {
	out := make([]entities.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindUsersByRole(ctx context.Context, role string) ([]entities.User, error) {
	out := make([]entities.User, 0)
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user entities.User) (uint64, error) {
	user.ID = uint64(len(r.users) + 1)
	r.users[user.ID] = user
	return user.ID, nil
}

type fakeCacheRepo struct {
	store map[string]string
	hits  int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{store: make(map[string]string)}
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	value, ok := r.store[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	r.hits++
	return value, nil
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.store[key] = value.(string)
	return nil
}

func (r *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(r.store, key)
	}
	return nil
}

type notifiedEvent struct {
	kind    string
	payload map[string]interface{}
	roles   []string
	userIDs []uint64
}

type fakeNotifier struct {
	events []notifiedEvent
}

func (n *fakeNotifier) Notify(ctx context.Context, eventKind string, payload map[string]interface{}, roles []string) {
	n.events = append(n.events, notifiedEvent{kind: eventKind, payload: payload, roles: roles})
}

func (n *fakeNotifier) NotifyUsers(ctx context.Context, eventKind string, payload map[string]interface{}, userIDs []uint64) {
	n.events = append(n.events, notifiedEvent{kind: eventKind, payload: payload, userIDs: userIDs})
}

type scheduledJob struct {
	name     string
	fireAt   time.Time
	timezone string
	payload  interface{}
}

type fakeScheduler struct {
	jobs    []scheduledJob
	failErr error
}

func (s *fakeScheduler) Schedule(ctx context.Context, name string, fireAt time.Time, timezone string, payload interface{}) (string, error) {
	if s.failErr != nil {
		return "", s.failErr
	}
	s.jobs = append(s.jobs, scheduledJob{name: name, fireAt: fireAt, timezone: timezone, payload: payload})
	return "job-ref-" + name, nil
}

func (s *fakeScheduler) Delete(ctx context.Context, name string) error {
	return nil
}
