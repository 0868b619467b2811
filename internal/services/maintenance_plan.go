package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
)

type MaintenancePlanServiceInterface interface {
	GetPlans(ctx context.Context, filter types.Filter) ([]dto.MaintenancePlanResponseDTO, uint64, error)
	CreatePlan(ctx context.Context, data dto.CreateMaintenancePlanDTO) (uint64, error)
	UpdatePlan(ctx context.Context, id uint64, data dto.UpdateMaintenancePlanDTO) error
	// RunDueReminders emits one reminder per overdue active plan and advances
	// its next due date past now. Meant to be hit by an external cron; it
	// never mutates unit status.
	RunDueReminders(ctx context.Context, now time.Time) (int, error)
}

type MaintenancePlanService struct {
	planRepo      repositories.MaintenancePlanRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	notifier      NotificationServiceInterface
	logger        *zap.Logger
}

func NewMaintenancePlanService(
	planRepo repositories.MaintenancePlanRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	notifier NotificationServiceInterface,
	logger *zap.Logger,
) MaintenancePlanServiceInterface {
	return &MaintenancePlanService{
		planRepo:      planRepo,
		equipmentRepo: equipmentRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *MaintenancePlanService) CreatePlan(ctx context.Context, data dto.CreateMaintenancePlanDTO) (uint64, error) {
	if _, err := s.equipmentRepo.FindEquipment(ctx, data.EquipmentID); err != nil {
		return 0, err
	}

	return s.planRepo.CreatePlan(ctx, entities.MaintenancePlan{
		EquipmentID: data.EquipmentID,
		Frequency:   data.Frequency,
		NextDueDate: data.NextDueDate,
		Active:      true,
	})
}

func (s *MaintenancePlanService) UpdatePlan(ctx context.Context, id uint64, data dto.UpdateMaintenancePlanDTO) error {
	var nextDueDate *time.Time
	if data.NextDueDate.Valid {
		nextDueDate = &data.NextDueDate.Time
	}
	return s.planRepo.UpdatePlan(ctx, id, data.Frequency, nextDueDate, data.Active)
}

func (s *MaintenancePlanService) GetPlans(ctx context.Context, filter types.Filter) ([]dto.MaintenancePlanResponseDTO, uint64, error) {
	plans, total, err := s.planRepo.GetPlans(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(plans) == 0 {
		return []dto.MaintenancePlanResponseDTO{}, total, nil
	}

	equipmentIDs := make([]uint64, 0, len(plans))
	for _, p := range plans {
		equipmentIDs = append(equipmentIDs, p.EquipmentID)
	}
	equipments, err := s.equipmentRepo.FindEquipmentsByIDs(ctx, distinct(equipmentIDs))
	if err != nil {
		return nil, 0, err
	}
	equipmentByID := make(map[uint64]entities.Equipment, len(equipments))
	for _, e := range equipments {
		equipmentByID[e.ID] = e
	}

	result := make([]dto.MaintenancePlanResponseDTO, 0, len(plans))
	for _, p := range plans {
		projected := dto.MaintenancePlanResponseDTO{
			ID:          p.ID,
			Frequency:   p.Frequency,
			NextDueDate: fmtTime(p.NextDueDate),
			Active:      p.Active,
			CreatedAt:   fmtTime(p.CreatedAt),
		}
		if e, ok := equipmentByID[p.EquipmentID]; ok {
			projected.Equipment = dto.ShortEquipmentDTO{ID: e.ID, Name: e.Name, Category: e.Category}
		}
		result = append(result, projected)
	}
	return result, total, nil
}

func (s *MaintenancePlanService) RunDueReminders(ctx context.Context, now time.Time) (int, error) {
	plans, err := s.planRepo.FindDue(ctx, now)
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, plan := range plans {
		s.notifier.Notify(ctx, EventMaintenancePlanDue, map[string]interface{}{
			"plan_id":      plan.ID,
			"equipment_id": plan.EquipmentID,
			"due_date":     plan.NextDueDate,
			"frequency":    plan.Frequency,
		}, []string{entities.RoleManager, entities.RoleTechnician})

		next := advancePastNow(plan.NextDueDate, plan.Frequency, now)
		if err := s.planRepo.AdvanceNextDue(ctx, plan.ID, next); err != nil {
			s.logger.Error("failed to advance maintenance plan",
				zap.Uint64("planId", plan.ID), zap.Error(err))
			continue
		}
		reminded++
	}
	return reminded, nil
}

// advancePastNow steps the due date forward by the frequency until it lands
// in the future, so a plan overdue by several periods fires one reminder, not
// one per missed period.
func advancePastNow(due time.Time, frequency string, now time.Time) time.Time {
	next := due
	for !next.After(now) {
		switch frequency {
		case entities.FrequencyDaily:
			next = next.AddDate(0, 0, 1)
		case entities.FrequencyWeekly:
			next = next.AddDate(0, 0, 7)
		case entities.FrequencyMonthly:
			next = next.AddDate(0, 1, 0)
		case entities.FrequencyQuarterly:
			next = next.AddDate(0, 3, 0)
		case entities.FrequencyYearly:
			next = next.AddDate(1, 0, 0)
		default:
			return now.AddDate(0, 1, 0)
		}
	}
	return next
}
