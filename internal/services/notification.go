package services

import (
	"context"

	"go.uber.org/zap"

	"asset-system/internal/repositories"
)

// Workflow event kinds fanned out to the notification sink.
const (
	EventTransferCreated           = "transfer.created"
	EventTransferCompleted         = "transfer.completed"
	EventMaintenanceCompleted      = "maintenance.completed"
	EventDisposalCreated           = "disposal.created"
	EventMaintenanceRequestCreated = "maintenance_request.created"
	EventMaintenanceRequestConfirm = "maintenance_request.confirmed"
	EventMaintenancePlanDue        = "maintenance_plan.due"
)

// NotificationServiceInterface is the fan-out sink for workflow events.
// Delivery failures are logged and swallowed here; a lost notification never
// aborts an otherwise-successful workflow.
type NotificationServiceInterface interface {
	Notify(ctx context.Context, eventKind string, payload map[string]interface{}, roles []string)
	NotifyUsers(ctx context.Context, eventKind string, payload map[string]interface{}, userIDs []uint64)
}

type NotificationService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewNotificationService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{userRepo: userRepo, logger: logger}
}

func (s *NotificationService) Notify(ctx context.Context, eventKind string, payload map[string]interface{}, roles []string) {
	recipients := make([]uint64, 0)
	for _, role := range roles {
		users, err := s.userRepo.FindUsersByRole(ctx, role)
		if err != nil {
			s.logger.Warn("failed to resolve notification recipients",
				zap.String("event", eventKind), zap.String("role", role), zap.Error(err))
			continue
		}
		for _, u := range users {
			recipients = append(recipients, u.ID)
		}
	}
	s.deliver(eventKind, payload, recipients)
}

func (s *NotificationService) NotifyUsers(ctx context.Context, eventKind string, payload map[string]interface{}, userIDs []uint64) {
	s.deliver(eventKind, payload, userIDs)
}

func (s *NotificationService) deliver(eventKind string, payload map[string]interface{}, recipients []uint64) {
	s.logger.Info("workflow notification",
		zap.String("event", eventKind),
		zap.Uint64s("recipients", recipients),
		zap.Any("payload", payload),
	)
}
