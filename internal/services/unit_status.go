package services

import (
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
)

// enrollableStatuses are the stable states from which a unit may be claimed
// by a new transfer or maintenance. Everything else is either blocked (some
// workflow already owns the unit) or terminal (disposed).
var enrollableStatuses = []entities.UnitStatus{
	entities.UnitStatusActive,
	entities.UnitStatusInStock,
}

// State-conflict constructors. Each names the unit's live status; the message
// reaches the API caller verbatim.

func errCannotTransfer(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot transfer equipment unit in status: %s", status.Display())
}

func errCannotReceive(unitID uint64, status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot receive equipment unit %d in status: %s", unitID, status.Display())
}

func errCannotRelease(unitID uint64, status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot release equipment unit %d in status: %s", unitID, status.Display())
}

func errCannotCreateMaintenance(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot create maintenance for equipment unit in status: %s", status.Display())
}

func errCannotProgressMaintenance(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot progress maintenance for equipment unit in status: %s", status.Display())
}

func errCannotCompleteMaintenance(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot complete maintenance for equipment unit in status: %s", status.Display())
}

func errCannotDispose(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot dispose equipment unit in status: %s", status.Display())
}

func errCannotActivate(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot activate equipment unit in status: %s", status.Display())
}

func errCannotStock(status entities.UnitStatus) error {
	return apperrors.NewStateConflictError("Cannot move to stock equipment unit in status: %s", status.Display())
}
