package entities

// UnitStatus is the lifecycle status of one equipment unit. The status field
// doubles as a cooperative single-owner flag: a unit in a blocked status is
// already claimed by a workflow and cannot enter a new one.
type UnitStatus string

const (
	UnitStatusActive          UnitStatus = "active"
	UnitStatusInactive        UnitStatus = "inactive"
	UnitStatusTemporaryUrgent UnitStatus = "temporary_urgent"
	UnitStatusInProgress      UnitStatus = "in_progress"
	UnitStatusReady           UnitStatus = "ready"
	UnitStatusFailed          UnitStatus = "failed"
	UnitStatusMoving          UnitStatus = "moving"
	UnitStatusInStock         UnitStatus = "in_stock"
	UnitStatusDeleted         UnitStatus = "deleted"
	UnitStatusDisposed        UnitStatus = "disposed"
)

var unitStatuses = map[UnitStatus]struct{}{
	UnitStatusActive:          {},
	UnitStatusInactive:        {},
	UnitStatusTemporaryUrgent: {},
	UnitStatusInProgress:      {},
	UnitStatusReady:           {},
	UnitStatusFailed:          {},
	UnitStatusMoving:          {},
	UnitStatusInStock:         {},
	UnitStatusDeleted:         {},
	UnitStatusDisposed:        {},
}

func (s UnitStatus) IsValid() bool {
	_, ok := unitStatuses[s]
	return ok
}

var unitStatusDisplay = map[UnitStatus]string{
	UnitStatusActive:          "Active",
	UnitStatusInactive:        "Inactive",
	UnitStatusTemporaryUrgent: "TemporaryUrgent",
	UnitStatusInProgress:      "InProgress",
	UnitStatusReady:           "Ready",
	UnitStatusFailed:          "Failed",
	UnitStatusMoving:          "Moving",
	UnitStatusInStock:         "InStock",
	UnitStatusDeleted:         "Deleted",
	UnitStatusDisposed:        "Disposed",
}

// Display is the human-readable status name used in error messages and
// notifications.
func (s UnitStatus) Display() string {
	if name, ok := unitStatusDisplay[s]; ok {
		return name
	}
	return string(s)
}

// Blocked reports whether the unit is already claimed by a workflow and may
// not be enrolled into a new transfer or maintenance.
func (s UnitStatus) Blocked() bool {
	switch s {
	case UnitStatusInactive, UnitStatusTemporaryUrgent, UnitStatusInProgress,
		UnitStatusReady, UnitStatusFailed, UnitStatusDeleted, UnitStatusMoving:
		return true
	}
	return false
}

// TransferStatus is the status of a batch transfer.
type TransferStatus string

const (
	TransferStatusPending         TransferStatus = "pending"
	TransferStatusCompleted       TransferStatus = "completed"
	TransferStatusCancelRequested TransferStatus = "cancel_requested"
	TransferStatusCancelled       TransferStatus = "cancelled"
)

// RequestStatus is the status of a maintenance request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusConfirmed RequestStatus = "confirmed"
	RequestStatusCancelled RequestStatus = "cancelled"
)
