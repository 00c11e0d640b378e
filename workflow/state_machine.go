package workflow

import "fiber-erp/models"

// transitions is the complete edge set of the transfer lifecycle. CANCEL is
// handled separately: it is legal from every non-terminal status.
var transitions = map[models.TransferStatus]map[models.TransferAction]models.TransferStatus{
	models.TransferStatusPending: {
		models.TransferActionApprove: models.TransferStatusApproved,
		models.TransferActionReject:  models.TransferStatusRejected,
	},
	models.TransferStatusApproved: {
		models.TransferActionDispatch: models.TransferStatusInTransit,
	},
	models.TransferStatusInTransit: {
		models.TransferActionReceive: models.TransferStatusReceived,
	},
}

// NextStatus decides the status a transfer moves to when action is applied
// from current. It performs no I/O; illegal requests fail with an
// invalid_transition error and never clamp to a nearby status.
func NextStatus(current models.TransferStatus, action models.TransferAction) (models.TransferStatus, error) {
	if current.Terminal() {
		return "", WrapError(KindInvalidTransition, ErrTerminalState,
			"cannot %s transfer in status %s", action, current)
	}

	if action == models.TransferActionCancel {
		return models.TransferStatusCancelled, nil
	}

	next, ok := transitions[current][action]
	if !ok {
		return "", NewError(KindInvalidTransition,
			"action %s is not allowed from status %s", action, current)
	}

	return next, nil
}
