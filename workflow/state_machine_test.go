package workflow

import (
	"errors"
	"testing"

	"fiber-erp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusValidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current models.TransferStatus
		action  models.TransferAction
		want    models.TransferStatus
	}{
		{"approve pending", models.TransferStatusPending, models.TransferActionApprove, models.TransferStatusApproved},
		{"reject pending", models.TransferStatusPending, models.TransferActionReject, models.TransferStatusRejected},
		{"dispatch approved", models.TransferStatusApproved, models.TransferActionDispatch, models.TransferStatusInTransit},
		{"receive in transit", models.TransferStatusInTransit, models.TransferActionReceive, models.TransferStatusReceived},
		{"cancel pending", models.TransferStatusPending, models.TransferActionCancel, models.TransferStatusCancelled},
		{"cancel approved", models.TransferStatusApproved, models.TransferActionCancel, models.TransferStatusCancelled},
		{"cancel in transit", models.TransferStatusInTransit, models.TransferActionCancel, models.TransferStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NextStatus(tt.current, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestNextStatusIllegalTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current models.TransferStatus
		action  models.TransferAction
	}{
		{"skip approval", models.TransferStatusPending, models.TransferActionDispatch},
		{"receive before dispatch", models.TransferStatusPending, models.TransferActionReceive},
		{"approve twice", models.TransferStatusApproved, models.TransferActionApprove},
		{"reject approved", models.TransferStatusApproved, models.TransferActionReject},
		{"dispatch in transit", models.TransferStatusInTransit, models.TransferActionDispatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextStatus(tt.current, tt.action)
			require.Error(t, err)
			assert.Equal(t, KindInvalidTransition, KindOf(err))
			assert.False(t, errors.Is(err, ErrTerminalState))
		})
	}
}

func TestNextStatusTerminalStates(t *testing.T) {
	terminals := []models.TransferStatus{
		models.TransferStatusReceived,
		models.TransferStatusRejected,
		models.TransferStatusCancelled,
	}
	actions := []models.TransferAction{
		models.TransferActionApprove,
		models.TransferActionReject,
		models.TransferActionDispatch,
		models.TransferActionReceive,
		models.TransferActionCancel,
	}

	for _, status := range terminals {
		for _, action := range actions {
			_, err := NextStatus(status, action)
			require.Error(t, err, "%s from %s must fail", action, status)
			assert.Equal(t, KindInvalidTransition, KindOf(err))
			assert.True(t, errors.Is(err, ErrTerminalState))
		}
	}
}
