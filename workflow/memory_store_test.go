package workflow

import (
	"context"
	"testing"
	"time"

	"fiber-erp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTransfer(t *testing.T, store *MemoryStore, status models.TransferStatus) *models.Transfer {
	t.Helper()
	code, err := store.NextTransferCode(context.Background())
	require.NoError(t, err)

	transfer := &models.Transfer{
		TransferCode: code,
		TransferType: models.TransferTypeInventory,
		FromBranchID: 10,
		ToBranchID:   20,
		Status:       status,
		RequestedBy:  1,
		RequestedAt:  time.Now(),
		IsActive:     true,
	}
	entry := &models.TransferLog{
		Action:      models.TransferActionCreate,
		ToStatus:    models.TransferStatusPending,
		ActionBy:    1,
		ActionAt:    time.Now(),
		OperationID: code + "-create",
	}
	require.NoError(t, store.InsertTransfer(context.Background(), transfer, entry))
	return transfer
}

func TestMemoryStoreCAS(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	transfer := seedTransfer(t, store, models.TransferStatusPending)

	stamp := StatusStamp{Action: models.TransferActionApprove, ActorID: 2, At: time.Now()}

	// Wrong expected status: no swap.
	swapped, err := store.CASUpdateStatus(ctx, transfer.ID, models.TransferStatusApproved, models.TransferStatusInTransit, stamp)
	require.NoError(t, err)
	assert.False(t, swapped)

	swapped, err = store.CASUpdateStatus(ctx, transfer.ID, models.TransferStatusPending, models.TransferStatusApproved, stamp)
	require.NoError(t, err)
	assert.True(t, swapped)

	loaded, err := store.LoadTransfer(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusApproved, loaded.Status)
	assert.Equal(t, uint(2), loaded.ApprovedBy)
	require.NotNil(t, loaded.ApprovedAt)

	// Replay with the stale expectation fails now.
	swapped, err = store.CASUpdateStatus(ctx, transfer.ID, models.TransferStatusPending, models.TransferStatusApproved, stamp)
	require.NoError(t, err)
	assert.False(t, swapped)
}

func TestMemoryStoreAppendLogIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	transfer := seedTransfer(t, store, models.TransferStatusPending)

	entry := &models.TransferLog{
		TransferID:  transfer.ID,
		Action:      models.TransferActionApprove,
		FromStatus:  models.TransferStatusPending,
		ToStatus:    models.TransferStatusApproved,
		ActionBy:    2,
		ActionAt:    time.Now(),
		OperationID: "op-1",
	}

	require.NoError(t, store.AppendLog(ctx, entry))
	require.NoError(t, store.AppendLog(ctx, entry))

	logs, err := store.ListLogs(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2, "duplicate operation id must not append twice")
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := seedTransfer(t, store, models.TransferStatusPending)
	second := seedTransfer(t, store, models.TransferStatusApproved)

	branch := uint(10)
	status := models.TransferStatusApproved
	transferType := models.TransferTypeInventory

	all, err := store.QueryTransfers(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byStatus, err := store.QueryTransfers(ctx, Filter{Status: &status})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, second.ID, byStatus[0].ID)

	byBranch, err := store.QueryTransfers(ctx, Filter{BranchID: &branch, Type: &transferType})
	require.NoError(t, err)
	require.Len(t, byBranch, 2)
	assert.Equal(t, first.ID, byBranch[0].ID)

	other := uint(30)
	none, err := store.QueryTransfers(ctx, Filter{BranchID: &other})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreCodesNeverRepeat(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := store.NextTransferCode(ctx)
		require.NoError(t, err)
		assert.False(t, seen[code], "code %s issued twice", code)
		seen[code] = true
	}
}
