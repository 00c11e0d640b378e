package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store *MemoryStore
	caps  *fakeCaps
	dir   *fakeDirectory
	svc   *Service
}

func newTestEnv() *testEnv {
	caps := &fakeCaps{}
	dir := &fakeDirectory{
		branches:    map[uint]bool{10: true, 20: true},
		actors:      map[uint]bool{1: true, 2: true, 3: true, 4: true},
		memberships: map[uint][]uint{},
	}
	store := NewMemoryStore()
	svc := NewService(store, NewGate(caps, dir, nil), dir)
	return &testEnv{store: store, caps: caps, dir: dir, svc: svc}
}

func (e *testEnv) createPending(t *testing.T) *models.Transfer {
	t.Helper()
	transfer, err := e.svc.Create(context.Background(), CreateTransferInput{
		TransferType: models.TransferTypeJob,
		FromBranchID: 10,
		ToBranchID:   20,
		Reason:       "urgent",
		ActorID:      1,
	})
	require.NoError(t, err)
	return transfer
}

func TestCreateTransfer(t *testing.T) {
	env := newTestEnv()

	transfer := env.createPending(t)

	assert.Equal(t, models.TransferStatusPending, transfer.Status)
	assert.Regexp(t, `^TR\d{6}\d{4}$`, transfer.TransferCode)
	assert.Equal(t, uint(1), transfer.RequestedBy)
	assert.False(t, transfer.RequestedAt.IsZero())
	assert.True(t, transfer.IsActive)

	logs, err := env.store.ListLogs(context.Background(), transfer.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.TransferActionCreate, logs[0].Action)
	assert.Equal(t, models.TransferStatusPending, logs[0].ToStatus)
	assert.NotEmpty(t, logs[0].OperationID)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateTransferInput
	}{
		{"equal branches", CreateTransferInput{TransferType: models.TransferTypeAsset, FromBranchID: 10, ToBranchID: 10, ActorID: 1}},
		{"unknown type", CreateTransferInput{TransferType: "FURNITURE", FromBranchID: 10, ToBranchID: 20, ActorID: 1}},
		{"unknown from branch", CreateTransferInput{TransferType: models.TransferTypeJob, FromBranchID: 99, ToBranchID: 20, ActorID: 1}},
		{"unknown to branch", CreateTransferInput{TransferType: models.TransferTypeJob, FromBranchID: 10, ToBranchID: 99, ActorID: 1}},
		{"unknown actor", CreateTransferInput{TransferType: models.TransferTypeJob, FromBranchID: 10, ToBranchID: 20, ActorID: 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	// Nothing may have been persisted by the failed attempts.
	transfers, err := env.store.QueryTransfers(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestLifecycleScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.caps.grant(2, "TRANSFER.APPROVE")
	env.caps.grant(4, "TRANSFER.RECEIVE")
	env.dir.memberships[3] = []uint{10}
	env.dir.memberships[4] = []uint{20}

	transfer := env.createPending(t)
	id := transfer.ID

	approved, err := env.svc.Approve(ctx, id, 2, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusApproved, approved.Status)
	assert.Equal(t, uint(2), approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	// Actor 3 has branch membership but no dispatch capability yet.
	_, err = env.svc.Dispatch(ctx, id, 3, "")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	unchanged, err := env.store.LoadTransfer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusApproved, unchanged.Status)

	env.caps.grant(3, "TRANSFER.DISPATCH")
	inTransit, err := env.svc.Dispatch(ctx, id, 3, "truck 7")
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusInTransit, inTransit.Status)
	assert.Equal(t, uint(3), inTransit.DispatchedBy)

	received, err := env.svc.Receive(ctx, id, 4, "complete")
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusReceived, received.Status)
	assert.Equal(t, uint(4), received.ReceivedBy)
	require.NotNil(t, received.ReceivedAt)

	logs, err := env.store.ListLogs(ctx, id)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	wantActions := []models.TransferAction{
		models.TransferActionCreate,
		models.TransferActionApprove,
		models.TransferActionDispatch,
		models.TransferActionReceive,
	}
	for i, action := range wantActions {
		assert.Equal(t, action, logs[i].Action)
	}

	// Replaying the log must reconstruct the stored status.
	for i := 1; i < len(logs); i++ {
		assert.Equal(t, logs[i-1].ToStatus, logs[i].FromStatus)
		assert.False(t, logs[i].ActionAt.Before(logs[i-1].ActionAt))
	}
	assert.Equal(t, received.Status, logs[len(logs)-1].ToStatus)

	// Terminal: nothing moves a received transfer.
	env.caps.grant(2, "TRANSFER.REJECT")
	_, err = env.svc.Reject(ctx, id, 2, "too late")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.True(t, errors.Is(err, ErrTerminalState))

	logs, _ = env.store.ListLogs(ctx, id)
	assert.Len(t, logs, 4, "failed transitions must not log")
}

func TestConcurrentDispatchExactlyOneWins(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.caps.grant(2, "TRANSFER.APPROVE")
	env.caps.grant(3, "TRANSFER.DISPATCH")
	env.caps.grant(4, "TRANSFER.DISPATCH")
	env.dir.memberships[3] = []uint{10}
	env.dir.memberships[4] = []uint{10}

	transfer := env.createPending(t)
	_, err := env.svc.Approve(ctx, transfer.ID, 2, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, actor := range []uint{3, 4} {
		wg.Add(1)
		go func(actorID uint) {
			defer wg.Done()
			_, err := env.svc.Dispatch(ctx, transfer.ID, actorID, "")
			results <- err
		}(actor)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case KindOf(err) == KindConflict || KindOf(err) == KindInvalidTransition:
			// The loser either lost the CAS or observed the new status on load.
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	final, err := env.store.LoadTransfer(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusInTransit, final.Status)

	logs, err := env.store.ListLogs(ctx, transfer.ID)
	require.NoError(t, err)
	var dispatchEntries int
	for _, l := range logs {
		if l.Action == models.TransferActionDispatch {
			dispatchEntries++
		}
	}
	assert.Equal(t, 1, dispatchEntries, "exactly one DISPATCH entry expected")
}

type casLoserStore struct {
	Store
}

func (s casLoserStore) CASUpdateStatus(ctx context.Context, id types.SnowflakeID, expected, next models.TransferStatus, stamp StatusStamp) (bool, error) {
	return false, nil
}

func TestLostSwapIsConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.caps.grant(2, "TRANSFER.APPROVE")

	transfer := env.createPending(t)

	svc := NewService(casLoserStore{env.store}, NewGate(env.caps, env.dir, nil), env.dir)
	_, err := svc.Approve(ctx, transfer.ID, 2, "")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	logs, _ := env.store.ListLogs(ctx, transfer.ID)
	assert.Len(t, logs, 1, "a lost swap must not log")
}

func TestCancelAdministrativeOverride(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.caps.grant(2, "TRANSFER.APPROVE", "TRANSFER.CANCEL")

	transfer := env.createPending(t)
	_, err := env.svc.Approve(ctx, transfer.ID, 2, "")
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(ctx, transfer.ID, 2, "branch closed")
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCancelled, cancelled.Status)

	_, err = env.svc.Approve(ctx, transfer.ID, 2, "")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestInactiveTransferIsNotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.caps.grant(2, "TRANSFER.APPROVE")

	transfer := env.createPending(t)

	env.store.mu.Lock()
	env.store.transfers[transfer.ID].IsActive = false
	env.store.mu.Unlock()

	_, err := env.svc.Approve(ctx, transfer.ID, 2, "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUnknownTransferIsNotFound(t *testing.T) {
	env := newTestEnv()
	env.caps.grant(2, "TRANSFER.APPROVE")

	_, err := env.svc.Approve(context.Background(), 424242, 2, "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

type flakyLogStore struct {
	Store
	mu       sync.Mutex
	failures int
}

func (s *flakyLogStore) AppendLog(ctx context.Context, entry *models.TransferLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("transient append failure")
	}
	return s.Store.AppendLog(ctx, entry)
}

func TestLogAppendIsRetried(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.caps.grant(2, "TRANSFER.APPROVE")

	transfer := env.createPending(t)

	flaky := &flakyLogStore{Store: env.store, failures: 2}
	svc := NewService(flaky, NewGate(env.caps, env.dir, nil), env.dir)

	approved, err := svc.Approve(ctx, transfer.ID, 2, "")
	require.NoError(t, err, "log trouble must not fail a committed transition")
	assert.Equal(t, models.TransferStatusApproved, approved.Status)

	logs, err := env.store.ListLogs(ctx, transfer.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.TransferActionApprove, logs[1].Action)
}
