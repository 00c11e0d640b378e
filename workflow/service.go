package workflow

import (
	"context"
	"log"
	"time"

	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/google/uuid"
)

// Service orchestrates the transfer lifecycle. It is the only component that
// mutates transfer status; everything else is read-only or decision-only.
// Safety under concurrent actors comes entirely from the store's CAS
// contract, so the service itself needs no locking.
type Service struct {
	store Store
	gate  *Gate
	dir   Directory
}

func NewService(store Store, gate *Gate, dir Directory) *Service {
	return &Service{store: store, gate: gate, dir: dir}
}

type CreateTransferInput struct {
	TransferType models.TransferType
	FromBranchID uint
	ToBranchID   uint
	Reason       string
	ActorID      uint
}

// Create validates the request, assigns a fresh transfer code and persists
// the transfer in PENDING together with its CREATE log entry in one unit of
// work. Nothing is persisted when validation fails.
func (s *Service) Create(ctx context.Context, in CreateTransferInput) (*models.Transfer, error) {
	if !in.TransferType.Valid() {
		return nil, NewError(KindValidation, "unknown transfer type %q", in.TransferType)
	}
	if in.FromBranchID == in.ToBranchID {
		return nil, NewError(KindValidation, "from and to branch must differ")
	}

	for _, branchID := range []uint{in.FromBranchID, in.ToBranchID} {
		exists, err := s.dir.BranchExists(ctx, branchID)
		if err != nil {
			return nil, WrapError(KindUnavailable, err, "branch lookup failed")
		}
		if !exists {
			return nil, NewError(KindValidation, "branch %d does not exist", branchID)
		}
	}

	exists, err := s.dir.ActorExists(ctx, in.ActorID)
	if err != nil {
		return nil, WrapError(KindUnavailable, err, "actor lookup failed")
	}
	if !exists {
		return nil, NewError(KindValidation, "actor %d does not exist", in.ActorID)
	}

	code, err := s.store.NextTransferCode(ctx)
	if err != nil {
		return nil, WrapError(KindUnavailable, err, "could not generate transfer code")
	}

	now := time.Now()
	transfer := &models.Transfer{
		TransferCode: code,
		TransferType: in.TransferType,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Status:       models.TransferStatusPending,
		Reason:       in.Reason,
		RequestedBy:  in.ActorID,
		RequestedAt:  now,
		IsActive:     true,
	}
	entry := &models.TransferLog{
		Action:      models.TransferActionCreate,
		ToStatus:    models.TransferStatusPending,
		Remarks:     in.Reason,
		ActionBy:    in.ActorID,
		ActionAt:    now,
		OperationID: uuid.New().String(),
	}

	if err := s.store.InsertTransfer(ctx, transfer, entry); err != nil {
		if KindOf(err) != KindUnknown {
			return nil, err
		}
		return nil, WrapError(KindUnavailable, err, "could not persist transfer")
	}

	return transfer, nil
}

func (s *Service) Approve(ctx context.Context, id types.SnowflakeID, actorID uint, remarks string) (*models.Transfer, error) {
	return s.transition(ctx, id, actorID, models.TransferActionApprove, remarks)
}

func (s *Service) Reject(ctx context.Context, id types.SnowflakeID, actorID uint, remarks string) (*models.Transfer, error) {
	return s.transition(ctx, id, actorID, models.TransferActionReject, remarks)
}

func (s *Service) Dispatch(ctx context.Context, id types.SnowflakeID, actorID uint, remarks string) (*models.Transfer, error) {
	return s.transition(ctx, id, actorID, models.TransferActionDispatch, remarks)
}

func (s *Service) Receive(ctx context.Context, id types.SnowflakeID, actorID uint, remarks string) (*models.Transfer, error) {
	return s.transition(ctx, id, actorID, models.TransferActionReceive, remarks)
}

// Cancel is the administrative override edge: legal from every non-terminal
// status, guarded by TRANSFER.CANCEL.
func (s *Service) Cancel(ctx context.Context, id types.SnowflakeID, actorID uint, remarks string) (*models.Transfer, error) {
	return s.transition(ctx, id, actorID, models.TransferActionCancel, remarks)
}

// transition implements the shared path: load, authorize, decide, CAS, log.
// The authorization check runs before the state machine so a permission
// failure never leaks which transitions would have been legal.
func (s *Service) transition(ctx context.Context, id types.SnowflakeID, actorID uint, action models.TransferAction, remarks string) (*models.Transfer, error) {
	transfer, err := s.store.LoadTransfer(ctx, id)
	if err != nil {
		if KindOf(err) != KindUnknown {
			return nil, err
		}
		return nil, WrapError(KindUnavailable, err, "could not load transfer %d", id)
	}
	if !transfer.IsActive {
		return nil, NewError(KindNotFound, "transfer %d not found", id)
	}

	if err := s.gate.CanPerform(ctx, actorID, transfer, action); err != nil {
		return nil, err
	}

	next, err := NextStatus(transfer.Status, action)
	if err != nil {
		return nil, err
	}

	stamp := StatusStamp{Action: action, ActorID: actorID, At: time.Now()}
	swapped, err := s.store.CASUpdateStatus(ctx, id, transfer.Status, next, stamp)
	if err != nil {
		return nil, WrapError(KindUnavailable, err, "status update for transfer %d failed", id)
	}
	if !swapped {
		return nil, NewError(KindConflict,
			"transfer %d was already moved out of %s by another actor", id, transfer.Status)
	}

	entry := &models.TransferLog{
		TransferID:  id,
		Action:      action,
		FromStatus:  transfer.Status,
		ToStatus:    next,
		Remarks:     remarks,
		ActionBy:    actorID,
		ActionAt:    stamp.At,
		OperationID: uuid.New().String(),
	}
	s.appendLogWithRetry(ctx, entry)

	refreshed, err := s.store.LoadTransfer(ctx, id)
	if err != nil {
		if KindOf(err) != KindUnknown {
			return nil, err
		}
		return nil, WrapError(KindUnavailable, err, "could not reload transfer %d", id)
	}
	return refreshed, nil
}

// appendLogWithRetry runs after the status swap has already committed, so a
// failed append must not fail the operation. The entry is retried
// at-least-once; its OperationID keeps repeats idempotent.
func (s *Service) appendLogWithRetry(ctx context.Context, entry *models.TransferLog) {
	const maxAttempts = 5

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = s.store.AppendLog(ctx, entry); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}

	log.Printf("transfer %d: %s log entry (operation %s) lost after %d attempts: %v",
		entry.TransferID, entry.Action, entry.OperationID, maxAttempts, err)
}
