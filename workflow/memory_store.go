package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fiber-erp/models"
	"fiber-erp/types"
)

// MemoryStore is the reference Store implementation. It keeps everything in
// process memory behind one mutex, which trivially satisfies the CAS
// contract. Used by tests and as executable documentation of the store
// semantics.
type MemoryStore struct {
	mu        sync.Mutex
	transfers map[types.SnowflakeID]*models.Transfer
	logs      []models.TransferLog
	lastID    int64
	codeSeq   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transfers: make(map[types.SnowflakeID]*models.Transfer),
	}
}

func (s *MemoryStore) nextID() types.SnowflakeID {
	s.lastID++
	return types.SnowflakeID(s.lastID)
}

func (s *MemoryStore) LoadTransfer(ctx context.Context, id types.SnowflakeID) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transfers[id]
	if !ok {
		return nil, NewError(KindNotFound, "transfer %d not found", id)
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) InsertTransfer(ctx context.Context, transfer *models.Transfer, entry *models.TransferLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.transfers {
		if existing.TransferCode == transfer.TransferCode {
			return NewError(KindValidation, "transfer code %s already exists", transfer.TransferCode)
		}
	}

	if transfer.ID == 0 {
		transfer.ID = s.nextID()
	}
	copied := *transfer
	s.transfers[transfer.ID] = &copied

	entry.TransferID = transfer.ID
	if entry.ID == 0 {
		entry.ID = s.nextID()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *MemoryStore) CASUpdateStatus(ctx context.Context, id types.SnowflakeID, expected, next models.TransferStatus, stamp StatusStamp) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transfers[id]
	if !ok || !t.IsActive || t.Status != expected {
		return false, nil
	}

	t.Status = next
	at := stamp.At
	switch stamp.Action {
	case models.TransferActionApprove:
		t.ApprovedBy = stamp.ActorID
		t.ApprovedAt = &at
	case models.TransferActionDispatch:
		t.DispatchedBy = stamp.ActorID
		t.DispatchedAt = &at
	case models.TransferActionReceive:
		t.ReceivedBy = stamp.ActorID
		t.ReceivedAt = &at
	}
	t.UpdatedAt = at
	return true, nil
}

func (s *MemoryStore) AppendLog(ctx context.Context, entry *models.TransferLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.logs {
		if l.OperationID != "" && l.OperationID == entry.OperationID {
			return nil
		}
	}
	if entry.ID == 0 {
		entry.ID = s.nextID()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *MemoryStore) ListLogs(ctx context.Context, transferID types.SnowflakeID) ([]models.TransferLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.TransferLog
	for _, l := range s.logs {
		if l.TransferID == transferID {
			entries = append(entries, l)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ActionAt.Before(entries[j].ActionAt)
	})
	return entries, nil
}

func (s *MemoryStore) QueryTransfers(ctx context.Context, f Filter) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Transfer
	for _, t := range s.transfers {
		if f.BranchID != nil && t.FromBranchID != *f.BranchID && t.ToBranchID != *f.BranchID {
			continue
		}
		if f.Type != nil && t.TransferType != *f.Type {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) NextTransferCode(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codeSeq++
	return fmt.Sprintf("TR%s%04d", time.Now().Format("060102"), s.codeSeq), nil
}
