package workflow

import (
	"context"
	"time"

	"fiber-erp/models"
	"fiber-erp/types"
)

// Filter narrows transfer listings. Nil fields match everything. BranchID
// matches transfers sent from or addressed to the branch.
type Filter struct {
	BranchID *uint
	Type     *models.TransferType
	Status   *models.TransferStatus
}

// StatusStamp carries the actor/timestamp pair written together with a
// status change, in the same conditional update.
type StatusStamp struct {
	Action  models.TransferAction
	ActorID uint
	At      time.Time
}

// Store is the persistence boundary of the engine. Any implementation that
// honors the compare-and-swap contract of CASUpdateStatus is acceptable;
// the engine requires no other synchronization.
type Store interface {
	// LoadTransfer returns the transfer or a not_found error.
	LoadTransfer(ctx context.Context, id types.SnowflakeID) (*models.Transfer, error)

	// InsertTransfer persists a new transfer and its CREATE log entry as a
	// single unit of work.
	InsertTransfer(ctx context.Context, transfer *models.Transfer, entry *models.TransferLog) error

	// CASUpdateStatus sets status to next and stamps the action's actor and
	// timestamp columns, but only where the stored status still equals
	// expected and the transfer is active. Returns false when another actor
	// got there first.
	CASUpdateStatus(ctx context.Context, id types.SnowflakeID, expected, next models.TransferStatus, stamp StatusStamp) (bool, error)

	// AppendLog inserts a log entry. Appends are idempotent on the entry's
	// OperationID, so retrying after an ambiguous failure is safe.
	AppendLog(ctx context.Context, entry *models.TransferLog) error

	// ListLogs returns the entries of a transfer in action order.
	ListLogs(ctx context.Context, transferID types.SnowflakeID) ([]models.TransferLog, error)

	QueryTransfers(ctx context.Context, f Filter) ([]models.Transfer, error)

	// NextTransferCode issues a fresh human-readable code, never reused.
	NextTransferCode(ctx context.Context) (string, error)
}
