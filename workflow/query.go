package workflow

import (
	"context"

	"fiber-erp/models"
	"fiber-erp/types"
)

// Query is the read side: listing and detail lookups, no mutation. It must
// never be used to predict whether a transition would succeed; the service
// re-validates everything at call time.
type Query struct {
	store Store
}

func NewQuery(store Store) *Query {
	return &Query{store: store}
}

func (q *Query) List(ctx context.Context, f Filter) ([]models.Transfer, error) {
	transfers, err := q.store.QueryTransfers(ctx, f)
	if err != nil {
		if KindOf(err) != KindUnknown {
			return nil, err
		}
		return nil, WrapError(KindUnavailable, err, "transfer listing failed")
	}
	return transfers, nil
}

// Get returns the transfer and its full log trail in action order.
func (q *Query) Get(ctx context.Context, id types.SnowflakeID) (*models.Transfer, []models.TransferLog, error) {
	transfer, err := q.store.LoadTransfer(ctx, id)
	if err != nil {
		if KindOf(err) != KindUnknown {
			return nil, nil, err
		}
		return nil, nil, WrapError(KindUnavailable, err, "could not load transfer %d", id)
	}
	if !transfer.IsActive {
		return nil, nil, NewError(KindNotFound, "transfer %d not found", id)
	}

	logs, err := q.store.ListLogs(ctx, id)
	if err != nil {
		if KindOf(err) != KindUnknown {
			return nil, nil, err
		}
		return nil, nil, WrapError(KindUnavailable, err, "could not load transfer %d history", id)
	}
	return transfer, logs, nil
}
