package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fiber-erp/models"
	"fiber-erp/types"
	"fiber-erp/workflow"

	"gorm.io/gorm"
)

// TransferRepository is the relational workflow.Store. The compare-and-swap
// lives in the WHERE clause of the status update; RowsAffected tells the
// engine whether it won the race.
type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) LoadTransfer(ctx context.Context, id types.SnowflakeID) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.db.WithContext(ctx).First(&transfer, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewError(workflow.KindNotFound, "transfer %d not found", id)
		}
		return nil, workflow.WrapError(workflow.KindUnavailable, err, "loading transfer %d", id)
	}
	return &transfer, nil
}

func (r *TransferRepository) InsertTransfer(ctx context.Context, transfer *models.Transfer, entry *models.TransferLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transfer).Error; err != nil {
			return err
		}
		entry.TransferID = transfer.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		return workflow.WrapError(workflow.KindUnavailable, err, "inserting transfer %s", transfer.TransferCode)
	}
	return nil
}

func (r *TransferRepository) CASUpdateStatus(ctx context.Context, id types.SnowflakeID, expected, next models.TransferStatus, stamp workflow.StatusStamp) (bool, error) {
	updates := map[string]interface{}{
		"status":     next,
		"updated_at": stamp.At,
	}
	switch stamp.Action {
	case models.TransferActionApprove:
		updates["approved_by"] = stamp.ActorID
		updates["approved_at"] = stamp.At
	case models.TransferActionDispatch:
		updates["dispatched_by"] = stamp.ActorID
		updates["dispatched_at"] = stamp.At
	case models.TransferActionReceive:
		updates["received_by"] = stamp.ActorID
		updates["received_at"] = stamp.At
	}

	res := r.db.WithContext(ctx).Model(&models.Transfer{}).
		Where("id = ? AND status = ? AND is_active = ?", int64(id), expected, true).
		Updates(updates)
	if res.Error != nil {
		return false, workflow.WrapError(workflow.KindUnavailable, res.Error, "updating transfer %d status", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *TransferRepository) AppendLog(ctx context.Context, entry *models.TransferLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		// A retried append may have landed on an earlier attempt; the unique
		// operation_id index turns that into a duplicate key error.
		var count int64
		r.db.WithContext(ctx).Model(&models.TransferLog{}).
			Where("operation_id = ?", entry.OperationID).Count(&count)
		if count > 0 {
			return nil
		}
		return workflow.WrapError(workflow.KindUnavailable, err, "appending %s log for transfer %d", entry.Action, entry.TransferID)
	}
	return nil
}

func (r *TransferRepository) ListLogs(ctx context.Context, transferID types.SnowflakeID) ([]models.TransferLog, error) {
	var logs []models.TransferLog
	if err := r.db.WithContext(ctx).
		Where("transfer_id = ?", int64(transferID)).
		Order("action_at asc, id asc").
		Find(&logs).Error; err != nil {
		return nil, workflow.WrapError(workflow.KindUnavailable, err, "listing logs for transfer %d", transferID)
	}
	return logs, nil
}

func (r *TransferRepository) QueryTransfers(ctx context.Context, f workflow.Filter) ([]models.Transfer, error) {
	q := r.db.WithContext(ctx).Model(&models.Transfer{}).Where("is_active = ?", true)
	if f.BranchID != nil {
		q = q.Where("from_branch_id = ? OR to_branch_id = ?", *f.BranchID, *f.BranchID)
	}
	if f.Type != nil {
		q = q.Where("transfer_type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var transfers []models.Transfer
	if err := q.Order("created_at desc").Find(&transfers).Error; err != nil {
		return nil, workflow.WrapError(workflow.KindUnavailable, err, "querying transfers")
	}
	return transfers, nil
}

// NextTransferCode generates the next document number in the TRYYMMDDnnnn
// series, resetting the sequence each day. The unique constraint on
// transfer_code backstops concurrent creates.
func (r *TransferRepository) NextTransferCode(ctx context.Context) (string, error) {
	var last models.Transfer
	if err := r.db.WithContext(ctx).Unscoped().Order("transfer_code desc").
		First(&last).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", workflow.WrapError(workflow.KindUnavailable, err, "reading last transfer code")
	}

	currentDate := time.Now().Format("060102")

	if len(last.TransferCode) >= 12 && last.TransferCode[2:8] == currentDate {
		lastSequence, _ := strconv.Atoi(last.TransferCode[len(last.TransferCode)-4:])
		return fmt.Sprintf("TR%s%04d", currentDate, lastSequence+1), nil
	}
	return fmt.Sprintf("TR%s%04d", currentDate, 1), nil
}
