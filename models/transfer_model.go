package models

import (
	"time"

	"fiber-erp/controllers/idgen"
	"fiber-erp/types"

	"gorm.io/gorm"
)

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusReceived  TransferStatus = "RECEIVED"
	TransferStatusRejected  TransferStatus = "REJECTED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// Terminal reports whether no further transition is legal from s.
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferStatusReceived, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusInTransit,
		TransferStatusReceived, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

type TransferType string

const (
	TransferTypeJob       TransferType = "JOB"
	TransferTypeInventory TransferType = "INVENTORY"
	TransferTypeAsset     TransferType = "ASSET"
	TransferTypeUser      TransferType = "USER"
)

func (t TransferType) Valid() bool {
	switch t {
	case TransferTypeJob, TransferTypeInventory, TransferTypeAsset, TransferTypeUser:
		return true
	}
	return false
}

type TransferAction string

const (
	TransferActionCreate   TransferAction = "CREATE"
	TransferActionApprove  TransferAction = "APPROVE"
	TransferActionReject   TransferAction = "REJECT"
	TransferActionDispatch TransferAction = "DISPATCH"
	TransferActionReceive  TransferAction = "RECEIVE"
	TransferActionCancel   TransferAction = "CANCEL"
)

type Transfer struct {
	gorm.Model
	ID           types.SnowflakeID `json:"id" gorm:"primary_key"`
	TransferCode string            `json:"transfer_code" gorm:"unique"`
	TransferType TransferType      `json:"transfer_type"`
	FromBranchID uint              `json:"from_branch_id"`
	ToBranchID   uint              `json:"to_branch_id"`
	Status       TransferStatus    `json:"status" gorm:"default:'PENDING'"`
	Reason       string            `json:"reason"`
	RequestedBy  uint              `json:"requested_by"`
	ApprovedBy   uint              `json:"approved_by"`
	DispatchedBy uint              `json:"dispatched_by"`
	ReceivedBy   uint              `json:"received_by"`
	RequestedAt  time.Time         `json:"requested_at"`
	ApprovedAt   *time.Time        `json:"approved_at"`
	DispatchedAt *time.Time        `json:"dispatched_at"`
	ReceivedAt   *time.Time        `json:"received_at"`
	IsActive     bool              `json:"is_active" gorm:"default:true"`

	// Relations
	Logs []TransferLog `gorm:"foreignKey:TransferID;references:ID;constraint:OnDelete:CASCADE" json:"logs,omitempty"`
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == 0 {
		t.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

// TransferLog is the append-only trail of a transfer. Rows are only ever
// inserted; replaying from_status/to_status pairs in order reconstructs the
// current status of the transfer.
type TransferLog struct {
	gorm.Model
	ID          types.SnowflakeID `json:"id" gorm:"primary_key"`
	TransferID  types.SnowflakeID `json:"transfer_id" gorm:"index"`
	Action      TransferAction    `json:"action"`
	FromStatus  TransferStatus    `json:"from_status"`
	ToStatus    TransferStatus    `json:"to_status"`
	Remarks     string            `json:"remarks"`
	ActionBy    uint              `json:"action_by"`
	ActionAt    time.Time         `json:"action_at"`
	OperationID string            `json:"operation_id" gorm:"uniqueIndex"`
}

func (l *TransferLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == 0 {
		l.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

type FormCreateTransfer struct {
	TransferType string `json:"transfer_type" validate:"required,oneof=JOB INVENTORY ASSET USER"`
	FromBranchID uint   `json:"from_branch_id" validate:"required"`
	ToBranchID   uint   `json:"to_branch_id" validate:"required"`
	Reason       string `json:"reason"`
}

type FormTransferAction struct {
	Remarks string `json:"remarks"`
}
