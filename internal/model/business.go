package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// 合同状态
const (
	ContractStatusDraft     = "draft"     // 草拟
	ContractStatusApproving = "approving" // 审批中
	ContractStatusActive    = "active"    // 已生效
	ContractStatusRejected  = "rejected"  // 已驳回
)

// 案件状态
const (
	CaseStatusCreated   = "created"   // 已立项
	CaseStatusReady     = "ready"     // 合同生效,可进入下一阶段
	CaseStatusApproving = "approving" // 审批中
	CaseStatusApproved  = "approved"  // 审批通过
	CaseStatusRejected  = "rejected"  // 已驳回
	CaseStatusDraft     = "draft"     // 草拟
)

// 请款单状态
const (
	PaymentStatusDraft     = "draft"     // 草拟
	PaymentStatusApproving = "approving" // 审批中
	PaymentStatusPayable   = "payable"   // 可付款
	PaymentStatusRejected  = "rejected"  // 已驳回
)

// ContractModel 合同数据模型
type ContractModel struct {
	ID        string         `gorm:"primaryKey;type:varchar(64)"`
	No        string         `gorm:"type:varchar(64);not null;uniqueIndex"` // 合同编号
	Name      string         `gorm:"type:varchar(255);not null"`
	OwnerID   string         `gorm:"type:varchar(64);index"` // 承办人
	Amount    float64        `gorm:"type:numeric(14,2);not null;default:0"`
	Status    string         `gorm:"type:varchar(32);not null;index"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (ContractModel) TableName() string {
	return "contracts"
}

// Validate 验证合同模型
func (m *ContractModel) Validate() error {
	if m.ID == "" {
		return errors.New("contract ID is required")
	}
	if m.No == "" {
		return errors.New("contract no is required")
	}
	if m.Name == "" {
		return errors.New("contract name is required")
	}
	return nil
}

// CaseModel 案件数据模型
// 案件类型: patent/trademark/copyright/tech_service
type CaseModel struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	ContractID string         `gorm:"type:varchar(64);index"` // 所属合同
	Name       string         `gorm:"type:varchar(255);not null"`
	CaseType   string         `gorm:"type:varchar(32);not null;index"`
	Status     string         `gorm:"type:varchar(32);not null;index"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (CaseModel) TableName() string {
	return "cases"
}

// Validate 验证案件模型
func (m *CaseModel) Validate() error {
	if m.ID == "" {
		return errors.New("case ID is required")
	}
	if m.Name == "" {
		return errors.New("case name is required")
	}
	if m.CaseType == "" {
		return errors.New("case type is required")
	}
	return nil
}

// PaymentRequestModel 请款单数据模型
type PaymentRequestModel struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	ContractID string         `gorm:"type:varchar(64);index"`
	Amount     float64        `gorm:"type:numeric(14,2);not null"`
	Reason     string         `gorm:"type:text"`
	Status     string         `gorm:"type:varchar(32);not null;index"`
	CreatedBy  string         `gorm:"type:varchar(64);index"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (PaymentRequestModel) TableName() string {
	return "payment_requests"
}

// Validate 验证请款单模型
func (m *PaymentRequestModel) Validate() error {
	if m.ID == "" {
		return errors.New("payment request ID is required")
	}
	if m.Amount <= 0 {
		return errors.New("payment amount must be positive")
	}
	return nil
}
