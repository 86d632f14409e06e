package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// WorkflowInstanceModel 审批实例数据模型
// 一个实例绑定一条业务记录的一次审批
type WorkflowInstanceModel struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)"`
	DefinitionID   string         `gorm:"type:varchar(64);not null;index"`
	DefinitionCode string         `gorm:"type:varchar(64);not null;index"`
	BusinessType   string         `gorm:"type:varchar(32);not null;index:idx_instance_business"`
	BusinessID     string         `gorm:"type:varchar(64);not null;index:idx_instance_business"`
	CurrentNode    int            `gorm:"type:int;not null"` // 当前节点下标,0 起
	Status         string         `gorm:"type:varchar(32);not null;index"`
	Params         []byte         `gorm:"type:jsonb"` // 发起时快照的业务参数,供自动节点求值
	CreatedBy      string         `gorm:"type:varchar(64);index"`
	CreatedAt      time.Time      `gorm:"not null;index"`
	UpdatedAt      time.Time      `gorm:"not null"`
	DeletedAt      gorm.DeletedAt `gorm:"index"` // 被节点记录引用期间只做软删除
}

// TableName 指定表名
func (WorkflowInstanceModel) TableName() string {
	return "workflow_instances"
}

// Validate 验证审批实例模型
func (m *WorkflowInstanceModel) Validate() error {
	if m.ID == "" {
		return errors.New("instance ID is required")
	}
	if m.DefinitionID == "" {
		return errors.New("definition ID is required")
	}
	if m.BusinessType == "" || m.BusinessID == "" {
		return errors.New("business reference is required")
	}
	if m.Status == "" {
		return errors.New("instance status is required")
	}
	if m.CurrentNode < 0 {
		return errors.New("current node must not be negative")
	}
	return nil
}
