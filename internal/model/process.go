package model

import (
	"errors"
	"time"
)

// WorkflowProcessModel 节点处理记录数据模型(台账)
// 实例每进入一个节点追加一行;action 一旦离开 pending 不再变更,
// 回退产生的作废通过 superseded 标记而不是改写 action
type WorkflowProcessModel struct {
	ID          string     `gorm:"primaryKey;type:varchar(64)"`
	InstanceID  string     `gorm:"type:varchar(64);not null;index"`
	NodeIndex   int        `gorm:"type:int;not null"`
	NodeName    string     `gorm:"type:varchar(255);not null"` // 创建时冗余节点名,保证审计稳定
	Assignee    string     `gorm:"type:varchar(64);not null;index"` // 应处理人
	Processor   string     `gorm:"type:varchar(64)"` // 实际处理人,未处理时为空
	Action      string     `gorm:"type:varchar(32);not null;index"`
	Comment     string     `gorm:"type:text"`
	Superseded  bool       `gorm:"not null;default:false;index"` // 回退作废标记
	ProcessedAt *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null;index"`
}

// TableName 指定表名
func (WorkflowProcessModel) TableName() string {
	return "workflow_processes"
}

// Validate 验证节点处理记录模型
func (m *WorkflowProcessModel) Validate() error {
	if m.ID == "" {
		return errors.New("process ID is required")
	}
	if m.InstanceID == "" {
		return errors.New("instance ID is required")
	}
	if m.NodeIndex < 0 {
		return errors.New("node index must not be negative")
	}
	if m.NodeName == "" {
		return errors.New("node name is required")
	}
	if m.Action == "" {
		return errors.New("process action is required")
	}
	return nil
}

// IsPending 是否待处理
func (m *WorkflowProcessModel) IsPending() bool {
	return m.Action == "pending" && !m.Superseded
}

// IsApproved 是否已同意(含自动通过)
func (m *WorkflowProcessModel) IsApproved() bool {
	return m.Action == "approve" || m.Action == "auto"
}

// IsRejected 是否已驳回
func (m *WorkflowProcessModel) IsRejected() bool {
	return m.Action == "reject"
}
