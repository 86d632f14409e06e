package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// WorkflowDefinitionModel 审批流程定义数据模型
type WorkflowDefinitionModel struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)"`
	Code         string         `gorm:"type:varchar(64);not null;uniqueIndex"` // 流程编码
	Name         string         `gorm:"type:varchar(255);not null"`
	BusinessType string         `gorm:"type:varchar(32);not null;index"` // 适用业务类型
	Nodes        []byte         `gorm:"type:jsonb;not null"` // 序列化后的节点列表
	Enabled      bool           `gorm:"not null;default:true"`
	CreatedBy    string         `gorm:"type:varchar(64)"`
	UpdatedBy    string         `gorm:"type:varchar(64)"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"` // 被实例引用的定义只做软删除
}

// TableName 指定表名
func (WorkflowDefinitionModel) TableName() string {
	return "workflow_definitions"
}

// Validate 验证流程定义模型
func (m *WorkflowDefinitionModel) Validate() error {
	if m.ID == "" {
		return errors.New("definition ID is required")
	}
	if m.Code == "" {
		return errors.New("definition code is required")
	}
	if m.BusinessType == "" {
		return errors.New("business type is required")
	}
	if len(m.Nodes) == 0 {
		return errors.New("definition nodes are required")
	}
	return nil
}
