package model

import (
	"errors"
	"time"
)

// StatusHistoryModel 实例状态变更历史数据模型
type StatusHistoryModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	InstanceID string    `gorm:"type:varchar(64);not null;index"`
	FromStatus string    `gorm:"type:varchar(32)"`
	ToStatus   string    `gorm:"type:varchar(32);not null"`
	Reason     string    `gorm:"type:text"`
	Operator   string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (StatusHistoryModel) TableName() string {
	return "status_history"
}

// Validate 验证状态历史模型
func (m *StatusHistoryModel) Validate() error {
	if m.ID == "" {
		return errors.New("history ID is required")
	}
	if m.InstanceID == "" {
		return errors.New("instance ID is required")
	}
	if m.ToStatus == "" {
		return errors.New("to status is required")
	}
	if m.Operator == "" {
		return errors.New("operator is required")
	}
	return nil
}
