package model

import (
	"errors"
	"time"
)

// EventModel 对外事件数据模型
// 引擎每次状态变更落一条事件,由 worker 异步推送 Webhook
type EventModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	InstanceID string    `gorm:"type:varchar(64);not null;index"`
	Type       string    `gorm:"type:varchar(64);not null;index"`
	Data       []byte    `gorm:"type:jsonb;not null"` // 序列化后的事件数据
	Status     string    `gorm:"type:varchar(32);not null;default:'pending'"` // pending/success/failed
	RetryCount int       `gorm:"type:int;default:0"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName 指定表名
func (EventModel) TableName() string {
	return "events"
}

// Validate 验证事件模型
func (m *EventModel) Validate() error {
	if m.ID == "" {
		return errors.New("event ID is required")
	}
	if m.InstanceID == "" {
		return errors.New("instance ID is required")
	}
	if m.Type == "" {
		return errors.New("event type is required")
	}
	if len(m.Data) == 0 {
		return errors.New("event data is required")
	}
	if m.Status == "" {
		m.Status = "pending"
	}
	return nil
}
