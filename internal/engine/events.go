package engine

import (
	"time"
)

// EventType 引擎事件类型
type EventType string

const (
	EventInstanceStarted    EventType = "instance.started"     // 审批发起
	EventProcessResolved    EventType = "process.resolved"     // 节点处理完成
	EventInstanceCompleted  EventType = "instance.completed"   // 审批通过
	EventInstanceRejected   EventType = "instance.rejected"    // 审批驳回
	EventInstanceCancelled  EventType = "instance.cancelled"   // 审批撤销
	EventInstanceRolledBack EventType = "instance.rolled_back" // 审批回退
)

// Event 引擎事件
// 状态变更事务提交后发出,供事件落库、Webhook 推送和前端实时通知
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	InstanceID   string    `json:"instance_id"`
	BusinessType string    `json:"business_type"`
	BusinessID   string    `json:"business_id"`
	Status       string    `json:"status"`
	NodeIndex    int       `json:"node_index"`
	NodeName     string    `json:"node_name,omitempty"`
	Action       string    `json:"action,omitempty"`
	Actor        string    `json:"actor"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventSink 事件接收器
type EventSink interface {
	Emit(evt *Event)
}

// MultiSink 事件多路分发
type MultiSink []EventSink

// Emit 依次分发事件
func (s MultiSink) Emit(evt *Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Emit(evt)
		}
	}
}
