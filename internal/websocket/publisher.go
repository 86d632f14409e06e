package websocket

import (
	"encoding/json"

	"github.com/caseops/caseflow-gin/internal/engine"
	"github.com/sirupsen/logrus"
)

// EventPublisher 把引擎事件推送给 WebSocket 客户端与 SSE 订阅者
type EventPublisher struct {
	hub    *Hub
	logger *logrus.Logger
}

// NewEventPublisher 创建事件推送器
func NewEventPublisher(hub *Hub, logger *logrus.Logger) *EventPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventPublisher{hub: hub, logger: logger}
}

// Emit 实现 engine.EventSink
func (p *EventPublisher) Emit(evt *engine.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		p.logger.WithError(err).Warn("failed to marshal workflow event")
		return
	}

	// 全量广播给 WebSocket 客户端,按实例推送给 SSE 订阅者
	select {
	case p.hub.Broadcast <- data:
	default:
	}
	p.hub.Publish(evt.InstanceID, data)
}
