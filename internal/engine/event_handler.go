package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WebhookAuth Webhook 认证配置
type WebhookAuth struct {
	Type  string `mapstructure:"type" json:"type"` // bearer/basic/header
	Key   string `mapstructure:"key" json:"key"`
	Token string `mapstructure:"token" json:"token"`
}

// WebhookConfig Webhook 推送配置
type WebhookConfig struct {
	URL     string            `mapstructure:"url" json:"url"`
	Method  string            `mapstructure:"method" json:"method"`
	Headers map[string]string `mapstructure:"headers" json:"headers"`
	Auth    *WebhookAuth      `mapstructure:"auth" json:"auth"`
}

// dbEventHandler 基于数据库的事件处理器
// 事件先落库再入队,worker 异步推送 Webhook,失败指数退避重试
type dbEventHandler struct {
	db         *gorm.DB
	eventRepo  repository.EventRepository
	webhooks   []WebhookConfig
	httpClient *http.Client
	queue      chan *Event
	stop       chan struct{}
	logger     *logrus.Logger
}

// NewEventHandler 创建事件处理器
func NewEventHandler(db *gorm.DB, webhooks []WebhookConfig, workers int, logger *logrus.Logger) EventSink {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logrus.New()
	}

	handler := &dbEventHandler{
		db:         db,
		eventRepo:  repository.NewEventRepository(db),
		webhooks:   webhooks,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		queue:      make(chan *Event, 1000),
		stop:       make(chan struct{}),
		logger:     logger,
	}

	for i := 0; i < workers; i++ {
		go handler.worker()
	}

	return handler
}

// Emit 处理引擎事件
func (h *dbEventHandler) Emit(evt *Event) {
	// 1. 持久化事件
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.WithError(err).Error("failed to marshal event")
		return
	}

	eventModel := &model.EventModel{
		ID:         evt.ID,
		InstanceID: evt.InstanceID,
		Type:       string(evt.Type),
		Data:       data,
		Status:     "pending",
		RetryCount: 0,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := h.eventRepo.Save(eventModel); err != nil {
		h.logger.WithError(err).Error("failed to save event")
		return
	}

	// 2. 异步推送,队列满时丢弃不阻塞引擎
	select {
	case h.queue <- evt:
	default:
		h.logger.WithFields(logrus.Fields{
			"event_type":  evt.Type,
			"instance_id": evt.InstanceID,
		}).Warn("event queue full, dropping event")
	}
}

// worker 事件推送 worker
func (h *dbEventHandler) worker() {
	for {
		select {
		case evt := <-h.queue:
			h.push(evt)
		case <-h.stop:
			return
		}
	}
}

// push 推送事件到所有 Webhook,指数退避重试
func (h *dbEventHandler) push(evt *Event) {
	var eventModel model.EventModel
	if err := h.db.Where("id = ?", evt.ID).First(&eventModel).Error; err != nil {
		h.logger.WithError(err).Error("failed to find event model")
		return
	}

	// 没有 Webhook 配置时直接标记成功
	if len(h.webhooks) == 0 {
		h.finish(&eventModel, "success")
		return
	}

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		success := true
		for _, webhook := range h.webhooks {
			if err := h.send(webhook, evt); err != nil {
				success = false
				h.logger.WithError(err).WithField("url", webhook.URL).Warn("webhook push failed")
			}
		}

		if success {
			h.finish(&eventModel, "success")
			return
		}

		eventModel.RetryCount++
		eventModel.UpdatedAt = time.Now()
		_ = h.eventRepo.Save(&eventModel)

		if i < maxRetries-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	h.finish(&eventModel, "failed")
}

// finish 更新事件推送状态
func (h *dbEventHandler) finish(eventModel *model.EventModel, status string) {
	eventModel.Status = status
	eventModel.UpdatedAt = time.Now()
	if err := h.eventRepo.Save(eventModel); err != nil {
		h.logger.WithError(err).Error("failed to update event status")
	}
}

// send 发送单个 Webhook 请求
func (h *dbEventHandler) send(webhook WebhookConfig, evt *Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	method := webhook.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequest(method, webhook.URL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range webhook.Headers {
		req.Header.Set(key, value)
	}

	if webhook.Auth != nil {
		switch webhook.Auth.Type {
		case "bearer":
			req.Header.Set("Authorization", "Bearer "+webhook.Auth.Token)
		case "basic":
			req.SetBasicAuth(webhook.Auth.Key, webhook.Auth.Token)
		case "header":
			req.Header.Set(webhook.Auth.Key, webhook.Auth.Token)
		}
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status code: %d", resp.StatusCode)
	}
	return nil
}

// Stop 停止事件处理器
func (h *dbEventHandler) Stop() {
	close(h.stop)
}
