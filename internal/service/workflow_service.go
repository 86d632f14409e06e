package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/caseops/caseflow-gin/internal/engine"
	"github.com/caseops/caseflow-gin/internal/metrics"
	"github.com/caseops/caseflow-gin/internal/workflow"
)

// WorkflowService 审批流程服务接口
type WorkflowService interface {
	Start(ctx context.Context, req *StartRequest) (*engine.Instance, error)
	Process(ctx context.Context, processID string, req *ProcessRequest) (*engine.Instance, error)
	Cancel(ctx context.Context, instanceID string) (*engine.Instance, error)
	Back(ctx context.Context, instanceID string, req *BackRequest) (*engine.Instance, error)
	Get(ctx context.Context, instanceID string) (*engine.Instance, error)
	Snapshot(ctx context.Context, businessType string, businessID string) (*engine.Snapshot, error)
}

// StartRequest 发起审批请求
type StartRequest struct {
	BusinessType   string          `json:"business_type" binding:"required"`   // 业务类型
	BusinessID     string          `json:"business_id" binding:"required"`     // 业务记录 ID
	DefinitionCode string          `json:"definition_code" binding:"required"` // 流程编码
	Params         json.RawMessage `json:"params"`                             // 业务参数快照(JSON)
}

// ProcessRequest 处理审批节点请求
type ProcessRequest struct {
	Action  string `json:"action" binding:"required"` // approve / reject
	Comment string `json:"comment"`                   // 审批意见
}

// BackRequest 回退请求
type BackRequest struct {
	TargetNode int `json:"target_node"` // 目标节点下标,0 起
}

// workflowService 审批流程服务实现
type workflowService struct {
	manager     engine.Manager
	auditLogSvc AuditLogService
}

// NewWorkflowService 创建审批流程服务
func NewWorkflowService(manager engine.Manager, auditLogSvc AuditLogService) WorkflowService {
	return &workflowService{
		manager:     manager,
		auditLogSvc: auditLogSvc,
	}
}

// Start 为业务记录发起审批
func (s *workflowService) Start(ctx context.Context, req *StartRequest) (*engine.Instance, error) {
	businessType, err := workflow.ParseBusinessType(req.BusinessType)
	if err != nil {
		return nil, err
	}
	ref := workflow.BusinessRef{Type: businessType, ID: req.BusinessID}

	actorID := getUserIDFromContext(ctx)
	instance, err := s.manager.Start(ctx, ref, req.DefinitionCode, actorID, req.Params)
	if err != nil {
		return nil, err
	}

	// 记录业务指标
	metrics.RecordInstanceStarted(req.BusinessType)

	// 记录审计日志
	s.audit(ctx, "start", instance.Record.ID, map[string]string{
		"business_type":   req.BusinessType,
		"business_id":     req.BusinessID,
		"definition_code": req.DefinitionCode,
	})

	return instance, nil
}

// Process 处理当前待审批节点
func (s *workflowService) Process(ctx context.Context, processID string, req *ProcessRequest) (*engine.Instance, error) {
	action := workflow.ProcessAction(req.Action)
	if !action.IsResolving() {
		return nil, fmt.Errorf("invalid action %q: %w", req.Action, workflow.ErrInvalidTransition)
	}

	actorID := getUserIDFromContext(ctx)
	instance, err := s.manager.Process(ctx, processID, actorID, action, req.Comment)
	if err != nil {
		return nil, err
	}

	metrics.RecordProcessResolved(req.Action)

	s.audit(ctx, "process", instance.Record.ID, map[string]string{
		"process_id": processID,
		"action":     req.Action,
		"comment":    req.Comment,
	})

	return instance, nil
}

// Cancel 取消审批实例
func (s *workflowService) Cancel(ctx context.Context, instanceID string) (*engine.Instance, error) {
	actorID := getUserIDFromContext(ctx)
	instance, err := s.manager.Cancel(ctx, instanceID, actorID)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "cancel", instanceID, map[string]string{"instance_id": instanceID})

	return instance, nil
}

// Back 将实例回退到之前的节点
func (s *workflowService) Back(ctx context.Context, instanceID string, req *BackRequest) (*engine.Instance, error) {
	actorID := getUserIDFromContext(ctx)
	instance, err := s.manager.Back(ctx, instanceID, req.TargetNode, actorID)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "back", instanceID, map[string]interface{}{
		"instance_id": instanceID,
		"target_node": req.TargetNode,
	})

	return instance, nil
}

// Get 获取实例详情(含全部审批记录)
func (s *workflowService) Get(ctx context.Context, instanceID string) (*engine.Instance, error) {
	return s.manager.Get(ctx, instanceID)
}

// Snapshot 获取业务记录的当前审批状态快照
func (s *workflowService) Snapshot(ctx context.Context, businessType string, businessID string) (*engine.Snapshot, error) {
	bt, err := workflow.ParseBusinessType(businessType)
	if err != nil {
		return nil, err
	}
	return s.manager.Snapshot(ctx, workflow.BusinessRef{Type: bt, ID: businessID})
}

// audit 记录审计日志,失败不阻塞主流程
func (s *workflowService) audit(ctx context.Context, action string, resourceID string, details interface{}) {
	if s.auditLogSvc == nil {
		return
	}
	userID := getUserIDFromContext(ctx)
	if userID == "" {
		return
	}
	_ = s.auditLogSvc.RecordAction(ctx, userID, action, "instance", resourceID, details)
}
