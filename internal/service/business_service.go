package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/caseops/caseflow-gin/internal/engine"
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessService 业务记录服务接口
// 业务记录的状态字段只由投影器写入,这里只负责创建草稿与提交审批
type BusinessService interface {
	CreateContract(ctx context.Context, req *CreateContractRequest) (*model.ContractModel, error)
	GetContract(id string) (*model.ContractModel, error)
	SubmitContract(ctx context.Context, id string, definitionCode string) (*engine.Instance, error)

	CreateCase(ctx context.Context, req *CreateCaseRequest) (*model.CaseModel, error)
	GetCase(id string) (*model.CaseModel, error)
	SubmitCase(ctx context.Context, id string, definitionCode string) (*engine.Instance, error)

	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*model.PaymentRequestModel, error)
	GetPayment(id string) (*model.PaymentRequestModel, error)
	SubmitPayment(ctx context.Context, id string, definitionCode string) (*engine.Instance, error)
}

// CreateContractRequest 创建合同请求
type CreateContractRequest struct {
	No     string  `json:"no" binding:"required"`   // 合同编号
	Name   string  `json:"name" binding:"required"` // 合同名称
	Amount float64 `json:"amount"`                  // 合同金额
}

// CreateCaseRequest 创建案件请求
type CreateCaseRequest struct {
	Name       string `json:"name" binding:"required"`      // 案件名称
	CaseType   string `json:"case_type" binding:"required"` // 案件类型
	ContractID string `json:"contract_id"`                  // 所属合同,可为空
}

// CreatePaymentRequest 创建请款单请求
type CreatePaymentRequest struct {
	ContractID string  `json:"contract_id"`               // 关联合同,可为空
	Amount     float64 `json:"amount" binding:"required"` // 请款金额
	Reason     string  `json:"reason"`                    // 请款事由
}

// businessService 业务记录服务实现
type businessService struct {
	db          *gorm.DB
	workflowSvc WorkflowService
	auditLogSvc AuditLogService
}

// NewBusinessService 创建业务记录服务
func NewBusinessService(db *gorm.DB, workflowSvc WorkflowService, auditLogSvc AuditLogService) BusinessService {
	return &businessService{
		db:          db,
		workflowSvc: workflowSvc,
		auditLogSvc: auditLogSvc,
	}
}

// CreateContract 创建合同草稿
func (s *businessService) CreateContract(ctx context.Context, req *CreateContractRequest) (*model.ContractModel, error) {
	name, err := utils.TrimAndValidate(req.Name, 255)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contract := &model.ContractModel{
		ID:        uuid.New().String(),
		No:        req.No,
		Name:      name,
		OwnerID:   getUserIDFromContext(ctx),
		Amount:    req.Amount,
		Status:    model.ContractStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.Create(contract).Error; err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	s.audit(ctx, "create", "contract", contract.ID, map[string]string{"no": contract.No})
	return contract, nil
}

// GetContract 获取合同
func (s *businessService) GetContract(id string) (*model.ContractModel, error) {
	var contract model.ContractModel
	if err := s.db.Where("id = ?", id).First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// SubmitContract 提交合同审批
func (s *businessService) SubmitContract(ctx context.Context, id string, definitionCode string) (*engine.Instance, error) {
	contract, err := s.GetContract(id)
	if err != nil {
		return nil, err
	}

	// 业务参数快照,自动节点按其时点值求值
	params, err := json.Marshal(map[string]interface{}{
		"amount":   contract.Amount,
		"owner_id": contract.OwnerID,
		"no":       contract.No,
	})
	if err != nil {
		return nil, err
	}

	return s.workflowSvc.Start(ctx, &StartRequest{
		BusinessType:   string(workflow.BusinessContract),
		BusinessID:     contract.ID,
		DefinitionCode: definitionCode,
		Params:         params,
	})
}

// CreateCase 创建案件
func (s *businessService) CreateCase(ctx context.Context, req *CreateCaseRequest) (*model.CaseModel, error) {
	name, err := utils.TrimAndValidate(req.Name, 255)
	if err != nil {
		return nil, err
	}

	// 挂了合同的案件先落在已立项,等合同生效后投影为 ready
	status := model.CaseStatusDraft
	if req.ContractID != "" {
		if _, err := s.GetContract(req.ContractID); err != nil {
			return nil, fmt.Errorf("contract %q not found: %w", req.ContractID, err)
		}
		status = model.CaseStatusCreated
	}

	now := time.Now()
	c := &model.CaseModel{
		ID:         uuid.New().String(),
		ContractID: req.ContractID,
		Name:       name,
		CaseType:   req.CaseType,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	s.audit(ctx, "create", "case", c.ID, map[string]string{"name": c.Name})
	return c, nil
}

// GetCase 获取案件
func (s *businessService) GetCase(id string) (*model.CaseModel, error) {
	var c model.CaseModel
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SubmitCase 提交案件审批
func (s *businessService) SubmitCase(ctx context.Context, id string, definitionCode string) (*engine.Instance, error) {
	c, err := s.GetCase(id)
	if err != nil {
		return nil, err
	}
	// 挂合同的案件要等合同生效
	if c.ContractID != "" && c.Status == model.CaseStatusCreated {
		return nil, fmt.Errorf("case %q is waiting for contract approval: %w", id, workflow.ErrInvalidTransition)
	}

	params, err := json.Marshal(map[string]interface{}{
		"contract_id": c.ContractID,
		"case_type":   c.CaseType,
		"name":        c.Name,
	})
	if err != nil {
		return nil, err
	}

	return s.workflowSvc.Start(ctx, &StartRequest{
		BusinessType:   string(workflow.BusinessCase),
		BusinessID:     c.ID,
		DefinitionCode: definitionCode,
		Params:         params,
	})
}

// CreatePayment 创建请款单
func (s *businessService) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*model.PaymentRequestModel, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if req.ContractID != "" {
		if _, err := s.GetContract(req.ContractID); err != nil {
			return nil, fmt.Errorf("contract %q not found: %w", req.ContractID, err)
		}
	}

	now := time.Now()
	p := &model.PaymentRequestModel{
		ID:         uuid.New().String(),
		ContractID: req.ContractID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Status:     model.PaymentStatusDraft,
		CreatedBy:  getUserIDFromContext(ctx),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}

	s.audit(ctx, "create", "payment_request", p.ID, map[string]interface{}{"amount": p.Amount})
	return p, nil
}

// GetPayment 获取请款单
func (s *businessService) GetPayment(id string) (*model.PaymentRequestModel, error) {
	var p model.PaymentRequestModel
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitPayment 提交请款审批
func (s *businessService) SubmitPayment(ctx context.Context, id string, definitionCode string) (*engine.Instance, error) {
	p, err := s.GetPayment(id)
	if err != nil {
		return nil, err
	}

	params, err := json.Marshal(map[string]interface{}{
		"amount":      p.Amount,
		"contract_id": p.ContractID,
		"reason":      p.Reason,
	})
	if err != nil {
		return nil, err
	}

	return s.workflowSvc.Start(ctx, &StartRequest{
		BusinessType:   string(workflow.BusinessPayment),
		BusinessID:     p.ID,
		DefinitionCode: definitionCode,
		Params:         params,
	})
}

// audit 记录审计日志,失败不阻塞主流程
func (s *businessService) audit(ctx context.Context, action string, resourceType string, resourceID string, details interface{}) {
	if s.auditLogSvc == nil {
		return
	}
	userID := getUserIDFromContext(ctx)
	if userID == "" {
		return
	}
	_ = s.auditLogSvc.RecordAction(ctx, userID, action, resourceType, resourceID, details)
}
