package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/google/uuid"
)

// DefinitionService 流程定义服务接口
type DefinitionService interface {
	Create(ctx context.Context, req *CreateDefinitionRequest) (*workflow.Definition, error)
	Get(id string) (*workflow.Definition, error)
	GetByCode(code string) (*workflow.Definition, error)
	Update(ctx context.Context, id string, req *UpdateDefinitionRequest) (*workflow.Definition, error)
	Delete(ctx context.Context, id string) error
	List(businessType string) ([]*workflow.Definition, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// CreateDefinitionRequest 创建流程定义请求
type CreateDefinitionRequest struct {
	Code         string          `json:"code" binding:"required"`          // 流程编码
	Name         string          `json:"name" binding:"required"`          // 流程名称
	BusinessType string          `json:"business_type" binding:"required"` // 适用业务类型
	Nodes        []workflow.Node `json:"nodes" binding:"required"`         // 节点列表,顺序即审批顺序
}

// UpdateDefinitionRequest 更新流程定义请求
type UpdateDefinitionRequest struct {
	Name  string          `json:"name"`  // 流程名称
	Nodes []workflow.Node `json:"nodes"` // 节点列表
}

// definitionCacheEntry 定义缓存条目
type definitionCacheEntry struct {
	definition *workflow.Definition
	expiresAt  time.Time
}

// definitionService 流程定义服务实现
type definitionService struct {
	defRepo     repository.DefinitionRepository
	auditLogSvc AuditLogService
	cache       sync.Map // code -> definitionCacheEntry
	cacheTTL    time.Duration
}

// NewDefinitionService 创建流程定义服务
func NewDefinitionService(defRepo repository.DefinitionRepository, auditLogSvc AuditLogService) DefinitionService {
	return &definitionService{
		defRepo:     defRepo,
		auditLogSvc: auditLogSvc,
		cacheTTL:    5 * time.Minute,
	}
}

// Create 创建流程定义
func (s *definitionService) Create(ctx context.Context, req *CreateDefinitionRequest) (*workflow.Definition, error) {
	// 1. 校验名称与编码
	if err := utils.ValidateDefinitionName(req.Name); err != nil {
		return nil, err
	}
	if err := utils.ValidateDefinitionCode(req.Code); err != nil {
		return nil, err
	}
	businessType, err := workflow.ParseBusinessType(req.BusinessType)
	if err != nil {
		return nil, err
	}

	// 2. 编码唯一性检查
	if existing, err := s.defRepo.FindByCode(req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("definition code %q already exists", req.Code)
	}

	// 3. 构建并校验定义
	def := &workflow.Definition{
		ID:           uuid.New().String(),
		Code:         req.Code,
		Name:         req.Name,
		BusinessType: businessType,
		Nodes:        req.Nodes,
		Enabled:      true,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	// 4. 持久化
	nodes, err := workflow.EncodeNodes(def.Nodes)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m := &model.WorkflowDefinitionModel{
		ID:           def.ID,
		Code:         def.Code,
		Name:         def.Name,
		BusinessType: string(def.BusinessType),
		Nodes:        nodes,
		Enabled:      true,
		CreatedBy:    getUserIDFromContext(ctx),
		UpdatedBy:    getUserIDFromContext(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.defRepo.Save(m); err != nil {
		return nil, fmt.Errorf("failed to save definition: %w", err)
	}

	// 5. 记录审计日志
	s.audit(ctx, "create", def.ID, map[string]string{"code": def.Code, "name": def.Name})

	return def, nil
}

// Get 获取流程定义
func (s *definitionService) Get(id string) (*workflow.Definition, error) {
	m, err := s.defRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toDefinition(m)
}

// GetByCode 按编码获取流程定义(带缓存)
func (s *definitionService) GetByCode(code string) (*workflow.Definition, error) {
	if v, ok := s.cache.Load(code); ok {
		entry := v.(definitionCacheEntry)
		if time.Now().Before(entry.expiresAt) {
			return entry.definition, nil
		}
		s.cache.Delete(code)
	}

	m, err := s.defRepo.FindByCode(code)
	if err != nil {
		return nil, err
	}
	def, err := s.toDefinition(m)
	if err != nil {
		return nil, err
	}
	s.cache.Store(code, definitionCacheEntry{definition: def, expiresAt: time.Now().Add(s.cacheTTL)})
	return def, nil
}

// Update 更新流程定义
// 已发起的实例持有定义 ID 快照,更新只影响后续新实例
func (s *definitionService) Update(ctx context.Context, id string, req *UpdateDefinitionRequest) (*workflow.Definition, error) {
	m, err := s.defRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		if err := utils.ValidateDefinitionName(req.Name); err != nil {
			return nil, err
		}
		m.Name = req.Name
	}
	if len(req.Nodes) > 0 {
		def := &workflow.Definition{
			ID:           m.ID,
			Code:         m.Code,
			Name:         m.Name,
			BusinessType: workflow.BusinessType(m.BusinessType),
			Nodes:        req.Nodes,
			Enabled:      m.Enabled,
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		nodes, err := workflow.EncodeNodes(req.Nodes)
		if err != nil {
			return nil, err
		}
		m.Nodes = nodes
	}
	m.UpdatedBy = getUserIDFromContext(ctx)
	m.UpdatedAt = time.Now()

	if err := s.defRepo.Save(m); err != nil {
		return nil, fmt.Errorf("failed to update definition: %w", err)
	}
	s.cache.Delete(m.Code)

	s.audit(ctx, "update", id, map[string]string{"code": m.Code})

	return s.toDefinition(m)
}

// Delete 删除流程定义(软删除,历史实例仍可回放)
func (s *definitionService) Delete(ctx context.Context, id string) error {
	m, err := s.defRepo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.defRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete definition: %w", err)
	}
	s.cache.Delete(m.Code)

	s.audit(ctx, "delete", id, map[string]string{"code": m.Code})
	return nil
}

// List 列出流程定义,businessType 为空时返回全部
func (s *definitionService) List(businessType string) ([]*workflow.Definition, error) {
	var (
		models []*model.WorkflowDefinitionModel
		err    error
	)
	if businessType != "" {
		if _, err := workflow.ParseBusinessType(businessType); err != nil {
			return nil, err
		}
		models, err = s.defRepo.FindByBusinessType(businessType)
	} else {
		models, err = s.defRepo.FindAll()
	}
	if err != nil {
		return nil, err
	}

	defs := make([]*workflow.Definition, 0, len(models))
	for _, m := range models {
		def, err := s.toDefinition(m)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// SetEnabled 启用或停用流程定义
func (s *definitionService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	m, err := s.defRepo.FindByID(id)
	if err != nil {
		return err
	}
	m.Enabled = enabled
	m.UpdatedBy = getUserIDFromContext(ctx)
	m.UpdatedAt = time.Now()
	if err := s.defRepo.Save(m); err != nil {
		return fmt.Errorf("failed to update definition: %w", err)
	}
	s.cache.Delete(m.Code)

	action := "disable"
	if enabled {
		action = "enable"
	}
	s.audit(ctx, action, id, map[string]string{"code": m.Code})
	return nil
}

// toDefinition 将数据模型转换为领域对象
func (s *definitionService) toDefinition(m *model.WorkflowDefinitionModel) (*workflow.Definition, error) {
	nodes, err := workflow.DecodeNodes(m.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode definition nodes: %w", err)
	}
	return &workflow.Definition{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		BusinessType: workflow.BusinessType(m.BusinessType),
		Nodes:        nodes,
		Enabled:      m.Enabled,
	}, nil
}

// audit 记录审计日志,失败不阻塞主流程
func (s *definitionService) audit(ctx context.Context, action string, resourceID string, details interface{}) {
	if s.auditLogSvc == nil {
		return
	}
	userID := getUserIDFromContext(ctx)
	if userID == "" {
		return
	}
	_ = s.auditLogSvc.RecordAction(ctx, userID, action, "definition", resourceID, details)
}
