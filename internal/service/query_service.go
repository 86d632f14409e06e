package service

import (
	"fmt"
	"math"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/caseops/caseflow-gin/internal/utils"
)

// QueryService 查询服务接口
type QueryService interface {
	ListInstances(filter *repository.InstanceFilter) (*InstanceListResponse, error)
	GetRecords(instanceID string) ([]*model.WorkflowProcessModel, error)
	GetHistory(instanceID string) ([]*model.StatusHistoryModel, error)
	PendingTasks(assignee string) ([]*PendingTask, error)
}

// InstanceListResponse 实例列表响应
type InstanceListResponse struct {
	Data       []*model.WorkflowInstanceModel `json:"data"`
	Pagination PaginationInfo                 `json:"pagination"`
}

// PaginationInfo 分页信息
type PaginationInfo struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// PendingTask 待办事项,处理人视角的待审节点
type PendingTask struct {
	ProcessID      string `json:"process_id"`
	InstanceID     string `json:"instance_id"`
	NodeIndex      int    `json:"node_index"`
	NodeName       string `json:"node_name"`
	BusinessType   string `json:"business_type"`
	BusinessID     string `json:"business_id"`
	DefinitionCode string `json:"definition_code"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      string `json:"created_at"`
}

// queryService 查询服务实现
type queryService struct {
	instanceRepo repository.InstanceRepository
	processRepo  repository.ProcessRepository
	historyRepo  repository.StatusHistoryRepository
}

// NewQueryService 创建查询服务
func NewQueryService(
	instanceRepo repository.InstanceRepository,
	processRepo repository.ProcessRepository,
	historyRepo repository.StatusHistoryRepository,
) QueryService {
	return &queryService{
		instanceRepo: instanceRepo,
		processRepo:  processRepo,
		historyRepo:  historyRepo,
	}
}

// ListInstances 分页查询审批实例
func (s *queryService) ListInstances(filter *repository.InstanceFilter) (*InstanceListResponse, error) {
	if filter == nil {
		filter = &repository.InstanceFilter{}
	}

	// 验证排序字段与方向,防止 SQL 注入
	if filter.SortBy != "" {
		if err := utils.ValidateSortField(filter.SortBy); err != nil {
			return nil, fmt.Errorf("invalid sort field: %w", err)
		}
	}
	if filter.Order != "" {
		if err := utils.ValidateSortOrder(filter.Order); err != nil {
			return nil, fmt.Errorf("invalid sort order: %w", err)
		}
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	instances, total, err := s.instanceRepo.FindByFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}

	totalPage := int(math.Ceil(float64(total) / float64(filter.PageSize)))
	return &InstanceListResponse{
		Data: instances,
		Pagination: PaginationInfo{
			Page:      filter.Page,
			PageSize:  filter.PageSize,
			Total:     total,
			TotalPage: totalPage,
		},
	}, nil
}

// GetRecords 获取实例的全部审批记录,按节点顺序排列
func (s *queryService) GetRecords(instanceID string) ([]*model.WorkflowProcessModel, error) {
	if err := utils.ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}
	return s.processRepo.FindByInstanceID(instanceID)
}

// GetHistory 获取实例的状态变更历史
func (s *queryService) GetHistory(instanceID string) ([]*model.StatusHistoryModel, error) {
	if err := utils.ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}
	return s.historyRepo.FindByInstanceID(instanceID)
}

// PendingTasks 获取处理人的待办列表
func (s *queryService) PendingTasks(assignee string) ([]*PendingTask, error) {
	if assignee == "" {
		return nil, fmt.Errorf("assignee is required")
	}

	processes, err := s.processRepo.FindPendingByAssignee(assignee)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}

	tasks := make([]*PendingTask, 0, len(processes))
	for _, p := range processes {
		task := &PendingTask{
			ProcessID:  p.ID,
			InstanceID: p.InstanceID,
			NodeIndex:  p.NodeIndex,
			NodeName:   p.NodeName,
			CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		// 补充实例上下文,待办列表要能直接展示业务来源
		if instance, err := s.instanceRepo.FindByID(p.InstanceID); err == nil {
			task.BusinessType = instance.BusinessType
			task.BusinessID = instance.BusinessID
			task.DefinitionCode = instance.DefinitionCode
			task.CreatedBy = instance.CreatedBy
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
