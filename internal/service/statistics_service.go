package service

import (
	"fmt"

	"github.com/caseops/caseflow-gin/internal/model"
	"gorm.io/gorm"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetInstanceStatisticsByStatus() ([]*InstanceStatisticsByStatus, error)
	GetInstanceStatisticsByBusinessType() ([]*InstanceStatisticsByBusinessType, error)
	GetInstanceStatisticsByDefinition() ([]*InstanceStatisticsByDefinition, error)
	GetInstanceStatisticsByTime() ([]*InstanceStatisticsByTime, error)
	GetApprovalStatistics() (*ApprovalStatistics, error)
}

// InstanceStatisticsByStatus 按状态统计
type InstanceStatisticsByStatus struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// InstanceStatisticsByBusinessType 按业务类型统计
type InstanceStatisticsByBusinessType struct {
	BusinessType string `json:"business_type"`
	Count        int64  `json:"count"`
}

// InstanceStatisticsByDefinition 按流程定义统计
type InstanceStatisticsByDefinition struct {
	DefinitionCode string `json:"definition_code"`
	DefinitionName string `json:"definition_name"`
	Count          int64  `json:"count"`
}

// InstanceStatisticsByTime 按时间统计
type InstanceStatisticsByTime struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ApprovalStatistics 审批处理统计
type ApprovalStatistics struct {
	TotalResolved int64   `json:"total_resolved"`
	ApprovedCount int64   `json:"approved_count"`
	RejectedCount int64   `json:"rejected_count"`
	AutoCount     int64   `json:"auto_count"`
	ApprovalRate  float64 `json:"approval_rate"` // 百分比
}

// statisticsService 统计服务实现
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetInstanceStatisticsByStatus 按状态统计审批实例
func (s *statisticsService) GetInstanceStatisticsByStatus() ([]*InstanceStatisticsByStatus, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := s.db.Model(&model.WorkflowInstanceModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get instance statistics by status: %w", err)
	}

	stats := make([]*InstanceStatisticsByStatus, 0, len(results))
	for _, r := range results {
		stats = append(stats, &InstanceStatisticsByStatus{
			Status: r.Status,
			Count:  r.Count,
		})
	}

	return stats, nil
}

// GetInstanceStatisticsByBusinessType 按业务类型统计审批实例
func (s *statisticsService) GetInstanceStatisticsByBusinessType() ([]*InstanceStatisticsByBusinessType, error) {
	var results []struct {
		BusinessType string
		Count        int64
	}

	err := s.db.Model(&model.WorkflowInstanceModel{}).
		Select("business_type, COUNT(*) as count").
		Group("business_type").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get instance statistics by business type: %w", err)
	}

	stats := make([]*InstanceStatisticsByBusinessType, 0, len(results))
	for _, r := range results {
		stats = append(stats, &InstanceStatisticsByBusinessType{
			BusinessType: r.BusinessType,
			Count:        r.Count,
		})
	}

	return stats, nil
}

// GetInstanceStatisticsByDefinition 按流程定义统计审批实例
func (s *statisticsService) GetInstanceStatisticsByDefinition() ([]*InstanceStatisticsByDefinition, error) {
	var results []struct {
		DefinitionCode string
		Count          int64
	}

	err := s.db.Model(&model.WorkflowInstanceModel{}).
		Select("definition_code, COUNT(*) as count").
		Group("definition_code").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get instance statistics by definition: %w", err)
	}

	// 补充定义名称
	stats := make([]*InstanceStatisticsByDefinition, 0, len(results))
	for _, r := range results {
		stat := &InstanceStatisticsByDefinition{
			DefinitionCode: r.DefinitionCode,
			DefinitionName: r.DefinitionCode,
			Count:          r.Count,
		}
		var def model.WorkflowDefinitionModel
		if err := s.db.Unscoped().Where("code = ?", r.DefinitionCode).First(&def).Error; err == nil {
			stat.DefinitionName = def.Name
		}
		stats = append(stats, stat)
	}

	return stats, nil
}

// GetInstanceStatisticsByTime 按发起日期统计审批实例
func (s *statisticsService) GetInstanceStatisticsByTime() ([]*InstanceStatisticsByTime, error) {
	var results []struct {
		Date  string
		Count int64
	}

	err := s.db.Model(&model.WorkflowInstanceModel{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get instance statistics by time: %w", err)
	}

	stats := make([]*InstanceStatisticsByTime, 0, len(results))
	for _, r := range results {
		stats = append(stats, &InstanceStatisticsByTime{
			Date:  r.Date,
			Count: r.Count,
		})
	}

	return stats, nil
}

// GetApprovalStatistics 获取节点处理统计
func (s *statisticsService) GetApprovalStatistics() (*ApprovalStatistics, error) {
	var totalCount int64
	err := s.db.Model(&model.WorkflowProcessModel{}).
		Where("action <> ?", "pending").
		Count(&totalCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count resolved processes: %w", err)
	}

	var approvedCount int64
	err = s.db.Model(&model.WorkflowProcessModel{}).
		Where("action = ?", "approve").
		Count(&approvedCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count approved processes: %w", err)
	}

	var rejectedCount int64
	err = s.db.Model(&model.WorkflowProcessModel{}).
		Where("action = ?", "reject").
		Count(&rejectedCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count rejected processes: %w", err)
	}

	var autoCount int64
	err = s.db.Model(&model.WorkflowProcessModel{}).
		Where("action = ?", "auto").
		Count(&autoCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count auto processes: %w", err)
	}

	approvalRate := 0.0
	if totalCount > 0 {
		approvalRate = float64(approvedCount+autoCount) / float64(totalCount) * 100
	}

	return &ApprovalStatistics{
		TotalResolved: totalCount,
		ApprovedCount: approvedCount,
		RejectedCount: rejectedCount,
		AutoCount:     autoCount,
		ApprovalRate:  approvalRate,
	}, nil
}
