package repository

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"gorm.io/gorm"
)

// InstanceRepository 审批实例仓储接口
type InstanceRepository interface {
	Save(instance *model.WorkflowInstanceModel) error
	FindByID(id string) (*model.WorkflowInstanceModel, error)
	FindPendingByBusiness(businessType string, businessID string) (*model.WorkflowInstanceModel, error)
	FindLatestByBusiness(businessType string, businessID string) (*model.WorkflowInstanceModel, error)
	FindByFilter(filter *InstanceFilter) ([]*model.WorkflowInstanceModel, int64, error)
}

// InstanceFilter 审批实例查询过滤器
type InstanceFilter struct {
	Status         *string
	BusinessType   *string
	BusinessID     *string
	DefinitionCode *string
	CreatedBy      *string
	StartTime      *string
	EndTime        *string
	Page           int
	PageSize       int
	SortBy         string
	Order          string
}

// instanceRepository 审批实例仓储实现
type instanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository 创建审批实例仓储
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &instanceRepository{db: db}
}

// Save 保存审批实例
func (r *instanceRepository) Save(instance *model.WorkflowInstanceModel) error {
	return r.db.Save(instance).Error
}

// FindByID 根据 ID 查找审批实例
func (r *instanceRepository) FindByID(id string) (*model.WorkflowInstanceModel, error) {
	var instance model.WorkflowInstanceModel
	if err := r.db.Where("id = ?", id).First(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindPendingByBusiness 查找业务记录审批中的实例
func (r *instanceRepository) FindPendingByBusiness(businessType string, businessID string) (*model.WorkflowInstanceModel, error) {
	var instance model.WorkflowInstanceModel
	err := r.db.Where("business_type = ? AND business_id = ? AND status = ?",
		businessType, businessID, "pending").
		Order("created_at DESC").
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindLatestByBusiness 查找业务记录最近一次审批实例
// 最近一条实例是业务记录当前审批状态的权威来源
func (r *instanceRepository) FindLatestByBusiness(businessType string, businessID string) (*model.WorkflowInstanceModel, error) {
	var instance model.WorkflowInstanceModel
	err := r.db.Where("business_type = ? AND business_id = ?", businessType, businessID).
		Order("created_at DESC").
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindByFilter 根据过滤器分页查找审批实例
func (r *instanceRepository) FindByFilter(filter *InstanceFilter) ([]*model.WorkflowInstanceModel, int64, error) {
	query := r.db.Model(&model.WorkflowInstanceModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.BusinessType != nil {
			query = query.Where("business_type = ?", *filter.BusinessType)
		}
		if filter.BusinessID != nil {
			query = query.Where("business_id = ?", *filter.BusinessID)
		}
		if filter.DefinitionCode != nil {
			query = query.Where("definition_code = ?", *filter.DefinitionCode)
		}
		if filter.CreatedBy != nil {
			query = query.Where("created_by = ?", *filter.CreatedBy)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	order := "DESC"
	page := 1
	pageSize := 20
	if filter != nil {
		if filter.SortBy != "" {
			sortBy = filter.SortBy
		}
		if filter.Order != "" {
			order = filter.Order
		}
		if filter.Page > 0 {
			page = filter.Page
		}
		if filter.PageSize > 0 {
			pageSize = filter.PageSize
		}
	}

	var instances []*model.WorkflowInstanceModel
	err := query.Order(sortBy + " " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&instances).Error
	return instances, total, err
}
