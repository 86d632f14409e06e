package repository

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"gorm.io/gorm"
)

// ProcessRepository 节点处理记录仓储接口
type ProcessRepository interface {
	Save(process *model.WorkflowProcessModel) error
	FindByID(id string) (*model.WorkflowProcessModel, error)
	FindByInstanceID(instanceID string) ([]*model.WorkflowProcessModel, error)
	FindPendingByInstanceID(instanceID string) (*model.WorkflowProcessModel, error)
	FindPendingByAssignee(assignee string) ([]*model.WorkflowProcessModel, error)
	CountResolved(instanceID string) (int64, error)
}

// processRepository 节点处理记录仓储实现
type processRepository struct {
	db *gorm.DB
}

// NewProcessRepository 创建节点处理记录仓储
func NewProcessRepository(db *gorm.DB) ProcessRepository {
	return &processRepository{db: db}
}

// Save 保存节点处理记录
func (r *processRepository) Save(process *model.WorkflowProcessModel) error {
	return r.db.Save(process).Error
}

// FindByID 根据 ID 查找节点处理记录
func (r *processRepository) FindByID(id string) (*model.WorkflowProcessModel, error) {
	var process model.WorkflowProcessModel
	if err := r.db.Where("id = ?", id).First(&process).Error; err != nil {
		return nil, err
	}
	return &process, nil
}

// FindByInstanceID 查找实例的全部节点记录,按节点顺序返回
func (r *processRepository) FindByInstanceID(instanceID string) ([]*model.WorkflowProcessModel, error) {
	var processes []*model.WorkflowProcessModel
	err := r.db.Where("instance_id = ?", instanceID).
		Order("node_index ASC, created_at ASC").
		Find(&processes).Error
	return processes, err
}

// FindPendingByInstanceID 查找实例当前待处理的节点记录
func (r *processRepository) FindPendingByInstanceID(instanceID string) (*model.WorkflowProcessModel, error) {
	var process model.WorkflowProcessModel
	err := r.db.Where("instance_id = ? AND action = ? AND superseded = ?",
		instanceID, "pending", false).
		First(&process).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}

// FindPendingByAssignee 查找指定处理人的待办节点记录
// 排除实例已不在审批中的悬空 pending 行(撤销实例遗留的记录视为作废)
func (r *processRepository) FindPendingByAssignee(assignee string) ([]*model.WorkflowProcessModel, error) {
	var processes []*model.WorkflowProcessModel
	err := r.db.
		Joins("JOIN workflow_instances ON workflow_instances.id = workflow_processes.instance_id").
		Where("workflow_processes.assignee = ? AND workflow_processes.action = ? AND workflow_processes.superseded = ?",
			assignee, "pending", false).
		Where("workflow_instances.status = ? AND workflow_instances.deleted_at IS NULL", "pending").
		Order("workflow_processes.created_at ASC").
		Find(&processes).Error
	return processes, err
}

// CountResolved 统计实例已处理(非 pending)的节点记录数
// node-0 重启判定依赖这个计数
func (r *processRepository) CountResolved(instanceID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.WorkflowProcessModel{}).
		Where("instance_id = ? AND action <> ?", instanceID, "pending").
		Count(&count).Error
	return count, err
}
