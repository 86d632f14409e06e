package repository

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"gorm.io/gorm"
)

// StatusHistoryRepository 状态历史仓储接口
type StatusHistoryRepository interface {
	Save(history *model.StatusHistoryModel) error
	FindByInstanceID(instanceID string) ([]*model.StatusHistoryModel, error)
}

// statusHistoryRepository 状态历史仓储实现
type statusHistoryRepository struct {
	db *gorm.DB
}

// NewStatusHistoryRepository 创建状态历史仓储
func NewStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

// Save 保存状态历史
func (r *statusHistoryRepository) Save(history *model.StatusHistoryModel) error {
	return r.db.Save(history).Error
}

// FindByInstanceID 根据实例 ID 查找状态历史
func (r *statusHistoryRepository) FindByInstanceID(instanceID string) ([]*model.StatusHistoryModel, error) {
	var histories []*model.StatusHistoryModel
	err := r.db.Where("instance_id = ?", instanceID).Order("created_at ASC").Find(&histories).Error
	return histories, err
}
