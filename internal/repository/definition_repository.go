package repository

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"gorm.io/gorm"
)

// DefinitionRepository 流程定义仓储接口
type DefinitionRepository interface {
	Save(definition *model.WorkflowDefinitionModel) error
	FindByID(id string) (*model.WorkflowDefinitionModel, error)
	FindByCode(code string) (*model.WorkflowDefinitionModel, error)
	FindAll() ([]*model.WorkflowDefinitionModel, error)
	FindByBusinessType(businessType string) ([]*model.WorkflowDefinitionModel, error)
	Delete(id string) error
}

// definitionRepository 流程定义仓储实现
type definitionRepository struct {
	db *gorm.DB
}

// NewDefinitionRepository 创建流程定义仓储
func NewDefinitionRepository(db *gorm.DB) DefinitionRepository {
	return &definitionRepository{db: db}
}

// Save 保存流程定义
func (r *definitionRepository) Save(definition *model.WorkflowDefinitionModel) error {
	return r.db.Save(definition).Error
}

// FindByID 根据 ID 查找流程定义
func (r *definitionRepository) FindByID(id string) (*model.WorkflowDefinitionModel, error) {
	var definition model.WorkflowDefinitionModel
	if err := r.db.Where("id = ?", id).First(&definition).Error; err != nil {
		return nil, err
	}
	return &definition, nil
}

// FindByCode 根据编码查找流程定义
func (r *definitionRepository) FindByCode(code string) (*model.WorkflowDefinitionModel, error) {
	var definition model.WorkflowDefinitionModel
	if err := r.db.Where("code = ?", code).First(&definition).Error; err != nil {
		return nil, err
	}
	return &definition, nil
}

// FindAll 查找所有流程定义
func (r *definitionRepository) FindAll() ([]*model.WorkflowDefinitionModel, error) {
	var definitions []*model.WorkflowDefinitionModel
	err := r.db.Order("created_at DESC").Find(&definitions).Error
	return definitions, err
}

// FindByBusinessType 根据业务类型查找流程定义
func (r *definitionRepository) FindByBusinessType(businessType string) ([]*model.WorkflowDefinitionModel, error) {
	var definitions []*model.WorkflowDefinitionModel
	err := r.db.Where("business_type = ? AND enabled = ?", businessType, true).
		Order("created_at DESC").
		Find(&definitions).Error
	return definitions, err
}

// Delete 删除流程定义(软删除)
func (r *definitionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.WorkflowDefinitionModel{}).Error
}
