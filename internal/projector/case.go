package projector

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// caseProjector 案件状态投影器
type caseProjector struct{}

// NewCaseProjector 创建案件状态投影器
func NewCaseProjector() StatusProjector {
	return &caseProjector{}
}

// BusinessType 返回适用业务类型
func (p *caseProjector) BusinessType() workflow.BusinessType {
	return workflow.BusinessCase
}

// Apply 投影案件状态
func (p *caseProjector) Apply(tx *gorm.DB, instance *model.WorkflowInstanceModel) error {
	var status string
	switch workflow.InstanceStatus(instance.Status) {
	case workflow.StatusPending:
		status = model.CaseStatusApproving
	case workflow.StatusCompleted:
		status = model.CaseStatusApproved
	case workflow.StatusRejected:
		status = model.CaseStatusRejected
	case workflow.StatusCancelled:
		status = model.CaseStatusDraft
	default:
		return nil
	}

	return tx.Model(&model.CaseModel{}).
		Where("id = ?", instance.BusinessID).
		Update("status", status).Error
}
