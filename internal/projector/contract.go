package projector

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// contractProjector 合同状态投影器
type contractProjector struct{}

// NewContractProjector 创建合同状态投影器
func NewContractProjector() StatusProjector {
	return &contractProjector{}
}

// BusinessType 返回适用业务类型
func (p *contractProjector) BusinessType() workflow.BusinessType {
	return workflow.BusinessContract
}

// Apply 投影合同状态
// 审批通过的合同生效,并联动其下案件进入可开案状态
func (p *contractProjector) Apply(tx *gorm.DB, instance *model.WorkflowInstanceModel) error {
	var status string
	switch workflow.InstanceStatus(instance.Status) {
	case workflow.StatusPending:
		status = model.ContractStatusApproving
	case workflow.StatusCompleted:
		status = model.ContractStatusActive
	case workflow.StatusRejected:
		status = model.ContractStatusRejected
	case workflow.StatusCancelled:
		status = model.ContractStatusDraft
	default:
		return nil
	}

	if err := tx.Model(&model.ContractModel{}).
		Where("id = ?", instance.BusinessID).
		Update("status", status).Error; err != nil {
		return err
	}

	// 合同生效后,其下已立项案件进入可开案状态
	if status == model.ContractStatusActive {
		return tx.Model(&model.CaseModel{}).
			Where("contract_id = ? AND status = ?", instance.BusinessID, model.CaseStatusCreated).
			Update("status", model.CaseStatusReady).Error
	}
	return nil
}
