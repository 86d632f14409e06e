package projector

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// paymentProjector 请款单状态投影器
type paymentProjector struct{}

// NewPaymentProjector 创建请款单状态投影器
func NewPaymentProjector() StatusProjector {
	return &paymentProjector{}
}

// BusinessType 返回适用业务类型
func (p *paymentProjector) BusinessType() workflow.BusinessType {
	return workflow.BusinessPayment
}

// Apply 投影请款单状态
func (p *paymentProjector) Apply(tx *gorm.DB, instance *model.WorkflowInstanceModel) error {
	var status string
	switch workflow.InstanceStatus(instance.Status) {
	case workflow.StatusPending:
		status = model.PaymentStatusApproving
	case workflow.StatusCompleted:
		status = model.PaymentStatusPayable
	case workflow.StatusRejected:
		status = model.PaymentStatusRejected
	case workflow.StatusCancelled:
		status = model.PaymentStatusDraft
	default:
		return nil
	}

	return tx.Model(&model.PaymentRequestModel{}).
		Where("id = ?", instance.BusinessID).
		Update("status", status).Error
}
