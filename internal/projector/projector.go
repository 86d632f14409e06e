package projector

import (
	"fmt"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// StatusProjector 业务状态投影器
// 把审批实例的状态映射回业务记录自身的状态列;
// 在引擎的状态变更事务内调用,与实例更新一起提交或回滚
type StatusProjector interface {
	BusinessType() workflow.BusinessType
	Apply(tx *gorm.DB, instance *model.WorkflowInstanceModel) error
}

// Registry 投影器注册表,按业务类型分发
type Registry struct {
	projectors map[workflow.BusinessType]StatusProjector
}

// NewRegistry 创建投影器注册表
func NewRegistry(projectors ...StatusProjector) *Registry {
	r := &Registry{projectors: make(map[workflow.BusinessType]StatusProjector)}
	for _, p := range projectors {
		r.projectors[p.BusinessType()] = p
	}
	return r
}

// Defaults 创建包含全部业务类型的注册表
func Defaults() *Registry {
	return NewRegistry(
		NewContractProjector(),
		NewCaseProjector(),
		NewPaymentProjector(),
	)
}

// Apply 把实例状态投影到对应业务记录
func (r *Registry) Apply(tx *gorm.DB, instance *model.WorkflowInstanceModel) error {
	p, ok := r.projectors[workflow.BusinessType(instance.BusinessType)]
	if !ok {
		return fmt.Errorf("no status projector for business type %q", instance.BusinessType)
	}
	return p.Apply(tx, instance)
}
