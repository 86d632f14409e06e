package engine

import (
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/workflow"
)

// IsRestartable 判断审批中的实例是否允许重新发起
// 停在 0 号节点且没有任何已处理节点记录的实例,视为"未真正进入流程",
// 再次发起时复用而不是报 AlreadyPending;该规则保证业务记录可以重新提交,
// 不会被一个从未有人处理过的实例卡死
func IsRestartable(instance *model.WorkflowInstanceModel, resolvedCount int64) bool {
	if instance == nil {
		return false
	}
	if workflow.InstanceStatus(instance.Status) != workflow.StatusPending {
		return false
	}
	if instance.CurrentNode != 0 {
		return false
	}
	return resolvedCount == 0
}
