package service

import (
	"testing"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionCreateAndGet(t *testing.T) {
	env := setupServiceTest(t, nil)

	def := seedTestDefinition(t, env, "contract_approval", "contract")
	assert.True(t, def.Enabled)
	assert.Equal(t, workflow.BusinessContract, def.BusinessType)

	got, err := env.definitionSvc.Get(def.ID)
	require.NoError(t, err)
	assert.Equal(t, def.Code, got.Code)
	require.Len(t, got.Nodes, 2)

	byCode, err := env.definitionSvc.GetByCode("contract_approval")
	require.NoError(t, err)
	assert.Equal(t, def.ID, byCode.ID)

	// 创建人来自请求上下文
	var m model.WorkflowDefinitionModel
	require.NoError(t, env.db.First(&m, "id = ?", def.ID).Error)
	assert.Equal(t, "admin", m.CreatedBy)

	// 创建动作进审计日志
	logs, err := env.auditLogSvc.ListByResource("definition", def.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "create", logs[0].Action)
}

func TestDefinitionCreateRejectsDuplicateCode(t *testing.T) {
	env := setupServiceTest(t, nil)
	seedTestDefinition(t, env, "contract_approval", "contract")

	_, err := env.definitionSvc.Create(actorContext("admin"), &CreateDefinitionRequest{
		Code:         "contract_approval",
		Name:         "重名流程",
		BusinessType: "contract",
		Nodes: []workflow.Node{
			{Name: "节点", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "u1"}},
		},
	})
	assert.ErrorContains(t, err, "already exists")
}

func TestDefinitionCreateValidation(t *testing.T) {
	env := setupServiceTest(t, nil)
	ctx := actorContext("admin")

	// 未知业务类型
	_, err := env.definitionSvc.Create(ctx, &CreateDefinitionRequest{
		Code: "x", Name: "x", BusinessType: "invoice",
		Nodes: []workflow.Node{{Name: "n", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "u"}}},
	})
	assert.Error(t, err)

	// 空节点列表
	_, err = env.definitionSvc.Create(ctx, &CreateDefinitionRequest{
		Code: "x", Name: "x", BusinessType: "contract",
	})
	assert.Error(t, err)

	// 危险字符
	_, err = env.definitionSvc.Create(ctx, &CreateDefinitionRequest{
		Code: "x", Name: "<script>alert(1)</script>", BusinessType: "contract",
		Nodes: []workflow.Node{{Name: "n", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "u"}}},
	})
	assert.Error(t, err)
}

func TestDefinitionUpdate(t *testing.T) {
	env := setupServiceTest(t, nil)
	def := seedTestDefinition(t, env, "contract_approval", "contract")

	updated, err := env.definitionSvc.Update(actorContext("admin"), def.ID, &UpdateDefinitionRequest{
		Name: "合同审批 v2",
		Nodes: []workflow.Node{
			{Name: "总经理直批", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "ceo"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "合同审批 v2", updated.Name)
	require.Len(t, updated.Nodes, 1)

	// 更新后缓存失效,按编码读到新版本
	byCode, err := env.definitionSvc.GetByCode("contract_approval")
	require.NoError(t, err)
	assert.Equal(t, "合同审批 v2", byCode.Name)
}

func TestDefinitionSetEnabledAndDelete(t *testing.T) {
	env := setupServiceTest(t, nil)
	ctx := actorContext("admin")
	def := seedTestDefinition(t, env, "contract_approval", "contract")

	require.NoError(t, env.definitionSvc.SetEnabled(ctx, def.ID, false))
	got, err := env.definitionSvc.Get(def.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, env.definitionSvc.Delete(ctx, def.ID))
	_, err = env.definitionSvc.Get(def.ID)
	assert.Error(t, err)

	// 软删除,历史数据仍在
	var m model.WorkflowDefinitionModel
	require.NoError(t, env.db.Unscoped().First(&m, "id = ?", def.ID).Error)
	assert.True(t, m.DeletedAt.Valid)
}

func TestDefinitionList(t *testing.T) {
	env := setupServiceTest(t, nil)
	seedTestDefinition(t, env, "contract_approval", "contract")
	seedTestDefinition(t, env, "case_approval", "case")

	all, err := env.definitionSvc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	contracts, err := env.definitionSvc.List("contract")
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "contract_approval", contracts[0].Code)

	_, err = env.definitionSvc.List("invoice")
	assert.Error(t, err)
}
