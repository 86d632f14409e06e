package engine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/projector"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// permMap 测试用权限检查器
type permMap map[string][]string

func (p permMap) Has(actorID string, permission string) bool {
	for _, perm := range p[actorID] {
		if perm == permission {
			return true
		}
	}
	return false
}

// captureSink 测试用事件接收器
type captureSink struct {
	mu     sync.Mutex
	events []*Event
}

func (s *captureSink) Emit(evt *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *captureSink) types() []EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]EventType, 0, len(s.events))
	for _, evt := range s.events {
		types = append(types, evt.Type)
	}
	return types
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.WorkflowDefinitionModel{},
		&model.WorkflowInstanceModel{},
		&model.WorkflowProcessModel{},
		&model.StatusHistoryModel{},
		&model.EventModel{},
		&model.ContractModel{},
		&model.CaseModel{},
		&model.PaymentRequestModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestManager(t *testing.T, db *gorm.DB, perms permMap, sink EventSink) Manager {
	resolver := workflow.NewDirectoryResolver(map[string][]string{
		"dept_manager": {"mgr-01"},
		"finance":      {"fin-01"},
	})
	return NewManager(db, resolver, perms, projector.Defaults(), sink, nil)
}

// seedDefinition 写入流程定义并返回编码
func seedDefinition(t *testing.T, db *gorm.DB, code string, businessType workflow.BusinessType, nodes []workflow.Node) {
	data, err := workflow.EncodeNodes(nodes)
	require.NoError(t, err)

	err = db.Create(&model.WorkflowDefinitionModel{
		ID:           uuid.New().String(),
		Code:         code,
		Name:         code,
		BusinessType: string(businessType),
		Nodes:        data,
		Enabled:      true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}).Error
	require.NoError(t, err)
}

func seedContract(t *testing.T, db *gorm.DB, id string) {
	err := db.Create(&model.ContractModel{
		ID:        id,
		No:        "HT-" + id,
		Name:      "测试合同",
		Amount:    5000,
		Status:    model.ContractStatusDraft,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}).Error
	require.NoError(t, err)
}

func twoManualNodes() []workflow.Node {
	return []workflow.Node{
		{Name: "部门审核", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "dept_manager"}},
		{Name: "财务审批", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "finance"}},
	}
}

func TestStartCreatesPendingProcess(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	seedContract(t, db, "c-1")
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	assert.Equal(t, string(workflow.StatusPending), inst.Record.Status)
	assert.Equal(t, 0, inst.Record.CurrentNode)
	assert.Equal(t, "alice", inst.Record.CreatedBy)

	require.Len(t, inst.Processes, 1)
	assert.Equal(t, string(workflow.ActionPending), inst.Processes[0].Action)
	assert.Equal(t, "mgr-01", inst.Processes[0].Assignee)
	assert.Equal(t, "部门审核", inst.Processes[0].NodeName)

	// 业务状态同步进入审批中
	var contract model.ContractModel
	require.NoError(t, db.First(&contract, "id = ?", "c-1").Error)
	assert.Equal(t, model.ContractStatusApproving, contract.Status)
}

func TestStartRejectsUnknownDefinition(t *testing.T) {
	db := setupTestDB(t)
	mgr := newTestManager(t, db, nil, nil)

	_, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "missing", "alice", nil)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestStartRejectsDisabledDefinition(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	require.NoError(t, db.Model(&model.WorkflowDefinitionModel{}).
		Where("code = ?", "contract_approval").
		Update("enabled", false).Error)
	mgr := newTestManager(t, db, nil, nil)

	_, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestStartRejectsBusinessTypeMismatch(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	mgr := newTestManager(t, db, nil, nil)

	_, err := mgr.Start(context.Background(), workflow.CaseRef("a-1"), "contract_approval", "alice", nil)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestApproveAllNodesCompletesInstance(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	seedContract(t, db, "c-1")
	sink := &captureSink{}
	mgr := newTestManager(t, db, nil, sink)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	// 节点 0 同意,前进到节点 1
	inst, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionApprove, "同意")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusPending), inst.Record.Status)
	assert.Equal(t, 1, inst.Record.CurrentNode)
	require.Len(t, inst.Processes, 2)
	assert.Equal(t, "fin-01", inst.Processes[1].Assignee)

	// 节点 1 同意,实例完成
	inst, err = mgr.Process(context.Background(), inst.Processes[1].ID, "fin-01", workflow.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCompleted), inst.Record.Status)

	// 台账完整保留,一节点一行
	require.Len(t, inst.Processes, 2)
	assert.Equal(t, string(workflow.ActionApprove), inst.Processes[0].Action)
	assert.Equal(t, "mgr-01", inst.Processes[0].Processor)
	assert.NotNil(t, inst.Processes[0].ProcessedAt)

	// 合同生效
	var contract model.ContractModel
	require.NoError(t, db.First(&contract, "id = ?", "c-1").Error)
	assert.Equal(t, model.ContractStatusActive, contract.Status)

	assert.Equal(t, []EventType{
		EventInstanceStarted,
		EventProcessResolved,
		EventProcessResolved,
		EventInstanceCompleted,
	}, sink.types())
}

func TestAutoApproveCascade(t *testing.T) {
	db := setupTestDB(t)
	nodes := []workflow.Node{
		{Name: "承办人确认", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "dept_manager"}},
		{
			Name:        "小额免审",
			Approver:    workflow.ApproverRule{Type: workflow.RuleRole, Value: "finance"},
			AutoApprove: true,
			AutoWhen:    &workflow.AutoPredicate{Field: "amount", Op: workflow.OpLt, Value: json.RawMessage(`1000`)},
		},
		{Name: "总经理审批", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "ceo"}},
	}
	seedDefinition(t, db, "payment_approval", workflow.BusinessPayment, nodes)
	mgr := newTestManager(t, db, nil, nil)

	params := json.RawMessage(`{"amount": 500}`)
	inst, err := mgr.Start(context.Background(), workflow.PaymentRef("p-1"), "payment_approval", "alice", params)
	require.NoError(t, err)

	// 节点 0 同意后,节点 1 条件成立自动通过,停在节点 2
	inst, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, 2, inst.Record.CurrentNode)
	require.Len(t, inst.Processes, 3)

	autoRow := inst.Processes[1]
	assert.Equal(t, string(workflow.ActionAuto), autoRow.Action)
	assert.Equal(t, "system", autoRow.Assignee)
	assert.Equal(t, "system", autoRow.Processor)
	assert.NotNil(t, autoRow.ProcessedAt)

	assert.Equal(t, string(workflow.ActionPending), inst.Processes[2].Action)
	assert.Equal(t, "ceo", inst.Processes[2].Assignee)
}

func TestAutoApprovePredicateNotMet(t *testing.T) {
	db := setupTestDB(t)
	nodes := []workflow.Node{
		{
			Name:        "小额免审",
			Approver:    workflow.ApproverRule{Type: workflow.RuleRole, Value: "finance"},
			AutoApprove: true,
			AutoWhen:    &workflow.AutoPredicate{Field: "amount", Op: workflow.OpLt, Value: json.RawMessage(`1000`)},
		},
	}
	seedDefinition(t, db, "payment_approval", workflow.BusinessPayment, nodes)
	mgr := newTestManager(t, db, nil, nil)

	// 金额超限,自动节点退化为人工节点
	params := json.RawMessage(`{"amount": 8000}`)
	inst, err := mgr.Start(context.Background(), workflow.PaymentRef("p-1"), "payment_approval", "alice", params)
	require.NoError(t, err)

	assert.Equal(t, string(workflow.StatusPending), inst.Record.Status)
	require.Len(t, inst.Processes, 1)
	assert.Equal(t, string(workflow.ActionPending), inst.Processes[0].Action)
	assert.Equal(t, "fin-01", inst.Processes[0].Assignee)
}

func TestAllAutoNodesCompleteOnStart(t *testing.T) {
	db := setupTestDB(t)
	nodes := []workflow.Node{
		{Name: "自动一", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "u1"}, AutoApprove: true},
		{Name: "自动二", Approver: workflow.ApproverRule{Type: workflow.RuleFixed, Value: "u2"}, AutoApprove: true},
	}
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, nodes)
	seedContract(t, db, "c-1")
	sink := &captureSink{}
	mgr := newTestManager(t, db, nil, sink)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	assert.Equal(t, string(workflow.StatusCompleted), inst.Record.Status)
	require.Len(t, inst.Processes, 2)
	assert.Equal(t, []EventType{EventInstanceStarted, EventInstanceCompleted}, sink.types())
}

func TestRejectTerminatesInstance(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	seedContract(t, db, "c-1")
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	inst, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionReject, "材料不全")
	require.NoError(t, err)

	assert.Equal(t, string(workflow.StatusRejected), inst.Record.Status)
	// 驳回不产生后续节点
	require.Len(t, inst.Processes, 1)
	assert.Equal(t, "材料不全", inst.Processes[0].Comment)

	var contract model.ContractModel
	require.NoError(t, db.First(&contract, "id = ?", "c-1").Error)
	assert.Equal(t, model.ContractStatusRejected, contract.Status)
}

func TestProcessTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)
	processID := inst.Processes[0].ID

	_, err = mgr.Process(context.Background(), processID, "mgr-01", workflow.ActionApprove, "")
	require.NoError(t, err)

	_, err = mgr.Process(context.Background(), processID, "mgr-01", workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrNotPending)
}

func TestProcessRejectsNonResolvingAction(t *testing.T) {
	db := setupTestDB(t)
	mgr := newTestManager(t, db, nil, nil)

	_, err := mgr.Process(context.Background(), "whatever", "mgr-01", workflow.ActionPending, "")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	_, err = mgr.Process(context.Background(), "whatever", "mgr-01", workflow.ActionAuto, "")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestProcessUnauthorizedActor(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	perms := permMap{"admin": {PermOverride}}
	mgr := newTestManager(t, db, perms, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)
	processID := inst.Processes[0].ID

	// 非处理人且无越权权限
	_, err = mgr.Process(context.Background(), processID, "mallory", workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	// 持有 override 权限的管理员可以代为处理
	inst, err = mgr.Process(context.Background(), processID, "admin", workflow.ActionApprove, "代审")
	require.NoError(t, err)
	assert.Equal(t, "admin", inst.Processes[0].Processor)
}

func TestStartWhileInFlightFails(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	// 节点 0 处理后实例真正进入流程,不允许重复发起
	_, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionApprove, "")
	require.NoError(t, err)

	_, err = mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	assert.ErrorIs(t, err, workflow.ErrAlreadyPending)
}

func TestRestartAtNodeZeroReusesInstance(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	mgr := newTestManager(t, db, nil, nil)

	first, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", json.RawMessage(`{"amount": 100}`))
	require.NoError(t, err)
	staleProcessID := first.Processes[0].ID

	// 停在 0 号节点且无人处理过,再次发起复用实例并刷新参数和发起人
	second, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "bob", json.RawMessage(`{"amount": 200}`))
	require.NoError(t, err)

	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, "bob", second.Record.CreatedBy)
	assert.JSONEq(t, `{"amount": 200}`, string(second.Record.Params))

	// 原 pending 行作废,新开一行
	var stale model.WorkflowProcessModel
	require.NoError(t, db.First(&stale, "id = ?", staleProcessID).Error)
	assert.True(t, stale.Superseded)

	require.Len(t, second.Processes, 2)
	fresh := second.Processes[1]
	assert.Equal(t, string(workflow.ActionPending), fresh.Action)
	assert.False(t, fresh.Superseded)

	// 作废行不可再处理
	_, err = mgr.Process(context.Background(), staleProcessID, "mgr-01", workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrNotPending)
}

func TestCancelPendingInstance(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	seedContract(t, db, "c-1")
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)
	pendingID := inst.Processes[0].ID

	inst, err = mgr.Cancel(context.Background(), inst.Record.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCancelled), inst.Record.Status)

	// 撤销后合同退回草拟
	var contract model.ContractModel
	require.NoError(t, db.First(&contract, "id = ?", "c-1").Error)
	assert.Equal(t, model.ContractStatusDraft, contract.Status)

	// 悬空的 pending 行视为作废,不可再处理
	_, err = mgr.Process(context.Background(), pendingID, "mgr-01", workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrNotPending)
}

func TestCancelPermissions(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	perms := permMap{"admin": {PermCancel}}
	mgr := newTestManager(t, db, perms, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	// 既非发起人也无撤销权限
	_, err = mgr.Cancel(context.Background(), inst.Record.ID, "mallory")
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	// 持有 cancel 权限的管理员可以撤销他人实例
	_, err = mgr.Cancel(context.Background(), inst.Record.ID, "admin")
	require.NoError(t, err)
}

func TestCancelTerminalInstanceFails(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, []workflow.Node{
		{Name: "唯一节点", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "dept_manager"}},
	})
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)
	inst, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, string(workflow.StatusCompleted), inst.Record.Status)

	_, err = mgr.Cancel(context.Background(), inst.Record.ID, "alice")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestBackSupersedesAndReopensTarget(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	perms := permMap{"admin": {PermBack}}
	mgr := newTestManager(t, db, perms, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)
	inst, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, 1, inst.Record.CurrentNode)
	node1PendingID := inst.Processes[1].ID

	inst, err = mgr.Back(context.Background(), inst.Record.ID, 0, "admin")
	require.NoError(t, err)

	assert.Equal(t, 0, inst.Record.CurrentNode)
	assert.Equal(t, string(workflow.StatusPending), inst.Record.Status)

	// 节点 1 的 pending 行被作废,节点 0 重新开出新行;已处理行保留
	var superseded model.WorkflowProcessModel
	require.NoError(t, db.First(&superseded, "id = ?", node1PendingID).Error)
	assert.True(t, superseded.Superseded)

	require.Len(t, inst.Processes, 3)
	assert.Equal(t, string(workflow.ActionApprove), inst.Processes[0].Action)
	assert.False(t, inst.Processes[0].Superseded)

	fresh := inst.Processes[1]
	if fresh.ID == node1PendingID {
		fresh = inst.Processes[2]
	}
	assert.Equal(t, 0, fresh.NodeIndex)
	assert.Equal(t, string(workflow.ActionPending), fresh.Action)
	assert.False(t, fresh.Superseded)

	// 回退后流程可以继续走完
	_, err = mgr.Process(context.Background(), fresh.ID, "mgr-01", workflow.ActionApprove, "重审通过")
	require.NoError(t, err)
}

func TestBackValidation(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	perms := permMap{"admin": {PermBack}}
	mgr := newTestManager(t, db, perms, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	// 无权限
	_, err = mgr.Back(context.Background(), inst.Record.ID, 0, "alice")
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	// 只能回退到当前节点之前
	_, err = mgr.Back(context.Background(), inst.Record.ID, 0, "admin")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	_, err = mgr.Back(context.Background(), inst.Record.ID, -1, "admin")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestSnapshot(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	mgr := newTestManager(t, db, nil, nil)

	// 没有实例时返回 nil 而不是错误
	snap, err := mgr.Snapshot(context.Background(), workflow.ContractRef("c-9"))
	require.NoError(t, err)
	assert.Nil(t, snap)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	snap, err = mgr.Snapshot(context.Background(), workflow.ContractRef("c-1"))
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, inst.Record.ID, snap.InstanceID)
	assert.Equal(t, 0, snap.CurrentNodeIndex)
	assert.Equal(t, "部门审核", snap.CurrentNodeName)
	assert.Equal(t, string(workflow.StatusPending), snap.Status)
}

func TestHasPending(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, twoManualNodes())
	mgr := newTestManager(t, db, nil, nil)

	has, err := mgr.HasPending(context.Background(), workflow.ContractRef("c-1"))
	require.NoError(t, err)
	assert.False(t, has)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)

	has, err = mgr.HasPending(context.Background(), workflow.ContractRef("c-1"))
	require.NoError(t, err)
	assert.True(t, has)

	_, err = mgr.Cancel(context.Background(), inst.Record.ID, "alice")
	require.NoError(t, err)

	has, err = mgr.HasPending(context.Background(), workflow.ContractRef("c-1"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStatusHistoryWritten(t *testing.T) {
	db := setupTestDB(t)
	seedDefinition(t, db, "contract_approval", workflow.BusinessContract, []workflow.Node{
		{Name: "唯一节点", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "dept_manager"}},
	})
	mgr := newTestManager(t, db, nil, nil)

	inst, err := mgr.Start(context.Background(), workflow.ContractRef("c-1"), "contract_approval", "alice", nil)
	require.NoError(t, err)
	_, err = mgr.Process(context.Background(), inst.Processes[0].ID, "mgr-01", workflow.ActionApprove, "")
	require.NoError(t, err)

	var histories []model.StatusHistoryModel
	require.NoError(t, db.Where("instance_id = ?", inst.Record.ID).Order("created_at ASC").Find(&histories).Error)
	require.Len(t, histories, 2)
	assert.Equal(t, "pending", histories[0].ToStatus)
	assert.Equal(t, "pending", histories[1].FromStatus)
	assert.Equal(t, "completed", histories[1].ToStatus)
}
