package service

import (
	"context"
	"testing"

	"github.com/caseops/caseflow-gin/internal/engine"
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/projector"
	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv 服务层测试环境
type testEnv struct {
	db            *gorm.DB
	definitionSvc DefinitionService
	workflowSvc   WorkflowService
	businessSvc   BusinessService
	querySvc      QueryService
	statisticsSvc StatisticsService
	auditLogSvc   AuditLogService
}

// testPerms 测试用权限检查器
type testPerms map[string][]string

func (p testPerms) Has(actorID string, permission string) bool {
	for _, perm := range p[actorID] {
		if perm == permission {
			return true
		}
	}
	return false
}

func setupServiceTest(t *testing.T, perms engine.PermissionChecker) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.WorkflowDefinitionModel{},
		&model.WorkflowInstanceModel{},
		&model.WorkflowProcessModel{},
		&model.StatusHistoryModel{},
		&model.EventModel{},
		&model.AuditLogModel{},
		&model.ContractModel{},
		&model.CaseModel{},
		&model.PaymentRequestModel{},
	)
	require.NoError(t, err)

	resolver := workflow.NewDirectoryResolver(map[string][]string{
		"dept_manager": {"mgr-01"},
		"finance":      {"fin-01"},
	})
	manager := engine.NewManager(db, resolver, perms, projector.Defaults(), nil, nil)

	auditLogSvc := NewAuditLogService(repository.NewAuditLogRepository(db))
	workflowSvc := NewWorkflowService(manager, auditLogSvc)

	return &testEnv{
		db:            db,
		definitionSvc: NewDefinitionService(repository.NewDefinitionRepository(db), auditLogSvc),
		workflowSvc:   workflowSvc,
		businessSvc:   NewBusinessService(db, workflowSvc, auditLogSvc),
		querySvc: NewQueryService(
			repository.NewInstanceRepository(db),
			repository.NewProcessRepository(db),
			repository.NewStatusHistoryRepository(db),
		),
		statisticsSvc: NewStatisticsService(db),
		auditLogSvc:   auditLogSvc,
	}
}

// actorContext 构造携带操作人的请求上下文
func actorContext(actorID string) context.Context {
	ctx := context.WithValue(context.Background(), "actor_id", actorID)
	ctx = context.WithValue(ctx, "request_id", "req-test")
	ctx = context.WithValue(ctx, "ip", "127.0.0.1")
	return ctx
}

// seedTestDefinition 创建一个两节点人工流程定义
func seedTestDefinition(t *testing.T, env *testEnv, code string, businessType string) *workflow.Definition {
	def, err := env.definitionSvc.Create(actorContext("admin"), &CreateDefinitionRequest{
		Code:         code,
		Name:         "测试流程",
		BusinessType: businessType,
		Nodes: []workflow.Node{
			{Name: "部门审核", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "dept_manager"}},
			{Name: "财务审批", Approver: workflow.ApproverRule{Type: workflow.RuleRole, Value: "finance"}},
		},
	})
	require.NoError(t, err)
	return def
}
