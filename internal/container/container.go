package container

import (
	"fmt"
	"time"

	"github.com/caseops/caseflow-gin/internal/auth"
	"github.com/caseops/caseflow-gin/internal/config"
	"github.com/caseops/caseflow-gin/internal/database"
	"github.com/caseops/caseflow-gin/internal/engine"
	"github.com/caseops/caseflow-gin/internal/projector"
	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/caseops/caseflow-gin/internal/service"
	"github.com/caseops/caseflow-gin/internal/websocket"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、引擎、服务等
type Container struct {
	db             *gorm.DB
	manager        engine.Manager
	eventHandler   engine.EventSink
	hub            *websocket.Hub
	tokenValidator *auth.TokenValidator
	checker        *auth.Checker

	definitionSvc service.DefinitionService
	workflowSvc   service.WorkflowService
	businessSvc   service.BusinessService
	querySvc      service.QueryService
	statisticsSvc service.StatisticsService
	auditLogSvc   service.AuditLogService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewContainerWithDB(cfg, db, logger)
}

// NewContainerWithDB 基于已有数据库连接构建容器,测试时注入内存库
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// 1. 权限检查器与审批人目录取同一份角色配置
	checker := auth.NewChecker(cfg.Auth.Roles)
	resolver := workflow.NewDirectoryResolver(auth.RoleMembers(cfg.Auth.Roles))

	// 2. 业务状态投影器
	registry := projector.Defaults()

	// 3. 事件链路: 落库 + Webhook 推送 + 实时广播
	hub := websocket.NewHub()
	go hub.Run()

	eventHandler := engine.NewEventHandler(db, cfg.Workflow.Webhooks, cfg.Workflow.EventWorkers, logger)
	sink := engine.MultiSink{
		eventHandler,
		websocket.NewEventPublisher(hub, logger),
	}

	// 4. 审批引擎
	manager := engine.NewManager(db, resolver, checker, registry, sink, logger)

	// 5. 服务层
	auditLogSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	definitionSvc := service.NewDefinitionService(repository.NewDefinitionRepository(db), auditLogSvc)
	workflowSvc := service.NewWorkflowService(manager, auditLogSvc)
	businessSvc := service.NewBusinessService(db, workflowSvc, auditLogSvc)
	querySvc := service.NewQueryService(
		repository.NewInstanceRepository(db),
		repository.NewProcessRepository(db),
		repository.NewStatusHistoryRepository(db),
	)
	statisticsSvc := service.NewStatisticsService(db)

	// 6. 令牌验证器
	tokenValidator := auth.NewTokenValidator(cfg.Auth.TokenSecret)

	return &Container{
		db:             db,
		manager:        manager,
		eventHandler:   eventHandler,
		hub:            hub,
		tokenValidator: tokenValidator,
		checker:        checker,
		definitionSvc:  definitionSvc,
		workflowSvc:    workflowSvc,
		businessSvc:    businessSvc,
		querySvc:       querySvc,
		statisticsSvc:  statisticsSvc,
		auditLogSvc:    auditLogSvc,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Manager 获取审批引擎
func (c *Container) Manager() engine.Manager {
	return c.manager
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// TokenValidator 获取令牌验证器
func (c *Container) TokenValidator() *auth.TokenValidator {
	return c.tokenValidator
}

// Checker 获取权限检查器
func (c *Container) Checker() *auth.Checker {
	return c.checker
}

// DefinitionService 获取流程定义服务
func (c *Container) DefinitionService() service.DefinitionService {
	return c.definitionSvc
}

// WorkflowService 获取审批流程服务
func (c *Container) WorkflowService() service.WorkflowService {
	return c.workflowSvc
}

// BusinessService 获取业务记录服务
func (c *Container) BusinessService() service.BusinessService {
	return c.businessSvc
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.querySvc
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsSvc
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogSvc
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	// 停掉事件推送 worker,保证在途事件状态落库
	if stoppable, ok := c.eventHandler.(interface{ Stop() }); ok {
		stoppable.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
