package api

import (
	"github.com/caseops/caseflow-gin/internal/auth"
	"github.com/caseops/caseflow-gin/internal/config"
	"github.com/caseops/caseflow-gin/internal/websocket"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	DB             *gorm.DB
	Hub            *websocket.Hub
	TokenValidator *auth.TokenValidator

	DefinitionController *DefinitionController
	WorkflowController   *WorkflowController
	BusinessController   *BusinessController
	QueryController      *QueryController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, deps *RouterDeps) *gin.Engine {
	if cfg != nil && cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// 全局中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(ErrorHandlerMiddleware())
	if cfg != nil {
		if len(cfg.CORS.AllowedOrigins) > 0 {
			router.Use(CORSMiddleware(cfg.CORS))
		}
		if cfg.RateLimit.RPS > 0 {
			router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
		if cfg.Tracing.Enabled {
			router.Use(TracingMiddleware())
		}
	}

	// 健康检查
	healthController := NewHealthController(deps.DB)
	router.GET("/health", healthController.Check)
	router.GET("/ready", healthController.Ready)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由
	if deps.Hub != nil {
		router.GET("/ws/workflows", websocket.WebSocketHandler(deps.Hub, deps.TokenValidator))
	}

	// SSE 路由
	if deps.Hub != nil {
		router.GET("/sse/workflows/:id", SSEHandler(deps.TokenValidator, deps.Hub))
	}

	// API v1 路由组,所有业务接口要求操作人身份
	v1 := router.Group("/api/v1")
	v1.Use(auth.ActorMiddleware(deps.TokenValidator))
	{
		// 流程定义管理
		definitions := v1.Group("/definitions")
		{
			definitions.POST("", deps.DefinitionController.Create)
			definitions.GET("", deps.DefinitionController.List)
			definitions.GET("/:id", deps.DefinitionController.Get)
			definitions.PUT("/:id", deps.DefinitionController.Update)
			definitions.DELETE("/:id", deps.DefinitionController.Delete)
			definitions.PUT("/:id/enabled", deps.DefinitionController.SetEnabled)
		}

		// 审批流程
		workflows := v1.Group("/workflows")
		{
			workflows.POST("/start", deps.WorkflowController.Start)
			workflows.GET("/snapshot", deps.WorkflowController.Snapshot)
			workflows.GET("", deps.QueryController.ListInstances)
			workflows.GET("/:id", deps.WorkflowController.Get)
			workflows.POST("/:id/cancel", deps.WorkflowController.Cancel)
			workflows.POST("/:id/back", deps.WorkflowController.Back)
			workflows.GET("/:id/records", deps.QueryController.GetRecords)
			workflows.GET("/:id/history", deps.QueryController.GetHistory)
		}

		// 节点处理
		processes := v1.Group("/processes")
		{
			processes.POST("/:id/resolve", deps.WorkflowController.Process)
		}

		// 待办
		v1.GET("/inbox", deps.QueryController.Inbox)

		// 统计
		statistics := v1.Group("/statistics")
		{
			statistics.GET("", deps.QueryController.Statistics)
			statistics.GET("/by-time", deps.QueryController.StatisticsByTime)
		}

		// 审计日志
		v1.GET("/audit-logs", deps.QueryController.AuditLogs)

		// 业务记录
		contracts := v1.Group("/contracts")
		{
			contracts.POST("", deps.BusinessController.CreateContract)
			contracts.GET("/:id", deps.BusinessController.GetContract)
			contracts.POST("/:id/submit", deps.BusinessController.SubmitContract)
		}
		cases := v1.Group("/cases")
		{
			cases.POST("", deps.BusinessController.CreateCase)
			cases.GET("/:id", deps.BusinessController.GetCase)
			cases.POST("/:id/submit", deps.BusinessController.SubmitCase)
		}
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.BusinessController.CreatePayment)
			payments.GET("/:id", deps.BusinessController.GetPayment)
			payments.POST("/:id/submit", deps.BusinessController.SubmitPayment)
		}
	}

	// 未匹配路由返回 JSON 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, 404, "route not found", c.Request.URL.Path)
	})

	return router
}
