package api

import (
	"net/http"
	"strconv"

	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/caseops/caseflow-gin/internal/service"
	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/gin-gonic/gin"
)

// QueryController 查询控制器
type QueryController struct {
	queryService      service.QueryService
	statisticsService service.StatisticsService
	auditLogService   service.AuditLogService
}

// NewQueryController 创建查询控制器
func NewQueryController(
	queryService service.QueryService,
	statisticsService service.StatisticsService,
	auditLogService service.AuditLogService,
) *QueryController {
	return &QueryController{
		queryService:      queryService,
		statisticsService: statisticsService,
		auditLogService:   auditLogService,
	}
}

// ListInstances 分页查询审批实例
func (c *QueryController) ListInstances(ctx *gin.Context) {
	filter := &repository.InstanceFilter{
		SortBy: ctx.Query("sort_by"),
		Order:  ctx.Query("order"),
	}

	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("business_type"); v != "" {
		filter.BusinessType = &v
	}
	if v := ctx.Query("business_id"); v != "" {
		filter.BusinessID = &v
	}
	if v := ctx.Query("definition_code"); v != "" {
		filter.DefinitionCode = &v
	}
	if v := ctx.Query("created_by"); v != "" {
		filter.CreatedBy = &v
	}
	if v := ctx.Query("start_time"); v != "" {
		filter.StartTime = &v
	}
	if v := ctx.Query("end_time"); v != "" {
		filter.EndTime = &v
	}
	if v := ctx.Query("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			filter.Page = page
		}
	}
	if v := ctx.Query("page_size"); v != "" {
		if pageSize, err := strconv.Atoi(v); err == nil {
			filter.PageSize = pageSize
		}
	}

	resp, err := c.queryService.ListInstances(filter)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Paginated(ctx, resp.Data, PaginationInfo{
		Page:      resp.Pagination.Page,
		PageSize:  resp.Pagination.PageSize,
		Total:     resp.Pagination.Total,
		TotalPage: resp.Pagination.TotalPage,
	})
}

// GetRecords 获取实例的审批记录
func (c *QueryController) GetRecords(ctx *gin.Context) {
	instanceID := ctx.Param("id")
	if err := utils.ValidateInstanceID(instanceID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid instance ID", err.Error())
		return
	}

	records, err := c.queryService.GetRecords(instanceID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, records)
}

// GetHistory 获取实例的状态变更历史
func (c *QueryController) GetHistory(ctx *gin.Context) {
	instanceID := ctx.Param("id")
	if err := utils.ValidateInstanceID(instanceID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid instance ID", err.Error())
		return
	}

	history, err := c.queryService.GetHistory(instanceID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, history)
}

// Inbox 获取当前操作人的待办列表
func (c *QueryController) Inbox(ctx *gin.Context) {
	assignee := ctx.GetString("actor_id")
	if assignee == "" {
		Error(ctx, http.StatusUnauthorized, "missing actor identity", "")
		return
	}

	tasks, err := c.queryService.PendingTasks(assignee)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, tasks)
}

// Statistics 审批统计汇总
func (c *QueryController) Statistics(ctx *gin.Context) {
	byStatus, err := c.statisticsService.GetInstanceStatisticsByStatus()
	if err != nil {
		HandleError(ctx, err)
		return
	}
	byBusinessType, err := c.statisticsService.GetInstanceStatisticsByBusinessType()
	if err != nil {
		HandleError(ctx, err)
		return
	}
	byDefinition, err := c.statisticsService.GetInstanceStatisticsByDefinition()
	if err != nil {
		HandleError(ctx, err)
		return
	}
	approvals, err := c.statisticsService.GetApprovalStatistics()
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, gin.H{
		"by_status":        byStatus,
		"by_business_type": byBusinessType,
		"by_definition":    byDefinition,
		"approvals":        approvals,
	})
}

// StatisticsByTime 按发起日期统计
func (c *QueryController) StatisticsByTime(ctx *gin.Context) {
	stats, err := c.statisticsService.GetInstanceStatisticsByTime()
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// AuditLogs 按资源查询审计日志
func (c *QueryController) AuditLogs(ctx *gin.Context) {
	resourceType := ctx.Query("resource_type")
	resourceID := ctx.Query("resource_id")
	if resourceType == "" || resourceID == "" {
		Error(ctx, http.StatusBadRequest, "resource_type and resource_id are required", "")
		return
	}

	logs, err := c.auditLogService.ListByResource(resourceType, resourceID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, logs)
}
