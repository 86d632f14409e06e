package api

import (
	"net/http"

	"github.com/caseops/caseflow-gin/internal/service"
	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/gin-gonic/gin"
)

// WorkflowController 审批流程控制器
type WorkflowController struct {
	workflowService service.WorkflowService
}

// NewWorkflowController 创建审批流程控制器
func NewWorkflowController(workflowService service.WorkflowService) *WorkflowController {
	return &WorkflowController{
		workflowService: workflowService,
	}
}

// validateID 验证路径里的 ID 参数
func (c *WorkflowController) validateID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid ID", err.Error())
		return false
	}
	return true
}

// Start 为业务记录发起审批
func (c *WorkflowController) Start(ctx *gin.Context) {
	var req service.StartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	instance, err := c.workflowService.Start(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// Process 处理待审批节点
func (c *WorkflowController) Process(ctx *gin.Context) {
	processID := ctx.Param("id")
	if !c.validateID(ctx, processID) {
		return
	}

	var req service.ProcessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	instance, err := c.workflowService.Process(ctx.Request.Context(), processID, &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// Cancel 取消审批实例
func (c *WorkflowController) Cancel(ctx *gin.Context) {
	instanceID := ctx.Param("id")
	if !c.validateID(ctx, instanceID) {
		return
	}

	instance, err := c.workflowService.Cancel(ctx.Request.Context(), instanceID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// Back 回退实例到之前的节点
func (c *WorkflowController) Back(ctx *gin.Context) {
	instanceID := ctx.Param("id")
	if !c.validateID(ctx, instanceID) {
		return
	}

	var req service.BackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	instance, err := c.workflowService.Back(ctx.Request.Context(), instanceID, &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// Get 获取实例详情
func (c *WorkflowController) Get(ctx *gin.Context) {
	instanceID := ctx.Param("id")
	if !c.validateID(ctx, instanceID) {
		return
	}

	instance, err := c.workflowService.Get(ctx.Request.Context(), instanceID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// Snapshot 获取业务记录的审批状态快照
func (c *WorkflowController) Snapshot(ctx *gin.Context) {
	businessType := ctx.Query("business_type")
	businessID := ctx.Query("business_id")
	if businessType == "" || businessID == "" {
		Error(ctx, http.StatusBadRequest, "business_type and business_id are required", "")
		return
	}

	snapshot, err := c.workflowService.Snapshot(ctx.Request.Context(), businessType, businessID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, snapshot)
}
