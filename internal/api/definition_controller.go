package api

import (
	"net/http"

	"github.com/caseops/caseflow-gin/internal/service"
	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/gin-gonic/gin"
)

// DefinitionController 流程定义控制器
type DefinitionController struct {
	definitionService service.DefinitionService
}

// NewDefinitionController 创建流程定义控制器
func NewDefinitionController(definitionService service.DefinitionService) *DefinitionController {
	return &DefinitionController{
		definitionService: definitionService,
	}
}

// Create 创建流程定义
func (c *DefinitionController) Create(ctx *gin.Context) {
	var req service.CreateDefinitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	def, err := c.definitionService.Create(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, def)
}

// Get 获取流程定义详情
func (c *DefinitionController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid definition ID", err.Error())
		return
	}

	def, err := c.definitionService.Get(id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, def)
}

// List 列出流程定义
func (c *DefinitionController) List(ctx *gin.Context) {
	businessType := ctx.Query("business_type")
	defs, err := c.definitionService.List(businessType)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, defs)
}

// Update 更新流程定义
func (c *DefinitionController) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid definition ID", err.Error())
		return
	}

	var req service.UpdateDefinitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	def, err := c.definitionService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, def)
}

// Delete 删除流程定义
func (c *DefinitionController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid definition ID", err.Error())
		return
	}

	if err := c.definitionService.Delete(ctx.Request.Context(), id); err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, gin.H{"id": id})
}

// SetEnabled 启用或停用流程定义
func (c *DefinitionController) SetEnabled(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid definition ID", err.Error())
		return
	}

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.definitionService.SetEnabled(ctx.Request.Context(), id, *req.Enabled); err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, gin.H{"id": id, "enabled": *req.Enabled})
}
