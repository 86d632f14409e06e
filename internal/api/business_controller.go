package api

import (
	"net/http"

	"github.com/caseops/caseflow-gin/internal/service"
	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/gin-gonic/gin"
)

// BusinessController 业务记录控制器
// 合同、案件、请款单的创建与提交审批
type BusinessController struct {
	businessService service.BusinessService
}

// NewBusinessController 创建业务记录控制器
func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{
		businessService: businessService,
	}
}

// submitRequest 提交审批请求体
type submitRequest struct {
	DefinitionCode string `json:"definition_code" binding:"required"` // 流程编码
}

// CreateContract 创建合同
func (c *BusinessController) CreateContract(ctx *gin.Context) {
	var req service.CreateContractRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	contract, err := c.businessService.CreateContract(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, contract)
}

// GetContract 获取合同
func (c *BusinessController) GetContract(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid contract ID", err.Error())
		return
	}

	contract, err := c.businessService.GetContract(id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, contract)
}

// SubmitContract 提交合同审批
func (c *BusinessController) SubmitContract(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid contract ID", err.Error())
		return
	}

	var req submitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	instance, err := c.businessService.SubmitContract(ctx.Request.Context(), id, req.DefinitionCode)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// CreateCase 创建案件
func (c *BusinessController) CreateCase(ctx *gin.Context) {
	var req service.CreateCaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	caseRecord, err := c.businessService.CreateCase(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, caseRecord)
}

// GetCase 获取案件
func (c *BusinessController) GetCase(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid case ID", err.Error())
		return
	}

	caseRecord, err := c.businessService.GetCase(id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, caseRecord)
}

// SubmitCase 提交案件审批
func (c *BusinessController) SubmitCase(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid case ID", err.Error())
		return
	}

	var req submitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	instance, err := c.businessService.SubmitCase(ctx.Request.Context(), id, req.DefinitionCode)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}

// CreatePayment 创建请款单
func (c *BusinessController) CreatePayment(ctx *gin.Context) {
	var req service.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	payment, err := c.businessService.CreatePayment(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, payment)
}

// GetPayment 获取请款单
func (c *BusinessController) GetPayment(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid payment ID", err.Error())
		return
	}

	payment, err := c.businessService.GetPayment(id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, payment)
}

// SubmitPayment 提交请款审批
func (c *BusinessController) SubmitPayment(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateInstanceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid payment ID", err.Error())
		return
	}

	var req submitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	instance, err := c.businessService.SubmitPayment(ctx.Request.Context(), id, req.DefinitionCode)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, instance)
}
