package workflow

import (
	"errors"
	"fmt"
)

// InstanceStatus 审批实例状态
type InstanceStatus string

const (
	StatusPending   InstanceStatus = "pending"   // 审批中
	StatusCompleted InstanceStatus = "completed" // 审批通过
	StatusRejected  InstanceStatus = "rejected"  // 审批驳回
	StatusCancelled InstanceStatus = "cancelled" // 已撤销
)

// IsTerminal 判断状态是否为终态
func (s InstanceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// ProcessAction 节点处理动作
type ProcessAction string

const (
	ActionPending ProcessAction = "pending" // 待处理
	ActionApprove ProcessAction = "approve" // 同意
	ActionReject  ProcessAction = "reject"  // 驳回
	ActionAuto    ProcessAction = "auto"    // 自动通过
)

// IsResolving 判断动作是否为人工处理动作
func (a ProcessAction) IsResolving() bool {
	return a == ActionApprove || a == ActionReject
}

// BusinessType 业务实体类型
type BusinessType string

const (
	BusinessContract BusinessType = "contract"        // 合同
	BusinessCase     BusinessType = "case"            // 案件
	BusinessPayment  BusinessType = "payment_request" // 请款单
)

// BusinessRef 业务实体引用
// 类型加 ID 标识一条业务记录,替代源系统松散的 business_type 字符串
type BusinessRef struct {
	Type BusinessType `json:"type"`
	ID   string       `json:"id"`
}

// ContractRef 构造合同引用
func ContractRef(id string) BusinessRef {
	return BusinessRef{Type: BusinessContract, ID: id}
}

// CaseRef 构造案件引用
func CaseRef(id string) BusinessRef {
	return BusinessRef{Type: BusinessCase, ID: id}
}

// PaymentRef 构造请款单引用
func PaymentRef(id string) BusinessRef {
	return BusinessRef{Type: BusinessPayment, ID: id}
}

// ParseBusinessType 解析业务类型
func ParseBusinessType(s string) (BusinessType, error) {
	switch BusinessType(s) {
	case BusinessContract, BusinessCase, BusinessPayment:
		return BusinessType(s), nil
	}
	return "", fmt.Errorf("unknown business type %q", s)
}

// Validate 验证业务引用
func (r BusinessRef) Validate() error {
	if _, err := ParseBusinessType(string(r.Type)); err != nil {
		return err
	}
	if r.ID == "" {
		return errors.New("business ID is required")
	}
	return nil
}

// String 返回 type:id 形式的标识
func (r BusinessRef) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}
