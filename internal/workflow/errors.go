package workflow

import "errors"

// 审批引擎错误分类
// 全部为调用方可恢复错误,由 API 层映射为对应的 HTTP 状态码;
// 未落入该分类的错误视为系统故障
var (
	// ErrNotFound 定义、实例或节点记录不存在
	ErrNotFound = errors.New("workflow: not found")

	// ErrAlreadyPending 业务实体已存在审批中的实例
	ErrAlreadyPending = errors.New("workflow: approval already pending")

	// ErrNotPending 节点记录已被处理,不允许重复处理
	ErrNotPending = errors.New("workflow: process is not pending")

	// ErrUnauthorized 操作人不是节点处理人且无越权权限
	ErrUnauthorized = errors.New("workflow: actor not authorized")

	// ErrInvalidTransition 状态不允许该操作,如撤销已完成的实例
	ErrInvalidTransition = errors.New("workflow: invalid transition")
)
