package workflow

import (
	"encoding/json"
	"fmt"
)

// AssigneeResolver 审批人解析器
// 按节点的审批人规则解析出实际处理人
type AssigneeResolver interface {
	Resolve(rule ApproverRule, ref BusinessRef, params json.RawMessage) (string, error)
}

// DirectoryResolver 基于角色目录的审批人解析器
// fixed 规则直接返回用户 ID;role 规则查角色目录;
// attribute 规则从业务参数中取字段值
type DirectoryResolver struct {
	roleMembers map[string][]string
}

// NewDirectoryResolver 创建审批人解析器
func NewDirectoryResolver(roleMembers map[string][]string) *DirectoryResolver {
	if roleMembers == nil {
		roleMembers = make(map[string][]string)
	}
	return &DirectoryResolver{roleMembers: roleMembers}
}

// Resolve 解析审批人
func (r *DirectoryResolver) Resolve(rule ApproverRule, ref BusinessRef, params json.RawMessage) (string, error) {
	switch rule.Type {
	case RuleFixed:
		return rule.Value, nil

	case RuleRole:
		members := r.roleMembers[rule.Value]
		if len(members) == 0 {
			return "", fmt.Errorf("role %q has no members", rule.Value)
		}
		return members[0], nil

	case RuleAttribute:
		if len(params) == 0 {
			return "", fmt.Errorf("attribute rule %q requires business params", rule.Value)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(params, &m); err != nil {
			return "", fmt.Errorf("failed to decode business params: %w", err)
		}
		v, ok := m[rule.Value].(string)
		if !ok || v == "" {
			return "", fmt.Errorf("business params missing attribute %q", rule.Value)
		}
		return v, nil
	}
	return "", fmt.Errorf("unknown approver rule type %q", rule.Type)
}
