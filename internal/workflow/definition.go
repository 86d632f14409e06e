package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ApproverRuleType 审批人选取规则类型
type ApproverRuleType string

const (
	RuleFixed     ApproverRuleType = "fixed"     // 固定用户
	RuleRole      ApproverRuleType = "role"      // 按角色查找
	RuleAttribute ApproverRuleType = "attribute" // 从业务参数字段取值
)

// ApproverRule 审批人选取规则
type ApproverRule struct {
	Type  ApproverRuleType `json:"type"`
	Value string           `json:"value"` // 用户 ID / 角色名 / 参数字段名
}

// Validate 验证审批人规则
func (r ApproverRule) Validate() error {
	switch r.Type {
	case RuleFixed, RuleRole, RuleAttribute:
	default:
		return fmt.Errorf("unknown approver rule type %q", r.Type)
	}
	if r.Value == "" {
		return errors.New("approver rule value is required")
	}
	return nil
}

// PredicateOp 自动通过条件的比较运算符
type PredicateOp string

const (
	OpLt PredicateOp = "lt"
	OpLe PredicateOp = "le"
	OpGt PredicateOp = "gt"
	OpGe PredicateOp = "ge"
	OpEq PredicateOp = "eq"
	OpNe PredicateOp = "ne"
)

// AutoPredicate 自动通过条件
// 节点到达时对实例的业务参数求值,成立则节点无需人工处理
type AutoPredicate struct {
	Field string      `json:"field"`
	Op    PredicateOp `json:"op"`
	Value json.RawMessage `json:"value"`
}

// Validate 验证自动通过条件
func (p AutoPredicate) Validate() error {
	if p.Field == "" {
		return errors.New("predicate field is required")
	}
	switch p.Op {
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe:
	default:
		return fmt.Errorf("unknown predicate op %q", p.Op)
	}
	if len(p.Value) == 0 {
		return errors.New("predicate value is required")
	}
	return nil
}

// Evaluate 对业务参数求值
// 参数缺失或类型不匹配时条件不成立,节点退化为人工节点
func (p AutoPredicate) Evaluate(params json.RawMessage) bool {
	if len(params) == 0 {
		return false
	}
	var m map[string]interface{}
	if err := json.Unmarshal(params, &m); err != nil {
		return false
	}
	actual, ok := m[p.Field]
	if !ok {
		return false
	}

	// 数值比较
	if want, err := p.numericValue(); err == nil {
		got, ok := actual.(float64)
		if !ok {
			return false
		}
		switch p.Op {
		case OpLt:
			return got < want
		case OpLe:
			return got <= want
		case OpGt:
			return got > want
		case OpGe:
			return got >= want
		case OpEq:
			return got == want
		case OpNe:
			return got != want
		}
		return false
	}

	// 字符串只支持等值比较
	var want string
	if err := json.Unmarshal(p.Value, &want); err != nil {
		return false
	}
	got, ok := actual.(string)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return got == want
	case OpNe:
		return got != want
	}
	return false
}

func (p AutoPredicate) numericValue() (float64, error) {
	var v float64
	err := json.Unmarshal(p.Value, &v)
	return v, err
}

// Node 审批节点
type Node struct {
	Name        string         `json:"name"`
	Approver    ApproverRule   `json:"approver"`
	AutoApprove bool           `json:"auto_approve,omitempty"`
	AutoWhen    *AutoPredicate `json:"auto_when,omitempty"`
}

// Validate 验证节点配置
func (n Node) Validate() error {
	if n.Name == "" {
		return errors.New("node name is required")
	}
	// 自动节点也必须配置审批人规则,条件不成立时回退为人工处理
	if err := n.Approver.Validate(); err != nil {
		return fmt.Errorf("node %q: %w", n.Name, err)
	}
	if n.AutoApprove && n.AutoWhen != nil {
		if err := n.AutoWhen.Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
	}
	return nil
}

// AutoResolves 判断节点到达时是否自动通过
// 无条件的自动节点恒自动通过,带条件的按业务参数求值
func (n Node) AutoResolves(params json.RawMessage) bool {
	if !n.AutoApprove {
		return false
	}
	if n.AutoWhen == nil {
		return true
	}
	return n.AutoWhen.Evaluate(params)
}

// Definition 审批流程定义
// 节点列表在加载时一次性解码并验证,实例引用后不再重排
type Definition struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	BusinessType BusinessType `json:"business_type"`
	Nodes        []Node       `json:"nodes"`
	Enabled      bool         `json:"enabled"`
}

// Validate 验证流程定义
func (d *Definition) Validate() error {
	if d.Code == "" {
		return errors.New("definition code is required")
	}
	if d.Name == "" {
		return errors.New("definition name is required")
	}
	if _, err := ParseBusinessType(string(d.BusinessType)); err != nil {
		return err
	}
	if len(d.Nodes) == 0 {
		return errors.New("definition requires at least one node")
	}
	for i, node := range d.Nodes {
		if err := node.Validate(); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
	}
	return nil
}

// LastIndex 返回末节点下标
func (d *Definition) LastIndex() int {
	return len(d.Nodes) - 1
}

// NodeAt 按下标取节点
func (d *Definition) NodeAt(index int) (Node, error) {
	if index < 0 || index >= len(d.Nodes) {
		return Node{}, fmt.Errorf("node index %d out of range [0,%d]", index, d.LastIndex())
	}
	return d.Nodes[index], nil
}

// DecodeNodes 解码节点列表
func DecodeNodes(data []byte) ([]Node, error) {
	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode node list: %w", err)
	}
	return nodes, nil
}

// EncodeNodes 编码节点列表
func EncodeNodes(nodes []Node) ([]byte, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node list: %w", err)
	}
	return data, nil
}
