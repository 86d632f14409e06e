package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/caseops/caseflow-gin/internal/repository"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 引擎操作权限
const (
	PermOverride = "workflow:override" // 代替处理人处理节点
	PermCancel   = "workflow:cancel"   // 撤销他人发起的实例
	PermBack     = "workflow:back"     // 回退到历史节点
)

// PermissionChecker 权限检查接口
type PermissionChecker interface {
	Has(actorID string, permission string) bool
}

// Instance 审批实例聚合视图
// 实例记录加上按节点顺序排列的台账
type Instance struct {
	Record    *model.WorkflowInstanceModel  `json:"record"`
	Processes []*model.WorkflowProcessModel `json:"processes"`
}

// Snapshot 业务记录当前审批状态快照,供业务方 UI 消费
type Snapshot struct {
	InstanceID       string    `json:"instance_id"`
	CurrentNodeIndex int       `json:"current_node_index"`
	CurrentNodeName  string    `json:"current_node_name"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Manager 审批实例管理器接口
type Manager interface {
	Start(ctx context.Context, ref workflow.BusinessRef, definitionCode string, actorID string, params json.RawMessage) (*Instance, error)
	Process(ctx context.Context, processID string, actorID string, action workflow.ProcessAction, comment string) (*Instance, error)
	Cancel(ctx context.Context, instanceID string, actorID string) (*Instance, error)
	Back(ctx context.Context, instanceID string, targetNode int, actorID string) (*Instance, error)
	Get(ctx context.Context, instanceID string) (*Instance, error)
	Snapshot(ctx context.Context, ref workflow.BusinessRef) (*Snapshot, error)
	HasPending(ctx context.Context, ref workflow.BusinessRef) (bool, error)
}

// dbManager 基于数据库的审批实例管理器
type dbManager struct {
	db         *gorm.DB
	resolver   workflow.AssigneeResolver
	perms      PermissionChecker
	projectors Projector
	sink       EventSink
	logger     *logrus.Logger
}

// Projector 业务状态投影接口
// 与实例状态变更同事务执行
type Projector interface {
	Apply(tx *gorm.DB, instance *model.WorkflowInstanceModel) error
}

// NewManager 创建审批实例管理器
func NewManager(db *gorm.DB, resolver workflow.AssigneeResolver, perms PermissionChecker, projectors Projector, sink EventSink, logger *logrus.Logger) Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &dbManager{
		db:         db,
		resolver:   resolver,
		perms:      perms,
		projectors: projectors,
		sink:       sink,
		logger:     logger,
	}
}

// Start 发起审批
// 业务记录已存在真正进入流程的 pending 实例时返回 AlreadyPending;
// 停在 0 号节点且无已处理记录的实例按重启规则复用
func (m *dbManager) Start(ctx context.Context, ref workflow.BusinessRef, definitionCode string, actorID string, params json.RawMessage) (*Instance, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrInvalidTransition, err)
	}
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor is required", workflow.ErrUnauthorized)
	}

	def, err := m.loadDefinitionByCode(ctx, definitionCode)
	if err != nil {
		return nil, err
	}
	if def.BusinessType != ref.Type {
		return nil, fmt.Errorf("%w: definition %q applies to %s, not %s",
			workflow.ErrInvalidTransition, definitionCode, def.BusinessType, ref.Type)
	}

	var inst *model.WorkflowInstanceModel
	var events []*Event

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 检查是否已有审批中的实例
		existing, err := m.findPendingInstance(tx, ref)
		if err != nil {
			return err
		}

		now := time.Now()
		if existing != nil {
			resolved, err := repository.NewProcessRepository(tx).CountResolved(existing.ID)
			if err != nil {
				return fmt.Errorf("failed to count resolved processes: %w", err)
			}
			if !IsRestartable(existing, resolved) {
				return fmt.Errorf("%w: instance %s is in flight at node %d",
					workflow.ErrAlreadyPending, existing.ID, existing.CurrentNode)
			}

			// 2a. 重启: 作废遗留的 pending 行,刷新参数和发起人
			if err := tx.Model(&model.WorkflowProcessModel{}).
				Where("instance_id = ? AND action = ? AND superseded = ?", existing.ID, workflow.ActionPending, false).
				Update("superseded", true).Error; err != nil {
				return fmt.Errorf("failed to supersede stale processes: %w", err)
			}
			existing.Params = params
			existing.CreatedBy = actorID
			existing.CurrentNode = 0
			existing.UpdatedAt = now
			inst = existing
		} else {
			// 2b. 新建实例,固定从 0 号节点开始
			inst = &model.WorkflowInstanceModel{
				ID:             uuid.New().String(),
				DefinitionID:   def.ID,
				DefinitionCode: def.Code,
				BusinessType:   string(ref.Type),
				BusinessID:     ref.ID,
				CurrentNode:    0,
				Status:         string(workflow.StatusPending),
				Params:         params,
				CreatedBy:      actorID,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Create(inst).Error; err != nil {
				return fmt.Errorf("failed to create instance: %w", err)
			}
			if err := m.writeHistory(tx, inst.ID, "", inst.Status, "approval started", actorID); err != nil {
				return err
			}
		}

		// 3. 进入 0 号节点,自动节点连续前进
		if err := m.enterNode(tx, def, inst, 0, actorID); err != nil {
			return err
		}
		if err := m.saveInstance(tx, inst); err != nil {
			return err
		}

		// 4. 投影业务状态
		if err := m.projectors.Apply(tx, inst); err != nil {
			return fmt.Errorf("failed to project business status: %w", err)
		}

		events = append(events, m.newEvent(EventInstanceStarted, inst, actorID, "", ""))
		if workflow.InstanceStatus(inst.Status) == workflow.StatusCompleted {
			events = append(events, m.newEvent(EventInstanceCompleted, inst, actorID, "", ""))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.emit(events)
	m.logger.WithFields(logrus.Fields{
		"instance_id": inst.ID,
		"business":    ref.String(),
		"definition":  definitionCode,
		"actor":       actorID,
	}).Info("approval started")

	return m.aggregate(ctx, inst.ID)
}

// Process 处理当前待办节点
// 对台账行的终结是一次性的,并发处理只有一个能成功
func (m *dbManager) Process(ctx context.Context, processID string, actorID string, action workflow.ProcessAction, comment string) (*Instance, error) {
	if !action.IsResolving() {
		return nil, fmt.Errorf("%w: action %q is not a resolving action", workflow.ErrInvalidTransition, action)
	}

	row, err := m.loadProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if !row.IsPending() {
		return nil, fmt.Errorf("%w: process %s already resolved as %q", workflow.ErrNotPending, processID, row.Action)
	}

	inst, err := m.loadInstance(ctx, row.InstanceID)
	if err != nil {
		return nil, err
	}
	// 撤销实例遗留的悬空 pending 行视为作废
	if workflow.InstanceStatus(inst.Status) != workflow.StatusPending {
		return nil, fmt.Errorf("%w: instance %s is %s", workflow.ErrNotPending, inst.ID, inst.Status)
	}

	if actorID != row.Assignee && !m.hasPermission(actorID, PermOverride) {
		return nil, fmt.Errorf("%w: %s is not the assignee of process %s",
			workflow.ErrUnauthorized, actorID, processID)
	}

	def, err := m.loadDefinitionByID(ctx, inst.DefinitionID)
	if err != nil {
		return nil, err
	}

	var events []*Event

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 条件更新终结台账行,action 必须仍为 pending,防止读改写竞争
		now := time.Now()
		res := tx.Model(&model.WorkflowProcessModel{}).
			Where("id = ? AND action = ? AND superseded = ?", processID, workflow.ActionPending, false).
			Updates(map[string]interface{}{
				"action":       string(action),
				"processor":    actorID,
				"comment":      comment,
				"processed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to resolve process: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: process %s resolved concurrently", workflow.ErrNotPending, processID)
		}

		// 2. 驳回立即终止,不再产生后续节点
		if action == workflow.ActionReject {
			if err := m.transition(tx, inst, workflow.StatusRejected, "node rejected", actorID); err != nil {
				return err
			}
			if err := m.projectors.Apply(tx, inst); err != nil {
				return fmt.Errorf("failed to project business status: %w", err)
			}
			events = append(events,
				m.newEvent(EventProcessResolved, inst, actorID, row.NodeName, string(action)),
				m.newEvent(EventInstanceRejected, inst, actorID, "", ""))
			return nil
		}

		// 3. 同意: 末节点完成实例,否则前进并生成下一节点台账行
		if row.NodeIndex == def.LastIndex() {
			if err := m.transition(tx, inst, workflow.StatusCompleted, "all nodes approved", actorID); err != nil {
				return err
			}
		} else {
			if err := m.enterNode(tx, def, inst, row.NodeIndex+1, actorID); err != nil {
				return err
			}
		}
		if err := m.saveInstance(tx, inst); err != nil {
			return err
		}
		if err := m.projectors.Apply(tx, inst); err != nil {
			return fmt.Errorf("failed to project business status: %w", err)
		}

		events = append(events, m.newEvent(EventProcessResolved, inst, actorID, row.NodeName, string(action)))
		if workflow.InstanceStatus(inst.Status) == workflow.StatusCompleted {
			events = append(events, m.newEvent(EventInstanceCompleted, inst, actorID, "", ""))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.emit(events)
	m.logger.WithFields(logrus.Fields{
		"instance_id": inst.ID,
		"process_id":  processID,
		"action":      action,
		"actor":       actorID,
	}).Info("process resolved")

	return m.aggregate(ctx, inst.ID)
}

// Cancel 撤销审批中的实例
// 台账行不回溯修改,遗留的 pending 行由查询侧按作废处理
func (m *dbManager) Cancel(ctx context.Context, instanceID string, actorID string) (*Instance, error) {
	inst, err := m.loadInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if workflow.InstanceStatus(inst.Status) != workflow.StatusPending {
		return nil, fmt.Errorf("%w: cannot cancel instance in status %q", workflow.ErrInvalidTransition, inst.Status)
	}
	if actorID != inst.CreatedBy && !m.hasPermission(actorID, PermCancel) && !m.hasPermission(actorID, PermOverride) {
		return nil, fmt.Errorf("%w: %s may not cancel instance %s", workflow.ErrUnauthorized, actorID, instanceID)
	}

	var events []*Event
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.transition(tx, inst, workflow.StatusCancelled, "cancelled by actor", actorID); err != nil {
			return err
		}
		if err := m.projectors.Apply(tx, inst); err != nil {
			return fmt.Errorf("failed to project business status: %w", err)
		}
		events = append(events, m.newEvent(EventInstanceCancelled, inst, actorID, "", ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.emit(events)
	return m.aggregate(ctx, instanceID)
}

// Back 回退到历史节点
// 管理性越权操作: 要求 workflow:back 权限,目标节点之后的台账行全部作废,
// 在目标节点重新生成 pending 行
func (m *dbManager) Back(ctx context.Context, instanceID string, targetNode int, actorID string) (*Instance, error) {
	if !m.hasPermission(actorID, PermBack) {
		return nil, fmt.Errorf("%w: %s lacks %s", workflow.ErrUnauthorized, actorID, PermBack)
	}

	inst, err := m.loadInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if workflow.InstanceStatus(inst.Status) != workflow.StatusPending {
		return nil, fmt.Errorf("%w: cannot go back on instance in status %q", workflow.ErrInvalidTransition, inst.Status)
	}
	if targetNode < 0 || targetNode >= inst.CurrentNode {
		return nil, fmt.Errorf("%w: target node %d out of range [0,%d)",
			workflow.ErrInvalidTransition, targetNode, inst.CurrentNode)
	}

	def, err := m.loadDefinitionByID(ctx, inst.DefinitionID)
	if err != nil {
		return nil, err
	}
	node, err := def.NodeAt(targetNode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrInvalidTransition, err)
	}

	var events []*Event
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 作废目标节点之后的所有台账行(含当前 pending 行),保留不删
		if err := tx.Model(&model.WorkflowProcessModel{}).
			Where("instance_id = ? AND node_index > ? AND superseded = ?", instanceID, targetNode, false).
			Update("superseded", true).Error; err != nil {
			return fmt.Errorf("failed to supersede processes: %w", err)
		}

		// 2. 目标节点重新开为 pending,不做自动通过级联
		assignee, err := m.resolver.Resolve(node.Approver, m.refOf(inst), inst.Params)
		if err != nil {
			return fmt.Errorf("failed to resolve assignee for node %q: %w", node.Name, err)
		}
		if err := m.createProcessRow(tx, inst.ID, targetNode, node.Name, assignee); err != nil {
			return err
		}

		inst.CurrentNode = targetNode
		inst.UpdatedAt = time.Now()
		if err := m.saveInstance(tx, inst); err != nil {
			return err
		}
		if err := m.writeHistory(tx, inst.ID, inst.Status, inst.Status,
			fmt.Sprintf("back to node %d", targetNode), actorID); err != nil {
			return err
		}
		events = append(events, m.newEvent(EventInstanceRolledBack, inst, actorID, node.Name, ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.emit(events)
	m.logger.WithFields(logrus.Fields{
		"instance_id": instanceID,
		"target_node": targetNode,
		"actor":       actorID,
	}).Warn("instance rolled back")

	return m.aggregate(ctx, instanceID)
}

// Get 获取实例聚合视图
func (m *dbManager) Get(ctx context.Context, instanceID string) (*Instance, error) {
	return m.aggregate(ctx, instanceID)
}

// Snapshot 获取业务记录最近一次审批的状态快照
// 没有任何实例时返回 nil
func (m *dbManager) Snapshot(ctx context.Context, ref workflow.BusinessRef) (*Snapshot, error) {
	inst, err := repository.NewInstanceRepository(m.db.WithContext(ctx)).
		FindLatestByBusiness(string(ref.Type), ref.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	nodeName := ""
	if def, err := m.loadDefinitionByID(ctx, inst.DefinitionID); err == nil {
		if node, err := def.NodeAt(inst.CurrentNode); err == nil {
			nodeName = node.Name
		}
	}

	return &Snapshot{
		InstanceID:       inst.ID,
		CurrentNodeIndex: inst.CurrentNode,
		CurrentNodeName:  nodeName,
		Status:           inst.Status,
		CreatedAt:        inst.CreatedAt,
	}, nil
}

// HasPending 判断业务记录是否有审批中的实例
func (m *dbManager) HasPending(ctx context.Context, ref workflow.BusinessRef) (bool, error) {
	inst, err := m.findPendingInstance(m.db.WithContext(ctx), ref)
	if err != nil {
		return false, err
	}
	return inst != nil, nil
}

// enterNode 进入指定节点
// 自动节点条件成立时立即以 auto 终结并继续前进,直到人工节点或流程结束
func (m *dbManager) enterNode(tx *gorm.DB, def *workflow.Definition, inst *model.WorkflowInstanceModel, from int, operator string) error {
	idx := from
	for {
		node, err := def.NodeAt(idx)
		if err != nil {
			return fmt.Errorf("%w: %v", workflow.ErrInvalidTransition, err)
		}

		if node.AutoResolves(inst.Params) {
			now := time.Now()
			row := &model.WorkflowProcessModel{
				ID:          uuid.New().String(),
				InstanceID:  inst.ID,
				NodeIndex:   idx,
				NodeName:    node.Name,
				Assignee:    "system",
				Processor:   "system",
				Action:      string(workflow.ActionAuto),
				Comment:     "auto approved",
				ProcessedAt: &now,
				CreatedAt:   now,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("failed to create auto process row: %w", err)
			}
			inst.CurrentNode = idx
			if idx == def.LastIndex() {
				return m.transition(tx, inst, workflow.StatusCompleted, "all nodes approved", operator)
			}
			idx++
			continue
		}

		assignee, err := m.resolver.Resolve(node.Approver, m.refOf(inst), inst.Params)
		if err != nil {
			return fmt.Errorf("failed to resolve assignee for node %q: %w", node.Name, err)
		}
		if err := m.createProcessRow(tx, inst.ID, idx, node.Name, assignee); err != nil {
			return err
		}
		inst.CurrentNode = idx
		inst.UpdatedAt = time.Now()
		return nil
	}
}

// createProcessRow 生成 pending 台账行
func (m *dbManager) createProcessRow(tx *gorm.DB, instanceID string, nodeIndex int, nodeName string, assignee string) error {
	row := &model.WorkflowProcessModel{
		ID:         uuid.New().String(),
		InstanceID: instanceID,
		NodeIndex:  nodeIndex,
		NodeName:   nodeName,
		Assignee:   assignee,
		Action:     string(workflow.ActionPending),
		CreatedAt:  time.Now(),
	}
	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("failed to create process row: %w", err)
	}
	return nil
}

// transition 转换实例状态并记录状态历史
func (m *dbManager) transition(tx *gorm.DB, inst *model.WorkflowInstanceModel, to workflow.InstanceStatus, reason string, operator string) error {
	from := workflow.InstanceStatus(inst.Status)
	if !workflow.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", workflow.ErrInvalidTransition, from, to)
	}
	inst.Status = string(to)
	inst.UpdatedAt = time.Now()
	if err := m.saveInstance(tx, inst); err != nil {
		return err
	}
	return m.writeHistory(tx, inst.ID, string(from), string(to), reason, operator)
}

// saveInstance 持久化实例指针和状态
// 同一事务内与台账行更新一起提交,不存在一边前进一边丢台账的可能
func (m *dbManager) saveInstance(tx *gorm.DB, inst *model.WorkflowInstanceModel) error {
	res := tx.Model(&model.WorkflowInstanceModel{}).
		Where("id = ?", inst.ID).
		Updates(map[string]interface{}{
			"current_node": inst.CurrentNode,
			"status":       inst.Status,
			"params":       inst.Params,
			"created_by":   inst.CreatedBy,
			"updated_at":   inst.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save instance: %w", res.Error)
	}
	return nil
}

// writeHistory 记录状态历史
func (m *dbManager) writeHistory(tx *gorm.DB, instanceID string, from string, to string, reason string, operator string) error {
	history := &model.StatusHistoryModel{
		ID:         uuid.New().String(),
		InstanceID: instanceID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		Operator:   operator,
		CreatedAt:  time.Now(),
	}
	if err := tx.Create(history).Error; err != nil {
		return fmt.Errorf("failed to write status history: %w", err)
	}
	return nil
}

// findPendingInstance 查找业务记录审批中的实例,不存在返回 nil
func (m *dbManager) findPendingInstance(tx *gorm.DB, ref workflow.BusinessRef) (*model.WorkflowInstanceModel, error) {
	inst, err := repository.NewInstanceRepository(tx).FindPendingByBusiness(string(ref.Type), ref.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query pending instance: %w", err)
	}
	return inst, nil
}

// loadDefinitionByCode 按编码加载启用的流程定义
func (m *dbManager) loadDefinitionByCode(ctx context.Context, code string) (*workflow.Definition, error) {
	dm, err := repository.NewDefinitionRepository(m.db.WithContext(ctx)).FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: definition %q", workflow.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to load definition %q: %w", code, err)
	}
	if !dm.Enabled {
		return nil, fmt.Errorf("%w: definition %q is disabled", workflow.ErrNotFound, code)
	}
	return m.decodeDefinition(dm)
}

// loadDefinitionByID 按 ID 加载流程定义
// 已软删除的定义仍可加载: 被实例引用的定义在实例生命周期内保持可解析
func (m *dbManager) loadDefinitionByID(ctx context.Context, id string) (*workflow.Definition, error) {
	var dm model.WorkflowDefinitionModel
	err := m.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: definition %s", workflow.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load definition %s: %w", id, err)
	}
	return m.decodeDefinition(&dm)
}

// decodeDefinition 解码并验证流程定义,解码一次,使用处不再分散校验
func (m *dbManager) decodeDefinition(dm *model.WorkflowDefinitionModel) (*workflow.Definition, error) {
	nodes, err := workflow.DecodeNodes(dm.Nodes)
	if err != nil {
		return nil, fmt.Errorf("definition %q: %w", dm.Code, err)
	}
	def := &workflow.Definition{
		ID:           dm.ID,
		Code:         dm.Code,
		Name:         dm.Name,
		BusinessType: workflow.BusinessType(dm.BusinessType),
		Nodes:        nodes,
		Enabled:      dm.Enabled,
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("definition %q: %w", dm.Code, err)
	}
	return def, nil
}

// loadInstance 加载实例
func (m *dbManager) loadInstance(ctx context.Context, id string) (*model.WorkflowInstanceModel, error) {
	inst, err := repository.NewInstanceRepository(m.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: instance %s", workflow.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load instance %s: %w", id, err)
	}
	return inst, nil
}

// loadProcess 加载台账行
func (m *dbManager) loadProcess(ctx context.Context, id string) (*model.WorkflowProcessModel, error) {
	row, err := repository.NewProcessRepository(m.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: process %s", workflow.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load process %s: %w", id, err)
	}
	return row, nil
}

// aggregate 组装实例聚合视图
func (m *dbManager) aggregate(ctx context.Context, instanceID string) (*Instance, error) {
	inst, err := m.loadInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	processes, err := repository.NewProcessRepository(m.db.WithContext(ctx)).FindByInstanceID(instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load processes: %w", err)
	}
	return &Instance{Record: inst, Processes: processes}, nil
}

// refOf 从实例还原业务引用
func (m *dbManager) refOf(inst *model.WorkflowInstanceModel) workflow.BusinessRef {
	return workflow.BusinessRef{
		Type: workflow.BusinessType(inst.BusinessType),
		ID:   inst.BusinessID,
	}
}

// hasPermission 检查操作权限,未配置权限检查器时一律拒绝越权
func (m *dbManager) hasPermission(actorID string, permission string) bool {
	if m.perms == nil {
		return false
	}
	return m.perms.Has(actorID, permission)
}

// newEvent 构造引擎事件
func (m *dbManager) newEvent(eventType EventType, inst *model.WorkflowInstanceModel, actor string, nodeName string, action string) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Type:         eventType,
		InstanceID:   inst.ID,
		BusinessType: inst.BusinessType,
		BusinessID:   inst.BusinessID,
		Status:       inst.Status,
		NodeIndex:    inst.CurrentNode,
		NodeName:     nodeName,
		Action:       action,
		Actor:        actor,
		CreatedAt:    time.Now(),
	}
}

// emit 发出事件
func (m *dbManager) emit(events []*Event) {
	if m.sink == nil {
		return
	}
	for _, evt := range events {
		m.sink.Emit(evt)
	}
}
