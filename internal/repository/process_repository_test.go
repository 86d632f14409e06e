package repository

import (
	"testing"
	"time"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.WorkflowDefinitionModel{},
		&model.WorkflowInstanceModel{},
		&model.WorkflowProcessModel{},
		&model.StatusHistoryModel{},
		&model.AuditLogModel{},
	)
	require.NoError(t, err)

	return db
}

func seedInstance(t *testing.T, db *gorm.DB, id string, status string) *model.WorkflowInstanceModel {
	inst := &model.WorkflowInstanceModel{
		ID:             id,
		DefinitionID:   "def-1",
		DefinitionCode: "contract_approval",
		BusinessType:   "contract",
		BusinessID:     "c-" + id,
		CurrentNode:    0,
		Status:         status,
		CreatedBy:      "alice",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, db.Create(inst).Error)
	return inst
}

func seedProcess(t *testing.T, db *gorm.DB, instanceID string, nodeIndex int, assignee string, action string, superseded bool) *model.WorkflowProcessModel {
	row := &model.WorkflowProcessModel{
		ID:         uuid.New().String(),
		InstanceID: instanceID,
		NodeIndex:  nodeIndex,
		NodeName:   "节点",
		Assignee:   assignee,
		Action:     action,
		Superseded: superseded,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestFindPendingByAssignee(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProcessRepository(db)

	live := seedInstance(t, db, "i-1", "pending")
	cancelled := seedInstance(t, db, "i-2", "cancelled")

	mine := seedProcess(t, db, live.ID, 0, "mgr-01", "pending", false)
	seedProcess(t, db, live.ID, 0, "mgr-01", "pending", true)       // 作废行
	seedProcess(t, db, live.ID, 0, "fin-01", "pending", false)      // 他人待办
	seedProcess(t, db, cancelled.ID, 0, "mgr-01", "pending", false) // 撤销实例的悬空行

	tasks, err := repo.FindPendingByAssignee("mgr-01")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, mine.ID, tasks[0].ID)
}

func TestCountResolved(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProcessRepository(db)
	inst := seedInstance(t, db, "i-1", "pending")

	count, err := repo.CountResolved(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	seedProcess(t, db, inst.ID, 0, "mgr-01", "approve", false)
	seedProcess(t, db, inst.ID, 1, "sys", "auto", false)
	seedProcess(t, db, inst.ID, 2, "fin-01", "pending", false)

	count, err = repo.CountResolved(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFindByInstanceIDOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProcessRepository(db)
	inst := seedInstance(t, db, "i-1", "pending")

	seedProcess(t, db, inst.ID, 1, "fin-01", "pending", false)
	seedProcess(t, db, inst.ID, 0, "mgr-01", "approve", false)

	rows, err := repo.FindByInstanceID(inst.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].NodeIndex)
	assert.Equal(t, 1, rows[1].NodeIndex)
}

func TestFindPendingByInstanceID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProcessRepository(db)
	inst := seedInstance(t, db, "i-1", "pending")

	seedProcess(t, db, inst.ID, 0, "mgr-01", "approve", false)
	pending := seedProcess(t, db, inst.ID, 1, "fin-01", "pending", false)

	row, err := repo.FindPendingByInstanceID(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, row.ID)
}
