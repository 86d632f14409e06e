package repository

import (
	"testing"
	"time"

	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedInstanceAt(t *testing.T, db *gorm.DB, id string, businessID string, status string, createdAt time.Time) {
	require.NoError(t, db.Create(&model.WorkflowInstanceModel{
		ID:             id,
		DefinitionID:   "def-1",
		DefinitionCode: "contract_approval",
		BusinessType:   "contract",
		BusinessID:     businessID,
		Status:         status,
		CreatedBy:      "alice",
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}).Error)
}

func TestFindPendingByBusiness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInstanceRepository(db)
	now := time.Now()

	seedInstanceAt(t, db, "i-1", "c-1", "cancelled", now.Add(-2*time.Hour))
	seedInstanceAt(t, db, "i-2", "c-1", "pending", now.Add(-time.Hour))

	inst, err := repo.FindPendingByBusiness("contract", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "i-2", inst.ID)

	_, err = repo.FindPendingByBusiness("contract", "c-9")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindLatestByBusiness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInstanceRepository(db)
	now := time.Now()

	// 最近一条是当前状态的权威来源,终态也计入
	seedInstanceAt(t, db, "i-1", "c-1", "rejected", now.Add(-2*time.Hour))
	seedInstanceAt(t, db, "i-2", "c-1", "completed", now.Add(-time.Hour))

	inst, err := repo.FindLatestByBusiness("contract", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "i-2", inst.ID)
}

func TestFindByFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInstanceRepository(db)
	now := time.Now()

	seedInstanceAt(t, db, "i-1", "c-1", "pending", now.Add(-3*time.Hour))
	seedInstanceAt(t, db, "i-2", "c-2", "completed", now.Add(-2*time.Hour))
	seedInstanceAt(t, db, "i-3", "c-3", "pending", now.Add(-time.Hour))

	status := "pending"
	instances, total, err := repo.FindByFilter(&InstanceFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, instances, 2)
	// 默认按创建时间倒序
	assert.Equal(t, "i-3", instances[0].ID)

	// 分页
	instances, total, err = repo.FindByFilter(&InstanceFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, instances, 1)
	assert.Equal(t, "i-1", instances[0].ID)

	businessID := "c-2"
	instances, total, err = repo.FindByFilter(&InstanceFilter{BusinessID: &businessID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "i-2", instances[0].ID)

	// 空过滤器返回全部
	_, total, err = repo.FindByFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
