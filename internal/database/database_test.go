package database

import (
	"testing"

	"github.com/caseops/caseflow-gin/internal/config"
	"github.com/caseops/caseflow-gin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "caseflow",
		Password: "secret",
		DBName:   "caseflow",
		SSLMode:  "require",
	})

	assert.Equal(t, "host=db.internal port=5433 user=caseflow password=secret dbname=caseflow sslmode=require", dsn)
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	tables := []string{
		"workflow_definitions",
		"workflow_instances",
		"workflow_processes",
		"contracts",
		"cases",
		"payment_requests",
		"status_history",
		"events",
		"audit_logs",
	}
	for _, table := range tables {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	// 迁移后可以正常写读
	require.NoError(t, db.Create(&model.ContractModel{
		ID:     "c-1",
		No:     "HT-001",
		Name:   "测试合同",
		Status: model.ContractStatusDraft,
	}).Error)

	var contract model.ContractModel
	require.NoError(t, db.First(&contract, "id = ?", "c-1").Error)
	assert.Equal(t, "HT-001", contract.No)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	require.NoError(t, CreateIndexes(db))
}

func TestCheckHealth(t *testing.T) {
	assert.False(t, CheckHealth(nil))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	assert.True(t, CheckHealth(db))
}
