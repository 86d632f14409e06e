package container

import (
	"io"
	"testing"

	"github.com/caseops/caseflow-gin/internal/auth"
	"github.com/caseops/caseflow-gin/internal/config"
	"github.com/caseops/caseflow-gin/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewContainerWithDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := config.Default()
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Auth.Roles = map[string]auth.RoleConfig{
		"dept_manager": {Members: []string{"mgr-01"}},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctr, err := NewContainerWithDB(cfg, db, logger)
	require.NoError(t, err)
	defer ctr.Close()

	assert.NotNil(t, ctr.DB())
	assert.NotNil(t, ctr.Manager())
	assert.NotNil(t, ctr.Hub())
	assert.NotNil(t, ctr.Checker())
	assert.NotNil(t, ctr.DefinitionService())
	assert.NotNil(t, ctr.WorkflowService())
	assert.NotNil(t, ctr.BusinessService())
	assert.NotNil(t, ctr.QueryService())
	assert.NotNil(t, ctr.StatisticsService())
	assert.NotNil(t, ctr.AuditLogService())

	require.NotNil(t, ctr.TokenValidator())
	assert.True(t, ctr.TokenValidator().Enabled())
}

func TestContainerCloseIsSafe(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	ctr, err := NewContainerWithDB(config.Default(), db, nil)
	require.NoError(t, err)

	assert.NoError(t, ctr.Close())
}
