package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortField(t *testing.T) {
	for _, field := range []string{"created_at", "updated_at", "status", "business_type", "definition_code", "current_node"} {
		assert.NoError(t, ValidateSortField(field), field)
	}
	assert.NoError(t, ValidateSortField("Status"))

	assert.Error(t, ValidateSortField(""))
	assert.Error(t, ValidateSortField("params"))
	assert.Error(t, ValidateSortField("created_at; DROP TABLE workflow_instances"))
}

func TestValidateSortOrder(t *testing.T) {
	assert.NoError(t, ValidateSortOrder("ASC"))
	assert.NoError(t, ValidateSortOrder("desc"))
	assert.NoError(t, ValidateSortOrder(" asc "))

	assert.Error(t, ValidateSortOrder(""))
	assert.Error(t, ValidateSortOrder("DESC --"))
}

func TestSanitizeSortFieldAndOrder(t *testing.T) {
	assert.Equal(t, "status", SanitizeSortField("Status"))
	assert.Equal(t, "created_at", SanitizeSortField("evil; --"))
	assert.Equal(t, "created_at", SanitizeSortField(""))

	assert.Equal(t, "ASC", SanitizeSortOrder("asc"))
	assert.Equal(t, "DESC", SanitizeSortOrder("whatever"))
}
