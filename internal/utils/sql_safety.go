package utils

import (
	"errors"
	"strings"
)

// 列表查询允许的排序字段白名单
var allowedSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"status":          true,
	"business_type":   true,
	"definition_code": true,
	"current_node":    true,
}

// ValidateSortField 验证排序字段，防止 SQL 注入
func ValidateSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}
	if !allowedSortFields[strings.ToLower(field)] {
		return errors.New("sort field not allowed")
	}
	return nil
}

// ValidateSortOrder 验证排序方向
func ValidateSortOrder(order string) error {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder != "ASC" && upperOrder != "DESC" {
		return errors.New("sort order must be ASC or DESC")
	}
	return nil
}

// SanitizeSortField 清理排序字段，非法字段回退默认值
func SanitizeSortField(field string) string {
	lower := strings.ToLower(strings.TrimSpace(field))
	if allowedSortFields[lower] {
		return lower
	}
	return "created_at"
}

// SanitizeSortOrder 清理排序方向
func SanitizeSortOrder(order string) string {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder == "ASC" || upperOrder == "DESC" {
		return upperOrder
	}
	return "DESC" // 默认降序
}
