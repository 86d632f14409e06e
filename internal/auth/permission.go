package auth

import (
	"fmt"
	"time"
)

// RoleConfig 角色配置
// 成员列表兼作审批人目录,权限列表驱动引擎的越权检查
type RoleConfig struct {
	Members     []string `mapstructure:"members"`
	Permissions []string `mapstructure:"permissions"`
}

// Checker 基于角色的权限检查器
type Checker struct {
	userPerms map[string]map[string]bool
	cache     *PermissionCache
}

// NewChecker 创建权限检查器
// 角色配置展开为 用户->权限 集合,检查结果进 TTL 缓存
func NewChecker(roles map[string]RoleConfig) *Checker {
	userPerms := make(map[string]map[string]bool)
	for _, role := range roles {
		for _, member := range role.Members {
			perms, ok := userPerms[member]
			if !ok {
				perms = make(map[string]bool)
				userPerms[member] = perms
			}
			for _, p := range role.Permissions {
				perms[p] = true
			}
		}
	}
	return &Checker{
		userPerms: userPerms,
		cache:     NewPermissionCache(5 * time.Minute),
	}
}

// Has 检查用户是否持有权限
func (c *Checker) Has(actorID string, permission string) bool {
	key := fmt.Sprintf("%s:%s", actorID, permission)
	if v, found := c.cache.Get(key); found {
		return v
	}

	allowed := false
	if perms, ok := c.userPerms[actorID]; ok {
		allowed = perms[permission]
	}
	c.cache.Set(key, allowed)
	return allowed
}

// RoleMembers 展开角色成员目录,供审批人解析器使用
func RoleMembers(roles map[string]RoleConfig) map[string][]string {
	members := make(map[string][]string, len(roles))
	for name, role := range roles {
		members[name] = role.Members
	}
	return members
}
