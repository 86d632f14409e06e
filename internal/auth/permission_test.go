package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRoles() map[string]RoleConfig {
	return map[string]RoleConfig{
		"admin": {
			Members:     []string{"admin-01"},
			Permissions: []string{"workflow:override", "workflow:cancel", "workflow:back"},
		},
		"dept_manager": {
			Members:     []string{"mgr-01", "mgr-02"},
			Permissions: []string{"workflow:cancel"},
		},
		"viewer": {
			Members: []string{"bob"},
		},
	}
}

func TestCheckerHas(t *testing.T) {
	c := NewChecker(testRoles())

	assert.True(t, c.Has("admin-01", "workflow:override"))
	assert.True(t, c.Has("admin-01", "workflow:back"))
	assert.True(t, c.Has("mgr-02", "workflow:cancel"))

	assert.False(t, c.Has("mgr-01", "workflow:override"))
	assert.False(t, c.Has("bob", "workflow:cancel"))
	assert.False(t, c.Has("unknown", "workflow:cancel"))
	assert.False(t, c.Has("", "workflow:cancel"))
}

func TestCheckerMemberOfMultipleRoles(t *testing.T) {
	roles := testRoles()
	roles["finance"] = RoleConfig{
		Members:     []string{"mgr-01"},
		Permissions: []string{"workflow:back"},
	}
	c := NewChecker(roles)

	// 多角色权限取并集
	assert.True(t, c.Has("mgr-01", "workflow:cancel"))
	assert.True(t, c.Has("mgr-01", "workflow:back"))
}

func TestRoleMembers(t *testing.T) {
	members := RoleMembers(testRoles())

	assert.Equal(t, []string{"mgr-01", "mgr-02"}, members["dept_manager"])
	assert.Equal(t, []string{"bob"}, members["viewer"])
	assert.Nil(t, members["missing"])
}

func TestPermissionCache(t *testing.T) {
	cache := NewPermissionCache(50 * time.Millisecond)

	_, found := cache.Get("alice:workflow:cancel")
	assert.False(t, found)

	cache.Set("alice:workflow:cancel", true)
	v, found := cache.Get("alice:workflow:cancel")
	assert.True(t, found)
	assert.True(t, v)

	// 过期后读不到
	time.Sleep(60 * time.Millisecond)
	_, found = cache.Get("alice:workflow:cancel")
	assert.False(t, found)

	cache.Set("a", true)
	cache.Set("b", false)
	cache.Clear()
	_, found = cache.Get("a")
	assert.False(t, found)
}
