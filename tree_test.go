package authkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func treeFixtureRoles() map[string]*Item {
	return map[string]*Item{
		"admin":  {Name: "admin", Type: TypeRole, Description: "Administrator"},
		"editor": {Name: "editor", Type: TypeRole, Description: "Editor"},
		"viewer": {Name: "viewer", Type: TypeRole, Description: "Viewer"},
		"guest":  {Name: "guest", Type: TypeRole, Description: "Guest"},
	}
}

// TestBuildRoleForest tests the top-level forest projection
func TestBuildRoleForest(t *testing.T) {
	roles := treeFixtureRoles()
	children := map[string][]string{
		"admin":  {"editor"},
		"editor": {"viewer", "updatePost"},
	}

	forest := buildRoleForest(roles, children)

	// guest and admin are top level; editor and viewer are nested
	assert.Len(t, forest, 2)
	assert.Equal(t, "admin", forest[0].Name)
	assert.Equal(t, "guest", forest[1].Name)

	admin := forest[0]
	assert.Equal(t, "Administrator", admin.Title)
	assert.Len(t, admin.Items, 1)
	assert.Equal(t, "editor", admin.Items[0].Name)
	assert.Len(t, admin.Items[0].Items, 1)
	assert.Equal(t, "viewer", admin.Items[0].Items[0].Name)

	assert.Empty(t, forest[1].Items)
}

// TestBuildRoleForestFiltersPermissions tests that permission children and
// permission parents never contribute to the projection
func TestBuildRoleForestFiltersPermissions(t *testing.T) {
	roles := map[string]*Item{
		"editor": {Name: "editor", Type: TypeRole, Description: "Editor"},
	}
	children := map[string][]string{
		"editor":     {"createPost", "updatePost"},
		"updatePost": {"editor"}, // permission parent is not a role, ignored
	}

	forest := buildRoleForest(roles, children)

	assert.Len(t, forest, 1)
	assert.Equal(t, "editor", forest[0].Name)
	assert.Empty(t, forest[0].Items)
}

// TestBuildRoleForestEmpty tests the projection with no roles
func TestBuildRoleForestEmpty(t *testing.T) {
	forest := buildRoleForest(map[string]*Item{}, map[string][]string{})
	assert.Empty(t, forest)
}

// TestBuildRoleNodeSiblingOrder tests that siblings are ordered by name
func TestBuildRoleNodeSiblingOrder(t *testing.T) {
	roles := treeFixtureRoles()
	children := map[string][]string{
		"admin": {"viewer", "editor", "guest"},
	}

	node := buildRoleNode("admin", roles, children)

	assert.Len(t, node.Items, 3)
	assert.Equal(t, "editor", node.Items[0].Name)
	assert.Equal(t, "guest", node.Items[1].Name)
	assert.Equal(t, "viewer", node.Items[2].Name)
}
