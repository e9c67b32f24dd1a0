package authkit

import (
	"context"
	"sort"
)

// TreeNode is one node of the role-hierarchy projection built by BuildTree.
// The title is taken from the role's description; permissions never appear
// in the tree.
type TreeNode struct {
	Name  string     `json:"name"`
	Title string     `json:"title"`
	Items []TreeNode `json:"items,omitempty"`
}

// BuildTree projects the role hierarchy into a forest for display. The
// top-level nodes are roles with no incoming edge from another role; each
// node recursively nests its role-typed children. Siblings are ordered by
// name so the projection is stable.
func (s *Service) BuildTree(ctx context.Context) ([]TreeNode, error) {
	roles, err := s.GetRoles(ctx)
	if err != nil {
		return nil, err
	}

	children, err := s.GetChildrenList(ctx)
	if err != nil {
		return nil, err
	}

	return buildRoleForest(roles, children), nil
}

// BuildSubtree projects the role hierarchy below a single role. Returns
// (nil, nil) when the item does not exist or is not a role.
func (s *Service) BuildSubtree(ctx context.Context, root string) (*TreeNode, error) {
	roles, err := s.GetRoles(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := roles[root]; !ok {
		return nil, nil
	}

	children, err := s.GetChildrenList(ctx)
	if err != nil {
		return nil, err
	}

	node := buildRoleNode(root, roles, children)
	return &node, nil
}

// buildRoleForest builds the display forest from an in-memory snapshot.
// Roles that appear as the child of another role are not top-level.
func buildRoleForest(roles map[string]*Item, children map[string][]string) []TreeNode {
	hasRoleParent := make(map[string]bool)
	for parent, kids := range children {
		if _, ok := roles[parent]; !ok {
			continue
		}
		for _, kid := range kids {
			if _, ok := roles[kid]; ok {
				hasRoleParent[kid] = true
			}
		}
	}

	tops := make([]string, 0, len(roles))
	for name := range roles {
		if !hasRoleParent[name] {
			tops = append(tops, name)
		}
	}
	sort.Strings(tops)

	forest := make([]TreeNode, 0, len(tops))
	for _, name := range tops {
		forest = append(forest, buildRoleNode(name, roles, children))
	}
	return forest
}

// buildRoleNode nests the role-typed children of name. Permission children
// are filtered out of the projection. The acyclicity invariant bounds the
// recursion.
func buildRoleNode(name string, roles map[string]*Item, children map[string][]string) TreeNode {
	node := TreeNode{
		Name:  name,
		Title: roles[name].Description,
	}

	kids := make([]string, 0, len(children[name]))
	for _, kid := range children[name] {
		if _, ok := roles[kid]; ok {
			kids = append(kids, kid)
		}
	}
	sort.Strings(kids)

	for _, kid := range kids {
		node.Items = append(node.Items, buildRoleNode(kid, roles, children))
	}
	return node
}
