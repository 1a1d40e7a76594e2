package tree

import (
	"github.com/Sureshraksha7/next-webi-webmap/model"
	"github.com/google/uuid"
)

// Assemble combines the node snapshot with the resolved parentage into the
// denormalized forest view. Nodes must be ordered ascending by creation time;
// the earliest node is the canonical root and is never attached to another
// node's children list, even when a relationship nominates it as a child.
// Children are appended in relationship creation order. Relationships whose
// visual parent is missing from the node set contribute no nesting.
// Disconnected nodes surface as additional top-level entries.
//
// The output depends only on the snapshots, so assembling twice without
// intervening writes yields identical results.
func Assemble(nodes []*model.Node, relationships []*model.Relationship) []*model.TreeNode {
	if len(nodes) == 0 {
		return []*model.TreeNode{}
	}

	treeNodes := make(map[uuid.UUID]*model.TreeNode, len(nodes))
	for _, node := range nodes {
		treeNodes[node.ContentID] = &model.TreeNode{
			ContentID:   node.ContentID,
			Name:        node.Name,
			Description: node.Description,
			Status:      node.Status,
			Children:    []uuid.UUID{},
		}
	}

	rootID := nodes[0].ContentID
	visualParents := ResolveVisualParents(relationships)

	// Walk the relationship list again so children land in creation order.
	// Only the relationship that resolved a child's visual parent attaches
	// it; the pair uniqueness constraint makes that relationship unique.
	for _, relationship := range relationships {
		if relationship.ChildID == rootID {
			continue
		}
		if visualParents[relationship.ChildID] != relationship.ParentID {
			continue
		}
		parent, ok := treeNodes[relationship.ParentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, relationship.ChildID)
	}

	result := make([]*model.TreeNode, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, treeNodes[node.ContentID])
	}

	return result
}
