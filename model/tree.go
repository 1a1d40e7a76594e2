package model

import "github.com/google/uuid"

// TreeNode is one entry of the denormalized tree view. Children holds the ids
// of the nodes attached below this one via their visual parent, in
// relationship creation order.
type TreeNode struct {
	ContentID   uuid.UUID   `json:"contentId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Children    []uuid.UUID `json:"children"`
}
