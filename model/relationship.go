package model

import (
	"time"

	"github.com/google/uuid"
)

// Relationship represents a directed parent->child link between two nodes.
// The ordered pair (ParentID, ChildID) is unique in storage.
type Relationship struct {
	ID        int       `json:"id"`
	ParentID  uuid.UUID `json:"parentId"`
	ChildID   uuid.UUID `json:"childId"`
	CreatedAt time.Time `json:"createdAt"`
}
