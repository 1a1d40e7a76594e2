package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusNew is the status assigned to nodes created without an explicit status.
const StatusNew = "New"

// Node represents a labeled content node in the map.
type Node struct {
	ContentID   uuid.UUID `json:"contentId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
