// Package tree derives the stable visual hierarchy served to clients from
// the raw node and relationship snapshots. Relationships may form cycles and
// give a child multiple parents; the resolver flattens them into at most one
// visual parent per child so the rendered tree is deterministic regardless of
// how or when the snapshot was read.
package tree

import (
	"github.com/Sureshraksha7/next-webi-webmap/model"
	"github.com/google/uuid"
)

// ResolveVisualParents maps each child id to its single visual parent: the
// parent of the earliest-created relationship pointing at it. Input must be
// ordered ascending by creation time (ties broken by storage insertion
// order); later relationships to an already-resolved child are ignored for
// visualization. They stay in storage and still count for cascade semantics.
func ResolveVisualParents(relationships []*model.Relationship) map[uuid.UUID]uuid.UUID {
	visualParents := make(map[uuid.UUID]uuid.UUID, len(relationships))
	for _, relationship := range relationships {
		if _, ok := visualParents[relationship.ChildID]; !ok {
			visualParents[relationship.ChildID] = relationship.ParentID
		}
	}
	return visualParents
}
