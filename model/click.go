package model

import (
	"time"

	"github.com/google/uuid"
)

// ClickCounter tracks how often the link between two nodes was followed.
// The ordered pair (SourceID, TargetID) is unique in storage.
type ClickCounter struct {
	ID           int       `json:"id"`
	SourceID     uuid.UUID `json:"sourceId"`
	TargetID     uuid.UUID `json:"targetId"`
	Count        int       `json:"count"`
	FirstClicked time.Time `json:"firstClicked"`
	LastClicked  time.Time `json:"lastClicked"`
}

// ClickStat is one itemized entry of a directed stats rollup. NodeID is the
// counterpart node of the queried one (the source for inbound stats, the
// target for outbound stats).
type ClickStat struct {
	NodeID uuid.UUID `json:"nodeId"`
	Count  int       `json:"count"`
}

// DirectedStats is the click rollup for one node in one direction.
type DirectedStats struct {
	Total       int         `json:"total"`
	Connections []ClickStat `json:"connections"`
}

// NodeClickTotals holds the inbound and outbound click sums for a node id
// appearing in either role. A side with no counters is 0.
type NodeClickTotals struct {
	NodeID        uuid.UUID `json:"nodeId"`
	InboundTotal  int       `json:"inboundTotal"`
	OutboundTotal int       `json:"outboundTotal"`
}
