package webmap

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Sureshraksha7/next-webi-webmap/core/tree"
	"github.com/Sureshraksha7/next-webi-webmap/database"
	"github.com/Sureshraksha7/next-webi-webmap/helper"
	"github.com/Sureshraksha7/next-webi-webmap/model"
	loadSql "github.com/Sureshraksha7/next-webi-webmap/sql"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Cache keys for the derived projections. The cache is disposable and never
// a source of truth; every mutation flushes it before returning.
const (
	cacheKeyTree     = "tree"
	cacheKeyAllStats = "all_stats"
)

// Webmap provides a unified interface to all database handlers and the tree
// and click-statistics projections built on top of them.
type Webmap struct {
	DB            *helper.Database
	Nodes         *database.NodesDBHandler
	Relationships *database.RelationshipsDBHandler
	Clicks        *database.ClicksDBHandler
	// Projection cache
	cache *gocache.Cache
	// Logging
	log *slog.Logger
}

// NewWebmap creates a new Webmap instance with all handlers initialized.
// It owns the only storage handle: opened here, closed via Close.
func NewWebmap(config *helper.DatabaseConfiguration) (*Webmap, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("webmap", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers. force=false to not reload if functions already exist.
	nodes, err := database.NewNodesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create nodes handler", err)
	}

	relationships, err := database.NewRelationshipsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relationships handler", err)
	}

	clicks, err := database.NewClicksDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create clicks handler", err)
	}

	return &Webmap{
		DB:            db,
		Nodes:         nodes,
		Relationships: relationships,
		Clicks:        clicks,
		cache:         gocache.New(5*time.Minute, 10*time.Minute),
		log:           logger,
	}, nil
}

// Close closes the database connection
func (w *Webmap) Close() error {
	if w.DB != nil {
		return w.DB.Close()
	}
	return nil
}

// invalidateProjections drops all cached projections. Called synchronously by
// every mutating operation.
func (w *Webmap) invalidateProjections() {
	w.cache.Flush()
}

// CreateNode creates a node. Name must be non-blank; description defaults to
// empty and status to "New".
func (w *Webmap) CreateNode(name string, description string, status string) (*model.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, helper.NewError("create node", fmt.Errorf("name is required: %w", model.ErrValidation))
	}
	if status == "" {
		status = model.StatusNew
	}

	node := &model.Node{
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      status,
	}
	err := w.Nodes.InsertNode(node)
	if err != nil {
		return nil, err
	}

	w.invalidateProjections()
	w.log.Info("Created node", slog.String("content_id", node.ContentID.String()), slog.String("name", node.Name))

	return node, nil
}

// UpdateNode replaces name, description and status of an existing node.
func (w *Webmap) UpdateNode(id uuid.UUID, name string, description string, status string) (*model.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, helper.NewError("update node", fmt.Errorf("name is required: %w", model.ErrValidation))
	}
	if status == "" {
		status = model.StatusNew
	}

	node := &model.Node{
		ContentID:   id,
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      status,
	}
	err := w.Nodes.UpdateNode(node)
	if err != nil {
		return nil, err
	}

	w.invalidateProjections()
	w.log.Info("Updated node", slog.String("content_id", id.String()))

	return node, nil
}

// DeleteNode deletes a node and cascades to all relationships and click
// counters referencing it as either endpoint.
func (w *Webmap) DeleteNode(id uuid.UUID) error {
	err := w.Nodes.DeleteNode(id)
	if err != nil {
		return err
	}

	w.invalidateProjections()
	w.log.Info("Deleted node", slog.String("content_id", id.String()))

	return nil
}

// SearchNodes matches a case-insensitive substring over name and description.
// An empty result is not an error.
func (w *Webmap) SearchNodes(term string) ([]*model.Node, error) {
	return w.Nodes.SearchNodes(term, nil, nil)
}

// SearchUnrelatedNodes searches like SearchNodes but excludes the given node
// itself and its existing children, for picking new link targets.
func (w *Webmap) SearchUnrelatedNodes(contentID uuid.UUID, term string) ([]*model.Node, error) {
	return w.Nodes.SearchNodes(term, &contentID, &contentID)
}

// CreateRelationship creates a parent->child link. Self-links are rejected.
// Returns false without error when the pair already exists.
func (w *Webmap) CreateRelationship(parentID uuid.UUID, childID uuid.UUID) (bool, error) {
	if parentID == childID {
		return false, helper.NewError("create relationship", fmt.Errorf("parent and child must differ: %w", model.ErrValidation))
	}

	created, err := w.Relationships.InsertRelationship(parentID, childID)
	if err != nil {
		return false, err
	}

	if created {
		w.invalidateProjections()
		w.log.Info("Created relationship", slog.String("parent_id", parentID.String()), slog.String("child_id", childID.String()))
	}

	return created, nil
}

// DeleteRelationship removes a pair and its click counter.
func (w *Webmap) DeleteRelationship(parentID uuid.UUID, childID uuid.UUID) error {
	err := w.Relationships.DeleteRelationship(parentID, childID)
	if err != nil {
		return err
	}

	w.invalidateProjections()
	w.log.Info("Deleted relationship", slog.String("parent_id", parentID.String()), slog.String("child_id", childID.String()))

	return nil
}

// RecordClick upserts the click counter for a directed pair and returns its
// current state.
func (w *Webmap) RecordClick(sourceID uuid.UUID, targetID uuid.UUID) (*model.ClickCounter, error) {
	counter, err := w.Clicks.RecordClick(sourceID, targetID)
	if err != nil {
		return nil, err
	}

	w.invalidateProjections()

	return counter, nil
}

// InboundStats returns the click total and itemized per-source counts for
// links pointing at the given node, most clicked first.
func (w *Webmap) InboundStats(contentID uuid.UUID) (*model.DirectedStats, error) {
	counters, err := w.Clicks.SelectClicksByTarget(contentID)
	if err != nil {
		return nil, err
	}

	stats := &model.DirectedStats{Connections: make([]model.ClickStat, 0, len(counters))}
	for _, counter := range counters {
		stats.Total += counter.Count
		stats.Connections = append(stats.Connections, model.ClickStat{NodeID: counter.SourceID, Count: counter.Count})
	}

	return stats, nil
}

// OutboundStats returns the click total and itemized per-target counts for
// links originating at the given node, most clicked first.
func (w *Webmap) OutboundStats(contentID uuid.UUID) (*model.DirectedStats, error) {
	counters, err := w.Clicks.SelectClicksBySource(contentID)
	if err != nil {
		return nil, err
	}

	stats := &model.DirectedStats{Connections: make([]model.ClickStat, 0, len(counters))}
	for _, counter := range counters {
		stats.Total += counter.Count
		stats.Connections = append(stats.Connections, model.ClickStat{NodeID: counter.TargetID, Count: counter.Count})
	}

	return stats, nil
}

// AllStats returns the inbound and outbound click totals for every node id
// appearing in either role.
func (w *Webmap) AllStats() ([]*model.NodeClickTotals, error) {
	if cached, ok := w.cache.Get(cacheKeyAllStats); ok {
		return cached.([]*model.NodeClickTotals), nil
	}

	totals, err := w.Clicks.AggregateClickTotals()
	if err != nil {
		return nil, err
	}

	w.cache.Set(cacheKeyAllStats, totals, gocache.DefaultExpiration)

	return totals, nil
}

// Tree returns the denormalized forest view: every node in creation order,
// each carrying the ids of the children attached below it via their visual
// parent. Reads run against a consistent snapshot and are idempotent.
func (w *Webmap) Tree() ([]*model.TreeNode, error) {
	if cached, ok := w.cache.Get(cacheKeyTree); ok {
		return cached.([]*model.TreeNode), nil
	}

	nodes, err := w.Nodes.SelectAllNodes()
	if err != nil {
		return nil, err
	}

	relationships, err := w.Relationships.SelectAllRelationships()
	if err != nil {
		return nil, err
	}

	result := tree.Assemble(nodes, relationships)
	w.cache.Set(cacheKeyTree, result, gocache.DefaultExpiration)

	return result, nil
}

// Reset clears all nodes, relationships and click counters.
// Administrative/test operation.
func (w *Webmap) Reset() error {
	err := database.ResetAll(w.DB)
	if err != nil {
		return err
	}

	w.invalidateProjections()
	w.log.Warn("Reset all entities")

	return nil
}
