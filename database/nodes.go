package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Sureshraksha7/next-webi-webmap/helper"
	"github.com/Sureshraksha7/next-webi-webmap/model"
	loadSql "github.com/Sureshraksha7/next-webi-webmap/sql"
	"github.com/google/uuid"
)

// NodesDBHandlerFunctions defines the interface for Nodes database operations.
type NodesDBHandlerFunctions interface {
	InsertNode(node *model.Node) error
	UpdateNode(node *model.Node) error
	DeleteNode(id uuid.UUID) error
	SelectNode(id uuid.UUID) (*model.Node, error)
	SelectAllNodes() ([]*model.Node, error)
	SearchNodes(term string, excludeID *uuid.UUID, excludeChildrenOf *uuid.UUID) ([]*model.Node, error)
}

// NodesDBHandler handles node-related database operations
type NodesDBHandler struct {
	db *helper.Database
}

// NewNodesDBHandler creates a new nodes database handler.
// It initializes the database connection and loads node-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewNodesDBHandler(db *helper.Database, force bool) (*NodesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	nodesDbHandler := &NodesDBHandler{
		db: db,
	}

	err := loadSql.LoadNodesSql(nodesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load nodes sql", err)
	}

	err = nodesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized NodesDBHandler")

	return nodesDbHandler, nil
}

// CreateTable creates the 'nodes' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *NodesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_nodes();`)
	if err != nil {
		log.Panicf("error initializing nodes table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table nodes")

	return nil
}

// InsertNode inserts a new node and fills in the generated id and timestamp
func (h *NodesDBHandler) InsertNode(node *model.Node) error {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT * FROM insert_node($1, $2, $3)`,
			node.Name,
			node.Description,
			node.Status,
		)

		return row.Scan(
			&node.ContentID,
			&node.Name,
			&node.Description,
			&node.Status,
			&node.CreatedAt,
		)
	})
	if err != nil {
		return storageError("insert node", err)
	}

	return nil
}

// UpdateNode updates name, description and status of an existing node
func (h *NodesDBHandler) UpdateNode(node *model.Node) error {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT * FROM update_node($1, $2, $3, $4)`,
			node.ContentID,
			node.Name,
			node.Description,
			node.Status,
		)

		return row.Scan(
			&node.ContentID,
			&node.Name,
			&node.Description,
			&node.Status,
			&node.CreatedAt,
		)
	})
	if err != nil {
		return storageError("update node", err)
	}

	return nil
}

// DeleteNode deletes a node by id, cascading to all relationships and click
// counters referencing it as either endpoint
func (h *NodesDBHandler) DeleteNode(id uuid.UUID) error {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var found bool
	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT delete_node($1)`,
			id,
		)
		return row.Scan(&found)
	})
	if err != nil {
		return storageError("delete node", err)
	}
	if !found {
		return helper.NewError("delete node", model.ErrNotFound)
	}

	return nil
}

// SelectNode retrieves a node by id
func (h *NodesDBHandler) SelectNode(id uuid.UUID) (*model.Node, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	node := &model.Node{}
	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT * FROM select_node($1)`,
			id,
		)

		return row.Scan(
			&node.ContentID,
			&node.Name,
			&node.Description,
			&node.Status,
			&node.CreatedAt,
		)
	})
	if err != nil {
		return nil, storageError("select node", err)
	}

	return node, nil
}

// SelectAllNodes retrieves all nodes ordered by creation time ascending
func (h *NodesDBHandler) SelectAllNodes() ([]*model.Node, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var nodes []*model.Node
	err := helper.Retry(ctx, func() error {
		rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_nodes()`)
		if err != nil {
			return err
		}
		defer rows.Close()

		nodes = nil
		for rows.Next() {
			node := &model.Node{}
			err := rows.Scan(
				&node.ContentID,
				&node.Name,
				&node.Description,
				&node.Status,
				&node.CreatedAt,
			)
			if err != nil {
				return err
			}

			nodes = append(nodes, node)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, storageError("select all nodes", err)
	}

	return nodes, nil
}

// SearchNodes matches a case-insensitive substring over name and description.
// excludeID removes one node from the result, excludeChildrenOf removes the
// existing children of a given parent. An empty result is not an error.
func (h *NodesDBHandler) SearchNodes(term string, excludeID *uuid.UUID, excludeChildrenOf *uuid.UUID) ([]*model.Node, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var nodes []*model.Node
	err := helper.Retry(ctx, func() error {
		rows, err := h.db.Instance.QueryContext(ctx,
			`SELECT * FROM search_nodes($1, $2, $3)`,
			term,
			excludeID,
			excludeChildrenOf,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		nodes = nil
		for rows.Next() {
			node := &model.Node{}
			err := rows.Scan(
				&node.ContentID,
				&node.Name,
				&node.Description,
				&node.Status,
				&node.CreatedAt,
			)
			if err != nil {
				return err
			}

			nodes = append(nodes, node)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, storageError("search nodes", err)
	}

	return nodes, nil
}
