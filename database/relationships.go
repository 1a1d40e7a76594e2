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

// RelationshipsDBHandlerFunctions defines the interface for Relationships database operations.
type RelationshipsDBHandlerFunctions interface {
	InsertRelationship(parentID uuid.UUID, childID uuid.UUID) (bool, error)
	DeleteRelationship(parentID uuid.UUID, childID uuid.UUID) error
	SelectAllRelationships() ([]*model.Relationship, error)
}

// RelationshipsDBHandler handles relationship-related database operations
type RelationshipsDBHandler struct {
	db *helper.Database
}

// NewRelationshipsDBHandler creates a new relationships database handler.
// It initializes the database connection and loads relationship-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationshipsDBHandler(db *helper.Database, force bool) (*RelationshipsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationshipsDbHandler := &RelationshipsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationshipsSql(relationshipsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relationships sql", err)
	}

	err = relationshipsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationshipsDBHandler")

	return relationshipsDbHandler, nil
}

// CreateTable creates the 'relationships' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary constraints and indexes.
func (h *RelationshipsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relationships();`)
	if err != nil {
		log.Panicf("error initializing relationships table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relationships")

	return nil
}

// InsertRelationship creates a parent->child link. Both endpoints must exist.
// Returns false without error when the pair already exists (idempotent no-op).
func (h *RelationshipsDBHandler) InsertRelationship(parentID uuid.UUID, childID uuid.UUID) (bool, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var created bool
	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT insert_relationship($1, $2)`,
			parentID,
			childID,
		)
		return row.Scan(&created)
	})
	if err != nil {
		return false, storageError("insert relationship", err)
	}

	return created, nil
}

// DeleteRelationship removes a pair and its click counter
func (h *RelationshipsDBHandler) DeleteRelationship(parentID uuid.UUID, childID uuid.UUID) error {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var found bool
	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT delete_relationship($1, $2)`,
			parentID,
			childID,
		)
		return row.Scan(&found)
	})
	if err != nil {
		return storageError("delete relationship", err)
	}
	if !found {
		return helper.NewError("delete relationship", model.ErrNotFound)
	}

	return nil
}

// SelectAllRelationships retrieves all relationships ordered by creation time
// ascending, with the serial id as stable tie-break
func (h *RelationshipsDBHandler) SelectAllRelationships() ([]*model.Relationship, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var relationships []*model.Relationship
	err := helper.Retry(ctx, func() error {
		rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_relationships()`)
		if err != nil {
			return err
		}
		defer rows.Close()

		relationships = nil
		for rows.Next() {
			relationship := &model.Relationship{}
			err := rows.Scan(
				&relationship.ID,
				&relationship.ParentID,
				&relationship.ChildID,
				&relationship.CreatedAt,
			)
			if err != nil {
				return err
			}

			relationships = append(relationships, relationship)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, storageError("select all relationships", err)
	}

	return relationships, nil
}
