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

// ClicksDBHandlerFunctions defines the interface for Clicks database operations.
type ClicksDBHandlerFunctions interface {
	RecordClick(sourceID uuid.UUID, targetID uuid.UUID) (*model.ClickCounter, error)
	SelectClicksBySource(sourceID uuid.UUID) ([]*model.ClickCounter, error)
	SelectClicksByTarget(targetID uuid.UUID) ([]*model.ClickCounter, error)
	AggregateClickTotals() ([]*model.NodeClickTotals, error)
}

// ClicksDBHandler handles click-counter-related database operations
type ClicksDBHandler struct {
	db *helper.Database
}

// NewClicksDBHandler creates a new clicks database handler.
// It initializes the database connection and loads click-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewClicksDBHandler(db *helper.Database, force bool) (*ClicksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	clicksDbHandler := &ClicksDBHandler{
		db: db,
	}

	err := loadSql.LoadClicksSql(clicksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load clicks sql", err)
	}

	err = clicksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ClicksDBHandler")

	return clicksDbHandler, nil
}

// CreateTable creates the 'clicks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary constraints and indexes.
func (h *ClicksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_clicks();`)
	if err != nil {
		log.Panicf("error initializing clicks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table clicks")

	return nil
}

// RecordClick creates the counter for a pair on first use and increments it
// afterwards. The upsert runs as one atomic statement, so concurrent calls
// for the same pair never lose an update.
func (h *ClicksDBHandler) RecordClick(sourceID uuid.UUID, targetID uuid.UUID) (*model.ClickCounter, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	counter := &model.ClickCounter{}
	err := helper.Retry(ctx, func() error {
		row := h.db.Instance.QueryRowContext(ctx,
			`SELECT * FROM record_click($1, $2)`,
			sourceID,
			targetID,
		)

		return row.Scan(
			&counter.ID,
			&counter.SourceID,
			&counter.TargetID,
			&counter.Count,
			&counter.FirstClicked,
			&counter.LastClicked,
		)
	})
	if err != nil {
		return nil, storageError("record click", err)
	}

	return counter, nil
}

// SelectClicksBySource retrieves all counters originating at a node, ordered
// by count descending
func (h *ClicksDBHandler) SelectClicksBySource(sourceID uuid.UUID) ([]*model.ClickCounter, error) {
	return h.selectClicks("select clicks by source",
		`SELECT * FROM select_clicks_by_source($1)`, sourceID)
}

// SelectClicksByTarget retrieves all counters pointing at a node, ordered by
// count descending
func (h *ClicksDBHandler) SelectClicksByTarget(targetID uuid.UUID) ([]*model.ClickCounter, error) {
	return h.selectClicks("select clicks by target",
		`SELECT * FROM select_clicks_by_target($1)`, targetID)
}

func (h *ClicksDBHandler) selectClicks(operation string, query string, id uuid.UUID) ([]*model.ClickCounter, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var counters []*model.ClickCounter
	err := helper.Retry(ctx, func() error {
		rows, err := h.db.Instance.QueryContext(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		counters = nil
		for rows.Next() {
			counter := &model.ClickCounter{}
			err := rows.Scan(
				&counter.ID,
				&counter.SourceID,
				&counter.TargetID,
				&counter.Count,
				&counter.FirstClicked,
				&counter.LastClicked,
			)
			if err != nil {
				return err
			}

			counters = append(counters, counter)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, storageError(operation, err)
	}

	return counters, nil
}

// AggregateClickTotals returns the inbound and outbound click sums for every
// node id appearing in either role, with the missing side defaulting to 0
func (h *ClicksDBHandler) AggregateClickTotals() ([]*model.NodeClickTotals, error) {
	ctx, cancel := h.db.QueryContext()
	defer cancel()

	var totals []*model.NodeClickTotals
	err := helper.Retry(ctx, func() error {
		rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM aggregate_click_totals()`)
		if err != nil {
			return err
		}
		defer rows.Close()

		totals = nil
		for rows.Next() {
			nodeTotals := &model.NodeClickTotals{}
			err := rows.Scan(
				&nodeTotals.NodeID,
				&nodeTotals.InboundTotal,
				&nodeTotals.OutboundTotal,
			)
			if err != nil {
				return err
			}

			totals = append(totals, nodeTotals)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, storageError("aggregate click totals", err)
	}

	return totals, nil
}
