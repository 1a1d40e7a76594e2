package database

import (
	"sync"
	"testing"
	"time"

	"github.com/Sureshraksha7/next-webi-webmap/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClicksNewClicksDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewClicksDBHandler", func(t *testing.T) {
		clicksDbHandler, err := NewClicksDBHandler(database, true)
		assert.NoError(t, err, "Expected NewClicksDBHandler to not return an error")
		require.NotNil(t, clicksDbHandler, "Expected NewClicksDBHandler to return a non-nil instance")
		require.NotNil(t, clicksDbHandler.db, "Expected NewClicksDBHandler to have a non-nil database instance")
		require.NotNil(t, clicksDbHandler.db.Instance, "Expected NewClicksDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewClicksDBHandler with nil database", func(t *testing.T) {
		_, err := NewClicksDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating ClicksDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestClicksRecord(t *testing.T) {
	database := initDB(t)

	nodesDbHandler, err := NewNodesDBHandler(database, true)
	require.NoError(t, err)
	clicksDbHandler, err := NewClicksDBHandler(database, true)
	require.NoError(t, err)

	source := &model.Node{Name: "Source", Status: model.StatusNew}
	target := &model.Node{Name: "Target", Status: model.StatusNew}
	require.NoError(t, nodesDbHandler.InsertNode(source))
	require.NoError(t, nodesDbHandler.InsertNode(target))

	t.Run("First click creates the counter", func(t *testing.T) {
		counter, err := clicksDbHandler.RecordClick(source.ContentID, target.ContentID)
		assert.NoError(t, err, "Expected RecordClick to not return an error")
		require.NotNil(t, counter, "Expected RecordClick to return a counter")
		assert.Equal(t, 1, counter.Count, "Expected first click to set count to 1")
		assert.Equal(t, source.ContentID, counter.SourceID, "Expected source id to match")
		assert.Equal(t, target.ContentID, counter.TargetID, "Expected target id to match")
		assert.WithinDuration(t, counter.FirstClicked, time.Now(), 2*time.Second, "Expected FirstClicked to be set")
	})

	t.Run("Repeated clicks increment the counter", func(t *testing.T) {
		first, err := clicksDbHandler.RecordClick(source.ContentID, target.ContentID)
		require.NoError(t, err)

		second, err := clicksDbHandler.RecordClick(source.ContentID, target.ContentID)
		assert.NoError(t, err, "Expected RecordClick to not return an error")
		assert.Equal(t, first.Count+1, second.Count, "Expected count to increment by one")
		assert.Equal(t, first.ID, second.ID, "Expected the same counter row to be updated")
		assert.Equal(t, first.FirstClicked, second.FirstClicked, "Expected FirstClicked to stay unchanged")
		assert.False(t, second.LastClicked.Before(first.LastClicked), "Expected LastClicked to move forward")
	})

	t.Run("Concurrent clicks lose no updates", func(t *testing.T) {
		from := &model.Node{Name: "Concurrent source", Status: model.StatusNew}
		to := &model.Node{Name: "Concurrent target", Status: model.StatusNew}
		require.NoError(t, nodesDbHandler.InsertNode(from))
		require.NoError(t, nodesDbHandler.InsertNode(to))

		const workers = 8
		const clicksPerWorker = 5

		var wg sync.WaitGroup
		errs := make(chan error, workers*clicksPerWorker)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range clicksPerWorker {
					_, err := clicksDbHandler.RecordClick(from.ContentID, to.ContentID)
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err, "Expected every concurrent RecordClick to succeed")
		}

		counters, err := clicksDbHandler.SelectClicksBySource(from.ContentID)
		require.NoError(t, err)
		require.Len(t, counters, 1, "Expected all concurrent clicks on one counter")
		assert.Equal(t, workers*clicksPerWorker, counters[0].Count, "Expected no click to be lost")

		// Cleanup
		nodesDbHandler.DeleteNode(from.ContentID)
		nodesDbHandler.DeleteNode(to.ContentID)
	})

	// Cleanup
	nodesDbHandler.DeleteNode(source.ContentID)
	nodesDbHandler.DeleteNode(target.ContentID)
}

func TestClicksSelect(t *testing.T) {
	database := initDB(t)

	nodesDbHandler, err := NewNodesDBHandler(database, true)
	require.NoError(t, err)
	clicksDbHandler, err := NewClicksDBHandler(database, true)
	require.NoError(t, err)
	err = ResetAll(database)
	require.NoError(t, err)

	hub := &model.Node{Name: "Hub", Status: model.StatusNew}
	rare := &model.Node{Name: "Rare", Status: model.StatusNew}
	popular := &model.Node{Name: "Popular", Status: model.StatusNew}
	for _, node := range []*model.Node{hub, rare, popular} {
		require.NoError(t, nodesDbHandler.InsertNode(node))
	}

	// hub -> rare once, hub -> popular three times, rare -> hub twice
	_, err = clicksDbHandler.RecordClick(hub.ContentID, rare.ContentID)
	require.NoError(t, err)
	for range 3 {
		_, err = clicksDbHandler.RecordClick(hub.ContentID, popular.ContentID)
		require.NoError(t, err)
	}
	for range 2 {
		_, err = clicksDbHandler.RecordClick(rare.ContentID, hub.ContentID)
		require.NoError(t, err)
	}

	t.Run("Select by source ordered by count", func(t *testing.T) {
		counters, err := clicksDbHandler.SelectClicksBySource(hub.ContentID)
		assert.NoError(t, err, "Expected SelectClicksBySource to not return an error")
		require.Len(t, counters, 2, "Expected one counter per outgoing pair")
		assert.Equal(t, popular.ContentID, counters[0].TargetID, "Expected highest count first")
		assert.Equal(t, 3, counters[0].Count)
		assert.Equal(t, rare.ContentID, counters[1].TargetID)
		assert.Equal(t, 1, counters[1].Count)
	})

	t.Run("Select by target", func(t *testing.T) {
		counters, err := clicksDbHandler.SelectClicksByTarget(hub.ContentID)
		assert.NoError(t, err, "Expected SelectClicksByTarget to not return an error")
		require.Len(t, counters, 1, "Expected one counter pointing at the node")
		assert.Equal(t, rare.ContentID, counters[0].SourceID)
		assert.Equal(t, 2, counters[0].Count)
	})

	t.Run("Select for node without clicks", func(t *testing.T) {
		counters, err := clicksDbHandler.SelectClicksBySource(popular.ContentID)
		assert.NoError(t, err, "Expected empty select to not return an error")
		assert.Empty(t, counters, "Expected no counters for a node without outgoing clicks")
	})

	t.Run("Aggregate totals for both directions", func(t *testing.T) {
		totals, err := clicksDbHandler.AggregateClickTotals()
		assert.NoError(t, err, "Expected AggregateClickTotals to not return an error")
		require.Len(t, totals, 3, "Expected totals for every node appearing in a counter")

		byNode := map[string]*model.NodeClickTotals{}
		for _, nodeTotals := range totals {
			byNode[nodeTotals.NodeID.String()] = nodeTotals
		}
		require.Contains(t, byNode, hub.ContentID.String())
		assert.Equal(t, 2, byNode[hub.ContentID.String()].InboundTotal, "Expected inbound sum over all sources")
		assert.Equal(t, 4, byNode[hub.ContentID.String()].OutboundTotal, "Expected outbound sum over all targets")
		require.Contains(t, byNode, rare.ContentID.String())
		assert.Equal(t, 1, byNode[rare.ContentID.String()].InboundTotal)
		assert.Equal(t, 2, byNode[rare.ContentID.String()].OutboundTotal)
		require.Contains(t, byNode, popular.ContentID.String())
		assert.Equal(t, 3, byNode[popular.ContentID.String()].InboundTotal)
		assert.Equal(t, 0, byNode[popular.ContentID.String()].OutboundTotal, "Expected missing direction to default to 0")
	})

	// Cleanup
	for _, node := range []*model.Node{hub, rare, popular} {
		nodesDbHandler.DeleteNode(node.ContentID)
	}
}
