package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgcrypto extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgcrypto extension should be created")

		// Verify the administrative reset function is created
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = 'reset_all');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "reset_all function should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		// Running Init multiple times should not error
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadNodesSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load nodes SQL functions", func(t *testing.T) {
		err := LoadNodesSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all functions exist
		for _, funcName := range NodesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load nodes SQL is idempotent without force", func(t *testing.T) {
		// Loading again without force should be a no-op
		err := LoadNodesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load nodes SQL with force reloads", func(t *testing.T) {
		err := LoadNodesSql(db.Instance, true)
		assert.NoError(t, err)

		for _, funcName := range NodesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist after force reload", funcName)
		}
	})
}

func TestLoadRelationshipsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load relationships SQL functions", func(t *testing.T) {
		err := LoadRelationshipsSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range RelationshipsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load relationships SQL is idempotent without force", func(t *testing.T) {
		err := LoadRelationshipsSql(db.Instance, false)
		assert.NoError(t, err)
	})
}

func TestLoadClicksSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load clicks SQL functions", func(t *testing.T) {
		err := LoadClicksSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range ClicksFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, true)
		assert.NoError(t, err)

		all := append(append(append([]string{}, NodesFunctions...), RelationshipsFunctions...), ClicksFunctions...)
		for _, funcName := range all {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})
}
