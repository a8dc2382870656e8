package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"storefront.db":                         "storefront.db?_foreign_keys=on",
		"file:shop.db?cache=shared":             "file:shop.db?cache=shared&_foreign_keys=on",
		"file:x?mode=memory&_foreign_keys=on":   "file:x?mode=memory&_foreign_keys=on",
		"storefront.db?_fk=1":                   "storefront.db?_fk=1",
		"storefront.db?_FOREIGN_KEYS=off&mode=": "storefront.db?_FOREIGN_KEYS=off&mode=",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
}

func TestForeignKeysOnEveryPooledConnection(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	ctx := context.Background()
	conns := make([]*sql.Conn, 0, 3)
	t.Cleanup(func() {
		for _, c := range conns {
			c.Close()
		}
	})
	for i := 0; i < 3; i++ {
		c, err := sqlDB.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, c)
	}

	for i, c := range conns {
		var on int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on, "connection %d", i)
	}
}

func TestFileDatabaseCascadesDeletes(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "cascade.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("CREATE TABLE orders (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("CREATE TABLE lines (id INTEGER PRIMARY KEY, order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE)").Error)

	for i := 1; i <= 5; i++ {
		require.NoError(t, db.Exec("INSERT INTO orders (id) VALUES (?)", i).Error)
		require.NoError(t, db.Exec("INSERT INTO lines (order_id) VALUES (?)", i).Error)
	}
	for i := 1; i <= 5; i++ {
		require.NoError(t, db.Exec("DELETE FROM orders WHERE id = ?", i).Error)
	}

	var orphans int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM lines").Scan(&orphans).Error)
	assert.Zero(t, orphans)
}
