package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewLocal(t.TempDir(), "http://localhost:8080/storage/")

	require.NoError(t, d.Put(ctx, "exports/products.csv", strings.NewReader("id,title\n1,Mug\n")))

	ok, err := d.Exists(ctx, "exports/products.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Get(ctx, "exports/products.csv")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "id,title\n1,Mug\n", string(body))

	files, err := d.Files(ctx, "exports")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/products.csv"}, files)

	assert.Equal(t, "http://localhost:8080/storage/exports/products.csv", d.URL("exports/products.csv"))

	require.NoError(t, d.Delete(ctx, "exports/products.csv"))
	require.NoError(t, d.Delete(ctx, "exports/products.csv"))
	_, err = d.Get(ctx, "exports/products.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsEscape(t *testing.T) {
	d := NewLocal(t.TempDir(), "")
	err := d.Put(context.Background(), "../outside.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestUseUnknownDisk(t *testing.T) {
	RegisterDisk("memory-test", NewLocal(t.TempDir(), ""))
	_, err := Use("memory-test")
	assert.NoError(t, err)

	_, err = Use("nope")
	assert.Error(t, err)
	assert.Contains(t, Names(), "memory-test")
}
