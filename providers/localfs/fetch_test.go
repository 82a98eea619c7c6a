package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Policy-Posse/Network-Graph-1/providers"
)

func TestFetcherOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bills.csv"), []byte("bill_number,congress\nHR1,117\n"), 0o644))

	f := NewFetcher(dir)
	assert.Equal(t, "local", f.Name())

	t.Run("opens an existing table", func(t *testing.T) {
		rc, err := f.Open(context.Background(), providers.TableBills)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "bill_number,congress\nHR1,117\n", string(data))
	})

	t.Run("missing table is an error", func(t *testing.T) {
		_, err := f.Open(context.Background(), providers.TableLegislators)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
