package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/The-Policy-Posse/Network-Graph-1/providers"
)

// Fetcher liest die Rohtabellen aus einem lokalen Verzeichnis.
type Fetcher struct {
	Dir string
}

// NewFetcher erstellt einen Fetcher für das angegebene Verzeichnis.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{Dir: dir}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "local"
}

// Open öffnet <Dir>/<table>.csv.
func (f *Fetcher) Open(_ context.Context, table string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(f.Dir, providers.FileName(table)))
}
