package httpsource

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher lädt die Rohtabellen per HTTP. BaseURL ist entweder ein
// Verzeichnis (<BaseURL>/<table>.csv) oder ein .tar.gz-Bundle mit allen CSVs.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger

	mu     sync.Mutex
	bundle map[string][]byte
}

// NewFetcher erstellt einen HTTP-Fetcher aus der Konfiguration.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{BaseURL: cfg.DataBaseURL, Client: httpClient, Logger: logger.Named("httpsource")}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "http"
}

// Open lädt eine Tabelle herunter.
func (f *Fetcher) Open(ctx context.Context, table string) (io.ReadCloser, error) {
	name := providers.FileName(table)
	if isArchive(f.BaseURL) {
		files, err := f.loadBundle(ctx)
		if err != nil {
			return nil, err
		}
		data, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("%s not found in bundle %s", name, f.BaseURL)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	link := strings.TrimRight(f.BaseURL, "/") + "/" + name
	f.Logger.Debug("Lade Tabelle", zap.String("url", link))
	resp, err := f.get(ctx, link)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (f *Fetcher) get(ctx context.Context, link string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status for %s: %s", link, resp.Status)
	}
	return resp, nil
}

// loadBundle lädt das Archiv einmalig und hält die CSVs im Speicher.
func (f *Fetcher) loadBundle(ctx context.Context) (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bundle != nil {
		return f.bundle, nil
	}

	f.Logger.Info("Lade Daten-Bundle", zap.String("url", f.BaseURL))
	resp, err := f.get(ctx, f.BaseURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer gz.Close()

	files := map[string][]byte{}
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(strings.ToLower(header.Name), ".csv") {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s from bundle: %w", header.Name, err)
		}
		files[path.Base(header.Name)] = data
	}
	for _, table := range providers.Tables {
		if _, ok := files[providers.FileName(table)]; !ok {
			f.Logger.Warn("Tabelle fehlt im Bundle", zap.String("table", table))
		}
	}
	f.Logger.Info("Daten-Bundle geladen", zap.Int("files", len(files)))
	f.bundle = files
	return files, nil
}

func isArchive(link string) bool {
	l := strings.ToLower(link)
	return strings.HasSuffix(l, ".tar.gz") || strings.HasSuffix(l, ".tgz")
}
