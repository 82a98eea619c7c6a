package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/bootstrap"
	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/logging"
	"github.com/The-Policy-Posse/Network-Graph-1/models"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
	"github.com/The-Policy-Posse/Network-Graph-1/providers/localfs"
	"github.com/The-Policy-Posse/Network-Graph-1/services"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

// deps bündelt die äußeren Abhängigkeiten des Build-Kommandos.
type deps struct {
	openStore func(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.SnapshotStore, func(), error)
	loadCfg   func() (*config.Config, error)
	newLogger func(cfg *config.Config) *zap.Logger
}

type buildFlags struct {
	congress          int
	minCollaborations int
	dataDir           string
	out               string
	upload            bool
	archive           bool
}

func newBuildCmd(d deps) *cobra.Command {
	if d.loadCfg == nil {
		d.loadCfg = config.Load
	}
	if d.newLogger == nil {
		d.newLogger = func(cfg *config.Config) *zap.Logger { return logging.New(logging.FromConfig(cfg)) }
	}

	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a legislative collaboration network snapshot",
		Long: `Reads bills, legislators, sponsorships and policy tables, builds the
collaboration network and writes it to a JSON file, the snapshot store
and/or the S3 archive.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := d.loadCfg()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts := cfg.RunOptions()
			if cmd.Flags().Changed("congress") {
				opts.TargetCongress = f.congress
			}
			if cmd.Flags().Changed("min-collaborations") {
				opts.MinCollaborations = f.minCollaborations
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			if !f.upload && f.out == "" && !f.archive {
				return fmt.Errorf("nothing to do: use --out, --upload or --archive")
			}

			logger := d.newLogger(cfg)
			defer logger.Sync()
			return runBuild(cmd.Context(), cfg, opts, f, d, logger)
		},
	}

	cmd.Flags().IntVar(&f.congress, "congress", config.DefaultRunOptions().TargetCongress, "lowest congress to include (overrides TARGET_CONGRESS)")
	cmd.Flags().IntVar(&f.minCollaborations, "min-collaborations", config.DefaultRunOptions().MinCollaborations, "bills a pair must share (overrides MIN_COLLABORATIONS)")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "read CSV files from this directory instead of DATA_PROVIDER")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the snapshot JSON to this file")
	cmd.Flags().BoolVar(&f.upload, "upload", false, "append the snapshot to the configured store")
	cmd.Flags().BoolVar(&f.archive, "archive", false, "upload a gzip copy to the S3 archive")
	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config, opts config.RunOptions, f buildFlags, d deps, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s3Client, err := bootstrap.S3Client(ctx, cfg)
	if err != nil {
		return err
	}
	if f.archive && s3Client == nil {
		return fmt.Errorf("--archive requires S3_URL, S3_KEY, S3_SECRET and S3_BUCKET")
	}

	var src providers.Provider
	if f.dataDir != "" {
		src = localfs.NewFetcher(f.dataDir)
	} else if src, err = bootstrap.Provider(cfg, s3Client, logger); err != nil {
		return err
	}

	res, err := services.NewPipeline(opts, logger).Run(ctx, src)
	if err != nil {
		return err
	}

	data, err := json.Marshal(res.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if f.out != "" {
		if err := writeFile(f.out, data); err != nil {
			return err
		}
		logger.Info("Snapshot-Datei geschrieben",
			zap.String("path", f.out),
			zap.String("size", fmt.Sprintf("%.2f MB", float64(len(data))/(1024*1024))))
	}

	row := &models.NetworkData{Data: data, CreatedAt: time.Now()}
	if f.upload {
		store, closeStore, err := d.openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		if row, err = store.Append(ctx, res.Snapshot); err != nil {
			return err
		}
		md := res.Snapshot.Metadata
		logger.Info("Snapshot hochgeladen",
			zap.Uint("row_id", row.ID),
			zap.Int("congress_start", md.CongressRange.Start),
			zap.Int("congress_end", md.CongressRange.End),
			zap.Int("legislators", len(res.Snapshot.Legislators)),
			zap.Int("bills", len(res.Snapshot.Bills)),
			zap.Int("collaborations", len(res.Snapshot.Collaborations)),
			zap.Int("policies", len(res.Snapshot.Policies)),
		)
	}

	if f.archive {
		link, err := storage.NewArchive(s3Client, cfg, logger).Store(ctx, row, res.Snapshot.Metadata.RunID)
		if err != nil {
			return err
		}
		logger.Info("Snapshot archiviert", zap.String("link", link))
	}
	return nil
}

// writeFile schreibt atomar über eine temporäre Datei und fsync.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
