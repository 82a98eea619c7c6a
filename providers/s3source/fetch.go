package s3source

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
)

// ObjectGetter ist der Teil des S3-Clients, den der Fetcher benötigt.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher liest die Rohtabellen aus einem S3-Bucket unter einem Prefix.
type Fetcher struct {
	Client ObjectGetter
	Bucket string
	Prefix string
	Logger *zap.Logger
}

// NewFetcher erstellt einen S3-Fetcher.
func NewFetcher(client ObjectGetter, cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Client: client, Bucket: cfg.DataS3Bucket, Prefix: cfg.DataS3Prefix, Logger: logger.Named("s3source")}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "s3"
}

// Open liest s3://<Bucket>/<Prefix>/<table>.csv.
func (f *Fetcher) Open(ctx context.Context, table string) (io.ReadCloser, error) {
	key := path.Join(f.Prefix, providers.FileName(table))
	f.Logger.Debug("Lade Tabelle aus S3", zap.String("bucket", f.Bucket), zap.String("key", key))
	out, err := f.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", f.Bucket, key, err)
	}
	return out.Body, nil
}
