package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// ObjectAPI ist der Teil des S3-Clients, den das Archiv benötigt.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Archive legt gzip-komprimierte Snapshot-Dokumente in einem Bucket ab und
// hält nur die neuesten Keep Objekte vor.
type Archive struct {
	Client  ObjectAPI
	BaseURL string
	Bucket  string
	Prefix  string
	Keep    int
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewArchive erstellt ein Archiv aus der Konfiguration.
func NewArchive(client ObjectAPI, cfg *config.Config, logger *zap.Logger) *Archive {
	return &Archive{
		Client:  client,
		BaseURL: cfg.S3URL,
		Bucket:  cfg.S3Bucket,
		Prefix:  cfg.ArchivePrefix,
		Keep:    cfg.KeepArchives,
		Logger:  logger.Named("archive"),
		Now:     time.Now,
	}
}

// UploadFile lädt Daten unter key hoch und gibt den Link zurück.
func (a *Archive) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := a.Client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.Bucket, key, err)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(a.BaseURL, "/"), a.Bucket, key), nil
}

// Key liefert den Objektnamen für einen Snapshot.
func (a *Archive) Key(row *models.NetworkData, runID string) string {
	ts := row.CreatedAt
	if ts.IsZero() {
		ts = a.Now()
	}
	name := fmt.Sprintf("network-%s", ts.UTC().Format("2006-01-02T15-04-05Z"))
	if runID != "" {
		name += "-" + runID
	}
	return a.Prefix + name + ".json.gz"
}

// Store komprimiert das Dokument einer Snapshot-Zeile, lädt es hoch und
// rotiert anschließend alte Archive.
func (a *Archive) Store(ctx context.Context, row *models.NetworkData, runID string) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(row.Data); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	key := a.Key(row, runID)
	link, err := a.UploadFile(ctx, key, buf.Bytes(), "application/gzip")
	if err != nil {
		return "", err
	}
	a.Logger.Info("Snapshot archiviert", zap.String("key", key), zap.Int("bytes", buf.Len()))

	if err := a.Rotate(ctx); err != nil {
		return link, err
	}
	return link, nil
}

// Rotate löscht alle Archive unterhalb des Präfixes außer den Keep neuesten.
func (a *Archive) Rotate(ctx context.Context) error {
	if a.Keep <= 0 {
		return nil
	}
	out, err := a.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.Bucket),
		Prefix: aws.String(a.Prefix),
	})
	if err != nil {
		return fmt.Errorf("list archives: %w", err)
	}
	objects := out.Contents
	if len(objects) <= a.Keep {
		a.Logger.Debug("Keine Rotation nötig", zap.Int("archives", len(objects)), zap.Int("keep", a.Keep))
		return nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})
	for _, obj := range objects[a.Keep:] {
		key := aws.ToString(obj.Key)
		a.Logger.Info("Lösche altes Archiv", zap.String("key", key))
		_, err := a.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			a.Logger.Warn("Archiv konnte nicht gelöscht werden", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
