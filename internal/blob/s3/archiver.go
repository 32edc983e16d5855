package s3blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver uploads raw daily input files to cold storage after a successful
// load, keyed by year and month so a bucket listing reads chronologically.
type Archiver struct {
	client *Client
	prefix string
	logger *slog.Logger
}

// NewArchiver creates an Archiver. prefix is prepended to every object key.
func NewArchiver(client *Client, prefix string, logger *slog.Logger) *Archiver {
	return &Archiver{client: client, prefix: prefix, logger: logger}
}

// ArchiveInput uploads the file at localPath under
// <prefix>/<YYYY>/<MM>/<basename>. The local file is left in place.
func (a *Archiver) ArchiveInput(ctx context.Context, localPath string, day time.Time) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("s3blob: open %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(a.prefix, day.Format("2006"), day.Format("01"), filepath.Base(localPath))

	_, err = a.client.S3().PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.Bucket()),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", key, err)
	}

	a.logger.Info("archived input file",
		slog.String("local", localPath),
		slog.String("key", key),
	)
	return nil
}
