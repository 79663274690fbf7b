package importer

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectMover is the subset of *s3.Client used by the Archiver.
type ObjectMover interface {
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Archiver moves ingested files from staging into the processed area.
type Archiver struct {
	client          ObjectMover
	processedPrefix string
}

// NewArchiver creates an archiver writing under processedPrefix.
func NewArchiver(client ObjectMover, processedPrefix string) *Archiver {
	return &Archiver{client: client, processedPrefix: processedPrefix}
}

// ProcessedKey is where a staged key ends up once archived.
func (a *Archiver) ProcessedKey(key string) string {
	return a.processedPrefix + path.Base(key)
}

// Archive copies key to the processed area and then deletes it. The delete
// is only attempted after the copy succeeded. If the delete fails the file
// exists in both places and the error wraps ErrArchiveIncomplete.
func (a *Archiver) Archive(ctx context.Context, bucket, key string) (string, error) {
	dest := a.ProcessedKey(key)

	_, err := a.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(copySource(bucket, key)),
		Key:        aws.String(dest),
	})
	if err != nil {
		return "", fmt.Errorf("copying %s to %s: %w", key, dest, err)
	}

	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return dest, fmt.Errorf("%w: deleting %s: %v", ErrArchiveIncomplete, key, err)
	}
	return dest, nil
}

// copySource builds the URL-encoded "bucket/key" CopyObject expects.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(url.PathEscape(s), "+", "%2B")
	}
	return bucket + "/" + strings.Join(segments, "/")
}
