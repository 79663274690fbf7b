package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

// ObjectGetter is the subset of *s3.Client used to read staged files.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectAPI is everything the pipeline needs from the bucket.
type ObjectAPI interface {
	ObjectGetter
	ObjectMover
}

var _ ObjectAPI = (*s3.Client)(nil)

// FileResult summarises one processed file.
type FileResult struct {
	Bucket      string
	Key         string
	Records     int
	Batches     int
	ArchivedKey string
	Err         error
	Skipped     bool
}

// Pipeline turns a staged CSV into queue messages and archives it.
type Pipeline struct {
	objects       ObjectGetter
	dispatcher    *Dispatcher
	archiver      *Archiver
	stagingPrefix string
}

// NewPipeline wires the steps together. dispatcher may be nil, in which
// case records are parsed and logged but not sent anywhere.
func NewPipeline(objects ObjectAPI, dispatcher *Dispatcher, stagingPrefix, processedPrefix string) *Pipeline {
	return &Pipeline{
		objects:       objects,
		dispatcher:    dispatcher,
		archiver:      NewArchiver(objects, processedPrefix),
		stagingPrefix: stagingPrefix,
	}
}

// HandleEvent processes every object in the notification independently.
// A failing file is logged and does not affect the others.
func (p *Pipeline) HandleEvent(ctx context.Context, event events.S3Event) []FileResult {
	results := make([]FileResult, 0, len(event.Records))
	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			logger.Error("undecodable object key", "bucket", bucket, "key", record.S3.Object.Key, "error", err)
			results = append(results, FileResult{Bucket: bucket, Key: record.S3.Object.Key, Err: err})
			continue
		}

		if !strings.HasPrefix(key, p.stagingPrefix) {
			logger.Warn("ignoring object outside staging area", "bucket", bucket, "key", key)
			results = append(results, FileResult{Bucket: bucket, Key: key, Skipped: true})
			continue
		}

		res, err := p.ProcessFile(ctx, bucket, key)
		if err != nil {
			logger.Error("import failed", "bucket", bucket, "key", key, "error", err)
		}
		results = append(results, res)
	}
	return results
}

// ProcessFile reads, parses, dispatches and archives one staged object.
// Steps run in order and the first failure stops the rest, except that a
// failed delete after a successful copy is only reported.
func (p *Pipeline) ProcessFile(ctx context.Context, bucket, key string) (FileResult, error) {
	res := FileResult{Bucket: bucket, Key: key}

	obj, err := p.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %v", ErrInvalidSourceStream, key, err)
		return res, res.Err
	}
	if obj.Body == nil {
		res.Err = fmt.Errorf("%w: %s has no body", ErrInvalidSourceStream, key)
		return res, res.Err
	}
	defer obj.Body.Close()

	records, batches, err := p.parseAndDispatch(ctx, key, obj.Body)
	res.Records, res.Batches = len(records), batches
	if err != nil {
		res.Err = err
		return res, err
	}

	res.ArchivedKey, err = p.archiver.Archive(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, ErrArchiveIncomplete) {
			logger.Warn("staged file left behind after archive", "bucket", bucket, "key", key, "error", err)
			return res, nil
		}
		res.ArchivedKey = ""
		res.Err = err
		return res, err
	}

	logger.Info("file imported", "bucket", bucket, "key", key, "records", res.Records, "batches", res.Batches, "archived", res.ArchivedKey)
	return res, nil
}

// ImportCSV parses and dispatches a CSV supplied inline. Nothing is archived.
func (p *Pipeline) ImportCSV(ctx context.Context, r io.Reader) (FileResult, error) {
	res := FileResult{Key: "inline"}
	records, batches, err := p.parseAndDispatch(ctx, res.Key, r)
	res.Records, res.Batches, res.Err = len(records), batches, err
	return res, err
}

func (p *Pipeline) parseAndDispatch(ctx context.Context, source string, r io.Reader) ([]models.ImportRecord, int, error) {
	parser, err := NewParser(r)
	if err != nil {
		return nil, 0, err
	}

	records, err := ParseAll(parser, func(line int, rec models.ImportRecord) {
		logger.Debug("parsed record", "source", source, "line", line, "record", rec)
	})
	if err != nil {
		return records, 0, fmt.Errorf("parsing %s: %w", source, err)
	}

	if p.dispatcher == nil {
		logger.Warn("no queue configured, records not dispatched", "source", source, "records", len(records))
		return records, 0, nil
	}

	batches, err := p.dispatcher.Dispatch(ctx, records)
	if err != nil {
		return records, batches, fmt.Errorf("dispatching %s: %w", source, err)
	}
	return records, batches, nil
}
