package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// CSVContentType is the content type every upload URL is signed for.
const CSVContentType = "text/csv"

// Presigner is the subset of *s3.PresignClient used for upload URLs.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var _ Presigner = (*s3.PresignClient)(nil)

// UploadTicket is a time-limited, write-only handle for one staged file.
type UploadTicket struct {
	SignedURL   string
	Key         string
	ContentType string
	ExpiresIn   time.Duration
}

// UploadAuthorizer signs PUT URLs into the staging area of the import bucket.
// Signing creates nothing in the bucket.
type UploadAuthorizer struct {
	presigner     Presigner
	bucket        string
	stagingPrefix string
	ttl           time.Duration
}

// NewUploadAuthorizer creates an authorizer for bucket. URLs expire after ttl.
func NewUploadAuthorizer(presigner Presigner, bucket, stagingPrefix string, ttl time.Duration) *UploadAuthorizer {
	return &UploadAuthorizer{presigner: presigner, bucket: bucket, stagingPrefix: stagingPrefix, ttl: ttl}
}

// SignUpload returns a URL the client can PUT a CSV file to.
func (a *UploadAuthorizer) SignUpload(ctx context.Context, fileName string) (UploadTicket, error) {
	if strings.TrimSpace(fileName) == "" {
		return UploadTicket{}, ErrMissingParameter
	}

	key := a.stagingPrefix + fileName
	req, err := a.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(CSVContentType),
	}, s3.WithPresignExpires(a.ttl))
	if err != nil {
		return UploadTicket{}, fmt.Errorf("signing upload for %s: %w", key, err)
	}

	return UploadTicket{
		SignedURL:   req.URL,
		Key:         key,
		ContentType: CSVContentType,
		ExpiresIn:   a.ttl,
	}, nil
}
