package importer

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveCopiesThenDeletes(t *testing.T) {
	bucket := newFakeBucket(nil)
	a := NewArchiver(bucket, "processed/")

	dest, err := a.Archive(context.Background(), "import-bucket", "staging/x.csv")
	require.NoError(t, err)

	assert.Equal(t, "processed/x.csv", dest)
	assert.Equal(t, []string{"copy processed/x.csv", "delete staging/x.csv"}, bucket.calls)
	require.Len(t, bucket.copies, 1)
	assert.Equal(t, "import-bucket/staging/x.csv", aws.ToString(bucket.copies[0].CopySource))
	assert.Equal(t, "import-bucket", aws.ToString(bucket.copies[0].Bucket))
}

func TestArchiveNeverDeletesWhenCopyFails(t *testing.T) {
	bucket := newFakeBucket(nil)
	bucket.copyErr = errBoom
	a := NewArchiver(bucket, "processed/")

	dest, err := a.Archive(context.Background(), "import-bucket", "staging/x.csv")

	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, dest)
	assert.False(t, bucket.deleted())
}

func TestArchiveDeleteFailureIsIncomplete(t *testing.T) {
	bucket := newFakeBucket(nil)
	bucket.deleteErr = errBoom
	a := NewArchiver(bucket, "processed/")

	dest, err := a.Archive(context.Background(), "import-bucket", "staging/x.csv")

	assert.ErrorIs(t, err, ErrArchiveIncomplete)
	assert.Equal(t, "processed/x.csv", dest)
}

func TestCopySourceEscapesSegments(t *testing.T) {
	assert.Equal(t, "b/staging/my%20file%2B1.csv", copySource("b", "staging/my file+1.csv"))
}
