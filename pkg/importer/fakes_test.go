package importer

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

var errBoom = errors.New("boom")

// fakeBucket records every call in order so tests can assert sequencing.
type fakeBucket struct {
	objects   map[string]string
	calls     []string
	getErr    error
	nilBody   bool
	copyErr   error
	deleteErr error
	copies    []*s3.CopyObjectInput
}

func newFakeBucket(objects map[string]string) *fakeBucket {
	return &fakeBucket{objects: objects}
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.calls = append(f.calls, "get "+key)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.nilBody {
		return &s3.GetObjectOutput{}, nil
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeBucket) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.calls = append(f.calls, "copy "+aws.ToString(in.Key))
	f.copies = append(f.copies, in)
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.calls = append(f.calls, "delete "+aws.ToString(in.Key))
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeBucket) deleted() bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, "delete ") {
			return true
		}
	}
	return false
}

type fakeQueue struct {
	inputs  []*sqs.SendMessageBatchInput
	failAt  int
	err     error
	failIDs []string
}

func (f *fakeQueue) SendMessageBatch(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil && len(f.inputs) == f.failAt {
		return nil, f.err
	}
	out := &sqs.SendMessageBatchOutput{}
	for _, id := range f.failIDs {
		out.Failed = append(out.Failed, sqstypes.BatchResultErrorEntry{
			Id:      aws.String(id),
			Code:    aws.String("InternalError"),
			Message: aws.String("try again"),
		})
	}
	return out, nil
}

func (f *fakeQueue) bodies() []string {
	var out []string
	for _, in := range f.inputs {
		for _, e := range in.Entries {
			out = append(out, aws.ToString(e.MessageBody))
		}
	}
	return out
}

type fakePresigner struct {
	input   *s3.PutObjectInput
	expires []func(*s3.PresignOptions)
	err     error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = in
	f.expires = optFns
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc",
		Method: "PUT",
	}, nil
}
