package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Clients bundles the AWS service clients one function needs. Each function
// builds its own set at startup and hands the pieces to its components.
type Clients struct {
	cfg      aws.Config
	endpoint string
}

// New loads the default AWS configuration for region. When endpoint is set
// (LocalStack and friends) every client targets it with static credentials.
func New(ctx context.Context, region, endpoint string) (*Clients, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Clients{cfg: cfg, endpoint: endpoint}, nil
}

// Config returns the resolved aws.Config.
func (c *Clients) Config() aws.Config {
	return c.cfg
}

// S3 returns an S3 client. Path-style addressing is forced for custom endpoints.
func (c *Clients) S3() *s3.Client {
	return s3.NewFromConfig(c.cfg, func(o *s3.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
			o.UsePathStyle = true
		}
	})
}

// S3Presigner returns a presign client bound to a fresh S3 client.
func (c *Clients) S3Presigner() *s3.PresignClient {
	return s3.NewPresignClient(c.S3())
}

// SQS returns an SQS client.
func (c *Clients) SQS() *sqs.Client {
	return sqs.NewFromConfig(c.cfg, func(o *sqs.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
}

// SNS returns an SNS client.
func (c *Clients) SNS() *sns.Client {
	return sns.NewFromConfig(c.cfg, func(o *sns.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
}

// SES returns an SES v2 client.
func (c *Clients) SES() *sesv2.Client {
	return sesv2.NewFromConfig(c.cfg, func(o *sesv2.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
}

// DynamoDB returns a DynamoDB client.
func (c *Clients) DynamoDB() *dynamodb.Client {
	return dynamodb.NewFromConfig(c.cfg, func(o *dynamodb.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
}
