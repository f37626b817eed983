// Package publish uploads the snapshot of each run to secondary sinks.
package publish

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"
	"github.com/storecheck/storecheck/internal/checkerr"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

const (
	DefaultS3Key = "health.json"
)

// PutObjectAPI is the part of the S3 client that S3Publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads the snapshot JSON to an S3 bucket.
type S3Publisher struct {
	Client PutObjectAPI
	Bucket string
	Key    string
}

// NewS3Publisher creates a S3Publisher with the default AWS credential chain.
// The region is taken from the environment if region is empty.
func NewS3Publisher(ctx context.Context, bucket, key, region string) (*S3Publisher, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, checkerr.New(api.ErrIO, err, "failed to load AWS config")
	}

	if key == "" {
		key = DefaultS3Key
	}

	return &S3Publisher{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Key:    strings.TrimPrefix(key, "/"),
	}, nil
}

// URL returns the s3:// URL of the uploaded snapshot.
func (p *S3Publisher) URL() string {
	return "s3://" + p.Bucket + "/" + p.Key
}

// Publish uploads the entries of the report in the same form as the snapshot file.
func (p *S3Publisher) Publish(ctx context.Context, r api.Report) error {
	entries := r.Entries
	if entries == nil {
		entries = []api.SnapshotEntry{}
	}

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return checkerr.New(api.ErrIO, err, "failed to encode snapshot")
	}

	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.Bucket),
		Key:          aws.String(p.Key),
		Body:         bytes.NewReader(b),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return checkerr.New(api.ErrIO, err, "failed to upload snapshot to %s", p.URL())
	}
	return nil
}
