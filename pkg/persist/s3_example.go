//go:build s3example
// +build s3example

// This file provides an example S3-backed continuity store.
// It is excluded from regular builds because it requires the AWS SDK.
//
// To use this in your project, copy this file and add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package persist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps continuity records as S3 objects. Latency makes it a
// poor fit for per-request access; it suits periodic snapshots and
// graceful-shutdown saves in serverless deployments.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//	store := persist.NewS3Store(client, "my-bucket", "weft/sessions/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	closed bool
}

// NewS3Store creates a new S3-backed continuity store.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save stores a record. S3 has no per-object expiry, so the deadline
// travels as metadata and Load enforces it.
func (s *S3Store) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	if s.closed {
		return ErrStoreClosed{}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(sessionID)),
		Body:   bytes.NewReader(data),
		Metadata: map[string]string{
			"expires-at": strconv.FormatInt(expiresAt.Unix(), 10),
		},
	})
	return err
}

// Load retrieves a record if it exists and hasn't expired.
func (s *S3Store) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if s.closed {
		return nil, ErrStoreClosed{}
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(sessionID)),
	})
	if err != nil {
		var notFound *s3types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	defer out.Body.Close()

	if raw, ok := out.Metadata["expires-at"]; ok {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if time.Now().After(time.Unix(unix, 0)) {
				return nil, nil
			}
		}
	}

	return io.ReadAll(out.Body)
}

// Delete removes a record from S3.
func (s *S3Store) Delete(ctx context.Context, sessionID string) error {
	if s.closed {
		return ErrStoreClosed{}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(sessionID)),
	})
	return err
}

// Touch rewrites the expiry metadata by copying the object onto
// itself with a replaced metadata directive.
func (s *S3Store) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if s.closed {
		return ErrStoreClosed{}
	}

	data, err := s.Load(ctx, sessionID)
	if err != nil || data == nil {
		return err
	}
	return s.Save(ctx, sessionID, data, expiresAt)
}

// SaveAll saves records sequentially. S3 offers no multi-object
// atomicity.
func (s *S3Store) SaveAll(ctx context.Context, records map[string]StateData) error {
	if s.closed {
		return ErrStoreClosed{}
	}

	for id, sd := range records {
		if err := s.Save(ctx, id, sd.Data, sd.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}

// Close marks the store as closed. The S3 client is left to the
// caller.
func (s *S3Store) Close() error {
	s.closed = true
	return nil
}
