package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"docvault/internal/domain"
	"docvault/internal/infra/awsclient"
)

// S3Store keeps document payloads in an S3 bucket through the SigV4
// client. Payloads are buffered before upload; the service caps request
// bodies well below anything that would make that a problem.
type S3Store struct {
	client *awsclient.Client
	bucket string
}

func NewS3Store(client *awsclient.Client, bucket string) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	return &S3Store{client: client, bucket: bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, name string, r io.Reader) error {
	if name == "" {
		return fmt.Errorf("%w: object name is required", domain.ErrInvalidInput)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if err := s.client.PutObject(ctx, s.bucket, name, payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: object name is required", domain.ErrInvalidInput)
	}
	rc, err := s.client.GetObject(ctx, s.bucket, name)
	if err != nil {
		if errors.Is(err, awsclient.ErrObjectNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return rc, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: object name is required", domain.ErrInvalidInput)
	}
	if err := s.client.DeleteObject(ctx, s.bucket, name); err != nil {
		if errors.Is(err, awsclient.ErrObjectNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}
