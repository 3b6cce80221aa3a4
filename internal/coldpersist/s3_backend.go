/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package coldpersist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/launix-de/cachesim/internal/simerrors"
)

// S3Backend stores the snapshot as a single object, grounded on
// storage/persistence-s3.go's ensureOpen/PutObject-whole-buffer
// strategy — S3 has no append, so like the teacher's column storage
// the snapshot is written whole on WriteSnapshot. Optional
// ?region=&access_key_id=&secret_access_key=&endpoint= query
// parameters mirror persistence-s3.go's S3Factory fields for pointing
// at a non-default region or an S3-compatible endpoint.
type S3Backend struct {
	bucket string
	key    string

	region, accessKeyID, secretAccessKey, endpoint string

	mu     sync.Mutex
	client *s3.Client
	opened bool
}

// NewS3Backend builds a backend from a parsed s3://bucket/key URI.
func NewS3Backend(u *url.URL) (*S3Backend, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, &simerrors.SnapshotError{URI: u.String(), Err: fmt.Errorf("expected s3://bucket/key")}
	}
	q := u.Query()
	return &S3Backend{
		bucket:          bucket,
		key:             key,
		region:          q.Get("region"),
		accessKeyID:     q.Get("access_key_id"),
		secretAccessKey: q.Get("secret_access_key"),
		endpoint:        q.Get("endpoint"),
	}, nil
}

func (b *S3Backend) ensureOpen(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opened {
		return nil
	}

	var opts []func(*config.LoadOptions) error
	if b.region != "" {
		opts = append(opts, config.WithRegion(b.region))
	}
	if b.accessKeyID != "" && b.secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.accessKeyID, b.secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if b.endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(b.endpoint) })
	}
	b.client = s3.NewFromConfig(cfg, s3Opts...)
	b.opened = true
	return nil
}

func (b *S3Backend) WriteSnapshot(data []byte) error {
	ctx := context.Background()
	if err := b.ensureOpen(ctx); err != nil {
		return &simerrors.SnapshotError{URI: b.uri(), Err: err}
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &simerrors.SnapshotError{URI: b.uri(), Err: err}
	}
	return nil
}

func (b *S3Backend) ReadSnapshot() ([]byte, error) {
	ctx := context.Background()
	if err := b.ensureOpen(ctx); err != nil {
		return nil, &simerrors.SnapshotError{URI: b.uri(), Err: err}
	}
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		return nil, &simerrors.SnapshotError{URI: b.uri(), Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &simerrors.SnapshotError{URI: b.uri(), Err: err}
	}
	return data, nil
}

func (b *S3Backend) uri() string { return "s3://" + b.bucket + "/" + b.key }
