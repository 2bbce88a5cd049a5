package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Storage(client *s3.Client, bucket, prefix string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Storage) Write(ctx context.Context, filepath string, data io.Reader) error {
	fullPath := path.Join(s.prefix, filepath)

	// PutObject needs a seekable body
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, data); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullPath),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("putting object: %w", err)
	}

	return nil
}

func (s *S3Storage) Read(ctx context.Context, filepath string) (io.ReadCloser, error) {
	fullPath := path.Join(s.prefix, filepath)

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullPath),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}

	return output.Body, nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := path.Join(s.prefix, trimSlash(prefix))
	var files []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		for _, obj := range page.Contents {
			files = append(files, strings.TrimPrefix(*obj.Key, s.prefix+"/"))
		}
	}

	return files, nil
}

func (s *S3Storage) Exists(ctx context.Context, filepath string) (bool, error) {
	fullPath := path.Join(s.prefix, filepath)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullPath),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("heading object: %w", err)
	}
	return true, nil
}

func (s *S3Storage) Delete(ctx context.Context, filepath string) error {
	fullPath := path.Join(s.prefix, filepath)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullPath),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

func (s *S3Storage) RemoveAll(ctx context.Context, prefix string) error {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Storage) Rename(ctx context.Context, oldPrefix, newPrefix string) error {
	// S3 has no rename; copy each object then delete the old tree.
	keys, err := s.List(ctx, oldPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		newKey := path.Join(s.prefix, newPrefix, strings.TrimPrefix(key, trimSlash(oldPrefix)+"/"))
		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			CopySource: aws.String(path.Join(s.bucket, s.prefix, key)),
			Key:        aws.String(newKey),
		})
		if err != nil {
			return fmt.Errorf("copying object %s: %w", key, err)
		}
	}
	return s.RemoveAll(ctx, oldPrefix)
}

var _ Storage = (*S3Storage)(nil)
