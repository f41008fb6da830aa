// Package media uploads user images (profile pictures, post images) to an
// S3-compatible object store and returns their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	sc "github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrEmptyObject = errors.New("empty object")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Object is an upload as received from a multipart form.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores an object under prefix and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, prefix string, obj Object) (string, error)
}

type S3Uploader struct {
	config *sc.Config
}

func NewS3Uploader(config *sc.Config) *S3Uploader {
	return &S3Uploader{config: config}
}

// StorageKey returns a fresh date-partitioned key keeping name's extension.
func StorageKey(prefix, name string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%d/%d/%v%s", prefix, d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(path.Ext(name)))
}

func (u *S3Uploader) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.config.S3RootUser,
			u.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (u *S3Uploader) Upload(ctx context.Context, prefix string, obj Object) (string, error) {
	if obj.Body == nil || obj.Size == 0 {
		return "", ErrEmptyObject
	}

	client, err := u.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	key := StorageKey(prefix, obj.Name)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.config.S3Bucket),
		Key:           aws.String(key),
		Body:          obj.Body,
		ContentLength: aws.Int64(obj.Size),
	}
	if obj.ContentType != "" {
		in.ContentType = aws.String(obj.ContentType)
	}

	if _, err := putObject(client, ctx, in); err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}

	return u.URL(key), nil
}

// URL is the path-style address of key in the configured bucket.
func (u *S3Uploader) URL(key string) string {
	return strings.TrimRight(u.config.S3BaseEndpoint, "/") + "/" + u.config.S3Bucket + "/" + key
}
