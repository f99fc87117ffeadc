package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// getObjectAPI is the part of the S3 client used to read objects.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads resources from an S3 bucket (or any S3 compatible store).
type S3 struct {
	bucket string
	prefix string
	client getObjectAPI
}

// NewS3 returns a Source for "s3://bucket/prefix" using the default AWS credential
// chain (environment, shared config, instance role).
func NewS3(ctx context.Context, location string) (*S3, error) {
	bucket, prefix, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load AWS configuration: %w", err)
	}
	return &S3{bucket: bucket, prefix: prefix, client: s3.NewFromConfig(cfg)}, nil
}

func parseS3Location(location string) (bucket, prefix string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 location %q: %w", location, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 location %q want s3://bucket/prefix", location)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

func (s *S3) String() string { return "s3://" + joinPath(s.bucket, s.prefix) }

func (s *S3) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := joinPath(s.prefix, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
		}
		var re *awshttp.ResponseError
		if errors.As(err, &re) {
			return nil, &StatusError{
				Status:     re.HTTPStatusCode(),
				StatusText: http.StatusText(re.HTTPStatusCode()),
				Location:   "s3://" + s.bucket + "/" + key,
			}
		}
		return nil, err
	}
	return out.Body, nil
}

// isNoSuchKey reports whether err is a missing object. S3 compatible stores do not
// all return the modeled NoSuchKey error, some only set the error code.
func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
