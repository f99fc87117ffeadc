// Package datasource retrieves the bot's log files from wherever they are published:
// a web server, a local folder or an S3 bucket.
//
// The location is a single base path injected by configuration; resources are
// addressed by their file name relative to it.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound is matched by errors reporting a missing resource.
var ErrNotFound = errors.New("resource not found")

// StatusError reports a non-success response from a remote source.
type StatusError struct {
	Status     int
	StatusText string
	Location   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.Location, e.Status, e.StatusText)
}

// Is makes a 404 match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Source opens resources by name.
type Source interface {
	// Open returns the content of the named resource. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// String returns the base location, for messages.
	String() string
}

// New returns the Source for basePath, chosen by its scheme:
// "http://" and "https://" for a web server, "s3://bucket/prefix" for S3, anything
// else is a local directory.
//
// Web requests are logged to the zerolog logger carried by ctx.
func New(ctx context.Context, basePath string) (Source, error) {
	switch {
	case basePath == "":
		return nil, errors.New("empty data base path")
	case strings.HasPrefix(basePath, "http://"), strings.HasPrefix(basePath, "https://"):
		return NewHTTP(basePath, newClient(*zerolog.Ctx(ctx))), nil
	case strings.HasPrefix(basePath, "s3://"):
		return NewS3(ctx, basePath)
	default:
		return NewDir(strings.TrimPrefix(basePath, "file://")), nil
	}
}

// joinPath joins a base and a resource name with exactly one slash between them.
func joinPath(base, name string) string {
	b := strings.TrimRight(base, "/")
	n := strings.TrimLeft(name, "/")
	if b == "" {
		return n
	}
	return b + "/" + n
}
