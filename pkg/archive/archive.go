// Package archive keeps the raw bytes of uploaded instrument logs so a parse
// can be repeated or audited later.
package archive

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a storage backend.
type Driver string

const (
	DriverNone       Driver = "none"
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// Object is a stored upload.
type Object struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Data        []byte
}

// Store persists raw uploads. Keys are slash separated and never overwrite an
// existing object.
type Store interface {
	Put(ctx context.Context, obj Object) error
	Driver() Driver
}

// Config holds construction parameters for Open.
type Config struct {
	Driver Driver
	Dir    string

	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Open builds the store selected by cfg.Driver. DriverNone returns a nil
// Store, which callers treat as archiving disabled.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverFilesystem:
		return NewFilesystem(cfg.Dir)
	case DriverS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadKey returns a unique key for an upload received at t, grouped by UTC
// date: uploads/2024/03/05/<uuid>-<name>.
func UploadKey(t time.Time, fileName string) string {
	name := unsafeKeyChars.ReplaceAllString(path.Base(fileName), "_")
	if name == "" || name == "." || name == "_" {
		name = "upload"
	}
	return path.Join("uploads", t.UTC().Format("2006/01/02"), uuid.NewString()+"-"+name)
}
