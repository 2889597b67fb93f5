package archive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadKey(t *testing.T) {
	at := time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("UTC+8", 8*3600))

	key := UploadKey(at, "../field logs/MW 01.csv")

	assert.True(t, strings.HasPrefix(key, "uploads/2024/03/05/"), key)
	assert.True(t, strings.HasSuffix(key, "-MW_01.csv"), key)
	assert.NotEqual(t, key, UploadKey(at, "../field logs/MW 01.csv"))
}

func TestOpen(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: DriverNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = Open(context.Background(), Config{Driver: DriverFilesystem, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, store.Driver())

	_, err = Open(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestFilesystem_Put(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystem(root)
	require.NoError(t, err)

	obj := Object{
		Key:         "uploads/2024/03/05/a-log.csv",
		ContentType: "text/csv",
		Metadata:    map[string]string{"file_name": "log.csv"},
		Data:        []byte("Date/Time,Temp (C)\n"),
	}
	require.NoError(t, store.Put(context.Background(), obj))

	data, err := os.ReadFile(filepath.Join(root, "uploads", "2024", "03", "05", "a-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, obj.Data, data)

	raw, err := os.ReadFile(filepath.Join(root, "uploads", "2024", "03", "05", "a-log.csv.meta"))
	require.NoError(t, err)
	var meta metaFile
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "text/csv", meta.ContentType)
	assert.Equal(t, int64(len(obj.Data)), meta.Size)
	assert.Equal(t, "log.csv", meta.Metadata["file_name"])

	err = store.Put(context.Background(), obj)
	assert.ErrorContains(t, err, "already exists")
}

func TestFilesystem_RejectsUnsafeKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "/etc/passwd", "../outside", "a/../../outside"} {
		err := store.Put(context.Background(), Object{Key: key, Data: []byte("x")})
		assert.Error(t, err, "key %q", key)
	}
}

// recordingTransport answers every S3 request with 200 and keeps the requests.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
		req.Body.Close()
	}
	rt.mu.Lock()
	rt.requests = append(rt.requests, req)
	rt.mu.Unlock()

	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}
	body := ""
	if status != http.StatusOK {
		body = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>PreconditionFailed</Code><Message>exists</Message></Error>`
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Etag": {`"etag"`}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func newTestS3(t *testing.T, rt *recordingTransport) *S3 {
	t.Helper()
	store, err := NewS3(context.Background(), Config{
		Bucket:          "uploads",
		Region:          "us-east-1",
		Endpoint:        "https://s3.test.local",
		PathStyle:       true,
		AccessKeyID:     "AKIAEXAMPLEEXAMPLE00",
		SecretAccessKey: "secret",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.RetryMaxAttempts = 1
	})
	require.NoError(t, err)
	return store
}

func TestS3_Put(t *testing.T) {
	rt := &recordingTransport{}
	store := newTestS3(t, rt)
	assert.Equal(t, DriverS3, store.Driver())

	err := store.Put(context.Background(), Object{
		Key:         "uploads/2024/03/05/a-log.txt",
		ContentType: "text/plain",
		Metadata:    map[string]string{"file_name": "log.txt"},
		Data:        []byte("Date and Time\tTemperature (C)\n"),
	})
	require.NoError(t, err)

	require.Len(t, rt.requests, 1)
	req := rt.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/uploads/uploads/2024/03/05/a-log.txt", req.URL.Path)
	assert.Equal(t, "*", req.Header.Get("If-None-Match"))
	assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))
}

func TestS3_PutExisting(t *testing.T) {
	rt := &recordingTransport{status: http.StatusPreconditionFailed}
	store := newTestS3(t, rt)

	err := store.Put(context.Background(), Object{Key: "uploads/a.csv", Data: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://uploads/uploads/a.csv")
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), Config{})
	assert.Error(t, err)
}
