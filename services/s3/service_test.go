package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	path    string
	ctype   string
	body    []byte
	failing bool
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	f.path = r.URL.Path
	f.ctype = r.Header.Get("Content-Type")
	f.body, _ = io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
}

func newTestService(t *testing.T, bucket *fakeBucket) *S3Service {
	t.Helper()
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	svc, err := NewS3Service(context.Background(), &S3ClientConfig{
		Bucket:    "reports",
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	}, nil)
	require.NoError(t, err)
	return svc
}

func TestPutUploadsToBucket(t *testing.T) {
	bucket := &fakeBucket{}
	svc := newTestService(t, bucket)

	location, err := svc.Put(context.Background(), "reports/abc/1.pdf", "application/pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/reports/abc/1.pdf", location)
	assert.Equal(t, "/reports/reports/abc/1.pdf", bucket.path)
	assert.Equal(t, "application/pdf", bucket.ctype)
	assert.Contains(t, string(bucket.body), "%PDF-1.3")
}

func TestPutReportsUploadErrors(t *testing.T) {
	bucket := &fakeBucket{failing: true}
	svc := newTestService(t, bucket)

	_, err := svc.Put(context.Background(), "k.pdf", "application/pdf", []byte("x"))
	assert.Error(t, err)
}

func TestNewS3ServiceRequiresBucket(t *testing.T) {
	_, err := NewS3Service(context.Background(), &S3ClientConfig{Region: "us-east-1"}, nil)
	assert.Error(t, err)
}
