package sink

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

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		if r.URL.Path != "/frames" && r.URL.Path != "/frames/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func testS3Config(endpoint, bucket string) S3Config {
	return S3Config{
		Bucket:    bucket,
		Prefix:    "run-1",
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "key",
		SecretKey: "secret",
		PathStyle: true,
	}
}

func TestS3Put(t *testing.T) {
	fake, srv := newFakeS3(t)
	ctx := context.Background()

	store, err := NewS3(ctx, testS3Config(srv.URL, "frames"))
	require.NoError(t, err)

	loc, err := store.Put(ctx, FrameName(4), "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "s3://frames/run-1/output_4.png", loc)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []byte("png-bytes"), fake.objects["/frames/run-1/output_4.png"])
	assert.Equal(t, "image/png", fake.types["/frames/run-1/output_4.png"])
}

func TestS3MissingBucket(t *testing.T) {
	_, srv := newFakeS3(t)
	_, err := NewS3(context.Background(), testS3Config(srv.URL, "missing"))
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}
