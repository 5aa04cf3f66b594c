package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "properties/abc-123/1700000000123_my_flat__1_.jpg", ObjectKey("abc-123", "my flat (1).jpg", now))
	assert.Equal(t, "properties/new/1700000000123_a_b_.png", ObjectKey("new", "a/b?.png", now))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "a-b.c_d", CleanName("a-b.c d"))
	assert.Equal(t, ".._x", CleanName("../x"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/jpeg"))
	assert.True(t, IsImage(" Image/PNG"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage(""))
}

// fakeS3 records the requests it receives and answers like S3 does.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recorded
}

type recorded struct {
	method string
	path   string
	ctype  string
	body   []byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, r.Header.Get("Content-Type"), body})
	f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func testStore(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		Region:    "ap-south-1",
		Bucket:    "listings",
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  srv.URL,
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3PutAndDelete(t *testing.T) {
	store, fake := testStore(t)
	ctx := context.Background()
	data := []byte("\x89PNG fake image")

	key := "properties/p1/1_a.png"
	u, err := store.Put(ctx, key, "image/png", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	gotKey, ok := store.KeyFromURL(u)
	require.True(t, ok, "url %s", u)
	assert.Equal(t, key, gotKey)

	require.NoError(t, store.Delete(ctx, key))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.requests, 2)
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
	assert.Equal(t, "/listings/"+key, fake.requests[0].path)
	assert.Equal(t, "image/png", fake.requests[0].ctype)
	assert.Equal(t, data, fake.requests[0].body)
	assert.Equal(t, http.MethodDelete, fake.requests[1].method)
}

func TestS3PublicURL(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3Config{
		Region: "ap-south-1", Bucket: "listings", AccessKey: "k", SecretKey: "s",
	})
	require.NoError(t, err)

	key, ok := store.KeyFromURL("https://listings.s3.ap-south-1.amazonaws.com/properties/p1/1_a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "properties/p1/1_a.jpg", key)

	_, ok = store.KeyFromURL("https://example.com/a.jpg")
	assert.False(t, ok)
	_, ok = store.KeyFromURL("https://listings.s3.ap-south-1.amazonaws.com/")
	assert.False(t, ok)
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Region: "ap-south-1"})
	assert.Error(t, err)
}
