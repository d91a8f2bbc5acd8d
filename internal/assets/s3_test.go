package assets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// capturedRequest records what the fake S3 endpoint received.
type capturedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// fakeS3 serves just enough of the S3 REST surface for Put and Delete.
func fakeS3(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		out := make([]capturedRequest, len(requests))
		copy(out, requests)
		return out
	}
}

func testS3Assets(t *testing.T, endpoint string, cfg S3Config) *S3Assets {
	t.Helper()
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
	return NewS3AssetsWithClient(client, "test-bucket", cfg)
}

func TestS3Assets_PutUploadsUnderPosterKey(t *testing.T) {
	srv, captured := fakeS3(t)
	store := testS3Assets(t, srv.URL, DefaultS3Config())

	ref, err := store.Put(context.Background(), "poster.png", "image/png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !strings.HasPrefix(ref, "posters/") || !strings.HasSuffix(ref, "-poster.png") {
		t.Errorf("unexpected reference: %q", ref)
	}

	reqs := captured()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].method != http.MethodPut {
		t.Errorf("method mismatch: %s", reqs[0].method)
	}
	if want := "/test-bucket/" + ref; reqs[0].path != want {
		t.Errorf("path mismatch: got %q, want %q", reqs[0].path, want)
	}
	if reqs[0].contentType != "image/png" {
		t.Errorf("content type not forwarded: %q", reqs[0].contentType)
	}
}

func TestS3Assets_PublicBaseURLRoundTrip(t *testing.T) {
	srv, captured := fakeS3(t)
	cfg := DefaultS3Config()
	cfg.PublicBaseURL = "https://cdn.example.com"
	store := testS3Assets(t, srv.URL, cfg)

	ref, err := store.Put(context.Background(), "poster.png", "image/png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !strings.HasPrefix(ref, "https://cdn.example.com/posters/") {
		t.Fatalf("reference should carry the public base URL: %q", ref)
	}

	// Delete must strip the public prefix back off to address the object.
	if err := store.Delete(context.Background(), ref); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	reqs := captured()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	key := strings.TrimPrefix(ref, "https://cdn.example.com/")
	if want := "/test-bucket/" + key; reqs[1].path != want {
		t.Errorf("delete addressed %q, want %q", reqs[1].path, want)
	}
	if reqs[1].method != http.MethodDelete {
		t.Errorf("method mismatch: %s", reqs[1].method)
	}
}
