package unsplash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/domain"
)

const searchBody = `{
  "total": 133,
  "total_pages": 7,
  "results": [
    {
      "id": "eOLpJytrbsQ",
      "created_at": "2014-11-18T14:35:36-05:00",
      "width": 4000,
      "height": 3000,
      "color": "#A7A2A1",
      "description": "A man drinking a coffee.",
      "alt_description": null,
      "likes": 286,
      "urls": {
        "raw": "https://images.unsplash.com/photo-1416339306562-f3d12fefd36f",
        "full": "https://images.unsplash.com/photo-1416339306562-f3d12fefd36f?q=75&fm=jpg",
        "regular": "https://images.unsplash.com/photo-1416339306562-f3d12fefd36f?w=1080",
        "small": "https://images.unsplash.com/photo-1416339306562-f3d12fefd36f?w=400",
        "thumb": "https://images.unsplash.com/photo-1416339306562-f3d12fefd36f?w=200"
      },
      "links": {
        "self": "https://api.unsplash.com/photos/eOLpJytrbsQ",
        "html": "https://unsplash.com/photos/eOLpJytrbsQ",
        "download": "https://unsplash.com/photos/eOLpJytrbsQ/download",
        "download_location": "%s/photos/eOLpJytrbsQ/download"
      },
      "user": {
        "id": "Ul0QVz12Goo",
        "username": "ugmonk",
        "name": "Jeff Sheldon",
        "links": {"html": "http://unsplash.com/@ugmonk"},
        "profile_image": {"medium": "https://images.unsplash.com/profile-1441298803695-accd94000cac?w=64"}
      }
    },
    {"id": "", "width": 1, "height": 1}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-key", 5*time.Second, nil)
	c.retryDelay = time.Millisecond
	return c, srv
}

func TestSearchPhotos(t *testing.T) {
	var baseURL string
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "v1", r.Header.Get("Accept-Version"))

		q := r.URL.Query()
		assert.Equal(t, "coffee", q.Get("query"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("per_page"))
		assert.Equal(t, "landscape", q.Get("orientation"))
		assert.Empty(t, q.Get("content_filter"))

		fmt.Fprintf(w, searchBody, baseURL)
	})
	baseURL = srv.URL

	page, err := c.SearchPhotos(context.Background(), " coffee ", 2, 20, domain.SearchOptions{Orientation: "landscape"})
	require.NoError(t, err)
	assert.Equal(t, 133, page.Total)
	assert.Equal(t, 7, page.TotalPages)
	require.Len(t, page.Photos, 1, "photos without an id are dropped")

	p := page.Photos[0]
	assert.Equal(t, "eOLpJytrbsQ", p.ID)
	assert.Equal(t, "A man drinking a coffee.", p.Description)
	assert.Empty(t, p.AltDescription)
	assert.Equal(t, "Jeff Sheldon", p.Author.Name)
	assert.Equal(t, "#A7A2A1", p.Color)
	assert.Equal(t, 2014, p.CreatedAt.Year())
	assert.Equal(t, "https://images.unsplash.com/photo-1416339306562-f3d12fefd36f?w=200", p.URL(domain.PhotoModeThumb))
	assert.Equal(t, srv.URL+"/photos/eOLpJytrbsQ/download", p.Links.DownloadLocation)
}

func TestSearchPhotosClampsPerPage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		fmt.Fprint(w, `{"total":0,"total_pages":0,"results":[]}`)
	})

	page, err := c.SearchPhotos(context.Background(), "x", 0, 100, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Photos)
}

func TestSearchPhotosEmptyQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.SearchPhotos(context.Background(), "  ", 1, 20, domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearchPhotosErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		header  map[string]string
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, `{"errors":["OAuth error: The access token is invalid"]}`, domain.ErrAuthFailed},
		{"rate limited 403", http.StatusForbidden, map[string]string{"X-Ratelimit-Remaining": "0"}, `Rate Limit Exceeded`, domain.ErrRateLimited},
		{"rate limited 429", http.StatusTooManyRequests, nil, ``, domain.ErrRateLimited},
		{"forbidden", http.StatusForbidden, map[string]string{"X-Ratelimit-Remaining": "12"}, ``, domain.ErrAuthFailed},
		{"malformed json", http.StatusOK, nil, `{"results": [`, domain.ErrMalformedResponse},
		{"missing results", http.StatusOK, nil, `{"total": 3}`, domain.ErrMalformedResponse},
		{"server error", http.StatusBadGateway, nil, `bad gateway`, domain.ErrServerOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := c.SearchPhotos(context.Background(), "cat", 1, 20, domain.SearchOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestUnexpectedStatusIncludesAPIMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":["query is missing"]}`)
	})

	_, err := c.SearchPhotos(context.Background(), "cat", 1, 20, domain.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is missing")
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"total":0,"total_pages":0,"results":[]}`)
	})

	_, err := c.SearchPhotos(context.Background(), "cat", 1, 20, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, "k", time.Second, nil)
	_, err := c.SearchPhotos(context.Background(), "cat", 1, 20, domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SearchPhotos(ctx, "cat", 1, 20, domain.SearchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrackDownload(t *testing.T) {
	var hit atomic.Bool
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photos/abc/download", r.URL.Path)
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
		hit.Store(true)
		fmt.Fprint(w, `{"url":"https://image.unsplash.com/example"}`)
	})

	err := c.TrackDownload(context.Background(), domain.Photo{
		ID:    "abc",
		Links: domain.PhotoLinks{DownloadLocation: srv.URL + "/photos/abc/download"},
	})
	require.NoError(t, err)
	assert.True(t, hit.Load())
}

func TestTrackDownloadWithoutLocation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photos/xyz/download", r.URL.Path)
		fmt.Fprint(w, `{"url":"https://image.unsplash.com/example"}`)
	})

	require.NoError(t, c.TrackDownload(context.Background(), domain.Photo{ID: "xyz"}))
}

func TestTrackDownloadRejectsForeignHost(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	err := c.TrackDownload(context.Background(), domain.Photo{
		ID:    "abc",
		Links: domain.PhotoLinks{DownloadLocation: "https://evil.example.com/photos/abc/download"},
	})
	assert.Error(t, err)
}
