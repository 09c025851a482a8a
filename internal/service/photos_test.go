package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/store"
)

type fakeSource struct {
	calls   int
	err     error
	tracked []string
}

func (f *fakeSource) SearchPhotos(_ context.Context, query string, page, perPage int, _ domain.SearchOptions) (*domain.SearchPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchPage{
		Photos:     []domain.Photo{{ID: query + "-1"}, {ID: query + "-2"}},
		Total:      40,
		TotalPages: 2,
	}, nil
}

func (f *fakeSource) TrackDownload(_ context.Context, photo domain.Photo) error {
	f.tracked = append(f.tracked, photo.ID)
	return f.err
}

func newService(t *testing.T, src *fakeSource, ttl time.Duration) *PhotoService {
	t.Helper()
	st, err := store.NewPhotoStore("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewPhotoService(src, st, domain.SearchOptions{}, ttl, nil)
}

func TestSearchUsesCache(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src, time.Hour)

	first, err := svc.Search(context.Background(), "cats", 1, 20)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), " CATS ", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first.Photos, second.Photos)

	_, err = svc.Search(context.Background(), "cats", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "other pages are separate entries")
}

func TestSearchWithoutCache(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src, 0)

	for i := 0; i < 2; i++ {
		_, err := svc.Search(context.Background(), "cats", 1, 20)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls)
}

func TestSearchErrorsAreNotCached(t *testing.T) {
	src := &fakeSource{err: domain.ErrRateLimited}
	svc := newService(t, src, time.Hour)

	_, err := svc.Search(context.Background(), "cats", 1, 20)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Empty(t, svc.RecentQueries(10))

	src.err = nil
	page, err := svc.Search(context.Background(), "cats", 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Photos, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src, time.Hour)

	_, err := svc.Search(context.Background(), "   ", 1, 20)
	assert.True(t, errors.Is(err, domain.ErrEmptyQuery))
	assert.Zero(t, src.calls)
}

func TestHistoryRecordsFirstPagesOnly(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src, time.Hour)

	_, err := svc.Search(context.Background(), "forest", 1, 20)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "ocean", 2, 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"forest"}, svc.RecentQueries(10))

	require.NoError(t, svc.ClearHistory())
	assert.Empty(t, svc.RecentQueries(10))
}

func TestSuggest(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src, time.Hour)

	for _, q := range []string{"mountain lake", "mountains", "city night", "moon"} {
		_, err := svc.Search(context.Background(), q, 1, 20)
		require.NoError(t, err)
		// History ordering needs distinct timestamps
		time.Sleep(time.Millisecond)
	}

	got := svc.Suggest("mount", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "mountains", got[0], "closer matches first")
	assert.Equal(t, "mountain lake", got[1])

	assert.Empty(t, svc.Suggest("moon", 5), "exact match is not suggested")
	assert.Equal(t, []string{"moon", "city night"}, svc.Suggest("", 2))
}

func TestTrackDownload(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src, time.Hour)

	require.NoError(t, svc.TrackDownload(context.Background(), domain.Photo{ID: "p1"}))
	assert.Equal(t, []string{"p1"}, src.tracked)
}

func TestNilStore(t *testing.T) {
	src := &fakeSource{}
	svc := NewPhotoService(src, nil, domain.SearchOptions{}, time.Hour, nil)

	_, err := svc.Search(context.Background(), "cats", 1, 20)
	require.NoError(t, err)
	assert.Nil(t, svc.RecentQueries(5))
	assert.Nil(t, svc.Suggest("c", 5))
	assert.NoError(t, svc.ClearHistory())
	svc.PurgeExpired()
}

func TestSearchCacheKey(t *testing.T) {
	a := SearchCacheKey("Cats", 1, 20, domain.SearchOptions{})
	assert.Equal(t, a, SearchCacheKey(" cats", 1, 20, domain.SearchOptions{}))
	assert.NotEqual(t, a, SearchCacheKey("cats", 2, 20, domain.SearchOptions{}))
	assert.NotEqual(t, a, SearchCacheKey("cats", 1, 20, domain.SearchOptions{Orientation: "portrait"}))
	assert.Contains(t, a, PrefixSearch)
}
