package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/domain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T, dir string) (*PhotoStore, *clock) {
	t.Helper()
	s, err := NewPhotoStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, c
}

func samplePage() *domain.SearchPage {
	return &domain.SearchPage{
		Photos: []domain.Photo{
			{ID: "a", Description: "first", Author: domain.Author{Name: "Ann"}},
			{ID: "b", Description: "second"},
		},
		Total:      2,
		TotalPages: 1,
	}
}

func TestSearchPageRoundTrip(t *testing.T) {
	for name, dir := range map[string]string{"memory": "", "bolt": t.TempDir()} {
		t.Run(name, func(t *testing.T) {
			s, c := newTestStore(t, dir)

			_, ok := s.GetSearchPage("k")
			assert.False(t, ok)

			require.NoError(t, s.SaveSearchPage("k", samplePage(), time.Hour))
			page, ok := s.GetSearchPage("k")
			require.True(t, ok)
			require.Len(t, page.Photos, 2)
			assert.Equal(t, "Ann", page.Photos[0].Author.Name)

			c.t = c.t.Add(2 * time.Hour)
			_, ok = s.GetSearchPage("k")
			assert.False(t, ok, "expired entries are misses")
		})
	}
}

func TestSaveSearchPageZeroTTL(t *testing.T) {
	s, _ := newTestStore(t, "")
	require.NoError(t, s.SaveSearchPage("k", samplePage(), 0))
	_, ok := s.GetSearchPage("k")
	assert.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPhotoStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveSearchPage("k", samplePage(), 24*time.Hour))
	require.NoError(t, s.RecordQuery("mountains"))
	require.NoError(t, s.Close())

	s2, err := NewPhotoStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	page, ok := s2.GetSearchPage("k")
	require.True(t, ok)
	assert.Equal(t, "a", page.Photos[0].ID)

	recent, err := s2.RecentQueries(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"mountains"}, recent)
}

func TestPurgeExpired(t *testing.T) {
	for name, dir := range map[string]string{"memory": "", "bolt": t.TempDir()} {
		t.Run(name, func(t *testing.T) {
			s, c := newTestStore(t, dir)
			require.NoError(t, s.SaveSearchPage("short", samplePage(), time.Minute))
			require.NoError(t, s.SaveSearchPage("long", samplePage(), time.Hour))

			c.t = c.t.Add(10 * time.Minute)
			n, err := s.PurgeExpired()
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, ok := s.GetSearchPage("long")
			assert.True(t, ok)
		})
	}
}

func TestRecordQueryOrdersByRecency(t *testing.T) {
	for name, dir := range map[string]string{"memory": "", "bolt": t.TempDir()} {
		t.Run(name, func(t *testing.T) {
			s, c := newTestStore(t, dir)
			for _, q := range []string{"cats", "dogs", "  ", "birds", "Cats"} {
				require.NoError(t, s.RecordQuery(q))
				c.t = c.t.Add(time.Second)
			}

			recent, err := s.RecentQueries(0)
			require.NoError(t, err)
			assert.Equal(t, []string{"Cats", "birds", "dogs"}, recent)

			recent, err = s.RecentQueries(2)
			require.NoError(t, err)
			assert.Equal(t, []string{"Cats", "birds"}, recent)
		})
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s, c := newTestStore(t, "")
	for i := 0; i < maxHistory+5; i++ {
		require.NoError(t, s.RecordQuery(time.Duration(i).String()))
		c.t = c.t.Add(time.Second)
	}
	recent, err := s.RecentQueries(0)
	require.NoError(t, err)
	assert.Len(t, recent, maxHistory)
	assert.Equal(t, time.Duration(maxHistory+4).String(), recent[0])
}

func TestClearHistory(t *testing.T) {
	s, _ := newTestStore(t, t.TempDir())
	require.NoError(t, s.RecordQuery("forest"))
	require.NoError(t, s.SaveSearchPage("k", samplePage(), time.Hour))
	require.NoError(t, s.ClearHistory())

	recent, err := s.RecentQueries(0)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, ok := s.GetSearchPage("k")
	assert.True(t, ok, "clearing history keeps cached pages")
}
