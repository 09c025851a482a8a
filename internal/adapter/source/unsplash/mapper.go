package unsplash

import (
	"time"

	"github.com/mmcdole/shutter/internal/domain"
)

// MapPhotos converts API photos to domain photos, skipping entries without an ID
func MapPhotos(results []Photo) []domain.Photo {
	photos := make([]domain.Photo, 0, len(results))
	for _, p := range results {
		if p.ID == "" {
			continue
		}
		photos = append(photos, mapPhoto(p))
	}
	return photos
}

func mapPhoto(p Photo) domain.Photo {
	return domain.Photo{
		ID:             p.ID,
		Description:    deref(p.Description),
		AltDescription: deref(p.AltDescription),
		Width:          p.Width,
		Height:         p.Height,
		Color:          p.Color,
		Likes:          p.Likes,
		CreatedAt:      parseTime(p.CreatedAt),
		URLs: domain.PhotoURLs{
			Raw:     p.URLs.Raw,
			Full:    p.URLs.Full,
			Regular: p.URLs.Regular,
			Small:   p.URLs.Small,
			Thumb:   p.URLs.Thumb,
		},
		Links: domain.PhotoLinks{
			Self:             p.Links.Self,
			HTML:             p.Links.HTML,
			Download:         p.Links.Download,
			DownloadLocation: p.Links.DownloadLocation,
		},
		Author: domain.Author{
			ID:           p.User.ID,
			Username:     p.User.Username,
			Name:         p.User.Name,
			ProfileURL:   p.User.Links.HTML,
			ProfileImage: p.User.ProfileImage.Medium,
		},
	}
}

// MapSearchPage converts a search response to a domain page
func MapSearchPage(resp SearchResponse) *domain.SearchPage {
	return &domain.SearchPage{
		Photos:     MapPhotos(resp.Results),
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
