package domain

import (
	"fmt"
	"strings"
	"time"
)

// PhotoMode selects which rendition of a photo a consumer wants
type PhotoMode string

const (
	PhotoModeRaw     PhotoMode = "raw"
	PhotoModeFull    PhotoMode = "full"
	PhotoModeRegular PhotoMode = "regular"
	PhotoModeSmall   PhotoMode = "small"
	PhotoModeThumb   PhotoMode = "thumb"
)

// IsPhotoMode reports whether s names a known rendition
func IsPhotoMode(s string) bool {
	switch PhotoMode(strings.ToLower(strings.TrimSpace(s))) {
	case PhotoModeRaw, PhotoModeFull, PhotoModeRegular, PhotoModeSmall, PhotoModeThumb:
		return true
	}
	return false
}

// ParsePhotoMode converts a config string into a PhotoMode, falling back to regular
func ParsePhotoMode(s string) PhotoMode {
	switch PhotoMode(strings.ToLower(strings.TrimSpace(s))) {
	case PhotoModeRaw:
		return PhotoModeRaw
	case PhotoModeFull:
		return PhotoModeFull
	case PhotoModeSmall:
		return PhotoModeSmall
	case PhotoModeThumb:
		return PhotoModeThumb
	default:
		return PhotoModeRegular
	}
}

// PhotoURLs holds the image URLs at each resolution
type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// PhotoLinks holds the page and API links of a photo
type PhotoLinks struct {
	Self             string `json:"self"`
	HTML             string `json:"html"`
	Download         string `json:"download"`
	DownloadLocation string `json:"download_location"`
}

// Author is the photographer credited for a photo
type Author struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	ProfileURL   string `json:"profile_url"`
	ProfileImage string `json:"profile_image"`
}

// Photo is a single search result. ID is the identity; every other field is
// payload carried through unchanged.
type Photo struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	AltDescription string     `json:"alt_description"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Color          string     `json:"color"` // Dominant color as #RRGGBB
	Likes          int        `json:"likes"`
	CreatedAt      time.Time  `json:"created_at"`
	URLs           PhotoURLs  `json:"urls"`
	Links          PhotoLinks `json:"links"`
	Author         Author     `json:"user"`
}

// Title returns the best available display name for the photo
func (p Photo) Title() string {
	if p.Description != "" {
		return p.Description
	}
	if p.AltDescription != "" {
		return p.AltDescription
	}
	return "Untitled"
}

// URL returns the image URL for the given mode
func (p Photo) URL(mode PhotoMode) string {
	switch mode {
	case PhotoModeRaw:
		return p.URLs.Raw
	case PhotoModeFull:
		return p.URLs.Full
	case PhotoModeSmall:
		return p.URLs.Small
	case PhotoModeThumb:
		return p.URLs.Thumb
	default:
		return p.URLs.Regular
	}
}

// Aspect returns width/height, or 0 when dimensions are unknown
func (p Photo) Aspect() float64 {
	if p.Height == 0 {
		return 0
	}
	return float64(p.Width) / float64(p.Height)
}

// Dimensions returns a "6000×4000" style size label
func (p Photo) Dimensions() string {
	if p.Width == 0 || p.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%d×%d", p.Width, p.Height)
}

// Attribution returns the credit line required when a photo is displayed
func (p Photo) Attribution() string {
	name := p.Author.Name
	if name == "" {
		name = p.Author.Username
	}
	return fmt.Sprintf("Photo by %s on Unsplash", name)
}

// SearchPage is one page of search results
type SearchPage struct {
	Photos     []Photo `json:"photos"`
	Total      int     `json:"total"`       // Total matches reported by the API (0 if unknown)
	TotalPages int     `json:"total_pages"` // Total pages reported by the API (0 if unknown)
}

// SearchOptions are the optional filters applied to every search
type SearchOptions struct {
	Orientation   string // landscape, portrait, squarish
	ContentFilter string // low, high
}
