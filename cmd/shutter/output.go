package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/domain"
)

// referral query Unsplash asks integrations to append to attribution links
const referral = "utm_source=shutter&utm_medium=referral"

// selection is the JSON shape printed for the chosen photo
type selection struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author"`
	AuthorURL   string `json:"author_url,omitempty"`
	HTML        string `json:"html,omitempty"`
	Attribution string `json:"attribution"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Color       string `json:"color,omitempty"`
}

// writeSelection prints the chosen photo in the configured format
func writeSelection(w io.Writer, format adapter.OutputFormat, photo domain.Photo, imageURL string) error {
	switch format {
	case adapter.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(selection{
			ID:          photo.ID,
			URL:         imageURL,
			Description: photo.Title(),
			Author:      authorName(photo),
			AuthorURL:   withReferral(photo.Author.ProfileURL),
			HTML:        withReferral(photo.Links.HTML),
			Attribution: photo.Attribution(),
			Width:       photo.Width,
			Height:      photo.Height,
			Color:       photo.Color,
		})

	case adapter.OutputMarkdown:
		alt := strings.NewReplacer("[", "(", "]", ")").Replace(photo.Title())
		_, err := fmt.Fprintf(w, "![%s](%s)\n\n%s\n", alt, imageURL, markdownCredit(photo))
		return err

	default:
		_, err := fmt.Fprintln(w, imageURL)
		return err
	}
}

func authorName(photo domain.Photo) string {
	if photo.Author.Name != "" {
		return photo.Author.Name
	}
	return photo.Author.Username
}

// markdownCredit renders "Photo by [name](profile) on [Unsplash](page)"
func markdownCredit(photo domain.Photo) string {
	name := authorName(photo)
	if profile := withReferral(photo.Author.ProfileURL); profile != "" {
		name = fmt.Sprintf("[%s](%s)", name, profile)
	}
	site := withReferral(photo.Links.HTML)
	if site == "" {
		site = "https://unsplash.com/?" + referral
	}
	return fmt.Sprintf("Photo by %s on [Unsplash](%s)", name, site)
}

// withReferral appends the referral parameters to a link, keeping any existing query
func withReferral(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if u.RawQuery == "" {
		u.RawQuery = referral
	} else {
		u.RawQuery += "&" + referral
	}
	return u.String()
}
