package unsplash

// SearchResponse is the payload of GET /search/photos
type SearchResponse struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Photo `json:"results"`
}

// Photo is a photo object as returned by the Unsplash API
type Photo struct {
	ID             string  `json:"id"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	PromotedAt     string  `json:"promoted_at"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Color          string  `json:"color"`
	BlurHash       string  `json:"blur_hash"`
	Description    *string `json:"description"`
	AltDescription *string `json:"alt_description"`
	Likes          int     `json:"likes"`
	LikedByUser    bool    `json:"liked_by_user"`
	URLs           URLs    `json:"urls"`
	Links          Links   `json:"links"`
	User           User    `json:"user"`
}

// URLs holds the image URL at each rendition
type URLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// Links holds the API and web links for a photo
type Links struct {
	Self             string `json:"self"`
	HTML             string `json:"html"`
	Download         string `json:"download"`
	DownloadLocation string `json:"download_location"`
}

// User is the photographer of a photo
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Name         string       `json:"name"`
	Links        UserLinks    `json:"links"`
	ProfileImage ProfileImage `json:"profile_image"`
}

// UserLinks holds the links of a user profile
type UserLinks struct {
	Self   string `json:"self"`
	HTML   string `json:"html"`
	Photos string `json:"photos"`
	Likes  string `json:"likes"`
}

// ProfileImage holds profile picture URLs
type ProfileImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// ErrorResponse is returned by the API on failures
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// DownloadResponse is the payload of GET /photos/:id/download
type DownloadResponse struct {
	URL string `json:"url"`
}
