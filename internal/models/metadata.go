package models

// LinkMetadata holds the best-effort scrape result for a product URL.
type LinkMetadata struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
	SiteName    string `json:"site_name"`
}

// FetchMetadataRequest asks the server to scrape a product URL.
type FetchMetadataRequest struct {
	URL string `json:"url" validate:"required,url"`
}
