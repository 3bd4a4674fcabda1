package miniflux

// entriesResponse is the body of GET /v1/entries.
type entriesResponse struct {
	Total   int        `json:"total"`
	Entries []apiEntry `json:"entries"`
}

type apiEntry struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"published_at"`
	Feed        apiFeed `json:"feed"`
}

type apiFeed struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	SiteURL  string       `json:"site_url"`
	Category *apiCategory `json:"category"`
}

type apiCategory struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type apiError struct {
	ErrorMessage string `json:"error_message"`
}
