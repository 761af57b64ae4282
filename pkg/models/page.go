package models

// PageContent represents the outcome of fetching a single page. Fetch
// failures land in Error rather than aborting the batch, so callers always
// receive one PageContent per requested URL.
type PageContent struct {
	URL        string `json:"url"`
	FinalURL   string `json:"final_url"`
	StatusCode int    `json:"status_code,omitempty"`
	HTML       string `json:"html,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Success reports whether the page was fetched and carries content
func (p *PageContent) Success() bool {
	return p.Error == "" && p.HTML != ""
}
