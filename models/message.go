package models

// ResponseType discriminates the structured chat response
type ResponseType string

const (
	ResponseText  ResponseType = "text"
	ResponseImage ResponseType = "image"
	ResponseVideo ResponseType = "video"
)

// ChatRequest is the body posted to the backend chat endpoint
type ChatRequest struct {
	Message   string    `json:"message"`
	Model     string    `json:"model"`
	MediaType MediaType `json:"mediaType"`
}

// ChatResponse is the structured reply of the backend chat endpoint.
// Exactly one of Response, Images, Videos or Error is meaningful.
type ChatResponse struct {
	Type     ResponseType `json:"type,omitempty"`
	Response string       `json:"response,omitempty"`
	Images   []string     `json:"images,omitempty"`
	Videos   []string     `json:"videos,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// FirstImage returns the URL to embed for an image response
func (r *ChatResponse) FirstImage() (string, bool) {
	if r == nil || r.Type != ResponseImage || len(r.Images) == 0 {
		return "", false
	}
	return r.Images[0], true
}

// FirstVideo returns the URL to embed for a video response
func (r *ChatResponse) FirstVideo() (string, bool) {
	if r == nil || r.Type != ResponseVideo || len(r.Videos) == 0 {
		return "", false
	}
	return r.Videos[0], true
}

// FallbackText is the text shown when a response has no media to embed
func (r *ChatResponse) FallbackText() string {
	if r == nil {
		return "An unexpected error occurred."
	}
	if r.Response != "" {
		return r.Response
	}
	if r.Error != "" {
		return r.Error
	}
	return "An unexpected error occurred."
}
