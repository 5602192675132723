package media

// SendMediaRequest represents a request to send media
type SendMediaRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Number    string `json:"number" binding:"required"`
	Media     string `json:"media"`
	URL       string `json:"url"`
	Caption   string `json:"caption"`
	FileName  string `json:"fileName"`
}
