package messaging

// SendMessageRequest represents a request to send a text message
type SendMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Number    string `json:"number" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
