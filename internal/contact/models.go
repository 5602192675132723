package contact

import "github.com/zapline/whatsapp-server/internal/client"

// ContactsResponse represents the response for contact listing
type ContactsResponse struct {
	Success  bool             `json:"success"`
	Contacts []client.Contact `json:"contacts"`
	Total    int              `json:"total"`
}
