package models

// Message is one ingested platform message as returned by the listing endpoint.
type Message struct {
	ID                string  `json:"_id"`
	ProviderID        string  `json:"provider_id"`
	ProviderName      string  `json:"provider_name"`
	ServerID          string  `json:"server_id"`
	ServerName        string  `json:"server_name"`
	ChannelID         string  `json:"channel_id,omitempty"`
	ChannelName       string  `json:"channel_name,omitempty"`
	ReceivedAt        int64   `json:"received_at"`
	AuthorID          string  `json:"author_id"`
	AuthorUsername    string  `json:"author_username,omitempty"`
	AuthorDisplayName string  `json:"author_display_name,omitempty"`
	Content           string  `json:"content"`
	Weight            float64 `json:"weight"`
	CreatedAt         int64   `json:"created_at"`
	UpdatedAt         int64   `json:"updated_at"`
}
