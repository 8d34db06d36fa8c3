package models

type ProviderType string

const (
	ProviderDiscord  ProviderType = "Discord"
	ProviderTelegram ProviderType = "Telegram"
)

type ServerType string

const (
	ServerDCServer  ServerType = "DC Server"
	ServerTGChannel ServerType = "TG Channel"
	ServerTGGroup   ServerType = "TG Group"
)

type ChannelType string

const (
	ChannelDCChannel ChannelType = "DC Channel"
	ChannelTGTopic   ChannelType = "TG Topic"
)

// ProviderConfig holds the upstream API credentials. On the wire these live
// nested under "config", not at the top level of the provider record.
type ProviderConfig struct {
	APIID   int64  `json:"api_id"`
	APIHash string `json:"api_hash"`
}

type Provider struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	Type      ProviderType   `json:"type"`
	Config    ProviderConfig `json:"config"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

type Server struct {
	ID           string     `json:"_id"`
	ProviderID   string     `json:"provider_id"`
	ProviderName string     `json:"provider_name"`
	Type         ServerType `json:"type"`
	ServerID     string     `json:"server_id"`
	ServerName   string     `json:"server_name"`
	CreatedAt    int64      `json:"created_at"`
	UpdatedAt    int64      `json:"updated_at"`
}

type Channel struct {
	ID           string      `json:"_id"`
	ProviderID   string      `json:"provider_id"`
	ProviderName string      `json:"provider_name"`
	Type         ChannelType `json:"type"`
	ServerID     string      `json:"server_id"`
	ServerName   string      `json:"server_name"`
	ChannelID    string      `json:"channel_id"`
	ChannelName  string      `json:"channel_name"`
	CreatedAt    int64       `json:"created_at"`
	UpdatedAt    int64       `json:"updated_at"`
}
