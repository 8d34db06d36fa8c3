package models

type WeightType string

const (
	WeightUser    WeightType = "User"
	WeightKeyword WeightType = "Keyword"
	WeightServer  WeightType = "Server"
)

type BlacklistType string

const (
	BlacklistUser    BlacklistType = "User"
	BlacklistKeyword BlacklistType = "Keyword"
)

// Weight is a scoring rule applied to ingested messages.
type Weight struct {
	ID        string     `json:"_id"`
	Type      WeightType `json:"type"`
	Value     string     `json:"value"`
	Weight    float64    `json:"weight"`
	CreatedAt int64      `json:"created_at"`
	UpdatedAt int64      `json:"updated_at"`
}

// Blacklist suppresses messages matching a user or keyword.
type Blacklist struct {
	ID        string        `json:"_id"`
	Type      BlacklistType `json:"type"`
	Value     string        `json:"value"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}
