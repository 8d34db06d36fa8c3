package models

// PageContext describes one server-paginated window of a listing endpoint.
// It is only ever populated from a server response, never computed locally.
type PageContext struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
}

// DateRange is a millisecond-epoch interval used in message filters.
type DateRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// SelectValue is the value/label pair the edit forms use for reference fields.
type SelectValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ActionType distinguishes create from update when saving an entity.
type ActionType int

const (
	ActionCreate ActionType = iota + 1
	ActionUpdate
)
