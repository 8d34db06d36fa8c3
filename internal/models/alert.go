package models

// ValueType drives the shape an alert filter value takes and which operators
// apply to it.
type ValueType string

const (
	TypeObjectID ValueType = "objectid"
	TypeString   ValueType = "string"
	TypeDateTime ValueType = "datetime"
	TypeSearch   ValueType = "search"
)

type Operator string

const (
	OpEqual   Operator = "equal"
	OpIn      Operator = "in"
	OpWithin  Operator = "within"
	OpContain Operator = "contain"
)

// Relative time units accepted by the received_at window filter.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
	UnitMonths  = "months"
)

// AlertFilter is one compiled, server-ready filter condition.
type AlertFilter struct {
	Field    string    `json:"field"`
	Type     ValueType `json:"type"`
	Operator Operator  `json:"operator"`
	Value    any       `json:"value"`
}

// AlertWindow is the compiled value of a received_at filter: the last Value
// Units ending at Start (millisecond epoch, stamped at compile time).
type AlertWindow struct {
	Start int64  `json:"start"`
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// AlertRule is a single count-based threshold; an alert carries exactly one.
type AlertRule struct {
	Type     string   `json:"type"`
	Operator Operator `json:"operator"`
	Times    float64  `json:"times"`
}

type Alert struct {
	ID            string        `json:"_id"`
	Name          string        `json:"name"`
	FrequencyType string        `json:"frequency_type"`
	Filters       []AlertFilter `json:"filters"`
	Rules         []AlertRule   `json:"rules"`
	LastAlertAt   int64         `json:"last_alert_at"`
	CreatedAt     int64         `json:"created_at"`
	UpdatedAt     int64         `json:"updated_at"`
}

type AlertHistory struct {
	ID        string `json:"_id"`
	AlertAt   int64  `json:"alert_at"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// AlertChannel is a destination channel alert notifications are sent to.
type AlertChannel struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	ChannelID string `json:"channel_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// AlertChannelInfo is the alert-channel setup form payload.
type AlertChannelInfo struct {
	Name      string `json:"name"`
	ChannelID string `json:"channel_id"`
}

// AlertFilterForm is one editable filter row. Key is a client-assigned stable
// identity, not a server field.
type AlertFilterForm struct {
	Key      string    `json:"key"`
	Field    string    `json:"field,omitempty"`
	Type     ValueType `json:"type,omitempty"`
	Operator Operator  `json:"operator,omitempty"`
	Value    any       `json:"value,omitempty"`
}

// AlertInfo carries the scalar half of the alert edit form: name, frequency,
// and the single rule's parts. Times stays a string until compile.
type AlertInfo struct {
	ID            string   `json:"_id,omitempty"`
	Name          string   `json:"name"`
	FrequencyType string   `json:"frequency_type"`
	Type          string   `json:"type"`
	Operator      Operator `json:"operator"`
	Times         string   `json:"times"`
}

// AlertRequest is the save/update payload the platform expects.
type AlertRequest struct {
	Name          string        `json:"name"`
	FrequencyType string        `json:"frequency_type"`
	Filters       []AlertFilter `json:"filters"`
	Rules         []AlertRule   `json:"rules"`
}
