package api

import (
	"reflect"
	"strings"

	"monitor-console/internal/importer"
	"monitor-console/internal/models"
)

// Entity describes one import/export-capable configuration: its upstream
// endpoints, the import body key, and the shared field set used by both the
// export projection and the import schema.
type Entity struct {
	Name   string
	Base   string
	List   string
	Key    string
	Fields []string
	Schema importer.FieldSchema
}

// Upstream alert and message endpoints.
const (
	alertBasePath        = "/alert"
	alertListPath        = "/alerts"
	alertChannelBasePath = "/alert_channel"
	alertChannelListPath = "/alert_channels"
	alertHistoryListPath = "/alert/histories"
	messageListPath      = "/messages"
)

// Entities lists the five configurations the import/export screens offer.
// Field sets come from the model structs' json tags; skips drop the hydrated
// display columns that never round-trip through a sheet.
func Entities() []Entity {
	providerFields := fieldsOf(models.Provider{})
	serverFields := fieldsOf(models.Server{}, "provider_name")
	channelFields := fieldsOf(models.Channel{}, "provider_id", "provider_name", "server_name")
	weightFields := fieldsOf(models.Weight{})
	blacklistFields := fieldsOf(models.Blacklist{})

	return []Entity{
		{
			Name:   "providers",
			Base:   "/provider",
			List:   "/providers",
			Key:    "providers",
			Fields: providerFields,
			Schema: importer.FieldSchema{
				Fields:  providerFields,
				Numeric: []string{"api_id"},
			},
		},
		{
			Name:   "servers",
			Base:   "/server",
			List:   "/servers",
			Key:    "servers",
			Fields: serverFields,
			Schema: importer.FieldSchema{
				Fields: serverFields,
			},
		},
		{
			Name:   "channels",
			Base:   "/channel",
			List:   "/channels",
			Key:    "channels",
			Fields: channelFields,
			Schema: importer.FieldSchema{
				Fields:   channelFields,
				Optional: []string{"channel_id", "channel_name"},
			},
		},
		{
			Name:   "weights",
			Base:   "/weight",
			List:   "/weights",
			Key:    "weights",
			Fields: weightFields,
			Schema: importer.FieldSchema{
				Fields:  weightFields,
				Numeric: []string{"weight"},
			},
		},
		{
			Name:   "blacklists",
			Base:   "/blacklist",
			List:   "/blacklists",
			Key:    "blacklists",
			Fields: blacklistFields,
			Schema: importer.FieldSchema{
				Fields: blacklistFields,
			},
		},
	}
}

// fieldsOf walks a model struct's json tags in declaration order, dropping the
// server-owned columns (_id and timestamps) plus any named skips. Nested
// structs flatten into their own tags, which is how the provider credentials
// surface as api_id/api_hash rather than config.
func fieldsOf(sample any, skips ...string) []string {
	skipped := map[string]bool{"_id": true, "created_at": true, "updated_at": true}
	for _, s := range skips {
		skipped[s] = true
	}

	t := reflect.TypeOf(sample)
	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" || skipped[name] {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			fields = append(fields, fieldsOf(reflect.Zero(f.Type).Interface(), skips...)...)
			continue
		}
		fields = append(fields, name)
	}
	return fields
}
