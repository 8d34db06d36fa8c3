package api

import (
	"reflect"
	"testing"
)

func entityByName(t *testing.T, name string) Entity {
	t.Helper()
	for _, ent := range Entities() {
		if ent.Name == name {
			return ent
		}
	}
	t.Fatalf("entity %q not registered", name)
	return Entity{}
}

func TestEntityFieldsDeriveFromModels(t *testing.T) {
	cases := []struct {
		name string
		want []string
	}{
		{"providers", []string{"name", "type", "api_id", "api_hash"}},
		{"servers", []string{"provider_id", "type", "server_id", "server_name"}},
		{"channels", []string{"type", "server_id", "channel_id", "channel_name"}},
		{"weights", []string{"type", "value", "weight"}},
		{"blacklists", []string{"type", "value"}},
	}
	for _, tc := range cases {
		ent := entityByName(t, tc.name)
		if !reflect.DeepEqual(ent.Fields, tc.want) {
			t.Fatalf("%s: expected fields %v, got %v", tc.name, tc.want, ent.Fields)
		}
		if !reflect.DeepEqual(ent.Schema.Fields, tc.want) {
			t.Fatalf("%s: schema fields diverge from entity fields: %v", tc.name, ent.Schema.Fields)
		}
	}
}

func TestProviderCredentialsFlattenFromConfig(t *testing.T) {
	ent := entityByName(t, "providers")
	for _, f := range []string{"api_id", "api_hash"} {
		found := false
		for _, got := range ent.Fields {
			if got == f {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected nested credential %s in provider fields, got %v", f, ent.Fields)
		}
	}
	for _, got := range ent.Fields {
		if got == "config" || got == "_id" || got == "created_at" || got == "updated_at" {
			t.Fatalf("server-owned or container column %s leaked into fields: %v", got, ent.Fields)
		}
	}
}
