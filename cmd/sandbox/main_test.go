package main

import (
	"io/fs"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hubastard/arbor/engine/i18n"
)

func TestLocales_Load(t *testing.T) {
	cat := i18n.NewCatalog()
	if err := cat.LoadFS(locales, "locales"); err != nil {
		t.Fatal(err)
	}
	if got := len(cat.Languages()); got < 2 {
		t.Fatalf("loaded %d languages, want at least 2", got)
	}
	if got := cat.Lookup("de-DE", "clicked", 3); got != "3-mal geklickt" {
		t.Errorf("Lookup(de-DE, clicked) = %q", got)
	}
	// de has no hint; it comes from en-US.
	if got := cat.Lookup("de", "name_hint"); got != "Type here" {
		t.Errorf("Lookup(de, name_hint) = %q", got)
	}
}

func TestLocales_KeysKnownToFallback(t *testing.T) {
	en := readLocale(t, "en-US")
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".yaml")
		for k := range readLocale(t, name) {
			if _, ok := en[k]; !ok {
				t.Errorf("%s: key %q missing from en-US", name, k)
			}
		}
	}
}

func readLocale(t *testing.T, name string) map[string]string {
	t.Helper()
	data, err := fs.ReadFile(locales, "locales/"+name+".yaml")
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return m
}
