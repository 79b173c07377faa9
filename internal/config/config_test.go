package config

import (
	"testing"
	"time"

	"oresync/internal/report"
)

func TestParseSources(t *testing.T) {
	data := []byte(`
sources:
  production:
    share_link: https://1drv.ms/x/c/abc?e=xyz
    sheet_token: "2025"
    ttl_seconds: 120
  target:
    share_link: https://1drv.ms/x/c/def
    replace_window_days: 14
`)

	srcs, err := ParseSources(data)
	if err != nil {
		t.Fatal(err)
	}

	prod, ok := srcs[report.DocProduction]
	if !ok {
		t.Fatal("production source missing")
	}
	if prod.SheetToken != "2025" {
		t.Fatalf("sheet token = %q", prod.SheetToken)
	}
	if prod.TTL() != 2*time.Minute {
		t.Fatalf("ttl = %v, want 2m", prod.TTL())
	}

	tgt := srcs[report.DocTarget]
	if tgt.TTL() != defaultTTL {
		t.Fatalf("default ttl = %v, want %v", tgt.TTL(), defaultTTL)
	}
	if tgt.ReplaceWindowDays != 14 {
		t.Fatalf("replace window = %d, want 14", tgt.ReplaceWindowDays)
	}
}

func TestParseSourcesRejectsUnknownType(t *testing.T) {
	data := []byte(`
sources:
  haulage:
    share_link: https://1drv.ms/x/c/abc
`)
	if _, err := ParseSources(data); err == nil {
		t.Fatal("unknown document type must be rejected")
	}
}

func TestParseSourcesRejectsEmptyRegistry(t *testing.T) {
	if _, err := ParseSources([]byte("sources: {}")); err == nil {
		t.Fatal("empty registry must be rejected")
	}
}
