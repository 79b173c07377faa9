package sharelink

import (
	"strings"
	"testing"
	"time"
)

func TestResolveDirectHosts(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "short link with query",
			link: "https://1drv.ms/x/c/abc?e=xyz",
			want: "https://1drv.ms/x/c/abc?download=1",
		},
		{
			name: "short link without query",
			link: "https://1drv.ms/x/c/abc",
			want: "https://1drv.ms/x/c/abc?download=1",
		},
		{
			name: "live domain",
			link: "https://onedrive.live.com/redir?resid=1&authkey=2",
			want: "https://onedrive.live.com/redir?download=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.link, false)
			if !ok {
				t.Fatalf("Resolve(%q) not ok", tt.link)
			}
			if got != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestResolveLegacyEncoding(t *testing.T) {
	link := "https://example.com/some/share?token=a+b/c"
	got, ok := Resolve(link, false)
	if !ok {
		t.Fatalf("Resolve(%q) not ok", link)
	}
	if !strings.HasPrefix(got, "https://api.onedrive.com/v1.0/shares/u!") {
		t.Fatalf("legacy URL prefix missing: %q", got)
	}
	if !strings.HasSuffix(got, "/root/content") {
		t.Fatalf("legacy URL suffix missing: %q", got)
	}
	if strings.ContainsAny(strings.TrimPrefix(strings.TrimSuffix(got, "/root/content"), "https://api.onedrive.com/v1.0/shares/u!"), "=+/") {
		t.Fatalf("legacy share token not URL-safe: %q", got)
	}
}

func TestResolveBlankInput(t *testing.T) {
	for _, link := range []string{"", "   ", "\t\n"} {
		if _, ok := Resolve(link, false); ok {
			t.Fatalf("Resolve(%q) should fail", link)
		}
	}
}

func TestResolveCacheBust(t *testing.T) {
	var tick int64
	now = func() time.Time {
		tick++
		return time.Unix(0, tick)
	}
	defer func() { now = time.Now }()

	first, _ := Resolve("https://1drv.ms/x/c/abc?e=xyz", true)
	second, _ := Resolve("https://1drv.ms/x/c/abc?e=xyz", true)

	if first == second {
		t.Fatalf("cache-busted URLs should be unique per call, got %q twice", first)
	}
	if !strings.Contains(first, "?download=1&t=") {
		t.Fatalf("cache-bust parameter missing: %q", first)
	}
}
