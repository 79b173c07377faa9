// Package sharelink turns OneDrive share links into directly fetchable URLs.
package sharelink

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Hosts served by strategy 1: strip the query string and request the raw file
// with download=1. Anything else falls through to the legacy shares endpoint.
var directHosts = []string{"1drv.ms", "onedrive.live.com"}

const legacyEndpoint = "https://api.onedrive.com/v1.0/shares/u!%s/root/content"

// now is swapped out in tests to pin the cache-bust disambiguator.
var now = time.Now

// Resolve converts a share link into a fetchable URL. With cacheBust set the
// result carries a monotonically increasing query parameter, making it unique
// per call; this is the only way to defeat both the process fetch cache and
// any HTTP-level caching toward the remote host.
//
// The second return is false only for a blank link. Resolve never panics.
func Resolve(shareLink string, cacheBust bool) (string, bool) {
	link := strings.TrimSpace(shareLink)
	if link == "" {
		return "", false
	}

	resolved, ok := resolveDirect(link)
	if !ok {
		resolved = resolveLegacy(link)
	}

	if cacheBust {
		sep := "&"
		if !strings.Contains(resolved, "?") {
			sep = "?"
		}
		resolved = fmt.Sprintf("%s%st=%d", resolved, sep, now().UnixNano())
	}
	return resolved, true
}

// resolveDirect handles the provider's short-link and live domains: the
// existing query string is discarded and replaced with download=1.
func resolveDirect(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, d := range directHosts {
		if host == d || strings.HasSuffix(host, "."+d) {
			base := strings.SplitN(link, "?", 2)[0]
			return base + "?download=1", true
		}
	}
	return "", false
}

// resolveLegacy base64url-encodes the link (padding stripped, / and + swapped
// for _ and -) into the legacy share-content endpoint.
func resolveLegacy(link string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(link))
	enc = strings.TrimRight(enc, "=")
	enc = strings.ReplaceAll(enc, "/", "_")
	enc = strings.ReplaceAll(enc, "+", "-")
	return fmt.Sprintf(legacyEndpoint, enc)
}
