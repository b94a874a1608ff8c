package common

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are query parameters that vary per-visit or per-referrer
// without changing the identity of the page they point to.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"referrer":     true,
	"gh_src":       true,
	"gh_jid":       true,
	"fbclid":       true,
	"gclid":        true,
}

// NormalizeURL produces a canonical form of rawURL for use as a
// JobListing dedup key: lowercased scheme/host, trailing slash trimmed,
// tracking query parameters stripped, remaining query parameters sorted.
// Two URLs that differ only by tracking params or parameter order
// normalize to the same string.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for key := range q {
		if trackingParams[strings.ToLower(key)] {
			q.Del(key)
		}
	}
	if len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			for j, v := range q[k] {
				if j > 0 {
					b.WriteByte('&')
				}
				b.WriteString(k)
				b.WriteByte('=')
				b.WriteString(v)
			}
		}
		u.RawQuery = b.String()
	} else {
		u.RawQuery = ""
	}

	return u.String(), nil
}
