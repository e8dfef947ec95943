package domain

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// DefaultTrackingParams are the query parameters stripped from links before
// they are stored, so one article URL maps to one guid.
var DefaultTrackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id",
	"fbclid", "gclid", "igshid", "mc_cid", "mc_eid",
}

// CanonicalizeLink removes tracking query parameters from link. The order and
// encoding of the remaining parameters are kept. Links that do not parse, or
// that carry no tracking parameters, are returned unchanged.
func CanonicalizeLink(link string, trackingParams []string) string {
	if link == "" {
		return link
	}

	u, err := url.Parse(link)
	if err != nil || u.RawQuery == "" {
		return link
	}

	pairs := strings.Split(u.RawQuery, "&")
	kept := lo.Filter(pairs, func(pair string, _ int) bool {
		if pair == "" {
			return false
		}
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		return !lo.Contains(trackingParams, key)
	})
	if len(kept) == len(pairs) {
		return link
	}

	u.RawQuery = strings.Join(kept, "&")
	u.ForceQuery = false
	return u.String()
}
