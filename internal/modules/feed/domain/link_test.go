package domain_test

import (
	"testing"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeLink(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected string
	}{
		{
			name:     "empty link",
			link:     "",
			expected: "",
		},
		{
			name:     "no query",
			link:     "https://4x4trailrunners.com/trails/titus-canyon",
			expected: "https://4x4trailrunners.com/trails/titus-canyon",
		},
		{
			name:     "only tracking params",
			link:     "https://4x4trailrunners.com/trails/titus-canyon?utm_source=x&utm_medium=social",
			expected: "https://4x4trailrunners.com/trails/titus-canyon",
		},
		{
			name:     "mixed params keep order",
			link:     "https://example.com/a?b=2&utm_campaign=spring&a=1&fbclid=XYZ",
			expected: "https://example.com/a?b=2&a=1",
		},
		{
			name:     "fragment is kept",
			link:     "https://example.com/a?gclid=1#section",
			expected: "https://example.com/a#section",
		},
		{
			name:     "encoded values are left as is",
			link:     "https://example.com/search?q=red%20rock&mc_cid=9",
			expected: "https://example.com/search?q=red%20rock",
		},
		{
			name:     "bare keys are not given an empty value",
			link:     "https://example.com/a?preview&utm_source=x&tag=red+rock",
			expected: "https://example.com/a?preview&tag=red+rock",
		},
		{
			name:     "untouched link is returned verbatim",
			link:     "https://example.com/a?q=a+b&page=2",
			expected: "https://example.com/a?q=a+b&page=2",
		},
		{
			name:     "unparseable link is returned verbatim",
			link:     "http://[::1:80/?utm_source=x",
			expected: "http://[::1:80/?utm_source=x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.CanonicalizeLink(tt.link, domain.DefaultTrackingParams))
		})
	}
}

func TestCanonicalizeLink_CustomParams(t *testing.T) {
	link := "https://example.com/a?ref=newsletter&utm_source=x"

	assert.Equal(t, "https://example.com/a?utm_source=x", domain.CanonicalizeLink(link, []string{"ref"}))
	assert.Equal(t, link, domain.CanonicalizeLink(link, nil))
}
