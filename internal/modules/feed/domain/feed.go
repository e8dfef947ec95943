package domain

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	// RSSVersion is written on every synthesized feed
	RSSVersion = "2.0"

	DefaultTitle       = "Riggs Autoposts"
	DefaultLink        = "https://4x4trailrunners.com/"
	DefaultDescription = "Automated feed from Riggs"
	DefaultMaxItems    = 50
)

// Feed is the <rss> root document
type Feed struct {
	XMLName xml.Name
	Version string     `xml:"version,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Channel *Channel   `xml:"channel"`
}

// Channel holds the feed metadata and its items, newest first
type Channel struct {
	Attrs         []xml.Attr `xml:",any,attr"`
	Title         string     `xml:"title,omitempty"`
	Link          string     `xml:"link,omitempty"`
	Description   string     `xml:"description,omitempty"`
	LastBuildDate string     `xml:"lastBuildDate,omitempty"`
	Extra         []Element  `xml:",any"`
	Items         []Item     `xml:"item"`
}

// Item is a single published entry
type Item struct {
	Attrs       []xml.Attr `xml:",any,attr"`
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	PubDate     string     `xml:"pubDate"`
	GUID        *GUID      `xml:"guid"`
	Extra       []Element  `xml:",any"`
}

// GUID is the identity key used for deduplication
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr,omitempty"`
}

// Element keeps a child element this package does not model so it survives a rewrite
type Element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",innerxml"`
}

// ChannelDefaults is the metadata used for new feeds and for repairing incomplete ones
type ChannelDefaults struct {
	Title       string
	Link        string
	Description string
}

// DefaultChannel returns the built-in channel metadata
func DefaultChannel() ChannelDefaults {
	return ChannelDefaults{
		Title:       DefaultTitle,
		Link:        DefaultLink,
		Description: DefaultDescription,
	}
}

// NewItem describes an entry to be inserted. GUID and PubDate are optional.
type NewItem struct {
	Title       string
	Link        string
	Description string
	GUID        string
	PubDate     string
}

// NewFeed builds the skeleton used when no feed file exists yet
func NewFeed(defaults ChannelDefaults, now time.Time) *Feed {
	return &Feed{
		XMLName: xml.Name{Local: "rss"},
		Version: RSSVersion,
		Channel: &Channel{
			Title:         defaults.Title,
			Link:          defaults.Link,
			Description:   defaults.Description,
			LastBuildDate: FormatTime(now),
		},
	}
}

// FormatTime renders t as an RFC 2822 timestamp in UTC with a fixed +0000 offset
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}

// EnsureMetadata fills in any channel metadata the document is missing.
// It reports whether anything was changed.
func (c *Channel) EnsureMetadata(defaults ChannelDefaults, now time.Time) bool {
	changed := false
	fill := func(field *string, value string) {
		if strings.TrimSpace(*field) == "" {
			*field = value
			changed = true
		}
	}

	fill(&c.Title, defaults.Title)
	fill(&c.Link, defaults.Link)
	fill(&c.Description, defaults.Description)
	fill(&c.LastBuildDate, FormatTime(now))

	return changed
}

// ResolveGUID returns the identity an entry will be stored under:
// the explicit guid, else the link, else the title.
func ResolveGUID(entry NewItem) string {
	if guid := strings.TrimSpace(entry.GUID); guid != "" {
		return guid
	}
	if entry.Link != "" {
		return entry.Link
	}
	return strings.TrimSpace(entry.Title)
}

// HasGUID reports whether an item with exactly this guid is already present
func (c *Channel) HasGUID(guid string) bool {
	return lo.ContainsBy(c.Items, func(item Item) bool {
		return item.GUID != nil && item.GUID.Value == guid
	})
}

// InsertItem prepends entry unless its guid is already present, refreshes
// lastBuildDate and trims the channel to maxItems. A duplicate is skipped
// silently and leaves the channel untouched; the return value reports
// whether the item was added.
func (c *Channel) InsertItem(entry NewItem, now time.Time, maxItems int) bool {
	guid := ResolveGUID(entry)
	if c.HasGUID(guid) {
		return false
	}

	pubDate := entry.PubDate
	if pubDate == "" {
		pubDate = FormatTime(now)
	}

	item := Item{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
		PubDate:     pubDate,
		GUID:        NewGUID(guid),
	}
	c.Items = append([]Item{item}, c.Items...)
	c.LastBuildDate = FormatTime(now)

	if maxItems >= 0 && len(c.Items) > maxItems {
		c.Items = c.Items[:maxItems]
	}

	return true
}

// NewGUID marks URL-shaped identifiers as permalinks
func NewGUID(value string) *GUID {
	permaLink := "false"
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		permaLink = "true"
	}
	return &GUID{Value: value, IsPermaLink: permaLink}
}
