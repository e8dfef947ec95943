package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/repository"
	"github.com/4x4trailrunners/riggs-feed/internal/shared/config"
	apperrors "github.com/4x4trailrunners/riggs-feed/internal/shared/errors"
	"github.com/gorilla/feeds"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service publishes entries to the feed and renders it in other formats
type Service struct {
	cfg    *config.Config
	repo   repository.Repository
	now    func() time.Time
	logger *slog.Logger
}

// PublishResult describes the outcome of a Publish call
type PublishResult struct {
	Path     string
	GUID     string
	Inserted bool
	Items    int
}

// New creates a new feed service
func New(cfg *config.Config, repo repository.Repository) *Service {
	return &Service{
		cfg:    cfg,
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetClock replaces the time source used for timestamps
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Publish loads the feed, inserts entry and writes the feed back. A duplicate
// guid is not an error: the feed is rewritten unchanged apart from repaired
// metadata and the result reports Inserted=false.
func (s *Service) Publish(ctx context.Context, entry domain.NewItem) (*PublishResult, error) {
	feed, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if feed.Channel.EnsureMetadata(s.cfg.ChannelDefaults(), now) {
		s.logger.Info("Filled in missing channel metadata", "path", s.repo.Path())
	}

	if s.cfg.StripTrackingParams {
		if canonical := domain.CanonicalizeLink(entry.Link, s.cfg.TrackingParams); canonical != entry.Link {
			s.logger.Debug("Stripped tracking parameters", "link", entry.Link, "canonical", canonical)
			entry.Link = canonical
		}
	}

	guid := domain.ResolveGUID(entry)
	inserted := feed.Channel.InsertItem(entry, now, s.cfg.MaxItems)
	if inserted {
		s.logger.Info("Item inserted", "guid", guid, "items", len(feed.Channel.Items))
	} else {
		s.logger.Info("Item already present, skipping", "guid", guid)
	}

	if err := s.repo.Save(ctx, feed); err != nil {
		return nil, err
	}

	return &PublishResult{
		Path:     s.repo.Path(),
		GUID:     guid,
		Inserted: inserted,
		Items:    len(feed.Channel.Items),
	}, nil
}

// Export renders the stored feed as RSS, Atom or JSON Feed
func (s *Service) Export(ctx context.Context, format domain.ExportFormat) (string, error) {
	if !format.IsValid() {
		return "", oops.With("format", format.String()).Wrap(apperrors.ErrUnsupportedFormat)
	}

	feed, err := s.repo.Load(ctx)
	if err != nil {
		return "", err
	}

	out := s.toFeeds(feed.Channel)

	var rendered string
	switch format {
	case domain.ExportFormatAtom:
		rendered, err = out.ToAtom()
	case domain.ExportFormatJson:
		rendered, err = out.ToJSON()
	default:
		rendered, err = out.ToRss()
	}
	if err != nil {
		return "", oops.With("format", format.String(), "context", "failed to render feed").Wrap(err)
	}

	return rendered, nil
}

func (s *Service) toFeeds(ch *domain.Channel) *feeds.Feed {
	return &feeds.Feed{
		Title:       ch.Title,
		Link:        &feeds.Link{Href: ch.Link},
		Description: ch.Description,
		Id:          ch.Link,
		Updated:     s.parseTime(ch.LastBuildDate, "lastBuildDate"),
		Items: lo.Map(ch.Items, func(item domain.Item, _ int) *feeds.Item {
			id := item.Link
			if item.GUID != nil && item.GUID.Value != "" {
				id = item.GUID.Value
			}
			return &feeds.Item{
				Title:       item.Title,
				Link:        &feeds.Link{Href: item.Link},
				Description: item.Description,
				Id:          id,
				Created:     s.parseTime(item.PubDate, "pubDate"),
			}
		}),
	}
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

func (s *Service) parseTime(value, field string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	s.logger.Warn("Could not parse timestamp", "field", field, "value", value)
	return time.Time{}
}
