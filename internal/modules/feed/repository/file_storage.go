package repository

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	apperrors "github.com/4x4trailrunners/riggs-feed/internal/shared/errors"
	"github.com/samber/oops"
)

const indent = "  "

// FileStorage implements Repository on a single XML file
type FileStorage struct {
	path     string
	defaults domain.ChannelDefaults
	now      func() time.Time
	logger   *slog.Logger
}

// NewFileStorage creates a file-based feed repository for path
func NewFileStorage(path string, defaults domain.ChannelDefaults, now func() time.Time, logger *slog.Logger) (Repository, error) {
	if path == "" {
		return nil, oops.In("repository").Errorf("feed path is empty")
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileStorage{
		path:     path,
		defaults: defaults,
		now:      now,
		logger:   logger,
	}, nil
}

func (s *FileStorage) Path() string {
	return s.path
}

// Load reads the feed document, or synthesizes a new one when the file does not exist.
func (s *FileStorage) Load(ctx context.Context) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("Feed file not found, starting a new feed", "path", s.path)
			return domain.NewFeed(s.defaults, s.now()), nil
		}
		return nil, oops.In("repository").With("path", s.path, "context", "failed to read feed").Wrap(err)
	}

	feed, err := decode(data)
	if err != nil {
		return nil, oops.In("repository").With("path", s.path).Wrapf(err, "failed to load feed")
	}

	if feed.Channel == nil {
		s.logger.Warn("Feed has no channel, adding an empty one", "path", s.path)
		feed.Channel = &domain.Channel{}
	}

	s.logger.Debug("Feed loaded", "path", s.path, "items", len(feed.Channel.Items))
	return feed, nil
}

// Save overwrites the feed file. The document is written to a temporary file
// in the same directory and renamed into place.
func (s *FileStorage) Save(ctx context.Context, feed *domain.Feed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(feed)
	if err != nil {
		return oops.In("repository").With("path", s.path).Wrapf(fmt.Errorf("%w: %w", apperrors.ErrWrite, err), "failed to encode feed")
	}

	if err := writeFile(s.path, data); err != nil {
		return oops.In("repository").With("path", s.path).Wrapf(fmt.Errorf("%w: %w", apperrors.ErrWrite, err), "failed to write feed")
	}

	s.logger.Debug("Feed saved", "path", s.path, "bytes", len(data))
	return nil
}

func decode(data []byte) (*domain.Feed, error) {
	d := xml.NewDecoder(bytes.NewReader(data))

	start, err := rootElement(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrParse, err)
	}

	var feed domain.Feed
	if err := d.DecodeElement(&feed, start); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrParse, err)
	}
	if err := trailingContent(d); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrParse, err)
	}

	if feed.XMLName.Local != "rss" {
		return nil, oops.With("root", feed.XMLName.Local).Wrap(apperrors.ErrStructure)
	}

	return &feed, nil
}

// rootElement consumes the prolog and returns the document element. Only
// whitespace, comments, processing instructions and directives may precede it.
func rootElement(d *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document has no root element")
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return &t, nil
		case xml.EndElement:
			return nil, fmt.Errorf("unexpected end element </%s>", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, errors.New("text before the root element")
			}
		}
	}
}

// trailingContent reads to the end of the document after the root element
// and fails on anything but whitespace, comments and processing instructions.
func trailingContent(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after the root element", t.Name.Local)
		case xml.EndElement:
			return fmt.Errorf("unexpected end element </%s>", t.Name.Local)
		case xml.Directive:
			return errors.New("directive after the root element")
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("text after the root element")
			}
		}
	}
}

func encode(feed *domain.Feed) ([]byte, error) {
	if feed == nil {
		return nil, errors.New("feed is nil")
	}

	out := *feed
	out.XMLName = xml.Name{Local: "rss"}
	if out.Version == "" {
		out.Version = domain.RSSVersion
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// writeFile replaces path with data through a temporary file in the same
// directory. A symlinked path is resolved so the link survives, and an
// existing file keeps its permissions. When the directory is not writable
// the file is overwritten in place instead.
func writeFile(path string, data []byte) error {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if errors.Is(err, fs.ErrPermission) {
		return os.WriteFile(target, data, mode)
	}
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), target)
}
