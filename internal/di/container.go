package di

import (
	"io"
	"log/slog"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/repository"
	feedService "github.com/4x4trailrunners/riggs-feed/internal/modules/feed/service"
	"github.com/4x4trailrunners/riggs-feed/internal/shared/config"
	"github.com/4x4trailrunners/riggs-feed/internal/shared/logger"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Options carries the values the container cannot derive on its own
type Options struct {
	ConfigPath string
	FeedPath   string
	Stderr     io.Writer
}

// LogSink owns the application logger and the log file behind it
type LogSink struct {
	Logger *slog.Logger
	close  func() error
}

// Close releases the log file, if any
func (s *LogSink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Setup initializes the dependency injection container
func Setup(opts Options) (do.Injector, error) {
	if opts.FeedPath == "" {
		return nil, oops.In("di").Errorf("feed path is required")
	}

	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, oops.With("config_path", opts.ConfigPath, "context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Logger
	do.Provide(injector, func(i do.Injector) (*LogSink, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		log, closeFn, err := logger.New(logger.Options{
			Level:  cfg.LogLevel,
			File:   cfg.LogFile,
			Stderr: opts.Stderr,
		})
		if err != nil {
			return nil, oops.With("context", "failed to create logger").Wrap(err)
		}
		slog.SetDefault(log)
		return &LogSink{Logger: log, close: closeFn}, nil
	})

	// Register Feed Repository
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		sink, err := do.Invoke[*LogSink](i)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewFileStorage(opts.FeedPath, cfg.ChannelDefaults(), nil, sink.Logger)
		if err != nil {
			return nil, oops.With("feed_path", opts.FeedPath, "context", "failed to initialize feed repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		repo, err := do.Invoke[repository.Repository](i)
		if err != nil {
			return nil, err
		}
		sink, err := do.Invoke[*LogSink](i)
		if err != nil {
			return nil, err
		}
		svc := feedService.New(cfg, repo)
		svc.SetLogger(sink.Logger)
		return svc, nil
	})

	return injector, nil
}

// Shutdown releases resources held by services that were created
func Shutdown(injector do.Injector) error {
	if sink, err := do.Invoke[*LogSink](injector); err == nil && sink != nil {
		if err := sink.Close(); err != nil {
			return oops.With("context", "failed to close log file").Wrap(err)
		}
	}

	return nil
}
