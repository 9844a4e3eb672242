package watch

import (
	"context"
	"errors"
	"time"

	"cmrstac/internal/catalog"
	"cmrstac/internal/config"
	"cmrstac/internal/logger"
)

type Syncer interface {
	Sync(ctx context.Context, keyword string) (catalog.SyncResult, error)
}

// Service re-syncs the configured keywords on a fixed interval.
type Service struct {
	syncer   Syncer
	keywords []string
	interval time.Duration
	log      *logger.Logger
}

func NewService(syncer Syncer, cfg config.Config) *Service {
	interval := time.Duration(cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		syncer:   syncer,
		keywords: cfg.WatchKeywords,
		interval: interval,
		log:      logger.Named("watch"),
	}
}

func (s *Service) Run(ctx context.Context) error {
	if len(s.keywords) == 0 {
		return errors.New("no keywords to watch: set WATCH_KEYWORDS")
	}

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	for _, keyword := range s.keywords {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.syncer.Sync(ctx, keyword); err != nil {
			s.log.Error().Err(err).Str("keyword", keyword).Msg("watch cycle error")
		}
	}
}
