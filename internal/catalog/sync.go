package catalog

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"cmrstac/internal"
	"cmrstac/internal/config"
	"cmrstac/internal/logger"
	"cmrstac/internal/pipeline"
	"cmrstac/internal/storage"
	"cmrstac/internal/util"
)

const (
	sourceCMR = "cmr"

	lastSyncPrefix = "cmr.last_sync."
	maxKeyLabel    = 64
)

type SyncService struct {
	db      *storage.DB
	client  *Client
	archive *ResponseArchive
	cfg     config.Config
	log     *logger.Logger
}

type SyncResult struct {
	RunID       string
	Keyword     string
	RawRef      string
	Entries     int
	Collections int
	Items       int
	// PreviousSync is the RFC 3339 time of the last successful Sync for the
	// same keyword, empty on the first one.
	PreviousSync string
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{
		db:      db,
		client:  NewClient(cfg),
		archive: NewResponseArchive(cfg.RawResponseDir),
		cfg:     cfg,
		log:     logger.Named("sync"),
	}
}

// Sync searches CMR for keyword and persists one collection file and one
// step function input file per unique short_name.
func (s *SyncService) Sync(ctx context.Context, keyword string) (SyncResult, error) {
	raw, err := s.client.SearchCollections(ctx, keyword)
	if err != nil {
		return SyncResult{}, err
	}
	rawRef, err := s.archive.Store(raw)
	if err != nil {
		return SyncResult{}, err
	}
	entries, err := pipeline.DecodeFeed(bytes.NewReader(raw))
	if err != nil {
		return SyncResult{}, err
	}
	previous, err := s.LastSync(keyword)
	if err != nil {
		return SyncResult{}, err
	}
	res, err := s.persist(ctx, keyword, sourceCMR, rawRef, entries)
	if err != nil {
		return SyncResult{}, err
	}
	res.PreviousSync = previous
	return res, nil
}

// LastSync returns when keyword was last synced, or "" if never.
func (s *SyncService) LastSync(keyword string) (string, error) {
	value, err := s.db.GetMetadata(lastSyncKey(keyword))
	if err != nil || value == nil {
		return "", err
	}
	return *value, nil
}

func lastSyncKey(keyword string) string {
	return lastSyncPrefix + util.SanitizeName(keyword, maxKeyLabel)
}

// Build does what Sync does for a CMR response saved to r.
func (s *SyncService) Build(ctx context.Context, r io.Reader, source string) (SyncResult, error) {
	entries, err := pipeline.DecodeFeed(r)
	if err != nil {
		return SyncResult{}, err
	}
	return s.persist(ctx, "", source, "", entries)
}

func (s *SyncService) persist(ctx context.Context, keyword, source, rawRef string, entries []internal.RawEntry) (SyncResult, error) {
	agg, err := pipeline.Aggregate(entries)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{
		RunID:       uuid.NewString(),
		Keyword:     keyword,
		RawRef:      rawRef,
		Entries:     len(entries),
		Collections: agg.Len(),
		Items:       agg.ItemCount(),
	}
	log := s.log.With().Str("run_id", result.RunID).Str("keyword", keyword).Str("source", source).Logger()

	if agg.Len() == 0 {
		log.Warn().Msg("no collections matched")
	}

	dirs := pipeline.OutputDirs{
		Collections:        s.cfg.CollectionsDir,
		StepFunctionInputs: s.cfg.StepFunctionInputsDir,
	}
	if err := pipeline.WriteOutputs(ctx, agg, dirs); err != nil {
		return SyncResult{}, err
	}

	if agg.Len() > 0 {
		if err := s.db.UpsertCollections(result.RunID, agg); err != nil {
			return SyncResult{}, err
		}
	}
	if err := s.db.InsertRun(internal.RunRow{
		ID:          result.RunID,
		Keyword:     keyword,
		Source:      source,
		RawRef:      rawRef,
		Entries:     result.Entries,
		Collections: result.Collections,
		Items:       result.Items,
	}); err != nil {
		return SyncResult{}, err
	}
	if keyword != "" {
		if err := s.db.SetMetadata(lastSyncKey(keyword), time.Now().UTC().Format(time.RFC3339)); err != nil {
			log.Warn().Err(err).Msg("record last sync")
		}
	}

	log.Info().
		Int("entries", result.Entries).
		Int("collections", result.Collections).
		Int("items", result.Items).
		Msg("sync complete")
	return result, nil
}
