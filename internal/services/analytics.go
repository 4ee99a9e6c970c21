package services

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"review-dashboard/internal/analysis"
	"review-dashboard/internal/cleaning"
	"review-dashboard/internal/ingest"
	"review-dashboard/internal/models"
	"review-dashboard/internal/observability"
)

const cacheVersion = "v1"

// ErrNoSource is returned by Reload before any dataset file was loaded.
var ErrNoSource = errors.New("no dataset file has been loaded")

// Snapshot is the precomputed result of one dataset load.
type Snapshot struct {
	AppSentiment      []models.SentimentReport  `json:"app_sentiment"`
	LanguageSentiment []models.SentimentReport  `json:"language_sentiment"`
	Summary           *models.SummaryStatistics `json:"summary,omitempty"`
	RecordCount       int64                     `json:"record_count"`
	Excluded          int64                     `json:"excluded"`
	Invalid           int64                     `json:"invalid"`
	LastModified      time.Time                 `json:"last_modified"`
}

type Options struct {
	Policy   cleaning.Policy
	Workers  int
	CacheDir string // empty disables the snapshot cache
	Logger   *slog.Logger
}

type Analytics struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	opts     Options
	logger   *slog.Logger
	source   string // last file passed to LoadFromFile
	lastErr  error  // outcome of the last load; the snapshot is kept on failure
}

func NewAnalytics(opts Options) *Analytics {
	if opts.Policy == "" {
		opts.Policy = cleaning.PolicyFail
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		snapshot: &Snapshot{},
		opts:     opts,
		logger:   logger,
	}
}

// SetData replaces the snapshot with one computed from already cleaned reviews.
func (a *Analytics) SetData(reviews []models.Review) {
	snap := compute(reviews)
	snap.LastModified = time.Now()

	a.mu.Lock()
	a.snapshot = snap
	a.mu.Unlock()
}

// LoadFromFile parses, cleans and aggregates the dataset at filename. A cached
// snapshot newer than the file is used instead when present.
func (a *Analytics) LoadFromFile(ctx context.Context, filename string) (err error) {
	ctx, span := observability.StartSpan(ctx, "analytics.load",
		attribute.String("file", filename),
		attribute.String("policy", string(a.opts.Policy)),
	)
	defer func() {
		observability.EndSpan(span, err)
		a.mu.Lock()
		a.source, a.lastErr = filename, err
		a.mu.Unlock()
	}()

	if cached, ok := a.cachedSnapshot(filename); ok {
		a.mu.Lock()
		a.snapshot = cached
		a.mu.Unlock()
		a.logger.Info("loaded from cache", "records", cached.RecordCount)
		return nil
	}

	start := time.Now()
	a.logger.Info("processing dataset", "filename", filename)

	table, err := ingest.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	observability.ObserveStage("parse", time.Since(start))
	if missing := table.MissingColumns(); len(missing) > 0 {
		a.logger.Warn("dataset header is missing review columns; affected rows will be excluded",
			"missing", missing)
	}

	cleanStart := time.Now()
	res, err := cleaning.CleanParallel(ctx, table.Records, cleaning.Options{
		Policy:  a.opts.Policy,
		Workers: a.opts.Workers,
	})
	if err != nil {
		return fmt.Errorf("clean dataset: %w", err)
	}
	observability.ObserveStage("clean", time.Since(cleanStart))
	observability.ObserveRecords(len(res.Reviews), res.Excluded, res.Invalid)

	aggStart := time.Now()
	snap := compute(res.Reviews)
	snap.Excluded = int64(res.Excluded)
	snap.Invalid = int64(res.Invalid)
	snap.LastModified = time.Now()
	observability.ObserveStage("aggregate", time.Since(aggStart))

	a.mu.Lock()
	a.snapshot = snap
	a.mu.Unlock()

	if err := a.saveToCache(filename, snap); err != nil {
		observability.ObserveCache("error")
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	observability.ObserveStage("total", duration)
	if snap.RecordCount == 0 {
		a.logger.Warn("dataset has no usable reviews", "rows", len(table.Records))
	}
	a.logger.Info("dataset processing complete",
		"rows", len(table.Records),
		"records", snap.RecordCount,
		"excluded", snap.Excluded,
		"invalid", snap.Invalid,
		"duration", duration,
	)

	return nil
}

// Reload runs LoadFromFile again on the last loaded file. On failure the
// previous snapshot keeps serving.
func (a *Analytics) Reload(ctx context.Context) error {
	a.mu.RLock()
	source := a.source
	a.mu.RUnlock()

	if source == "" {
		return ErrNoSource
	}
	return a.LoadFromFile(ctx, source)
}

func compute(reviews []models.Review) *Snapshot {
	snap := &Snapshot{
		AppSentiment:      analysis.ByApp(reviews),
		LanguageSentiment: analysis.ByLanguage(reviews),
		RecordCount:       int64(len(reviews)),
	}
	if summary, err := analysis.Summarize(reviews); err == nil {
		snap.Summary = &summary
	}
	return snap
}

// Cache management
func (a *Analytics) cacheFilename(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(path)
	return filepath.Join(a.opts.CacheDir, fmt.Sprintf("%s_%s_%s.gob", name, a.opts.Policy, cacheVersion))
}

func (a *Analytics) cachedSnapshot(path string) (*Snapshot, bool) {
	if a.opts.CacheDir == "" {
		return nil, false
	}

	cached, err := a.loadFromCache(path)
	if err != nil {
		observability.ObserveCache("miss")
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Before(cached.LastModified) {
		observability.ObserveCache("miss")
		return nil, false
	}

	observability.ObserveCache("hit")
	return cached, true
}

// saveToCache writes the snapshot to a temporary file and renames it into
// place, so readers never see a partial cache file.
func (a *Analytics) saveToCache(path string, snap *Snapshot) (err error) {
	if a.opts.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.opts.CacheDir, 0o755); err != nil {
		return err
	}

	target := a.cacheFilename(path)
	tmp, err := os.CreateTemp(a.opts.CacheDir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return err
	}

	observability.ObserveCache("write")
	return nil
}

func (a *Analytics) loadFromCache(path string) (*Snapshot, error) {
	file, err := os.Open(a.cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Queries read the current snapshot, which is replaced wholesale on load.
func (a *Analytics) AppSentiment() []models.SentimentReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return orEmpty(a.snapshot.AppSentiment)
}

func (a *Analytics) LanguageSentiment() []models.SentimentReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return orEmpty(a.snapshot.LanguageSentiment)
}

// orEmpty keeps JSON output an array for snapshots restored from gob,
// which decodes empty slices as nil.
func orEmpty(reports []models.SentimentReport) []models.SentimentReport {
	if reports == nil {
		return []models.SentimentReport{}
	}
	return reports
}

// AppReport returns the sentiment report of a single app.
func (a *Analytics) AppReport(app string) (models.SentimentReport, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, r := range a.snapshot.AppSentiment {
		if r.GroupKey == app {
			return r, true
		}
	}
	return models.SentimentReport{}, false
}

// Summary returns analysis.ErrNoReviews when no reviews are loaded.
func (a *Analytics) Summary() (models.SummaryStatistics, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.snapshot.Summary == nil {
		return models.SummaryStatistics{}, analysis.ErrNoReviews
	}
	return *a.snapshot.Summary, nil
}

func (a *Analytics) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.snapshot
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var lastErr string
	if a.lastErr != nil {
		lastErr = a.lastErr.Error()
	}

	return map[string]any{
		"source":         a.source,
		"last_error":     lastErr,
		"record_count":   a.snapshot.RecordCount,
		"excluded":       a.snapshot.Excluded,
		"invalid":        a.snapshot.Invalid,
		"last_processed": a.snapshot.LastModified,
		"apps":           len(a.snapshot.AppSentiment),
		"languages":      len(a.snapshot.LanguageSentiment),
		"policy":         a.opts.Policy,
	}
}
