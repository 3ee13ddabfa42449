package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"archive-remix/internal/archive"
	"archive-remix/internal/platform/metrics"
	"archive-remix/internal/smil"
)

// DefaultPollInterval is the delay between ticks when none is configured.
const DefaultPollInterval = time.Minute

// ErrLocked is returned by Run when another process holds the lock file.
var ErrLocked = errors.New("another assembler holds the lock")

// Remixer runs the packaging tools. See remix.Client.
type Remixer interface {
	Remix(ctx context.Context, period string, doc []byte, options ...any) (string, error)
	CreateISML(ctx context.Context, input, output string, options ...any) error
}

// AssemblerConfig describes one output and the archive window it covers.
type AssemblerConfig struct {
	Name     string
	Channel  string
	Bucket   string
	BaseURL  string
	Dates    []string
	Start    time.Time
	End      time.Time
	Interval time.Duration

	// PollInterval is the fixed delay between the end of one tick and the
	// start of the next.
	PollInterval time.Duration

	// RemixOptions are passed to unified_remix, ISMLOptions to mp4split.
	RemixOptions []any
	ISMLOptions  []any

	// LockPath, when set, is held for the lifetime of Run.
	LockPath string
}

// Assembler reconciles the archive listing against the expected chunks on
// every tick and repackages the output when the chunk set changes. Ticks run
// strictly one after another.
type Assembler struct {
	cfg        AssemblerConfig
	lister     archive.Lister
	reconciler *archive.Reconciler
	remixer    Remixer
	repo       Repository
	log        *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	// previous is the chunk list of the last tick that consumed a change.
	previous []archive.Chunk
}

// NewAssembler returns an Assembler. Metrics may be nil to disable metric
// recording (e.g. in tests).
func NewAssembler(cfg AssemblerConfig, lister archive.Lister, remixer Remixer, repo Repository, log *slog.Logger, m *metrics.Metrics) *Assembler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Assembler{
		cfg:        cfg,
		lister:     lister,
		reconciler: archive.NewReconciler(cfg.Channel, cfg.Interval),
		remixer:    remixer,
		repo:       repo,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// Run ticks until ctx is cancelled. A tick in progress is never interrupted;
// cancellation is observed while waiting for the next tick.
func (a *Assembler) Run(ctx context.Context) error {
	if a.cfg.LockPath != "" {
		lock := flock.New(a.cfg.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLocked, a.cfg.LockPath)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				a.log.Warn("release lock failed", slog.String("error", err.Error()))
			}
		}()
	}

	a.log.Info("assembler started",
		slog.String("name", a.cfg.Name),
		slog.String("channel", a.cfg.Channel),
		slog.Time("start", a.cfg.Start),
		slog.Time("end", a.cfg.End),
		slog.Duration("interval", a.cfg.Interval),
		slog.Duration("poll_interval", a.cfg.PollInterval))

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("assembler stopped", slog.String("name", a.cfg.Name))
			return nil
		case <-timer.C:
		}

		if _, err := a.Tick(context.WithoutCancel(ctx)); err != nil {
			a.log.Error("tick failed", slog.String("name", a.cfg.Name), slog.String("error", err.Error()))
		}
		timer.Reset(a.cfg.PollInterval)
	}
}

// Tick runs one reconciliation pass. Listing and packaging failures are
// returned; an empty window is not an error. A failed remix or isml step
// leaves the previous chunk list untouched, so a tool that keeps failing is
// run again on every tick until it succeeds or the chunk set changes back.
func (a *Assembler) Tick(ctx context.Context) (TickResult, error) {
	if a.metrics != nil {
		a.metrics.IncTicks()
	}

	listing, err := archive.ListChunks(ctx, a.lister, a.cfg.Bucket, a.cfg.Channel, a.cfg.Dates, a.now())
	if err != nil {
		if a.metrics != nil {
			a.metrics.IncListingErrors()
		}
		return TickResult{}, fmt.Errorf("list archive: %w", err)
	}

	chunks, err := a.reconciler.Filter(listing, a.cfg.Start, a.cfg.End)
	if err != nil {
		return TickResult{}, fmt.Errorf("reconcile chunks: %w", err)
	}
	if a.metrics != nil {
		a.metrics.SetChunks(len(chunks))
	}

	if !archive.Changed(a.previous, chunks) {
		a.log.Info("no new chunks found", slog.String("name", a.cfg.Name), slog.Int("chunks", len(chunks)))
		return TickResult{Outcome: OutcomeUnchanged, Chunks: chunks}, nil
	}
	if a.metrics != nil {
		a.metrics.IncChanges()
	}

	sorted := SortChunks(chunks)
	doc, err := BuildDocument(sorted, a.cfg.BaseURL)
	if errors.Is(err, ErrEmptyWindow) {
		a.log.Warn("chunk set changed to empty, skipping tick", slog.String("name", a.cfg.Name))
		if a.metrics != nil {
			a.metrics.IncEmptyWindows()
		}
		a.previous = chunks
		return TickResult{Outcome: OutcomeEmptyWindow}, nil
	}
	if err != nil {
		return TickResult{}, fmt.Errorf("build document: %w", err)
	}

	period, err := PeriodID(a.cfg.Name, sorted)
	if err != nil {
		return TickResult{}, err
	}
	markup := smil.Render(doc)
	result := TickResult{Outcome: OutcomeFailed, Period: period, Chunks: sorted, Markup: markup}

	a.log.Info("new chunks found in archive, updating remix mp4 and isml",
		slog.String("name", a.cfg.Name),
		slog.String("period", period),
		slog.Int("chunks", len(sorted)))

	mp4, err := a.remixer.Remix(ctx, period, markup, a.cfg.RemixOptions...)
	if err != nil {
		if a.metrics != nil {
			a.metrics.IncToolFailures("remix")
		}
		return result, fmt.Errorf("remix %s: %w", period, err)
	}

	isml := a.cfg.Name + ".isml"
	if err := a.remixer.CreateISML(ctx, mp4, isml, a.cfg.ISMLOptions...); err != nil {
		if a.metrics != nil {
			a.metrics.IncToolFailures("isml")
		}
		return result, fmt.Errorf("create %s: %w", isml, err)
	}

	a.previous = chunks
	result.Outcome = OutcomeRendered

	renderedAt := a.now().UTC()
	if err := a.repo.Publish(Rendering{
		Name:       a.cfg.Name,
		Period:     period,
		Start:      sorted[0].Start,
		End:        sorted[len(sorted)-1].End,
		Chunks:     len(sorted),
		MP4:        mp4,
		ISML:       isml,
		RenderedAt: renderedAt,
		Markup:     markup,
	}); err != nil {
		a.log.Warn("publish rendering failed", slog.String("error", err.Error()))
	}
	if a.metrics != nil {
		a.metrics.SetLastRender(float64(renderedAt.UnixNano()) / 1e9)
	}
	return result, nil
}
