// Package service wires the gaze pipeline together and implements the
// dependencies required by the HTTP API and the websocket stream.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gazeboard/internal/adapters/http/api"
	"github.com/okian/gazeboard/internal/adapters/mq/queue"
	"github.com/okian/gazeboard/internal/adapters/mq/worker"
	"github.com/okian/gazeboard/internal/adapters/repository"
	"github.com/okian/gazeboard/internal/adapters/sink"
	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/internal/domain/pipeline"
	"github.com/okian/gazeboard/internal/domain/selection"
	"github.com/okian/gazeboard/internal/domain/symbols"
	"github.com/okian/gazeboard/pkg/clock"
	"github.com/okian/gazeboard/pkg/logger"
	"github.com/okian/gazeboard/pkg/metrics"
)

// Metric families summed into GetStats.
var statTotals = []string{ //nolint:gochecknoglobals // fixed list of exported metric names
	"gazeboard_pipeline_frames_received_total",
	"gazeboard_pipeline_frames_dropped_total",
	"gazeboard_pipeline_ticks_total",
	"gazeboard_pipeline_missing_faces_total",
	"gazeboard_pipeline_blinks_total",
	"gazeboard_pipeline_selections_total",
	"gazeboard_pipeline_suppressed_triggers_total",
	"gazeboard_pipeline_unlocks_total",
}

var _ api.Dependencies = (*Service)(nil)

// Service owns the pipeline components and their lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components, built by Start.
	catalog   *symbols.Catalog
	machine   *selection.Machine
	processor *pipeline.Processor
	frames    *queue.InMemoryQueue
	runner    *worker.Runner
	hub       *sink.Hub
	history   *repository.HistoryStore

	// Configuration
	tickInterval    time.Duration
	queueSize       int
	sinkBuffer      int
	historySize     int
	catalogFile     string
	defaultCategory string
	scheme          eyemetrics.Scheme
	clock           clock.Clock

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTickInterval sets the pipeline polling cadence.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithQueueSize sets the maximum number of pending frames.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSinkBuffer sets the per-subscriber event buffer.
func WithSinkBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.sinkBuffer = size
		}
	}
}

// WithHistorySize sets how many selection events are kept for
// RecentSelections.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithCatalog uses an already loaded symbol catalog.
func WithCatalog(c *symbols.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithCatalogFile loads the symbol catalog from a YAML file on Start.
// Ignored when WithCatalog is also given.
func WithCatalogFile(path string) Option {
	return func(s *Service) {
		s.catalogFile = path
	}
}

// WithDefaultCategory sets the category shown at startup.
func WithDefaultCategory(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultCategory = name
		}
	}
}

// WithClock injects the clock driving the selection lock.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components are built by Start.
func New(opts ...Option) *Service {
	s := &Service{
		tickInterval:    100 * time.Millisecond,
		queueSize:       64,
		sinkBuffer:      32,
		historySize:     256,
		defaultCategory: "Home",
		scheme:          eyemetrics.MediaPipe,
		clock:           clock.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) loadCatalog() (*symbols.Catalog, error) {
	if s.catalog != nil {
		return s.catalog, nil
	}
	if s.catalogFile == "" {
		return symbols.Default(), nil
	}
	c, err := symbols.LoadFile(s.catalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// Start builds the components and launches the runner. Calling Start on a
// running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting gazeboard service...")

	catalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	grid, err := catalog.Grid(s.defaultCategory)
	if err != nil {
		return fmt.Errorf("default category: %w", err)
	}

	hub := sink.NewHub(s.sinkBuffer)
	machine, err := selection.New(s.defaultCategory, grid, selection.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	machine.OnUnlock(func(u selection.Unlock) {
		metrics.RecordUnlock()
		hub.Publish(sink.GridMessage(sink.TypeUnlock, u.Category, u.Grid, u.At))
	})

	// History outlives restarts.
	if s.history == nil {
		s.history = repository.NewHistoryStore(repository.WithCapacity(s.historySize))
	}

	processor := pipeline.New(machine, pipeline.WithScheme(s.scheme))
	frames := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	publisher := &historyPublisher{next: hub, history: s.history, logger: s.logger}
	runner := worker.NewRunner(frames, processor, publisher, worker.WithInterval(s.tickInterval))

	s.catalog = catalog
	s.hub = hub
	s.machine = machine
	s.processor = processor
	s.frames = frames
	s.runner = runner

	runner.Start(ctx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "gazeboard service started",
		logger.Duration("tick_interval", s.tickInterval),
		logger.Int("queue_size", s.queueSize),
		logger.String("category", s.defaultCategory),
		logger.Int("categories", len(catalog.Names())),
	)
	return nil
}

// Stop halts the runner, cancels any pending unlock and closes the queue
// and the hub.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping gazeboard service...")

	if err := s.runner.Stop(); err != nil {
		s.logger.Warn(ctx, "runner did not stop cleanly", logger.Error(err))
	}
	s.machine.Close()
	_ = s.frames.Close()
	s.hub.Close()

	s.started = false
	s.logger.Info(ctx, "gazeboard service stopped")
}

// SubmitFrame validates f and hands it to the frame queue.
func (s *Service) SubmitFrame(ctx context.Context, f model.Frame, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame size %dx%d: %w", f.Width, f.Height, eyemetrics.ErrMalformedFrame)
	}
	if f.HasFace() && len(f.Landmarks) < s.scheme.Required() {
		return fmt.Errorf("%d landmarks, need %d: %w", len(f.Landmarks), s.scheme.Required(), eyemetrics.ErrMalformedFrame)
	}

	s.mu.RLock()
	started, frames, runner := s.started, s.frames, s.runner
	s.mu.RUnlock()
	if !started {
		return queue.ErrClosed
	}
	if err := runner.Err(); err != nil {
		return fmt.Errorf("%w: runner halted: %w", queue.ErrClosed, err)
	}

	if !frames.Enqueue(ctx, f) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if frames.IsClosed() {
			return queue.ErrClosed
		}
		return queue.ErrFull
	}
	metrics.RecordFrameReceived(source)
	return nil
}

// Tick runs one pipeline step now, outside the ticker's cadence. It is
// serialized with the running loop.
func (s *Service) Tick(ctx context.Context) error {
	s.mu.RLock()
	runner, started := s.runner, s.started
	s.mu.RUnlock()
	if !started {
		return queue.ErrClosed
	}
	return runner.Step(ctx)
}

// Subscribe attaches a stream client to the current hub. Before Start the
// returned channel is already closed.
func (s *Service) Subscribe(buffer int) (string, <-chan sink.Message, func()) {
	s.mu.RLock()
	hub := s.hub
	started := s.started
	s.mu.RUnlock()
	if !started {
		ch := make(chan sink.Message)
		close(ch)
		return "", ch, func() {}
	}
	return hub.Subscribe(buffer)
}

// State returns the read model for GET /state.
func (s *Service) State(_ context.Context) api.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.machine == nil {
		return api.State{Category: s.defaultCategory}
	}

	snap := s.machine.Snapshot()
	st := api.State{
		Locked:    snap.State == selection.Locked,
		Category:  snap.Category,
		Selection: snap.Event,
		Grid:      snap.Visible,
		Running:   s.started && !s.runnerDone() && s.runner.Err() == nil,
	}
	if st.Locked {
		at := snap.UnlockAt
		st.UnlockAt = &at
	}
	if last, ok := s.runner.Last(); ok {
		st.Seq = last.Seq
		st.FaceDetected = last.Result.FaceDetected
		if last.Result.FaceDetected {
			st.Status = last.Result.Status.String()
		}
	}
	if err := s.runner.Err(); err != nil {
		st.Error = err.Error()
	}
	return st
}

func (s *Service) runnerDone() bool {
	select {
	case <-s.runner.Done():
		return true
	default:
		return false
	}
}

// Categories lists the catalog's category names in display order.
func (s *Service) Categories(_ context.Context) []string {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()
	if catalog == nil {
		return nil
	}
	return catalog.Names()
}

// ActiveCategory returns the category whose grid is shown when idle.
func (s *Service) ActiveCategory(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.machine == nil {
		return s.defaultCategory
	}
	return s.machine.Category()
}

// SetCategory switches the board to another category. An active lock keeps
// its reduced grid until it expires.
func (s *Service) SetCategory(ctx context.Context, name string) error {
	s.mu.RLock()
	catalog, machine, hub, started := s.catalog, s.machine, s.hub, s.started
	s.mu.RUnlock()
	if !started {
		return selection.ErrClosed
	}

	if !catalog.Has(name) {
		return fmt.Errorf("%q: %w", name, symbols.ErrUnknownCategory)
	}
	grid, err := catalog.Grid(name)
	if err != nil {
		return err
	}
	if err := machine.SetGrid(name, grid); err != nil {
		return err
	}

	metrics.RecordCategorySwitch(name)
	hub.Publish(sink.GridMessage(sink.TypeCategory, name, machine.Visible(), s.clock.Now()))
	s.logger.Info(ctx, "category switched", logger.String("category", name))
	return nil
}

// RecentSelections returns up to n selection events, newest first.
func (s *Service) RecentSelections(ctx context.Context, n int) ([]model.SelectionEvent, error) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()
	if history == nil {
		if n < 1 {
			return nil, fmt.Errorf("%d: %w", n, repository.ErrInvalidLimit)
		}
		return nil, nil
	}
	return history.Recent(ctx, n)
}

// Selection returns a recorded selection event by id.
func (s *Service) Selection(ctx context.Context, id string) (model.SelectionEvent, error) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()
	if history == nil {
		return model.SelectionEvent{}, fmt.Errorf("%q: %w", id, repository.ErrNotFound)
	}
	return history.Get(ctx, id)
}

// historyPublisher records selection events before handing every message
// to the hub.
type historyPublisher struct {
	next    worker.Publisher
	history repository.Store
	logger  logger.Logger
}

func (p *historyPublisher) Publish(msg sink.Message) {
	if msg.Type == sink.TypeSelection && msg.Event != nil {
		if err := p.history.Add(context.Background(), *msg.Event); err != nil {
			p.logger.Warn(context.Background(), "selection not recorded", logger.Error(err))
		}
	}
	p.next.Publish(msg)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"tickIntervalMs": s.tickInterval.Milliseconds(),
		"queueSize":      s.queueSize,
		"category":       s.defaultCategory,
	}

	if s.started {
		queueLen := s.frames.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["subscribers"] = s.hub.Len()
		stats["locked"] = s.machine.Locked()
		stats["history"] = s.history.Count(context.Background())
		stats["category"] = s.machine.Category()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if err := s.runner.Err(); err != nil {
			stats["runnerError"] = err.Error()
		}
		metrics.UpdateQueueSize(queueLen)
	}

	totals, err := metrics.Totals(metrics.GetRegistry(), statTotals...)
	if err == nil {
		stats["totals"] = totals
	}
	return stats
}
