// Package service provides the core business service that implements the
// dependencies required by the HTTP API: listing (with self-healing
// reconciliation), contributing, and deleting words.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/blob"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/mq/queue"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/mq/worker"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/repository"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/geometry"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
	"github.com/Qwealzy/roots-of-sentient/pkg/metrics"
)

// Default service configuration constants.
const (
	DefaultMaxAvatarBytes = 5 << 20 // 5 MiB upload cap

	defaultWritebackQueueSize = 1024
	defaultWritebackWorkers   = 2

	// slotClaimAttempts bounds the claim-insert retry loop when a racing
	// contribution wins the same slot first.
	slotClaimAttempts = 3
)

// Contribution is the write-path input.
type Contribution struct {
	Term        string
	DisplayName string
	OwnerToken  string

	// Avatar is nil when the visitor uploaded no image.
	Avatar            io.Reader
	AvatarSize        int64
	AvatarContentType string
	AvatarFilename    string
}

// Service owns the word ring: every read reconciles, every write claims
// exactly one free coordinate. State lives in the record store; occupancy
// is rebuilt per request.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	blobs  blob.Store
	plan   ring.Plan
	mapper geometry.Mapper
	folder word.Folder
	limits word.Limits

	singlePerVisitor bool
	maxAvatarBytes   int64

	writebackQueueSize int
	writebackWorkers   int
	writebackQueue     *queue.InMemoryQueue
	writebackPool      *worker.Pool
	writebackCancel    context.CancelFunc

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBlobStore sets the avatar blob store.
func WithBlobStore(blobs blob.Store) Option {
	return func(s *Service) {
		if blobs != nil {
			s.blobs = blobs
		}
	}
}

// WithPlan sets the ring capacity plan.
func WithPlan(plan ring.Plan) Option {
	return func(s *Service) {
		s.plan = plan
	}
}

// WithMapper sets the placement mapper.
func WithMapper(mapper geometry.Mapper) Option {
	return func(s *Service) {
		s.mapper = mapper
	}
}

// WithFoldLocale sets the BCP-47 locale used for duplicate-term folding.
func WithFoldLocale(locale string) Option {
	return func(s *Service) {
		s.folder = word.NewFolder(locale)
	}
}

// WithLimits sets the text input bounds.
func WithLimits(limits word.Limits) Option {
	return func(s *Service) {
		if limits.TermMaxLen > 0 && limits.NameMaxLen > 0 {
			s.limits = limits
		}
	}
}

// WithSinglePerVisitor toggles the one-word-per-browser-token constraint.
func WithSinglePerVisitor(enabled bool) Option {
	return func(s *Service) {
		s.singlePerVisitor = enabled
	}
}

// WithMaxAvatarBytes sets the avatar upload size limit.
func WithMaxAvatarBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAvatarBytes = n
		}
	}
}

// WithWritebackQueueSize bounds the write-back queue.
func WithWritebackQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.writebackQueueSize = n
		}
	}
}

// WithWritebackWorkers sets the number of write-back workers.
func WithWritebackWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.writebackWorkers = n
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

// New constructs a Service with default configuration: in-memory stores, a
// 4-doubling unbounded plan, quadrant placement on layer 0, and the
// one-word-per-visitor constraint on.
func New(opts ...Option) *Service {
	s := &Service{
		plan:               ring.NewPlan(),
		mapper:             geometry.NewMapper(),
		folder:             word.NewFolder(""),
		limits:             word.DefaultLimits(),
		singlePerVisitor:   true,
		maxAvatarBytes:     DefaultMaxAvatarBytes,
		writebackQueueSize: defaultWritebackQueueSize,
		writebackWorkers:   defaultWritebackWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes missing collaborators and launches the write-back
// pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory record store")
	}
	if s.blobs == nil {
		s.blobs = blob.NewMemStore()
		s.logger.Info(ctx, "using in-memory blob store")
	}

	s.writebackQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.writebackQueueSize))
	s.writebackPool = worker.NewPool(s.writebackWorkers, s.writebackQueue, s.store)

	// Workers outlive individual requests; they stop when the service does.
	workerCtx, cancel := context.WithCancel(context.Background())
	s.writebackCancel = cancel
	s.writebackPool.Start(workerCtx)

	s.started = true
	s.logger.Info(ctx, "word ring service started",
		logger.Int("baseCapacity", s.plan.Capacity(0)),
		logger.Int("maxLayer", s.plan.MaxLayer()),
		logger.Bool("singlePerVisitor", s.singlePerVisitor),
		logger.Int("writebackWorkers", s.writebackWorkers),
	)
	return nil
}

// Stop drains and shuts down the write-back pipeline.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.writebackQueue != nil {
		_ = s.writebackQueue.Close()
	}
	if s.writebackPool != nil {
		s.writebackPool.Stop()
	}
	if s.writebackCancel != nil {
		s.writebackCancel()
	}
	s.started = false
	s.logger.Info(context.Background(), "word ring service stopped")
}

// ListWords returns every word with its final coordinate, reconciling
// entries that lack one. Reconciled coordinates are persisted
// asynchronously; a write-back failure never affects the response.
func (s *Service) ListWords(ctx context.Context) ([]WordView, error) {
	start := time.Now()
	entries, err := s.store.List(ctx)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}

	res := reconcile.Pass(s.plan, entries)
	metrics.RecordReconcilePass()
	metrics.RecordReconcileAssignments(len(res.Assignments))
	metrics.RecordReconcileUnplaced(res.Unplaced)

	if len(res.Assignments) > 0 {
		if ok := s.writebackQueue.Enqueue(ctx, queue.Batch{Assignments: res.Assignments}); !ok {
			// The next read regenerates the same batch; losing this one
			// costs nothing but the retry.
			s.logger.Warn(ctx, "write-back queue rejected batch",
				logger.Int("assignments", len(res.Assignments)),
			)
		}
	}

	s.updateRingGauges(res.Entries)
	return s.views(ctx, res.Entries), nil
}

// Contribute validates and stores a new word with a freshly claimed
// coordinate. The entry is never created unpositioned: if no slot exists
// the contribution is rejected with ring.ErrRingFull.
func (s *Service) Contribute(ctx context.Context, in Contribution) (WordView, error) {
	if err := word.Validate(s.limits, in.Term, in.DisplayName, in.OwnerToken); err != nil {
		return WordView{}, err
	}
	if in.Avatar != nil && in.AvatarSize > s.maxAvatarBytes {
		return WordView{}, ErrAvatarTooLarge
	}

	avatarRef, err := s.uploadAvatar(ctx, in)
	if err != nil {
		return WordView{}, err
	}

	entry := word.Entry{
		Term:        strings.TrimSpace(in.Term),
		DisplayName: strings.TrimSpace(in.DisplayName),
		OwnerToken:  in.OwnerToken,
		AvatarRef:   avatarRef,
	}

	var created word.Entry
	for attempt := 0; ; attempt++ {
		created, err = s.tryInsert(ctx, entry)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrSlotTaken) && attempt+1 < slotClaimAttempts {
			// A racing contribution won the slot; rebuild occupancy and
			// claim the next one.
			continue
		}
		s.discardAvatar(ctx, avatarRef)
		return WordView{}, err
	}

	metrics.RecordContribution()
	s.logger.Info(ctx, "word contributed",
		logger.String("id", created.ID),
		logger.Int("layer", created.Position.Layer),
		logger.Int("slot", created.Position.Slot),
	)
	return s.view(ctx, created), nil
}

// tryInsert loads current occupancy, checks the uniqueness constraints,
// claims the lowest free slot, and inserts. Returns
// repository.ErrSlotTaken when the store-level uniqueness constraint loses
// the race.
func (s *Service) tryInsert(ctx context.Context, entry word.Entry) (word.Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return word.Entry{}, fmt.Errorf("load words: %w", err)
	}

	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		terms = append(terms, e.Term)
		if s.singlePerVisitor && e.OwnerToken == entry.OwnerToken {
			metrics.RecordVisitorConflict()
			return word.Entry{}, ErrVisitorHasWord
		}
	}
	if word.NewTermSet(s.folder, terms...).Has(entry.Term) {
		metrics.RecordDuplicateTerm()
		return word.Entry{}, ErrDuplicateTerm
	}

	// Claim against post-reconciliation occupancy so pending legacy
	// entries keep their place in line.
	res := reconcile.Pass(s.plan, entries)
	coords := make([]ring.Coordinate, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e.Positioned() {
			coords = append(coords, *e.Position)
		}
	}
	c, err := ring.NewOccupancy(coords...).ClaimNext(s.plan)
	if err != nil {
		metrics.RecordRingFull()
		return word.Entry{}, err
	}

	start := time.Now()
	created, err := s.store.Insert(ctx, entry.WithPosition(c))
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return word.Entry{}, err
		}
		return word.Entry{}, fmt.Errorf("insert word: %w", err)
	}
	return created, nil
}

// DeleteWord removes a word if the token owns it, freeing its slot
// implicitly. The avatar blob is deleted best-effort.
func (s *Service) DeleteWord(ctx context.Context, id, ownerToken string) error {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.OwnerToken != ownerToken {
		return ErrNotOwner
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordDeletion()
	s.discardAvatar(ctx, e.AvatarRef)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"baseCapacity":     s.plan.Capacity(0),
		"maxLayer":         s.plan.MaxLayer(),
		"totalCapacity":    s.plan.TotalCapacity(),
		"singlePerVisitor": s.singlePerVisitor,
	}
	if s.started {
		total := s.store.Count(ctx)
		stats["totalWords"] = total
		stats["writebackQueueLength"] = s.writebackQueue.Len(ctx)
		metrics.UpdateTotalWords(total)
	}
	return stats
}

// uploadAvatar stores the avatar blob, if any, and returns its key.
func (s *Service) uploadAvatar(ctx context.Context, in Contribution) (string, error) {
	if in.Avatar == nil {
		return "", nil
	}
	ext := strings.ToLower(path.Ext(in.AvatarFilename))
	key := "avatars/" + uuid.NewString() + ext
	if err := s.blobs.Upload(ctx, key, in.Avatar, in.AvatarContentType); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return key, nil
}

// discardAvatar removes an uploaded blob best-effort.
func (s *Service) discardAvatar(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.blobs.Delete(ctx, ref); err != nil {
		s.logger.Warn(ctx, "avatar cleanup failed",
			logger.String("ref", ref),
			logger.Error(err),
		)
	}
}

// updateRingGauges refreshes the total and per-layer occupancy gauges.
func (s *Service) updateRingGauges(entries []word.Entry) {
	coords := make([]ring.Coordinate, 0, len(entries))
	for _, e := range entries {
		if e.Positioned() {
			coords = append(coords, *e.Position)
		}
	}
	occupancy := ring.NewOccupancy(coords...)
	metrics.UpdateTotalWords(len(entries))
	for layer, count := range occupancy.CountByLayer() {
		metrics.UpdateLayerOccupancy(layer, count)
	}
}
