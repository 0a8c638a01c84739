// Package service wires the scoring pipeline together and implements
// the dependencies required by the HTTP API: lead processing, signal
// ingestion, and ranked listings.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	rescorequeue "github.com/okian/scout/internal/adapters/mq/queue"
	workerpool "github.com/okian/scout/internal/adapters/mq/worker"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/internal/domain/attention"
	"github.com/okian/scout/internal/domain/classifier"
	"github.com/okian/scout/internal/domain/dedupe"
	"github.com/okian/scout/internal/domain/draft"
	"github.com/okian/scout/internal/domain/engage"
	"github.com/okian/scout/internal/domain/enrich"
	"github.com/okian/scout/internal/domain/icp"
	"github.com/okian/scout/internal/domain/intent"
	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/profile"
	"github.com/okian/scout/internal/domain/semantic"
	"github.com/okian/scout/internal/domain/signal"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// reasonNurtureQualified is the decision reason when the hybrid gate
// engages a lead the strict threshold filter parked for nurture.
const reasonNurtureQualified = "Qualified: Strong Fit + Moderate Intent"

// LeadRequest is one lead to run through the pipeline: enrichment
// identifiers plus any inline signals. When Signals is empty the
// pipeline falls back to the signals previously ingested for the
// subject.
type LeadRequest struct {
	Enrich  enrich.Request
	Signals []signal.Event
}

// Result is the full outcome of one pipeline run.
type Result struct {
	Lead             *lead.Lead
	ICP              icp.Result
	SemanticFit      float64 // 0-100
	Intent           intent.Score
	NeuralProb       float64
	AttentionWeights map[string]float64
	Decision         engage.Decision
	Draft            *draft.Message // nil unless the decision engages
}

// BatchResult pairs a pipeline result with the per-lead error, keeping
// batch positions stable.
type BatchResult struct {
	Result *Result
	Err    error
}

// Service runs the lead scoring pipeline. It owns the scoring
// components, the signal and decision stores, and the async rescore
// queue with its worker pool.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Collaborators, replaceable via options.
	enricher enrich.Enricher
	model    classifier.Classifier
	drafter  draft.Drafter
	embedder profile.Embedder

	// Scoring components, built at Start from cfg.
	sender       *profile.Sender
	icpMatcher   *icp.Matcher
	semMatcher   *semantic.Matcher
	attnWeighter *attention.Weighter
	intentScorer *intent.Scorer
	gate         *engage.Filter

	// Stores and async machinery.
	signals   repository.SignalStore
	decisions repository.DecisionStore
	deduper   dedupe.Deduper
	queue     rescorequeue.Queue
	pool      *workerpool.Pool

	// leads caches the last enriched lead per subject so rescore jobs
	// can re-run the pipeline without a fresh enrichment payload.
	leads sync.Map // subjectID -> *lead.Lead

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the service configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithEnricher replaces the enrichment collaborator.
func WithEnricher(e enrich.Enricher) Option {
	return func(s *Service) {
		if e != nil {
			s.enricher = e
		}
	}
}

// WithClassifier replaces the secondary-model collaborator.
func WithClassifier(c classifier.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.model = c
		}
	}
}

// WithDrafter replaces the outreach drafting collaborator.
func WithDrafter(d draft.Drafter) Option {
	return func(s *Service) {
		if d != nil {
			s.drafter = d
		}
	}
}

// WithEmbedder replaces the embedding encoder.
func WithEmbedder(e profile.Embedder) Option {
	return func(s *Service) {
		if e != nil {
			s.embedder = e
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

// New constructs a Service with default collaborators. Call Start
// before processing.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:      config.New(context.Background()),
		enricher: enrich.NewInMemory(),
		drafter:  draft.NewStarter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the scoring components and stores from the configuration
// and starts the rescore worker pool. Safe to call once; subsequent
// calls are no-ops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}

	cfg := s.cfg

	if s.embedder == nil {
		s.embedder = profile.NewSimEmbedder(profile.WithDim(cfg.EmbeddingDim))
	}
	if s.model == nil {
		s.model = classifier.NewStub(classifier.WithLatencyRange(
			time.Duration(cfg.ClassifierLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.ClassifierLatencyMaxMS)*time.Millisecond,
		))
	}

	s.sender = profile.NewSender(
		cfg.SenderName,
		cfg.SenderDescription,
		nil,
		cfg.SenderIndustries,
		nil,
	)

	icpCfg := icp.DefaultConfig()
	icpCfg.SizeMin = cfg.ICPSizeMin
	icpCfg.SizeMax = cfg.ICPSizeMax
	icpCfg.TargetIndustries = cfg.ICPTargetIndustries
	icpCfg.TargetTechStack = cfg.ICPTargetTech
	icpCfg.MinFundingStage = cfg.ICPMinFundingStage
	if len(cfg.ICPWeights) > 0 {
		icpCfg.Weights = cfg.ICPWeights
	}
	if err := icpCfg.Validate(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	s.icpMatcher = icp.NewMatcher(icp.WithConfig(icpCfg))

	intentCfg := intent.DefaultConfig()
	if len(cfg.SignalWeights) > 0 {
		weights := make(map[signal.Type]float64, len(cfg.SignalWeights))
		for name, w := range cfg.SignalWeights {
			weights[signal.Type(name)] = w
		}
		intentCfg.SignalWeights = weights
	}
	if cfg.DefaultSignalWeight > 0 {
		intentCfg.DefaultWeight = cfg.DefaultSignalWeight
	}
	if len(cfg.ActionModifiers) > 0 {
		intentCfg.ActionModifiers = cfg.ActionModifiers
	}
	if cfg.IntentHalfLifeHours > 0 {
		intentCfg.HalfLife = time.Duration(cfg.IntentHalfLifeHours * float64(time.Hour))
	}
	if cfg.CommitteeWindowDays > 0 {
		intentCfg.CommitteeWindow = time.Duration(cfg.CommitteeWindowDays) * 24 * time.Hour
	}
	intentCfg.HighThreshold = cfg.IntentHighThreshold
	intentCfg.MediumThreshold = cfg.IntentMediumThreshold
	s.intentScorer = intent.NewScorer(intent.WithConfig(intentCfg))

	s.semMatcher = semantic.NewMatcher(s.sender, s.embedder)
	s.attnWeighter = attention.NewWeighter(s.sender, s.embedder)

	s.gate = engage.NewFilter(engage.WithConfig(engage.Config{
		MinIntentScore:   cfg.MinIntentScore,
		MinICPScore:      cfg.MinICPScore,
		Competitors:      cfg.Competitors,
		ExcludedDomains:  cfg.ExcludedDomains,
		MaxDailyMessages: cfg.MaxDailyMessages,
	}))

	s.signals = repository.NewInMemorySignalStore()
	s.decisions = repository.NewTreapDecisionStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))
	s.queue = rescorequeue.NewInMemoryQueue(
		rescorequeue.WithCapacity(cfg.RescoreQueueSize),
		rescorequeue.WithBufferSize(cfg.RescoreQueueSize),
	)
	metrics.UpdateQueueCapacity(cfg.RescoreQueueSize)

	s.pool = workerpool.NewPool(cfg.WorkerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "pipeline started",
		logger.Int("workers", cfg.WorkerCount),
		logger.Int("queueSize", cfg.RescoreQueueSize),
		logger.Int("dedupeSize", cfg.DedupeSize),
	)
	return nil
}

// Stop drains the worker pool, closes the rescore queue, and releases
// the decision store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping pipeline...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	if closer, ok := s.decisions.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "pipeline stopped")
}

// ProcessLead runs the full pipeline for one lead: enrichment, ICP,
// semantic fit, intent (with the optional secondary model probability),
// attention weighting, the hybrid decision gate, and, on engagement,
// the outreach draft. The assembled result is persisted as the lead's
// latest decision.
func (s *Service) ProcessLead(ctx context.Context, req LeadRequest) (*Result, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}

	start := time.Now()

	l, err := s.enricher.EnrichLead(ctx, req.Enrich)
	if err != nil {
		metrics.RecordLeadFailed()
		metrics.RecordErrorByComponent("enricher", "enrich_error")
		return nil, fmt.Errorf("process lead: %w", err)
	}
	s.leads.Store(l.SubjectID, l)

	sigs := req.Signals
	if len(sigs) == 0 {
		sigs = s.signals.BySubject(ctx, l.SubjectID)
	}

	res := s.score(ctx, l, sigs)

	metrics.RecordLeadProcessed()
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))

	return res, nil
}

// ProcessBatch fans the pipeline out across leads with a bounded
// concurrency limit. A failing lead is reported in its slot and never
// aborts the batch.
func (s *Service) ProcessBatch(ctx context.Context, reqs []LeadRequest) []BatchResult {
	out := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return out
	}
	if !s.running() {
		for i := range out {
			out[i] = BatchResult{Err: ErrNotStarted}
		}
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.ProcessLead(gctx, req)
			if err != nil {
				s.logger.Warn(gctx, "batch lead failed",
					logger.String("subjectID", req.Enrich.SubjectID),
					logger.Error(err),
				)
			}
			out[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}

	// Workers never return errors; per-lead failures live in out.
	_ = g.Wait()
	return out
}

// RecordSignal validates ingestion of one signal: duplicate IDs are
// dropped, the signal is appended to the store, and an async rescore
// job is enqueued for the subject. Returns ErrBackpressure when the
// rescore queue is full; the signal itself stays recorded.
func (s *Service) RecordSignal(ctx context.Context, ev signal.Event) error {
	if !s.running() {
		return ErrNotStarted
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, ev.ID) {
		metrics.RecordSignalDuplicate()
		return ErrDuplicateSignal
	}

	if err := s.signals.Append(ctx, ev); err != nil {
		s.deduper.Unrecord(ctx, ev.ID)
		metrics.RecordSignalRejected()
		return fmt.Errorf("record signal: %w", err)
	}
	metrics.RecordSignalIngested()

	job := rescorequeue.Job{
		SubjectID: ev.SubjectID,
		CompanyID: ev.CompanyID,
		TriggerID: ev.ID,
	}
	if !s.queue.Enqueue(ctx, job) {
		s.logger.Warn(ctx, "rescore queue full, signal stored without rescore",
			logger.String("subjectID", ev.SubjectID),
			logger.String("signalID", ev.ID),
		)
		return ErrBackpressure
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return nil
}

// Rescore re-runs the scoring pipeline for a subject from its stored
// signals. Implements the worker pool's Rescorer contract. Subjects
// that were never scored before have no cached enrichment and are
// skipped until a full ProcessLead call arrives.
func (s *Service) Rescore(ctx context.Context, job rescorequeue.Job) error {
	cached, ok := s.leads.Load(job.SubjectID)
	if !ok {
		s.logger.Debug(ctx, "rescore skipped, lead not yet enriched",
			logger.String("subjectID", job.SubjectID),
		)
		return nil
	}
	l, ok := cached.(*lead.Lead)
	if !ok || l == nil {
		return fmt.Errorf("rescore %s: %w", job.SubjectID, ErrBadLeadCache)
	}

	sigs := s.signals.BySubject(ctx, job.SubjectID)
	s.score(ctx, l, sigs)
	return nil
}

// TopLeads returns the highest-intent decisions, capped by the
// configured listing limit.
func (s *Service) TopLeads(ctx context.Context, n int) ([]repository.Entry, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	if n > s.cfg.MaxTopLimit {
		n = s.cfg.MaxTopLimit
	}
	return s.decisions.TopN(ctx, n)
}

// Lead returns the latest decision and rank for a subject.
func (s *Service) Lead(ctx context.Context, subjectID string) (repository.Entry, error) {
	if !s.running() {
		return repository.Entry{}, ErrNotStarted
	}
	return s.decisions.Get(ctx, subjectID)
}

// Stats reports service state for monitoring and refreshes the related
// gauges.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.RescoreQueueSize,
		"dedupeSize":  s.cfg.DedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["totalLeads"] = s.decisions.Count(ctx)
		stats["totalSignals"] = s.signals.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateSignalStoreSize(s.signals.Count(ctx))
		metrics.UpdateDecisionStoreSize(s.decisions.Count(ctx))
	}

	return stats
}

// score runs the scoring stages for an already-enriched lead and
// persists the outcome. It never fails: collaborator errors degrade to
// neutral values so every call yields a complete decision. The cached
// lead is scored through a snapshot; concurrent rescores of one subject
// never write shared state.
func (s *Service) score(ctx context.Context, cached *lead.Lead, sigs []signal.Event) *Result {
	l := cached.Snapshot()

	icpRes := s.icpMatcher.Score(l.Company, l.Contact)
	l.ICPScore = icpRes.Score
	l.ICPBreakdown = icpRes.Breakdown

	semanticFit := s.semMatcher.Fit(l) * 100

	var companySigs []signal.Event
	if l.Company != nil && l.Company.CompanyID != "" {
		companySigs = s.signals.ByCompany(ctx, l.Company.CompanyID)
	}
	intentScore := s.intentScorer.Score(sigs, l, companySigs)

	neuralProb := s.predict(ctx, l, sigs)

	attnWeights := s.attnWeighter.Weigh(sigs)

	decision := s.decide(l, intentScore, icpRes.Score, semanticFit)

	res := &Result{
		Lead:             l,
		ICP:              icpRes,
		SemanticFit:      semanticFit,
		Intent:           intentScore,
		NeuralProb:       neuralProb,
		AttentionWeights: attnWeights,
		Decision:         decision,
	}

	if decision.ShouldEngage {
		msg := s.drafter.Draft(l, sigs)
		res.Draft = &msg
	}

	metrics.RecordIntentScore(intentScore.Score)
	metrics.RecordICPScore(icpRes.Score)
	metrics.RecordDecision(string(decision.Priority), decision.ShouldEngage)

	s.persist(ctx, res)
	return res
}

// predict asks the secondary model for a probability. Failures are
// logged and collapse to 0.0; the rule-based score stays authoritative.
func (s *Service) predict(ctx context.Context, l *lead.Lead, sigs []signal.Event) float64 {
	tokens := classifier.TokenizeLead(l, sigs, time.Now())

	start := time.Now()
	prob, err := s.model.Predict(ctx, tokens)
	metrics.RecordClassifierLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordClassifierError()
		s.logger.Warn(ctx, "secondary model inference failed",
			logger.String("subjectID", l.SubjectID),
			logger.Error(err),
		)
		return 0.0
	}
	return prob
}

// decide combines the threshold filter with the hybrid gate. The filter
// owns exclusions and priority tiers; the hybrid gate may additionally
// engage a nurture-tier lead whose ICP or semantic fit is strong.
func (s *Service) decide(l *lead.Lead, intentScore intent.Score, icpScore, semanticFit float64) engage.Decision {
	d := s.gate.Evaluate(l, intentScore, icpScore)
	if d.Excluded() || d.ShouldEngage {
		return d
	}

	fitQualified := icpScore >= s.cfg.ICPEngageThreshold || semanticFit >= s.cfg.SemanticFitThreshold
	if intentScore.Score > s.cfg.MinIntentForEngagement && fitQualified {
		d.ShouldEngage = true
		d.Priority = engage.PriorityMedium
		d.Reason = reasonNurtureQualified
	}
	return d
}

// persist stores the assembled result as the lead's latest decision.
// Store failures are logged, not returned: the decision is already
// complete and usable by the caller.
func (s *Service) persist(ctx context.Context, res *Result) {
	rec := repository.Record{
		SubjectID:     res.Lead.SubjectID,
		IntentScore:   res.Intent.Score,
		IntentLabel:   string(res.Intent.Label),
		ICPScore:      res.ICP.Score,
		SemanticScore: res.SemanticFit,
		NeuralProb:    res.NeuralProb,
		ShouldEngage:  res.Decision.ShouldEngage,
		Priority:      string(res.Decision.Priority),
		Reason:        res.Decision.Reason,
		UpdatedAt:     res.Decision.DecidedAt,
	}
	if res.Lead.Company != nil {
		rec.CompanyID = res.Lead.Company.CompanyID
	}
	if res.Draft != nil {
		rec.DraftBody = res.Draft.Body
	}

	if err := s.decisions.Put(ctx, rec); err != nil {
		metrics.RecordDecisionStoreError()
		s.logger.Error(ctx, "persist decision",
			logger.String("subjectID", rec.SubjectID),
			logger.Error(err),
		)
	}
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
