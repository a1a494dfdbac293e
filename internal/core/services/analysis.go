package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/insight/internal/analysis/chunker"
	"github.com/custodia-labs/insight/internal/analysis/merge"
	"github.com/custodia-labs/insight/internal/analysis/prompt"
	"github.com/custodia-labs/insight/internal/analysis/response"
	"github.com/custodia-labs/insight/internal/analysis/tree"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure AnalysisOrchestrator implements the interface.
var _ driving.AnalysisService = (*AnalysisOrchestrator)(nil)

// defaultRetryBackoff is the first transport retry delay; it doubles per attempt.
const defaultRetryBackoff = time.Second

// AnalysisConfig tunes chunking, concurrency and retries.
type AnalysisConfig struct {
	// ChunkThresholdWords is the largest word count analysed in one pass.
	ChunkThresholdWords int

	// ChunkTargetWords is the soft upper bound per chunk.
	ChunkTargetWords int

	// Concurrency bounds in-flight chunk completions.
	Concurrency int

	// TransportRetries is the number of extra attempts after a network failure.
	TransportRetries int

	// ParseRetries is the number of repair prompts sent after unparseable output.
	ParseRetries int

	// RetryBackoff is the delay before the first transport retry.
	RetryBackoff time.Duration

	// MaxTokens is the completion budget per call.
	MaxTokens int
}

// DefaultAnalysisConfig returns the documented defaults.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfigFromSettings(domain.DefaultAppSettings())
}

// AnalysisConfigFromSettings derives an AnalysisConfig from user settings.
func AnalysisConfigFromSettings(s domain.AppSettings) AnalysisConfig {
	return AnalysisConfig{
		ChunkThresholdWords: s.Analysis.ChunkThresholdWords,
		ChunkTargetWords:    s.Analysis.ChunkTargetWords,
		Concurrency:         s.Analysis.Concurrency,
		TransportRetries:    s.Analysis.TransportRetries,
		ParseRetries:        s.Analysis.ParseRetries,
		RetryBackoff:        defaultRetryBackoff,
		MaxTokens:           s.LLM.MaxTokens,
	}
}

func (c AnalysisConfig) withDefaults() AnalysisConfig {
	d := DefaultAnalysisConfig()
	if c.ChunkThresholdWords <= 0 {
		c.ChunkThresholdWords = d.ChunkThresholdWords
	}
	if c.ChunkTargetWords <= 0 {
		c.ChunkTargetWords = d.ChunkTargetWords
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.TransportRetries < 0 {
		c.TransportRetries = 0
	}
	if c.ParseRetries < 0 {
		c.ParseRetries = 0
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	return c
}

// AnalysisOption configures an AnalysisOrchestrator.
type AnalysisOption func(*AnalysisOrchestrator)

// WithPromptBuilder replaces the default prompt builder.
func WithPromptBuilder(b *prompt.Builder) AnalysisOption {
	return func(o *AnalysisOrchestrator) {
		o.prompts = b
	}
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) AnalysisOption {
	return func(o *AnalysisOrchestrator) {
		o.now = now
	}
}

// WithIDGenerator replaces uuid generation for result, concept and excerpt ids.
func WithIDGenerator(newID func() string) AnalysisOption {
	return func(o *AnalysisOrchestrator) {
		o.newID = newID
	}
}

// AnalysisOrchestrator drives one document through chunking, completion,
// parsing, merging and tree assembly, then hands the result to storage.
type AnalysisOrchestrator struct {
	client  driven.CompletionClient
	store   driven.AnalysisStore
	prompts *prompt.Builder
	chunker *chunker.Chunker
	cfg     AnalysisConfig
	now     func() time.Time
	newID   func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewAnalysisOrchestrator creates a new orchestrator.
// store may be nil, in which case results are returned but not persisted.
func NewAnalysisOrchestrator(
	client driven.CompletionClient,
	store driven.AnalysisStore,
	cfg AnalysisConfig,
	opts ...AnalysisOption,
) *AnalysisOrchestrator {
	cfg = cfg.withDefaults()
	o := &AnalysisOrchestrator{
		client:   client,
		store:    store,
		prompts:  prompt.NewBuilder(nil),
		chunker:  chunker.New(chunker.WithTargetWords(cfg.ChunkTargetWords)),
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the effective configuration.
func (o *AnalysisOrchestrator) Config() AnalysisConfig {
	return o.cfg
}

// Analyze runs the full pipeline over doc.
// On failure the error is a *domain.AnalysisError and nothing is saved.
func (o *AnalysisOrchestrator) Analyze(
	ctx context.Context,
	doc *domain.ParsedDocument,
	progress domain.ProgressFunc,
) (*domain.AnalysisResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if o.client == nil {
		return nil, domain.ErrLLMUnavailable
	}

	key := doc.Key()
	if !o.acquire(key) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAnalysisInProgress, key)
	}
	defer o.release(key)

	r := &analysisRun{doc: doc, progress: progress}
	result, err := o.run(ctx, r)
	if err != nil {
		var ae *domain.AnalysisError
		if !errors.As(err, &ae) {
			ae = r.fail(r.phase, 0, err)
		}
		r.emit(domain.Progress{Phase: domain.PhaseFailed, Message: ae.Error(), Err: ae})
		logger.Warn("%v", ae)
		return nil, ae
	}
	return result, nil
}

func (o *AnalysisOrchestrator) run(ctx context.Context, r *analysisRun) (*domain.AnalysisResult, error) {
	doc := r.doc
	logger.Section("Analysis")
	r.enter(domain.PhasePreparing, 0, 0, fmt.Sprintf("Preparing %s (%d words)", doc.FileName, doc.WordCount))

	if doc.WordCount == 0 {
		return nil, r.fail(domain.PhasePreparing, 0, fmt.Errorf("%w: document has no text", domain.ErrInvalidInput))
	}

	// Template edits on disk apply from the next analysis.
	o.prompts.Reload()

	chunks, chunked := o.plan(doc)
	logger.Debug("%s: %d words, %d part(s)", doc.FileName, doc.WordCount, len(chunks))

	var (
		concepts    []domain.RawConcept
		mentalModel *domain.MentalModel
		err         error
	)
	if !chunked {
		r.enter(domain.PhaseAnalyzing, 0, 1, "Analyzing document")
		concepts, mentalModel, err = o.analyzeSingle(ctx, r, chunks[0])
	} else {
		r.enter(domain.PhaseAnalyzing, 0, len(chunks), fmt.Sprintf("Analyzing %d parts", len(chunks)))
		concepts, err = o.analyzeChunks(ctx, r, chunks)
	}
	if err != nil {
		return nil, err
	}

	r.enter(domain.PhaseMerging, 0, 0, fmt.Sprintf("Merging %d concepts", len(concepts)))
	merged := merge.Merge(concepts)
	logger.Debug("merge kept %d of %d concepts", len(merged), len(concepts))

	r.enter(domain.PhaseAssembling, 0, 0, "Building concept tree")
	assembled := tree.AssembleWithIDs(merged, o.newID)
	if assembled.Demoted > 0 {
		logger.Warn("%s: %d concept(s) demoted to top level: %v", doc.FileName, assembled.Demoted, domain.ErrIntegrity)
	}
	if err := tree.Validate(assembled.Concepts); err != nil {
		return nil, r.fail(domain.PhaseAssembling, 0, err)
	}

	wordCount := doc.WordCount
	result := &domain.AnalysisResult{
		ID:           o.newID(),
		DocumentName: doc.FileName,
		DocumentType: doc.DocumentType,
		AnalyzedAt:   o.now().UTC(),
		ModelUsed:    o.client.ModelName(),
		WordCount:    &wordCount,
		MentalModel:  mentalModel,
		Concepts:     assembled.Concepts,
	}
	if doc.SourceURL != "" {
		sourceURL := doc.SourceURL
		result.SourceURL = &sourceURL
	}

	if o.store != nil {
		r.enter(domain.PhaseSaving, 0, 0, "Saving analysis")
		if err := o.store.Save(ctx, result); err != nil {
			return nil, r.fail(domain.PhaseSaving, 0, fmt.Errorf("save analysis: %w", err))
		}
	}

	msg := fmt.Sprintf("Found %d concepts", len(result.Concepts))
	if assembled.Demoted > 0 {
		msg += fmt.Sprintf(" (%d demoted to top level)", assembled.Demoted)
	}
	r.enter(domain.PhaseComplete, 0, 0, msg)
	logger.Info("%s: %s", doc.FileName, msg)
	return result, nil
}

// plan returns the text of each part and whether the document is chunked.
// Documents above the threshold are always chunked, even when they do not
// split, so their result never carries a mental model.
func (o *AnalysisOrchestrator) plan(doc *domain.ParsedDocument) ([]string, bool) {
	if doc.WordCount <= o.cfg.ChunkThresholdWords {
		return []string{doc.Text}, false
	}
	chunks := o.chunker.Split(doc.Text)
	if len(chunks) == 0 {
		return []string{doc.Text}, true
	}
	return chunks, true
}

func (o *AnalysisOrchestrator) analyzeSingle(
	ctx context.Context,
	r *analysisRun,
	text string,
) ([]domain.RawConcept, *domain.MentalModel, error) {
	resp, err := o.analyzePart(ctx, text, prompt.Part{})
	if err != nil {
		return nil, nil, r.fail(domain.PhaseAnalyzing, 0, err)
	}
	r.enter(domain.PhaseAnalyzing, 1, 1, fmt.Sprintf("Extracted %d concepts", len(resp.Concepts)))
	return merge.Qualify(0, resp.Concepts), resp.MentalModel, nil
}

// analyzeChunks runs parts on a bounded pool. Batches are collected by
// chunk index and flattened in submission order. The first failure cancels
// the remaining parts.
func (o *AnalysisOrchestrator) analyzeChunks(
	ctx context.Context,
	r *analysisRun,
	chunks []string,
) ([]domain.RawConcept, error) {
	batches := make([][]domain.RawConcept, len(chunks))
	total := len(chunks)

	var (
		doneMu sync.Mutex
		done   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)

	for i, text := range chunks {
		part := prompt.Part{Index: i, Total: total}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Debug("%s: %d words", part.Label(), chunker.WordCount(text))
			resp, err := o.analyzePart(gctx, text, part)
			if err != nil {
				return r.fail(domain.PhaseAnalyzing, part.Index+1, err)
			}
			// The mental model of an individual part is not carried into
			// the chunked result.
			batches[i] = merge.Qualify(i, resp.Concepts)

			doneMu.Lock()
			done++
			r.enter(domain.PhaseAnalyzing, done, total,
				fmt.Sprintf("Analyzed %s (%d concepts)", part.Label(), len(resp.Concepts)))
			doneMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.RawConcept
	for _, b := range batches {
		all = append(all, b...)
	}
	return all, nil
}

// analyzePart completes and parses one part. Unparseable output is retried
// with a repair prompt up to ParseRetries times.
func (o *AnalysisOrchestrator) analyzePart(
	ctx context.Context,
	text string,
	part prompt.Part,
) (*domain.AnalysisResponse, error) {
	req := driven.CompletionRequest{
		SystemPrompt: o.prompts.SystemPrompt(part),
		UserPrompt:   o.prompts.UserPrompt(text, part),
		MaxTokens:    o.cfg.MaxTokens,
	}

	for attempt := 0; ; attempt++ {
		raw, err := o.complete(ctx, req, part)
		if err != nil {
			return nil, err
		}

		resp, err := response.Parse(raw)
		if err == nil {
			return resp, nil
		}
		if attempt >= o.cfg.ParseRetries {
			return nil, err
		}
		logger.Warn("%s: unparseable response, sending repair prompt: %v", part.Label(), firstLine(err.Error()))
		req.UserPrompt = o.prompts.RepairPrompt(text, err)
	}
}

// complete calls the client, retrying transport failures with exponential
// backoff. Protocol failures are returned immediately.
func (o *AnalysisOrchestrator) complete(
	ctx context.Context,
	req driven.CompletionRequest,
	part prompt.Part,
) (string, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		done := logger.Timed(fmt.Sprintf("%s: completion attempt %d", part.Label(), attempt+1))
		text, err := o.client.Complete(ctx, req)
		done()
		if err == nil {
			return text, nil
		}

		if !errors.Is(err, domain.ErrTransport) || attempt >= o.cfg.TransportRetries {
			return "", err
		}
		delay := o.cfg.RetryBackoff << attempt
		logger.Warn("%s: %v; retrying in %s", part.Label(), err, delay)
		if err := sleepContext(ctx, delay); err != nil {
			return "", err
		}
	}
}

// Get retrieves a stored analysis by ID.
func (o *AnalysisOrchestrator) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if o.store == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return o.store.Get(ctx, id)
}

// List returns stored analysis summaries, newest first.
func (o *AnalysisOrchestrator) List(ctx context.Context) ([]domain.AnalysisSummary, error) {
	if o.store == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return o.store.List(ctx)
}

// Delete removes a stored analysis.
func (o *AnalysisOrchestrator) Delete(ctx context.Context, id string) error {
	if o.store == nil {
		return domain.ErrStorageUnavailable
	}
	return o.store.Delete(ctx, id)
}

func (o *AnalysisOrchestrator) acquire(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[key]; busy {
		return false
	}
	o.inFlight[key] = struct{}{}
	return true
}

func (o *AnalysisOrchestrator) release(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, key)
}

// analysisRun holds per-call state. Progress is delivered under emitMu so
// callbacks never run concurrently.
type analysisRun struct {
	doc      *domain.ParsedDocument
	progress domain.ProgressFunc

	emitMu sync.Mutex
	phase  domain.Phase
}

func (r *analysisRun) enter(phase domain.Phase, current, total int, msg string) {
	r.emit(domain.Progress{Phase: phase, Current: current, Total: total, Message: msg})
}

// emit delivers p unless a terminal phase was already reported.
func (r *analysisRun) emit(p domain.Progress) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	if r.phase.IsTerminal() {
		return
	}
	r.phase = p.Phase
	logger.Debug("[%s] %s", p.Phase, p.Message)
	if r.progress != nil {
		r.progress(p)
	}
}

func (r *analysisRun) fail(phase domain.Phase, chunk int, err error) *domain.AnalysisError {
	if phase == "" {
		phase = domain.PhasePreparing
	}
	return &domain.AnalysisError{
		FileName:  r.doc.FileName,
		WordCount: r.doc.WordCount,
		Phase:     phase,
		Chunk:     chunk,
		Err:       err,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
