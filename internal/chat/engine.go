// Package chat wires the request understanding pipeline together:
// safety screening, intent classification, parameter extraction,
// catalog retrieval, and response assembly. The engine is transport
// agnostic; HTTP handlers and the websocket layer both drive it.
package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/phonewise/phonewise-be/internal/cache"
	"github.com/phonewise/phonewise-be/internal/circuitbreaker"
	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
	"github.com/phonewise/phonewise-be/internal/extract"
	"github.com/phonewise/phonewise-be/internal/memory"
	"github.com/phonewise/phonewise-be/internal/privacy"
	"github.com/phonewise/phonewise-be/internal/query"
	"github.com/phonewise/phonewise-be/internal/response"
	"github.com/phonewise/phonewise-be/internal/safety"
	"github.com/phonewise/phonewise-be/pkg/llm"
)

// Interfaces for dependencies

type SafetyFilter interface {
	CheckInput(message string) safety.CheckResult
	SanitizeOutput(text string) string
	SafeResponse(result safety.CheckResult) string
}

type Classifier interface {
	Classify(message string) classifier.Result
}

type QueryProcessor interface {
	Process(message string, res classifier.Result) query.Criteria
	ComparisonSet(message string, phones []db.Phone) []int
}

type Store interface {
	SearchPhones(ctx context.Context, f db.SearchFilters, limit int) ([]db.Phone, error)
	GetPhones(ctx context.Context, ids []int) ([]db.Phone, error)
	ListPhones(ctx context.Context, limit, offset int) ([]db.Phone, error)
	GetPhonesByBrand(ctx context.Context, brand string, limit int) ([]db.Phone, error)
	GetPhonesByPriceRange(ctx context.Context, minPrice, maxPrice, limit int) ([]db.Phone, error)
	GetGamingPhones(ctx context.Context, limit int) ([]db.Phone, error)
	GetCameraPhones(ctx context.Context, limit int) ([]db.Phone, error)
	GetBatteryPhones(ctx context.Context, minBattery, limit int) ([]db.Phone, error)
	AddMessage(ctx context.Context, sessionID, role, content, metadata string) (*db.Message, error)
	GetHistory(ctx context.Context, sessionID string, limit int) ([]db.Message, error)
	ClearConversation(ctx context.Context, sessionID string) (bool, error)
	LogQuery(ctx context.Context, rec db.QueryRecord) error
}

const (
	resultLimit      = 10
	comparisonPool   = 50
	defaultMaxPrice  = 30000
	minBatteryMAh    = 5000
	historyLimit     = 20
	cacheTTL         = time.Hour
	generationWindow = 30 * time.Second
)

// Engine handles core conversation logic independent of transport
type Engine struct {
	safety    SafetyFilter
	cls       Classifier
	processor QueryProcessor
	store     Store
	extractor *extract.Extractor
	assembler *response.Assembler
	memory    *memory.Manager
	respCache cache.Cache
	breaker   *circuitbreaker.CircuitBreaker
}

// NewEngine creates a chat engine. All language model traffic goes
// through a circuit breaker with a per-call timeout, so a degraded
// backend degrades to deterministic answers instead of hanging chats.
func NewEngine(sf SafetyFilter, cls Classifier, proc QueryProcessor, store Store, client llm.Client, respCache cache.Cache, mem *memory.Manager) *Engine {
	breaker := circuitbreaker.New(5, 5*time.Minute)
	guarded := &guardedClient{inner: client, breaker: breaker, timeout: generationWindow}

	return &Engine{
		safety:    sf,
		cls:       cls,
		processor: proc,
		store:     store,
		extractor: extract.NewExtractor(guarded),
		assembler: response.NewAssembler(guarded),
		memory:    mem,
		respCache: respCache,
		breaker:   breaker,
	}
}

// ProcessMessage runs one chat turn and returns the assembled reply
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, message string) (response.Response, error) {
	start := time.Now()
	log.Printf("Processing message: session=%s, query=%s", sessionID, privacy.SanitizeForLogging(message))

	check := e.safety.CheckInput(message)
	if !check.IsSafe {
		log.Printf("Unsafe input rejected: %s (severity %s)", check.Reason, check.Severity)
		resp := response.Response{
			Response:    e.safety.SafeResponse(check),
			Products:    []db.Phone{},
			Intent:      classifier.IntentAdversarial,
			Suggestions: []string{"Best phones under 30,000", "Compare Samsung vs OnePlus", "Explain AMOLED"},
		}
		e.logQuery(ctx, message, classifier.IntentAdversarial, 0, start, true)
		return resp, nil
	}

	res := e.cls.Classify(message)
	log.Printf("Intent classified: %s (confidence %.2f)", res.Intent, res.Confidence)

	if cached, ok := e.lookupCache(ctx, message); ok {
		log.Printf("Cache hit for session=%s", sessionID)
		e.persistTurn(ctx, sessionID, message, cached)
		e.logQuery(ctx, message, cached.Intent, len(cached.Products), start, false)
		return cached, nil
	}

	// Model-extracted parameters fill gaps the rules missed. Skipped
	// while the circuit is open.
	if e.breaker.State() != circuitbreaker.StateOpen {
		extracted := e.extractor.SearchParams(ctx, message, res.Intent)
		res.Params = extract.Merge(res.Params, extracted)
	}

	criteria := e.processor.Process(message, res)

	phones, err := e.phonesForIntent(ctx, res, criteria)
	if err != nil {
		log.Printf("Catalog lookup failed: %v", err)
		return response.Response{}, err
	}
	log.Printf("Found %d phones", len(phones))

	if res.Intent == classifier.IntentCompare {
		phones, err = e.comparisonPhones(ctx, message, phones)
		if err != nil {
			return response.Response{}, err
		}
	}

	resp := e.assembler.Assemble(ctx, message, res, phones)
	resp.Response = e.safety.SanitizeOutput(resp.Response)

	e.persistTurn(ctx, sessionID, message, resp)
	e.storeCache(ctx, message, resp)
	e.logQuery(ctx, message, resp.Intent, len(resp.Products), start, false)

	return resp, nil
}

// History returns the session's recent messages, preferring the
// in-process cache and warming it from the database on a miss
func (e *Engine) History(ctx context.Context, sessionID string) ([]memory.Message, error) {
	if recent := e.memory.History(sessionID); len(recent) > 0 {
		return recent, nil
	}

	stored, err := e.store.GetHistory(ctx, sessionID, historyLimit)
	if err != nil {
		return nil, err
	}

	history := make([]memory.Message, len(stored))
	for i, msg := range stored {
		history[i] = memory.Message{Role: msg.Role, Content: msg.Content, Timestamp: msg.CreatedAt}
		e.memory.AddMessage(sessionID, history[i])
	}
	return history, nil
}

// ClearSession drops the session's history everywhere. The returned
// bool reports whether the session existed.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	e.memory.Clear(sessionID)
	return e.store.ClearConversation(ctx, sessionID)
}

// BreakerState exposes the circuit state for health reporting
func (e *Engine) BreakerState() circuitbreaker.State {
	return e.breaker.State()
}

// phonesForIntent fetches catalog candidates for the classified intent.
// Brand and budget intents use their dedicated queries, feature-driven
// searches use preset queries, everything else runs a filtered search.
func (e *Engine) phonesForIntent(ctx context.Context, res classifier.Result, criteria query.Criteria) ([]db.Phone, error) {
	filters := criteria.Filters

	if res.Intent == classifier.IntentBrand && filters.Brand != "" {
		return e.store.GetPhonesByBrand(ctx, filters.Brand, resultLimit)
	}

	if res.Intent == classifier.IntentBudget || filters.MaxPrice > 0 {
		maxPrice := filters.MaxPrice
		if maxPrice == 0 {
			maxPrice = defaultMaxPrice
		}
		return e.store.GetPhonesByPriceRange(ctx, filters.MinPrice, maxPrice, resultLimit)
	}

	switch criteria.SearchType {
	case query.SearchTypeGaming:
		return e.store.GetGamingPhones(ctx, resultLimit)
	case query.SearchTypeCamera:
		return e.store.GetCameraPhones(ctx, resultLimit)
	case query.SearchTypeBattery:
		return e.store.GetBatteryPhones(ctx, minBatteryMAh, resultLimit)
	}

	return e.store.SearchPhones(ctx, filters, resultLimit)
}

// comparisonPhones resolves the phones a comparison refers to across
// the whole catalog, falling back to the intent results when nothing is
// named explicitly
func (e *Engine) comparisonPhones(ctx context.Context, message string, current []db.Phone) ([]db.Phone, error) {
	pool, err := e.store.ListPhones(ctx, comparisonPool, 0)
	if err != nil {
		return nil, err
	}

	ids := e.processor.ComparisonSet(message, pool)
	if len(ids) == 0 {
		return current, nil
	}
	return e.store.GetPhones(ctx, ids)
}

// persistTurn saves both sides of the exchange to the database and the
// short-term memory. Persistence failures are logged, not fatal.
func (e *Engine) persistTurn(ctx context.Context, sessionID, message string, resp response.Response) {
	productIDs := make([]int, len(resp.Products))
	for i, p := range resp.Products {
		productIDs[i] = p.ID
	}

	if _, err := e.store.AddMessage(ctx, sessionID, "user", message, metadata(map[string]any{"intent": resp.Intent})); err != nil {
		log.Printf("Failed to save user message: %v", err)
	}
	if _, err := e.store.AddMessage(ctx, sessionID, "assistant", resp.Response, metadata(map[string]any{"intent": resp.Intent, "product_ids": productIDs})); err != nil {
		log.Printf("Failed to save assistant message: %v", err)
	}

	now := time.Now()
	e.memory.AddMessage(sessionID, memory.Message{Role: "user", Content: message, Timestamp: now})
	e.memory.AddMessage(sessionID, memory.Message{Role: "assistant", Content: resp.Response, Timestamp: now})
}

func (e *Engine) lookupCache(ctx context.Context, message string) (response.Response, bool) {
	raw, ok := e.respCache.Get(ctx, cache.Key(message))
	if !ok {
		return response.Response{}, false
	}

	var resp response.Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return response.Response{}, false
	}
	return resp, true
}

func (e *Engine) storeCache(ctx context.Context, message string, resp response.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	e.respCache.Set(ctx, cache.Key(message), string(raw), cacheTTL)
}

// logQuery records analytics with the query redacted
func (e *Engine) logQuery(ctx context.Context, message string, intent classifier.Intent, products int, start time.Time, adversarial bool) {
	rec := db.QueryRecord{
		Query:            privacy.RedactSensitiveData(message),
		Intent:           string(intent),
		ProductsReturned: products,
		ResponseTimeMs:   int(time.Since(start).Milliseconds()),
		WasAdversarial:   adversarial,
	}
	if err := e.store.LogQuery(ctx, rec); err != nil {
		log.Printf("Failed to log analytics: %v", err)
	}
}

func metadata(fields map[string]any) string {
	raw, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(raw)
}

// guardedClient wraps the model client with the circuit breaker and a
// per-call timeout
type guardedClient struct {
	inner   llm.Client
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
}

var _ llm.Client = (*guardedClient)(nil)

func (g *guardedClient) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	var text string
	err := g.breaker.Call(func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		var genErr error
		text, genErr = g.inner.Generate(callCtx, prompt, maxTokens, temperature)
		return genErr
	})
	return text, err
}

func (g *guardedClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	var resp *llm.ChatResponse
	err := g.breaker.Call(func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		var callErr error
		resp, callErr = g.inner.ChatCompletion(callCtx, req)
		return callErr
	})
	return resp, err
}
