package analytics

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/internal/testutil"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	gets   int
	sets   int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return errors.NotFound("cache miss")
	}
	return json.Unmarshal(b, dest)
}

func (m *mockCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

// gatedTracer holds the first engine stage until release is closed.
type gatedTracer struct {
	trace.Tracer
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedTracer() *gatedTracer {
	return &gatedTracer{
		Tracer:  noop.NewTracerProvider().Tracer("test"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if name == "analytics.resolve" {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.Tracer.Start(ctx, name, opts...)
}

func serviceQuery() Query {
	return Query{
		Groups: []GroupSelection{competitors("A", "B")},
		Detail: &DetailQuery{Topic: "Service", Search: "gut"},
	}
}

func TestService_QueryCachesResult(t *testing.T) {
	ds := testutil.ServiceScenario(t)
	cache := newMockCache()
	log := testutil.NewMockLogger()
	svc := NewService(NewEngine(ds), log, WithCache(cache, time.Minute))
	ctx := context.Background()

	first, err := svc.Query(ctx, serviceQuery())
	require.NoError(t, err)
	keys := cache.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "query:"+ds.Fingerprint()+":"))
	assert.Equal(t, time.Minute, cache.ttls[keys[0]])
	assert.True(t, log.HasMessage("info", "query computed"))

	second, err := svc.Query(ctx, serviceQuery())
	require.NoError(t, err)
	assert.True(t, log.HasMessage("debug", "query served from cache"))
	assert.Equal(t, 1, cache.sets)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))
}

func TestService_DefaultedQueriesShareKey(t *testing.T) {
	cache := newMockCache()
	svc := NewService(NewEngine(testutil.ServiceScenario(t)), nil, WithCache(cache, 0))
	ctx := context.Background()

	_, err := svc.Query(ctx, Query{Groups: []GroupSelection{competitors("A")}})
	require.NoError(t, err)
	_, err = svc.Query(ctx, Query{Groups: []GroupSelection{competitors("A")}, PercentThreshold: f64(10), RatingThreshold: f64(1)})
	require.NoError(t, err)
	_, err = svc.Query(ctx, Query{Groups: []GroupSelection{competitors("A")}, PercentThreshold: f64(20)})
	require.NoError(t, err)

	assert.Len(t, cache.keys(), 2)
	assert.Equal(t, DefaultCacheTTL, cache.ttls[cache.keys()[0]])
}

func TestService_CacheFailureFallsBackToEngine(t *testing.T) {
	cache := newMockCache()
	cache.getErr = stderrors.New("redis down")
	cache.setErr = stderrors.New("redis down")
	log := testutil.NewMockLogger()
	svc := NewService(NewEngine(testutil.ServiceScenario(t)), log, WithCache(cache, time.Minute))

	res, err := svc.Query(context.Background(), serviceQuery())
	require.NoError(t, err)
	assert.Equal(t, 10, res.Summary.Respondents)
	assert.True(t, log.HasMessage("warn", "cache read failed"))
	assert.True(t, log.HasMessage("warn", "cache write failed"))
}

func TestService_ValidationSkipsCache(t *testing.T) {
	cache := newMockCache()
	svc := NewService(NewEngine(testutil.ServiceScenario(t)), nil, WithCache(cache, time.Minute))

	q := serviceQuery()
	q.Detail.Topic = "Parkplatz"
	_, err := svc.Query(context.Background(), q)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownTopic))
	assert.Equal(t, 0, cache.gets)
	assert.Error(t, svc.Validate(context.Background(), q))
}

func TestService_WithoutCache(t *testing.T) {
	svc := NewService(NewEngine(testutil.ServiceScenario(t)), nil)
	res, err := svc.Query(context.Background(), serviceQuery())
	require.NoError(t, err)
	assert.Len(t, res.Reviews.Rows, 3)
	assert.Equal(t, 10, svc.Meta(context.Background()).Records)
}

func TestService_RecordsMetrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "rp"}, nil)
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(collector)
	cache := newMockCache()
	svc := NewService(NewEngine(testutil.ServiceScenario(t)), nil, WithCache(cache, time.Minute), WithMetrics(m))
	ctx := context.Background()

	_, err = svc.Query(ctx, serviceQuery())
	require.NoError(t, err)
	_, err = svc.Query(ctx, serviceQuery())
	require.NoError(t, err)
	_, _ = svc.Query(ctx, Query{})

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `rp_analytics_queries_total{source="engine",status="ok"} 1`)
	assert.Contains(t, out, `rp_analytics_queries_total{source="cache",status="ok"} 1`)
	assert.Contains(t, out, `rp_analytics_queries_total{source="engine",status="invalid"} 1`)
	assert.Contains(t, out, `rp_cache_hits_total{cache="query"} 1`)
	assert.Contains(t, out, `rp_cache_misses_total{cache="query"} 1`)
	assert.Contains(t, out, `rp_analytics_validation_errors_total{code="ANA_007"} 1`)
}

func TestService_CancelledCallerDoesNotFailSharedQuery(t *testing.T) {
	gate := newGatedTracer()
	cache := newMockCache()
	svc := NewService(NewEngine(testutil.ServiceScenario(t), WithTracer(gate)), nil, WithCache(cache, time.Minute))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Query(firstCtx, serviceQuery())
		firstErr <- err
	}()
	<-gate.entered

	type outcome struct {
		res *QueryResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := svc.Query(context.Background(), serviceQuery())
		second <- outcome{res, err}
	}()
	require.Eventually(t, func() bool {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		return cache.gets == 2
	}, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
		assert.True(t, stderrors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared computation")
	}

	close(gate.release)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		require.NotNil(t, got.res)
		assert.Equal(t, 10, got.res.Summary.Respondents)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not receive the result")
	}
}

func TestService_QuerySpanWrapsEngineStages(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")
	engine := NewEngine(testutil.ServiceScenario(t), WithTracer(tracer))
	cache := newMockCache()
	svc := NewService(engine, nil, WithServiceTracer(tracer), WithCache(cache, time.Minute))
	ctx := context.Background()

	_, err := svc.Query(ctx, serviceQuery())
	require.NoError(t, err)
	_, err = svc.Query(ctx, serviceQuery())
	require.NoError(t, err)

	var roots []sdktrace.ReadOnlySpan
	children := 0
	for _, s := range rec.Ended() {
		if s.Name() == "analytics.Query" {
			roots = append(roots, s)
			continue
		}
		children++
		assert.True(t, s.Parent().IsValid(), s.Name())
	}
	require.Len(t, roots, 2)
	assert.Equal(t, 5, children, "the cached query runs no engine stages")

	sources := map[string]bool{}
	for _, r := range roots {
		for _, kv := range r.Attributes() {
			if kv.Key == "query.source" {
				sources[kv.Value.AsString()] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{"engine": true, "cache": true}, sources)
}

//Personal.AI order the ending
