package services

import (
	"context"
	"strings"
	"time"

	"socialgraph/application/ports"
	"socialgraph/domain/model"
)

// eventLog records store and cache calls in order, so tests can assert that
// store writes complete before cache invalidations are issued.
type eventLog struct {
	events []string
}

func (l *eventLog) add(event string) {
	l.events = append(l.events, event)
}

type capturedQuery struct {
	query  string
	params map[string]any
}

type fakeStore struct {
	log     *eventLog
	readFn  func(query string, params map[string]any) ([]ports.Record, error)
	writeFn func(query string, params map[string]any) ([]ports.Record, error)
	queryFn func(query string, params map[string]any) ([]ports.Record, error)
	reads   []capturedQuery
	writes  []capturedQuery
}

func newFakeStore(log *eventLog) *fakeStore {
	return &fakeStore{log: log}
}

func (f *fakeStore) ExecuteRead(_ context.Context, query string, params map[string]any) ([]ports.Record, error) {
	f.log.add("store.read")
	f.reads = append(f.reads, capturedQuery{query, params})
	if f.readFn == nil {
		return nil, nil
	}
	return f.readFn(query, params)
}

func (f *fakeStore) ExecuteWrite(_ context.Context, query string, params map[string]any) ([]ports.Record, error) {
	f.log.add("store.write")
	f.writes = append(f.writes, capturedQuery{query, params})
	if f.writeFn == nil {
		return nil, nil
	}
	return f.writeFn(query, params)
}

func (f *fakeStore) ExecuteQuery(_ context.Context, query string, params map[string]any) ([]ports.Record, error) {
	f.log.add("store.query")
	f.reads = append(f.reads, capturedQuery{query, params})
	if f.queryFn == nil {
		return nil, nil
	}
	return f.queryFn(query, params)
}

func (f *fakeStore) ProvisionSchema(context.Context) error {
	f.log.add("store.provision")
	return nil
}

func (f *fakeStore) VerifyConnectivity(context.Context) error {
	return nil
}

type fakeCache struct {
	log     *eventLog
	entries map[string]string
	ttls    map[string]time.Duration
}

func newFakeCache(log *eventLog) *fakeCache {
	return &fakeCache{log: log, entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, bool) {
	f.log.add("cache.get " + key)
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	f.log.add("cache.set " + key)
	f.entries[key] = value
	f.ttls[key] = ttl
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		f.log.add("cache.delete " + key)
		delete(f.entries, key)
	}
}

func (f *fakeCache) DeletePattern(_ context.Context, pattern string) {
	f.log.add("cache.deletepattern " + pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
}

func (f *fakeCache) GetMany(_ context.Context, keys []string) map[string]string {
	out := map[string]string{}
	for _, key := range keys {
		if v, ok := f.entries[key]; ok {
			out[key] = v
		}
	}
	return out
}

func (f *fakeCache) SetMany(_ context.Context, entries map[string]string, ttl time.Duration) {
	for key, value := range entries {
		f.entries[key] = value
		f.ttls[key] = ttl
	}
}

func (f *fakeCache) Increment(_ context.Context, key string, amount int64) int64 {
	return amount
}

func (f *fakeCache) GetTTL(_ context.Context, key string) time.Duration {
	if ttl, ok := f.ttls[key]; ok {
		return ttl
	}
	return -2 * time.Second
}

// fakeAnalytics exercises ranking and filtering logic without a live store.
type fakeAnalytics struct {
	path        *model.PathResult
	pathErr     error
	ranked      []model.RankedNode
	assignments []model.CommunityAssignment
	centrality  model.CentralityScores
}

func (f *fakeAnalytics) ShortestPath(context.Context, string, string, int) (*model.PathResult, error) {
	if f.pathErr != nil {
		return nil, f.pathErr
	}
	return f.path, nil
}

func (f *fakeAnalytics) PageRank(context.Context, int, float64) ([]model.RankedNode, error) {
	return f.ranked, nil
}

func (f *fakeAnalytics) CommunityDetect(context.Context, string) ([]model.CommunityAssignment, error) {
	return f.assignments, nil
}

func (f *fakeAnalytics) Centrality(context.Context, string) (model.CentralityScores, error) {
	return f.centrality, nil
}

type fixture struct {
	service   *GraphService
	store     *fakeStore
	cache     *fakeCache
	analytics *fakeAnalytics
	log       *eventLog
}

func newFixture(opts Options) *fixture {
	log := &eventLog{}
	store := newFakeStore(log)
	cache := newFakeCache(log)
	analytics := &fakeAnalytics{}
	return &fixture{
		service:   NewGraphService(store, cache, analytics, testLogger(), opts),
		store:     store,
		cache:     cache,
		analytics: analytics,
		log:       log,
	}
}

func userRecord(id, username string) map[string]any {
	return map[string]any{
		"id":         id,
		"username":   username,
		"metadata":   "{}",
		"tags":       []any{},
		"created_at": "2026-03-01T10:00:00Z",
		"updated_at": "2026-03-01T10:00:00Z",
	}
}
