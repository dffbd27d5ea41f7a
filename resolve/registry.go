package resolve

import (
	"context"
	"sort"
	"sync"

	"github.com/software-mansion/scarb/scarbid"
)

// Registry is the resolver-facing facade over every configured Source,
// memoizing queries the way the teacher's smcache layers a sorted,
// memoized version list on top of a raw SourceManager. Unlike smcache,
// this facade is also the dispatch point choosing which Source answers a
// given SourceId, since scarb talks to several source kinds within one
// resolve, not just one vcs remote.
type Registry struct {
	mu      sync.Mutex
	sources map[string]Source
	// cache memoizes Query results per source-id+name for the lifetime of
	// one resolve. It is not persisted; Registry does not use
	// PersistentCache.
	cache map[string][]Summary
}

// NewRegistry builds an empty Registry; sources are registered with
// AddSource before the first Query.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
		cache:   make(map[string][]Summary),
	}
}

// AddSource registers src, keyed by its own SourceId.
func (r *Registry) AddSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[src.SourceId().String()] = src
}

func (r *Registry) sourceFor(id scarbid.SourceId) (Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id.String()]
	return s, ok
}

// Query returns every known Summary for name from source, sorted
// descending by version so the solver's default strategy (newest first,
// mirroring upgradeVersionSorter) tries the best candidate first.
func (r *Registry) Query(ctx context.Context, source scarbid.SourceId, name scarbid.PackageName) ([]Summary, error) {
	key := source.String() + "#" + name.String()

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	src, ok := r.sourceFor(source)
	if !ok {
		return nil, UnknownSourceError{Source: source}
	}

	summaries, err := src.Query(ctx, name)
	if err != nil {
		return nil, err
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[j].ID.Version.LessThan(summaries[i].ID.Version)
	})

	r.mu.Lock()
	r.cache[key] = summaries
	r.mu.Unlock()
	return summaries, nil
}

// Download materializes id's source tree via its owning Source.
func (r *Registry) Download(ctx context.Context, id scarbid.PackageId) (PackagePath, error) {
	src, ok := r.sourceFor(id.Source)
	if !ok {
		return PackagePath{}, UnknownSourceError{Source: id.Source}
	}
	return src.Download(ctx, id)
}

// IsYanked reports whether id.Source considers id yanked.
func (r *Registry) IsYanked(ctx context.Context, id scarbid.PackageId) (bool, error) {
	src, ok := r.sourceFor(id.Source)
	if !ok {
		return false, UnknownSourceError{Source: id.Source}
	}
	return src.IsYanked(ctx, id)
}
