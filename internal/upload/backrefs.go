package upload

import (
	"context"
	"log/slog"
	"sync"

	"lookbook/internal/models"
	"lookbook/internal/store"
)

// TargetResult is the outcome of merging back-references into one record.
type TargetResult struct {
	Collection models.Collection `json:"collection"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Err        error             `json:"-"`
	Error      string            `json:"error,omitempty"`
}

// PropagationResult lists one TargetResult per brand in graph order,
// followed by the artist.
type PropagationResult struct {
	Targets []TargetResult `json:"targets"`
}

// Failed returns the targets whose merge failed.
func (r PropagationResult) Failed() []TargetResult {
	var out []TargetResult
	for _, t := range r.Targets {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Succeeded returns the targets whose merge was applied.
func (r PropagationResult) Succeeded() []TargetResult {
	var out []TargetResult
	for _, t := range r.Targets {
		if t.Err == nil {
			out = append(out, t)
		}
	}
	return out
}

// Err returns a *PartialPropagationError when any target failed.
func (r PropagationResult) Err() error {
	if len(r.Failed()) == 0 {
		return nil
	}
	return &PartialPropagationError{Result: r}
}

// Propagator merges an upload's references into its brands and artist.
type Propagator struct {
	docs        DocumentWriter
	concurrency int
	logger      *slog.Logger
}

func NewPropagator(docs DocumentWriter, concurrency int, logger *slog.Logger) *Propagator {
	if concurrency <= 0 {
		concurrency = DefaultPropagationConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{docs: docs, concurrency: concurrency, logger: logger.With("component", "propagator")}
}

type mergeTarget struct {
	collection models.Collection
	id         string
	name       string
	tags       models.TagSet
}

// Propagate attempts every merge regardless of the others and reports each outcome.
func (p *Propagator) Propagate(ctx context.Context, graph TagGraph) PropagationResult {
	brandRefs := graph.BrandBackrefs()
	targets := make([]mergeTarget, 0, len(graph.brands)+1)
	for _, id := range graph.Brands() {
		targets = append(targets, mergeTarget{collection: models.CollectionBrands, id: id, name: graph.BrandName(id), tags: brandRefs})
	}
	targets = append(targets, mergeTarget{
		collection: models.CollectionArtists,
		id:         graph.ArtistID(),
		name:       graph.ArtistName(),
		tags:       graph.ArtistBackrefs(),
	})

	results := make([]TargetResult, len(targets))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target mergeTarget) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := p.docs.Merge(ctx, target.collection, target.id, store.Patch{
				Tags:        target.tags,
				SetIfAbsent: map[string]any{"id": target.id, "name": target.name},
			})
			res := TargetResult{Collection: target.collection, ID: target.id, Name: target.name, Err: err}
			if err != nil {
				res.Error = err.Error()
				p.logger.Warn("back-reference merge failed", "collection", target.collection, "id", target.id, "err", err)
			}
			results[i] = res
		}(i, target)
	}
	wg.Wait()

	return PropagationResult{Targets: results}
}
