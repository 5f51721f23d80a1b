package match

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mapper/internal/classifier"
)

// Pass matches one entity kind. Sources lists the unresolved source
// entities, Candidates the unresolved destinations a source may match, and
// Commit records a batch of accepted matches in the environment.
type Pass[T comparable, E any] struct {
	Label      string
	Ranker     *classifier.Ranker[T, E]
	Sources    func(env E) []T
	Candidates func(env E, src T) []T
	Commit     func(env E, matches []Match[T]) error
}

func (p *Pass[T, E]) Name() string {
	return p.Label
}

// Run ranks all sources in parallel. The environment is only read while
// ranking; if any ranking fails the remaining work is cancelled and nothing
// is committed.
func (p *Pass[T, E]) Run(ctx context.Context, env E, level classifier.Level, opts Options) (StageResult, error) {
	start := time.Now()
	res := StageResult{Stage: p.Label, Level: level}

	if p.Ranker == nil || p.Sources == nil || p.Candidates == nil || p.Commit == nil {
		res.Err = fmt.Errorf("pass %q is not fully configured", p.Label)
		return res, res.Err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	maxMismatch := opts.Thresholds.MaxMismatch()

	sources := p.Sources(env)
	res.Attempted = len(sources)
	proposals := make([]*Match[T], len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ranking, err := p.Ranker.Rank(src, p.Candidates(env, src), level, env, maxMismatch)
			if err != nil {
				return fmt.Errorf("%s: rank %v: %w", p.Label, src, err)
			}
			if Accept(opts.Thresholds, ranking) {
				proposals[i] = &Match[T]{
					Src:   src,
					Dst:   ranking[0].Candidate,
					Score: ranking[0].Score,
					Level: level,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		res.Duration = time.Since(start)
		res.Err = err
		return res, err
	}

	matches, conflicts := resolveConflicts(proposals)
	res.Conflicts = conflicts
	res.Matched = len(matches)
	res.Unmatched = res.Attempted - res.Matched

	if len(matches) > 0 {
		if err := p.Commit(env, matches); err != nil {
			res.Duration = time.Since(start)
			res.Err = fmt.Errorf("%s: commit: %w", p.Label, err)
			return res, res.Err
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

// resolveConflicts drops every proposal whose destination was claimed by
// more than one source. Source order is preserved.
func resolveConflicts[T comparable](proposals []*Match[T]) ([]Match[T], int) {
	claims := make(map[T]int)
	for _, m := range proposals {
		if m != nil {
			claims[m.Dst]++
		}
	}

	var out []Match[T]
	conflicts := 0
	for _, m := range proposals {
		if m == nil {
			continue
		}
		if claims[m.Dst] > 1 {
			conflicts++
			continue
		}
		out = append(out, *m)
	}
	return out, conflicts
}
