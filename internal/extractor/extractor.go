// Package extractor ties file loading, grammar selection, parsing and the
// declaration search into a single lookup per file.
package extractor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/snip/internal/config"
	"github.com/standardbeagle/snip/internal/core"
	"github.com/standardbeagle/snip/internal/debug"
	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/locate"
	"github.com/standardbeagle/snip/internal/parser"
	"github.com/standardbeagle/snip/internal/types"
)

// Request names one lookup. Language, when set, bypasses path-based grammar
// selection.
type Request struct {
	Path     string
	Target   string
	Language string
}

// Service runs lookups with a fixed config.
type Service struct {
	cfg      *config.Config
	registry *parser.Registry
}

// New builds a service from cfg. A nil cfg uses validated defaults.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}
	registry, err := parser.NewRegistry(cfg.Overrides())
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, registry: registry}, nil
}

func (s *Service) Config() *config.Config     { return s.cfg }
func (s *Service) Registry() *parser.Registry { return s.registry }

// Grammar selects the grammar for req. It never touches the file, so an
// unsupported extension is reported before any read.
func (s *Service) Grammar(req Request) (parser.Grammar, error) {
	if req.Language != "" {
		return s.registry.ForLanguage(req.Language)
	}
	return s.registry.Resolve(req.Path)
}

// Load reads path within the configured size limit.
func (s *Service) Load(path string) (*core.SourceBuffer, error) {
	return core.LoadSourceBuffer(path, s.cfg.Extract.MaxFileSize)
}

// Extract resolves the grammar, reads the file and searches it for
// req.Target. A missing declaration is a NotFound result, not an error.
func (s *Service) Extract(ctx context.Context, req Request) (*types.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.Grammar(req)
	if err != nil {
		return nil, err
	}
	buf, err := s.Load(req.Path)
	if err != nil {
		return nil, err
	}
	return s.ExtractSource(ctx, g, buf, req.Target)
}

// ExtractSource searches an already loaded buffer.
func (s *Service) ExtractSource(ctx context.Context, g parser.Grammar, buf *core.SourceBuffer, target string) (*types.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	tree, err := parser.Parse(g, buf)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	m := locate.NewMatcher(target, g.NameKind, g.DeclarationKind)
	res, err := locate.FindInTree(tree, buf, m)
	if err != nil {
		return nil, err
	}

	decl := &types.Declaration{
		Path:     buf.Path,
		Language: string(g.Language),
		Target:   target,
		Result:   res,
	}

	if res.Found {
		slice, err := buf.Slice(res.Range)
		if err != nil {
			return nil, err
		}
		decl.Text = string(slice)
		decl.StartLine = buf.LineAt(res.Range.Start)
		decl.EndLine = decl.StartLine
		if res.Range.End > res.Range.Start {
			decl.EndLine = buf.LineAt(res.Range.End - 1)
		}
	} else if s.cfg.SuggestEnabled() {
		cursor := locate.NewTreeCursor(tree.RootNode())
		names, err := locate.DeclaredNames(cursor, buf, m)
		cursor.Close()
		if err != nil {
			return nil, err
		}
		decl.Suggestions, err = locate.Suggest(target, names, locate.SuggestOptions{
			Algorithm: s.cfg.Suggest.Algorithm,
			Threshold: s.cfg.Suggest.Threshold,
			Max:       s.cfg.Suggest.Max,
		})
		if err != nil {
			return nil, err
		}
	}

	debug.Log("EXTRACT", "%s %q (%s): %s in %v\n", buf.Path, target, g.Language, res, time.Since(start))
	return decl, nil
}

// ExtractAll runs Extract for every request with at most
// performance.max_workers files in flight. Results keep request order; a
// failed request leaves a nil slot and its error joins the returned
// MultiError.
func (s *Service) ExtractAll(ctx context.Context, reqs []Request) ([]*types.Declaration, error) {
	results := make([]*types.Declaration, len(reqs))
	errs := make([]error, len(reqs))

	workers := s.cfg.Performance.MaxWorkers
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			results[i], errs[i] = s.Extract(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results, snerrors.NewMultiError(errs).ErrOrNil()
}
