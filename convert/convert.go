// Package convert runs the whole pipeline: load Go sources, extract
// declarations, resolve dependencies and render one schema file per module.
//
// Every stage reports all of its problems at once, and nothing is written to
// disk unless every stage succeeded.
package convert

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/logger"
	"github.com/teranos/zorsh-gen/output"
	"github.com/teranos/zorsh-gen/source"
	"github.com/teranos/zorsh-gen/typegen"
	"github.com/teranos/zorsh-gen/typegen/emit"
	"github.com/teranos/zorsh-gen/typegen/extract"
	"github.com/teranos/zorsh-gen/typegen/model"
	"github.com/teranos/zorsh-gen/typegen/resolve"
)

type Options struct {
	Source  source.Options
	Extract extract.Options
	Resolve resolve.Options
	Emit    emit.Options
	// Workers bounds concurrent module extraction. Values below 1 mean 1.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Source:  source.DefaultOptions(),
		Extract: extract.DefaultOptions(),
		Resolve: resolve.Options{Cycles: resolve.CyclesReject},
		Emit:    emit.DefaultOptions(),
		Workers: 1,
	}
}

// Converter turns Go packages into Zorsh schema files.
type Converter struct {
	opts Options
	log  *zap.SugaredLogger
}

func New(opts Options) *Converter {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Converter{opts: opts, log: logger.ComponentLogger("convert")}
}

// Convert generates schemas for the Go packages under input and writes them
// below out. On failure no file is written.
func (c *Converter) Convert(ctx context.Context, input, out string) (*typegen.Result, error) {
	result, err := c.Generate(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := output.Write(out, result.Files); err != nil {
		return nil, err
	}
	c.log.Infow("Wrote schemas",
		logger.FieldDir, out,
		logger.FieldFiles, len(result.Files),
		logger.FieldTypes, result.TypeCount())
	return result, nil
}

// Generate loads input and renders every schema file in memory.
func (c *Converter) Generate(ctx context.Context, input string) (*typegen.Result, error) {
	tree, err := source.Load(ctx, input, c.opts.Source)
	if err != nil {
		return nil, err
	}
	return c.GenerateTree(ctx, tree)
}

// GenerateTree renders an already loaded tree.
func (c *Converter) GenerateTree(ctx context.Context, tree *source.Tree) (*typegen.Result, error) {
	reg, plan, err := c.Build(ctx, tree)
	if err != nil {
		return nil, err
	}
	return c.Render(reg, plan)
}

// Build extracts every module and resolves the combined registry.
func (c *Converter) Build(ctx context.Context, tree *source.Tree) (*model.Registry, *resolve.Plan, error) {
	start := time.Now()
	reg, err := c.extractAll(ctx, tree)
	if err != nil {
		return nil, nil, err
	}
	if reg.Len() == 0 {
		hint := "annotate types with //zorsh:generate"
		if !c.opts.Extract.OnlyAnnotated {
			hint = "declare exported struct types"
		}
		c.log.Warnw("No types found", logger.FieldModules, len(tree.Modules), logger.FieldHint, hint)
	}

	plan, err := resolve.Resolve(reg, c.opts.Resolve)
	if err != nil {
		return nil, nil, err
	}
	c.log.Debugw("Resolved dependencies",
		logger.FieldTypes, reg.Len(),
		logger.FieldModules, len(plan.Modules),
		logger.FieldPolicy, string(c.opts.Resolve.Cycles),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return reg, plan, nil
}

type extraction struct {
	decls []model.DeclaredType
	err   error
}

// extractAll runs the extractor over all modules with at most Workers in
// flight. Results are merged in module order so the registry does not depend
// on scheduling.
func (c *Converter) extractAll(ctx context.Context, tree *source.Tree) (*model.Registry, error) {
	results := make([]extraction, len(tree.Modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, m := range tree.Modules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decls, err := extract.Extract(tree.Source(m), tree, c.opts.Extract)
			results[i] = extraction{decls: decls, err: err}
			logger.ModuleLogger(c.log, m.Path).Debugw("Extracted module",
				logger.FieldFiles, len(m.Files),
				logger.FieldTypes, len(decls))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := model.NewRegistry()
	var errs error
	for _, r := range results {
		if r.err != nil {
			errs = errors.Append(errs, r.err)
			continue
		}
		for _, d := range r.decls {
			errs = errors.Append(errs, reg.Add(d))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return reg, nil
}

// Render emits one file per planned module.
func (c *Converter) Render(reg *model.Registry, plan *resolve.Plan) (*typegen.Result, error) {
	result := &typegen.Result{Plan: plan}
	owners := make(map[string]string)

	var errs error
	for _, mp := range plan.Modules {
		p := c.opts.Emit.Layout.FilePath(mp.Module)
		if other, ok := owners[p]; ok {
			errs = errors.Append(errs, errors.WithHint(
				errors.Newf("modules %s and %s both map to %s", other, mp.Module, p),
				"rename one of the packages or use the nested output structure"))
			continue
		}
		owners[p] = mp.Module

		content, err := emit.Module(reg, mp, c.opts.Emit)
		if err != nil {
			errs = errors.Append(errs, err)
			continue
		}
		result.Files = append(result.Files, typegen.File{
			Path:    p,
			Module:  mp.Module,
			Content: content,
			Types:   mp.Order,
		})
	}
	if errs != nil {
		return nil, errs
	}
	result.SortFiles()
	return result, nil
}

// ConvertSource converts a single Go file held in memory. All of its types
// belong to one module named after the package.
func ConvertSource(src string, opts Options) (string, error) {
	tree, err := source.ParseSource("", "input.go", []byte(src))
	if err != nil {
		return "", err
	}
	result, err := New(opts).GenerateTree(context.Background(), tree)
	if err != nil {
		return "", err
	}
	if len(result.Files) == 0 {
		return "", nil
	}
	return result.Files[0].Content, nil
}
