package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/source"
)

// listASTFiles returns the sorted list of serialized modules under dir.
// Sorting keeps the result order, and therefore diagnostic order,
// independent of directory iteration.
func listASTFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ASTSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CompileDir compiles every serialized module under dir. Loading is
// serial (the FileSet is not concurrency-safe), compilation fans out
// over at most jobs workers. Result order matches the sorted file
// list; each result's bag is sorted, so output is reproducible.
func CompileDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	files, err := listASTFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	type loaded struct {
		raw    *ast.Module
		fileID source.FileID
		err    error
	}
	mods := make([]loaded, len(files))
	for i, path := range files {
		raw, fileID, loadErr := LoadModule(fileSet, path)
		mods[i] = loaded{raw: raw, fileID: fileID, err: loadErr}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// One slot per module; no locking needed.
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if mods[i].err != nil {
				return mods[i].err
			}
			res := CompileModule(mods[i].raw, opts)
			res.Path = path
			res.FileID = mods[i].fileID
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fileSet, results, nil
}

// MergeDiagnostics folds all per-module bags into one sorted bag.
func MergeDiagnostics(results []Result) *diag.Bag {
	total := 0
	for _, r := range results {
		total += r.Bag.Len()
	}
	if total == 0 {
		total = 1
	}
	merged := diag.NewBag(total)
	for _, r := range results {
		merged.Merge(r.Bag)
	}
	merged.Sort()
	return merged
}
