// Package driver orchestrates the semantic pipeline over modules
// produced by the external parser. Modules are independent of each
// other, so directory compilation fans out across a bounded worker
// group and merges diagnostics deterministically afterwards.
package driver

import (
	"fmt"
	"os"
	"strings"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/sema"
	"mml/internal/source"
)

// ASTSuffix is the extension of serialized raw modules. The matching
// source file (same path without the suffix) is loaded alongside for
// diagnostic rendering when it exists.
const ASTSuffix = ".mmlast"

// Result is the outcome of compiling one module. Module is non-nil
// only when the pipeline produced zero errors; partial output is
// never exposed.
type Result struct {
	Path   string
	FileID source.FileID
	Module *ast.Module
	Bag    *diag.Bag
}

// Options tune a compilation run.
type Options struct {
	MaxDiagnostics int
	Jobs           int
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// LoadModule reads a serialized module and registers its source text
// (or a placeholder) in the file set. Not safe for concurrent use on
// one FileSet; callers preload serially and compile in parallel.
func LoadModule(fs *source.FileSet, astPath string) (*ast.Module, source.FileID, error) {
	data, err := os.ReadFile(astPath) // #nosec G304 -- path comes from the caller
	if err != nil {
		return nil, 0, err
	}
	srcPath := strings.TrimSuffix(astPath, ASTSuffix)
	var fileID source.FileID
	if _, statErr := os.Stat(srcPath); statErr == nil {
		fileID, err = fs.Load(srcPath)
		if err != nil {
			return nil, 0, err
		}
	} else {
		fileID = fs.AddVirtual(srcPath, nil)
	}
	m, err := ast.DecodeModule(data, fileID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", astPath, err)
	}
	return m, fileID, nil
}

// CompileModule runs the full pipeline on one raw module.
func CompileModule(raw *ast.Module, opts Options) Result {
	bag := diag.NewBag(opts.maxDiagnostics())
	resolved, ok := sema.Check(raw, diag.BagReporter{Bag: bag})
	bag.Sort()
	res := Result{Path: raw.Path, Bag: bag}
	if ok {
		res.Module = resolved
	}
	return res
}
