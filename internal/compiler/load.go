package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/arbelos-lang/arbelos/internal/expr"
)

// LoadResult contains the specs compiled from a directory of CUE files.
type LoadResult struct {
	Symbols   []SymbolSpec
	CUEValue  cue.Value // raw value, for additional processing
	FileCount int
}

// LoadDir loads and compiles every CUE spec file under dir. Spec files
// declare a shared context and any number of symbols:
//
//	context: "System`"
//	symbol: Plus: {
//		attributes: ["Flat", "Orderless", "Protected"]
//		numeric:    true
//	}
//
// The `context` field is optional and defaults to System`.
func LoadDir(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("spec directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spec path %s is not a directory", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	// Spec files carry no package clause, so they are loaded by name
	// rather than as a package instance.
	args := make([]string, len(files))
	for i, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		args[i] = rel
	}

	ctx := cuecontext.New()
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	result := &LoadResult{CUEValue: value, FileCount: len(files)}
	result.Symbols, err = CompileSymbols(value)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompileSymbols extracts every symbol spec from a built CUE value.
func CompileSymbols(value cue.Value) ([]SymbolSpec, error) {
	context := "System" + expr.ContextMark
	contextVal := value.LookupPath(cue.ParsePath("context"))
	if contextVal.Exists() {
		c, err := contextVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if !expr.IsContext(c) {
			return nil, &CompileError{
				Field:   "context",
				Message: fmt.Sprintf("%q is not a well-formed context name", c),
				Pos:     contextVal.Pos(),
			}
		}
		context = c
	}

	var specs []SymbolSpec
	symbolsVal := value.LookupPath(cue.ParsePath("symbol"))
	if !symbolsVal.Exists() {
		return nil, nil
	}
	iter, err := symbolsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		spec, err := CompileSymbol(iter.Value(), context)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", iter.Label(), err)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// Freshness returns the newest modification time (unix seconds) among
// the given files. Unreadable files count as 0, so a missing file never
// makes a stale snapshot look fresh.
func Freshness(files []string) int64 {
	var newest int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if mtime := info.ModTime().Unix(); mtime > newest {
			newest = mtime
		}
	}
	return newest
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
