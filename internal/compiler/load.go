package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/hexcore/internal/model"
)

// Load failures, distinguishable with errors.Is.
var (
	ErrNotFound = errors.New("core directory not found")
	ErrNoFiles  = errors.New("no CUE files found")
	ErrLoad     = errors.New("loading CUE package failed")
	ErrBuild    = errors.New("building CUE value failed")
)

// Loaded is a CUE core package read from disk.
type Loaded struct {
	Dir       string
	Value     cue.Value
	FileCount int
}

// LoadDir loads the CUE package in dir without compiling it.
func LoadDir(dir string) (*Loaded, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrNotFound, dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: no instances in %s", ErrLoad, dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Validate(); err != nil {
		return nil, errors.Join(ErrBuild, formatCUEError(err))
	}

	return &Loaded{Dir: dir, Value: value, FileCount: len(files)}, nil
}

// CompileDir loads and compiles the core package in dir.
func CompileDir(dir string) (*model.Core, error) {
	loaded, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return CompileCore(loaded.Value)
}

// FindCUEFiles returns the .cue files directly inside dir. Subdirectories
// are separate packages and are not part of the core.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
