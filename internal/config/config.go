// Package config loads the solver and run configuration of a build.
//
// All keys are optional. A missing key keeps its default, which matches the
// solver's own defaults. Config file lookup order:
//  1. the --config flag
//  2. $HEXCORE_CONFIG
//  3. ./hexcore.yaml
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hexcore/internal/model"
)

const (
	// EnvConfigPath names an explicit config file.
	EnvConfigPath = "HEXCORE_CONFIG"
	// FileName is the config file looked up in the working directory.
	FileName = "hexcore.yaml"
)

// Config is the complete build configuration.
type Config struct {
	Mesh     MeshConfig     `yaml:"mesh"`
	Control  ControlConfig  `yaml:"control"`
	Method   MethodConfig   `yaml:"method"`
	Material MaterialConfig `yaml:"material"`
	Geometry GeometryConfig `yaml:"geometry"`
	XS       XSConfig       `yaml:"xs"`
	Densify  DensifyConfig  `yaml:"densify"`
	Store    StoreConfig    `yaml:"store"`
}

// MeshConfig controls axial mesh unification.
type MeshConfig struct {
	// Tolerance is the largest height difference merged into one mesh
	// height, in cm.
	Tolerance float64 `yaml:"tolerance"`
}

// ControlConfig is the CONTROL block of the core deck.
type ControlConfig struct {
	Power          float64 `yaml:"power"` // Wth, negative for normalized flux
	GammaHeat      bool    `yaml:"gamma_heat"`
	Depletion      bool    `yaml:"depletion"`
	RodSearch      bool    `yaml:"rod_search"`
	TargetKeff     float64 `yaml:"target_keff"`
	Worth          bool    `yaml:"worth"`
	Reactivity     bool    `yaml:"reactivity"`
	NeutronBalance bool    `yaml:"neutron_balance"`
	OutputPower    bool    `yaml:"output_power"`
	OutputVTK      bool    `yaml:"output_vtk"`
	Restart        bool    `yaml:"restart"`
	Thermal        bool    `yaml:"thermal"`
	Reconstruct    bool    `yaml:"reconstruct"`
}

// MethodConfig is the METHOD block of the core deck.
type MethodConfig struct {
	SNOrder    int     `yaml:"sn_order"`
	MaxInner   int     `yaml:"max_inner"`
	MaxOuter   int     `yaml:"max_outer"`
	RMSInner   float64 `yaml:"rms_inner"`
	RMSOuter   float64 `yaml:"rms_outer"`
	RMSEigen   float64 `yaml:"rms_eigen"`
	Threads    int     `yaml:"threads"`
	CMAcc      bool    `yaml:"cmacc"`
	SpaceOrder int     `yaml:"space_order"`
}

// MaterialConfig is the MATERIAL block of the core deck.
type MaterialConfig struct {
	LowScatter bool `yaml:"low_scatter"`
}

// GeometryConfig holds GEOMETRY options of the core deck.
type GeometryConfig struct {
	// BCAxial is the (bottom, top) axial boundary condition.
	BCAxial []int `yaml:"bc_axial"`
}

// XSConfig controls the cross-section deck.
type XSConfig struct {
	GroupStructure []int  `yaml:"group_structure"`
	LeakageCorrect string `yaml:"leakage_correct"`
}

// DensifyConfig controls the mesh densifier.
type DensifyConfig struct {
	MaxHeight float64 `yaml:"max_height"`
}

// StoreConfig locates the build ledger. An empty path disables recording.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{Tolerance: 0.1},
		Control: ControlConfig{
			Power:     -1,
			OutputVTK: true,
		},
		Method: MethodConfig{
			SNOrder:    4,
			MaxInner:   16,
			MaxOuter:   500,
			RMSInner:   5.0e-6,
			RMSOuter:   1.0e-5,
			RMSEigen:   1.0e-5,
			Threads:    8,
			CMAcc:      true,
			SpaceOrder: 2,
		},
		Geometry: GeometryConfig{BCAxial: []int{0, 0}},
		XS: XSConfig{
			GroupStructure: []int{1968, 33, 1},
			LeakageCorrect: "none",
		},
		Densify: DensifyConfig{MaxHeight: 0.1},
	}
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config at path. An empty path falls back to FindPath, and
// to the defaults when no file is found.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = FindPath()
	}
	if path == "" {
		return Default(), "", nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, path, &model.CoreError{Code: model.ErrCodeMissingFile, Message: "config file does not exist", Subject: path}
	}
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// FindPath returns the first existing config file, or "".
func FindPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	if info, err := os.Stat(FileName); err == nil && info.Mode().IsRegular() {
		return FileName
	}
	return ""
}

// Validate rejects values no build can run with.
func (c *Config) Validate() error {
	if !(c.Mesh.Tolerance > 0) {
		return model.NewToleranceError(c.Mesh.Tolerance)
	}
	if !(c.Densify.MaxHeight > 0) {
		return model.NewThresholdError(c.Densify.MaxHeight)
	}
	if len(c.XS.GroupStructure) != 3 {
		return invalid("xs.group_structure must have 3 entries, got %d", len(c.XS.GroupStructure))
	}
	for _, n := range c.XS.GroupStructure {
		if n <= 0 {
			return invalid("xs.group_structure entries must be > 0, got %v", c.XS.GroupStructure)
		}
	}
	if len(c.Geometry.BCAxial) != 2 {
		return invalid("geometry.bc_axial must have 2 entries, got %d", len(c.Geometry.BCAxial))
	}
	if c.Method.SNOrder <= 0 || c.Method.SNOrder%2 != 0 {
		return invalid("method.sn_order must be a positive even integer, got %d", c.Method.SNOrder)
	}
	if c.Method.Threads <= 0 {
		return invalid("method.threads must be > 0, got %d", c.Method.Threads)
	}
	if c.XS.LeakageCorrect == "" {
		return invalid("xs.leakage_correct must not be empty")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return &model.CoreError{Code: model.ErrCodeInvalidConfig, Message: fmt.Sprintf(format, args...)}
}
