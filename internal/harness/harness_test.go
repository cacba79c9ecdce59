package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioPath(name string) string {
	return filepath.Join("..", "..", "testdata", "scenarios", name+".yaml")
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(scenarioPath("case1"))
	require.NoError(t, err)

	assert.Equal(t, "case1", s.Name)
	assert.Equal(t, "../cores/case1", s.Core)
	require.NotNil(t, s.Expect.Warnings)
	assert.Equal(t, 3, *s.Expect.Warnings)
	assert.Equal(t, []float64{-2, -1, 1, 2}, s.Expect.Mesh)
	assert.Len(t, s.Assertions, 10)
	assert.Equal(t, filepath.Join("..", "..", "testdata", "cores", "case1"), s.resolve(s.Core))
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ncore: c\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "core: c\n",
			wantErr: "name is required",
		},
		{
			name:    "missing core",
			content: "name: x\n",
			wantErr: "core is required",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ncore: c\nassertions:\n  - type: nope\n",
			wantErr: `unknown assertion type "nope"`,
		},
		{
			name:    "incomplete layers",
			content: "name: x\ncore: c\nassertions:\n  - type: layers\n    location: A\n",
			wantErr: "layers requires location and record",
		},
		{
			name:    "bad deck",
			content: "name: x\ncore: c\nassertions:\n  - type: deck_contains\n    deck: lavender\n    text: x\n",
			wantErr: "deck must be xs or core",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"case1", "stacked", "broken"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(scenarioPath(name))
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s, err := LoadScenario(scenarioPath("case1"))
	require.NoError(t, err)

	zero := 0
	s.Expect.Warnings = &zero
	s.Expect.Codes = []string{"W203"}
	s.Expect.Mesh = []float64{0, 1}
	s.Assertions = []Assertion{
		{Type: AssertLayers, Location: "01A01", Record: "1 1 1"},
		{Type: AssertLayers, Location: "99Z99", Record: "1"},
		{Type: AssertCanonicalID, Kind: "section", Key: "homo shield block", ID: 1},
		{Type: AssertCanonicalID, Kind: "nuclide", Key: "U238", ID: 1},
		{Type: AssertDeckContains, Deck: "core", Text: "not in deck"},
		{Type: AssertLatticeRow, Row: 9, Text: "x"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 9)
	assert.Contains(t, result.Errors[0], "expected 0 warnings, got 3")
	assert.Contains(t, result.Errors[1], "expected warning W203")
	assert.Contains(t, result.Errors[2], "expected mesh")
	assert.Contains(t, result.Errors[3], `expected layers "1 1 1", got "6 7 5"`)
	assert.Contains(t, result.Errors[4], `no assembly placed at location "99Z99"`)
	assert.Contains(t, result.Errors[5], "expected id 1, got [5 6]")
	assert.Contains(t, result.Errors[6], `unknown kind "nuclide"`)
	assert.Contains(t, result.Errors[7], "does not contain")
	assert.Contains(t, result.Errors[8], "row 9 out of range")
}

func TestRun_UnexpectedSuccess(t *testing.T) {
	s, err := LoadScenario(scenarioPath("stacked"))
	require.NoError(t, err)
	s.Expect.Error = "EMPTY_SLOT"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "build succeeded")
}

func TestRun_UnexpectedFailure(t *testing.T) {
	s, err := LoadScenario(scenarioPath("broken"))
	require.NoError(t, err)
	s.Expect.Error = ""

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "build failed")
	assert.Nil(t, result.Build)
}

func TestRun_ToleranceOverride(t *testing.T) {
	s, err := LoadScenario(scenarioPath("stacked"))
	require.NoError(t, err)
	s.Tolerance = 0.05

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	s.Tolerance = -1
	assert.Error(t, s.Validate())
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hexcore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("xs:\n  leakage_correct: B1\n"), 0o644))

	core, err := filepath.Abs(filepath.Join("..", "..", "testdata", "cores", "case1"))
	require.NoError(t, err)

	s := &Scenario{
		Name:   "configured",
		Core:   core,
		Config: "hexcore.yaml",
		dir:    dir,
		Assertions: []Assertion{
			{Type: AssertDeckContains, Deck: "xs", Text: "leakage_correct       B1"},
		},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	s.Config = "missing.yaml"
	_, err = Run(s)
	assert.Error(t, err)
}

func TestRunWithGolden_Case1(t *testing.T) {
	s, err := LoadScenario(scenarioPath("case1"))
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}

func TestRunWithGolden_ExpectedFailureSkipsGolden(t *testing.T) {
	s, err := LoadScenario(scenarioPath("broken"))
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}
