package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckspec/internal/catalog"
	"truckspec/internal/textutil"
)

const engineSii = `SiiNunit
{
accessory_engine_data : scania.r.engine.dc13_500 {
	name: "DC13 500 @@kw@@"
	price: 21000
	unlock: 0
	info[]: "500 @@hp@@"
	info[]: "2550 @@nm@@"
	torque: 2550
	volume: 12.7
	rpm_limit: 2100
}
}
`

var src = Source{Folder: "scania.r", File: "dc13_500.sii"}

func TestEngineParse(t *testing.T) {
	p := NewEngineParser(Options{})

	got, err := p.Parse([]string{`name: "Foo"`, `info[]: "380 480"`, "torque: 2500"}, src)
	require.NoError(t, err)
	assert.Equal(t, catalog.Engine{
		Name:       "Foo",
		RatedPower: "380",
		Torque:     "2500",
		Code:       "/def/vehicle/truck/scania.r/engine/dc13_500.sii",
	}, got)
}

func TestEngineParseUnquotedInfo(t *testing.T) {
	got, err := NewEngineParser(Options{}).Parse([]string{`name: "Foo"`, "info[]: 380 480", "torque: 2500"}, src)
	require.NoError(t, err)
	assert.Equal(t, "Foo", got.Name)
	assert.Equal(t, "380", got.RatedPower)
	assert.Equal(t, "2500", got.Torque)
}

func TestEngineParseFullUnit(t *testing.T) {
	lines, err := textutil.SplitLines(strings.ReplaceAll(engineSii, "\n", "\r\n"))
	require.NoError(t, err)

	got, err := NewEngineParser(Options{RequireRPMLimit: true}).Parse(lines, src)
	require.NoError(t, err)
	assert.Equal(t, "DC13 500 kw", got.Name)
	assert.Equal(t, "500", got.RatedPower)
	assert.Equal(t, "2550", got.Torque)
	assert.Equal(t, "2100", got.RPMLimit)
}

func TestEngineFieldPrecedence(t *testing.T) {
	lines := []string{
		`name: "First"`,
		`info[]: "@@kw@@"`,
		`info[]: "410 @@hp@@"`,
		`info[]: "450 @@hp@@"`,
		"torque: 1900",
		`name: "Second"`,
		"torque: 2100",
	}

	got, err := NewEngineParser(Options{}).Parse(lines, src)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
	assert.Equal(t, "410", got.RatedPower)
	assert.Equal(t, "2100", got.Torque)
	assert.Empty(t, got.RPMLimit)
}

func TestEngineIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		opts   Options
		reason string
	}{
		{
			name:   "no torque",
			lines:  []string{`name: "Foo"`, `info[]: "380 480"`},
			reason: "missing torque",
		},
		{
			name:   "no name",
			lines:  []string{`info[]: "380 480"`, "torque: 2500"},
			reason: "missing name",
		},
		{
			name:   "single token info",
			lines:  []string{`name: "Foo"`, `info[]: "380"`, "torque: 2500"},
			reason: "missing rated power",
		},
		{
			name:   "rpm limit required",
			lines:  []string{`name: "Foo"`, `info[]: "380 480"`, "torque: 2500"},
			opts:   Options{RequireRPMLimit: true},
			reason: "missing rpm limit",
		},
		{
			name:   "no lines",
			reason: "missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngineParser(tt.opts).Parse(tt.lines, src)
			require.ErrorIs(t, err, ErrIncomplete)

			var ie *IncompleteError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, KindEngine, ie.Kind)
			assert.Equal(t, tt.reason, ie.Reason)
		})
	}
}

func TestEngineParseFile(t *testing.T) {
	dir := t.TempDir()
	p := NewEngineParser(Options{DefPrefix: "/def/vehicle/truck/"})

	good := filepath.Join(dir, "dc13_500.sii")
	require.NoError(t, os.WriteFile(good, []byte(engineSii), 0o644))
	got, err := p.ParseFile(good, src)
	require.NoError(t, err)
	assert.Equal(t, "/def/vehicle/truck/scania.r/engine/dc13_500.sii", got.Code)

	oneLine := filepath.Join(dir, "flat.sii")
	require.NoError(t, os.WriteFile(oneLine, []byte(`name: "Foo" info[]: "1 2" torque: 3`), 0o644))
	_, err = p.ParseFile(oneLine, src)
	assert.ErrorIs(t, err, textutil.ErrNoLineTerminator)

	_, err = p.ParseFile(filepath.Join(dir, "nope.sii"), src)
	assert.Error(t, err)
}
