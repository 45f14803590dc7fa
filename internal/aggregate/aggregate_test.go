package aggregate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckspec/internal/config"
)

func engineFile(name, power, torque string) string {
	return fmt.Sprintf("SiiNunit\r\n{\r\naccessory_engine_data : x.engine {\r\n\tname: %q\r\n\tinfo[]: \"%s @@hp@@\"\r\n\ttorque: %s\r\n}\r\n}\r\n",
		name, power, torque)
}

func transmissionFile(name string, ratios ...string) string {
	body := fmt.Sprintf("SiiNunit\n{\naccessory_transmission_data : x.transmission {\n\tname: %q\n", name)
	for i, r := range ratios {
		body += fmt.Sprintf("\tratios_forward[%d]: %s\n", i, r)
	}
	return body + "\tretarder: 1\n}\n}\n"
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(workers int) *config.Config {
	return &config.Config{Extension: "sii", DefPrefix: "/def/vehicle/truck", WorkerCount: workers}
}

// buildTree lays out a small truck tree:
//
//	scania.r          complete
//	scania.streamline complete, one broken engine
//	volvo.fh16        engines only
//	trailers          not brand.model
//	man.tgx           transmission files all invalid
func buildTree(t *testing.T) string {
	root := t.TempDir()

	write(t, root, "scania.r/engine/dc13_500.sii", engineFile("DC13 500", "500", "2550"))
	write(t, root, "scania.r/transmission/grso905r.sii", transmissionFile("GRSO905R", "11.32", "1.00", "0.78"))

	write(t, root, "scania.streamline/engine/dc13_450.sii", engineFile("DC13 450", "450", "2350"))
	write(t, root, "scania.streamline/engine/broken.sii", "name: \"Broken\"\n")
	write(t, root, "scania.streamline/engine/readme.txt", engineFile("Ignored", "1", "1"))
	write(t, root, "scania.streamline/transmission/grs905.sii", transmissionFile("GRS905", "11.32", "0.80"))

	write(t, root, "volvo.fh16/engine/d16k.sii", engineFile("D16K 750", "750", "3550"))

	write(t, root, "trailers/engine/x.sii", engineFile("X", "1", "1"))
	write(t, root, "trailers/transmission/x.sii", transmissionFile("X", "1", "2"))

	write(t, root, "man.tgx/engine/d2676.sii", engineFile("D2676", "480", "2400"))
	write(t, root, "man.tgx/transmission/single.sii", transmissionFile("Single", "9.9"))

	return root
}

func TestRun(t *testing.T) {
	root := buildTree(t)

	doc, stats, err := New(testConfig(1)).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"scania": 2}, doc.Counts())

	scania := doc["scania"]
	assert.Equal(t, "r", scania[0].Model)
	assert.Equal(t, "streamline", scania[1].Model)

	r := scania[0]
	assert.Equal(t, "scania", r.Brand)
	require.Len(t, r.Engines, 1)
	assert.Equal(t, "DC13 500", r.Engines[0].Name)
	assert.Equal(t, "500", r.Engines[0].RatedPower)
	assert.Equal(t, "/def/vehicle/truck/scania.r/engine/dc13_500.sii", r.Engines[0].Code)
	require.Len(t, r.Transmissions, 1)
	assert.Equal(t, "11.32 - 0.78", r.Transmissions[0].Ratio)
	assert.Equal(t, 3, r.Transmissions[0].Speeds)
	assert.True(t, r.Transmissions[0].Retarder)

	assert.Len(t, scania[1].Engines, 1)

	assert.Equal(t, Stats{
		Folders:        5,
		Models:         2,
		SkippedFolders: 3,
		Engines:        2,
		Transmissions:  2,
		SkippedFiles:   2,
	}, stats)
}

func TestRunWorkerCountDoesNotChangeOutput(t *testing.T) {
	root := buildTree(t)

	sequential, _, err := New(testConfig(1)).Run(context.Background(), root)
	require.NoError(t, err)
	parallel, _, err := New(testConfig(8)).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestRunMissingTransmissionFolder(t *testing.T) {
	root := t.TempDir()
	write(t, root, "daf.xf/engine/mx13.sii", engineFile("MX-13", "530", "2600"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "daf.xg", "transmission"), 0o755))
	write(t, root, "daf.xg/engine/mx13.sii", engineFile("MX-13", "530", "2600"))

	doc, stats, err := New(testConfig(1)).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, doc)
	assert.Equal(t, 2, stats.SkippedFolders)
}

func TestRunUnreadableRoot(t *testing.T) {
	_, _, err := New(testConfig(1)).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	root := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(testConfig(2)).Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanFolderReasons(t *testing.T) {
	root := buildTree(t)
	a := New(testConfig(1))

	folders, err := a.walker.Folders(root)
	require.NoError(t, err)

	reasons := map[string]string{}
	for _, f := range folders {
		if _, err := a.scanFolder(f); err != nil {
			assert.ErrorIs(t, err, ErrFolderSkipped)
			reasons[f.Name] = err.Error()
		}
	}

	assert.Equal(t, map[string]string{
		"man.tgx":    "folder skipped: no valid transmissions",
		"trailers":   "folder skipped: name is not brand.model",
		"volvo.fh16": "folder skipped: no valid transmissions",
	}, reasons)
}
