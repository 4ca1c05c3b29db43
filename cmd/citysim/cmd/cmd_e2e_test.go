package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/procicity/pkg/save"
)

// resetFlags restores every persistent/local flag to root.go's declared
// defaults. The cobra commands under test share these package-level
// variables, so each test must reset them before setting its own args —
// cobra only assigns a flag's variable when that flag is actually passed.
func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile = ""
	seedFlag = 1
	sizeFlag = "64x64"
	loadFlag = ""
	outFlag = ""
	daysFlag = 0
	autobuildDays = 0
	requireOutside = flexBool{v: true}
	verboseFlag = false
	rotateFlag = 0
	mirrorXFlag = false
	mirrorYFlag = false
	cropFlag = ""
	includeStatsFlag = false
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(t)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestGenerate_WritesLoadableSave(t *testing.T) {
	out := filepath.Join(t.TempDir(), "city.save")
	err := execute(t, "generate", "--seed", "7", "--size", "20x16", "--out", out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	err = execute(t, "hash", "--load", out)
	require.NoError(t, err)
}

func TestHash_IsStableAcrossIdenticalGenerate(t *testing.T) {
	outA := filepath.Join(t.TempDir(), "a.save")
	outB := filepath.Join(t.TempDir(), "b.save")
	require.NoError(t, execute(t, "generate", "--seed", "99", "--size", "24x24", "--days", "3", "--out", outA))
	require.NoError(t, execute(t, "generate", "--seed", "99", "--size", "24x24", "--days", "3", "--out", outB))

	hashA := captureStdout(t, func() error { return execute(t, "hash", "--load", outA, "--include-stats") })
	hashB := captureStdout(t, func() error { return execute(t, "hash", "--load", outB, "--include-stats") })
	require.Equal(t, hashA, hashB)
}

func TestAutobuild_ProducesNonEmptySave(t *testing.T) {
	out := filepath.Join(t.TempDir(), "built.save")
	err := execute(t, "autobuild", "--seed", "3", "--size", "30x30", "--autobuild-days", "5", "--out", out)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestAutobuild_RejectsZeroDays(t *testing.T) {
	err := execute(t, "autobuild", "--seed", "3", "--size", "10x10")
	require.Error(t, err)
}

func TestTransform_RequiresLoad(t *testing.T) {
	err := execute(t, "transform", "--rotate", "90")
	require.Error(t, err)
}

func TestTransform_RotateChangesDimensions(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src.save")
	dst := filepath.Join(t.TempDir(), "dst.save")
	require.NoError(t, execute(t, "generate", "--seed", "11", "--size", "20x10", "--out", src))
	require.NoError(t, execute(t, "transform", "--load", src, "--rotate", "90", "--out", dst))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	env, err := save.Load(f, true)
	require.NoError(t, err)
	require.Equal(t, 10, env.World.Width)
	require.Equal(t, 20, env.World.Height)
}

func TestExportTiles_WritesExpectedRowCount(t *testing.T) {
	save := filepath.Join(t.TempDir(), "city.save")
	tiles := filepath.Join(t.TempDir(), "tiles.csv")
	require.NoError(t, execute(t, "generate", "--seed", "5", "--size", "8x6", "--out", save))
	require.NoError(t, execute(t, "export-tiles", "--load", save, "--out", tiles))

	lines := readLines(t, tiles)
	require.Equal(t, 1+8*6, len(lines)) // header + one row per tile
	require.Equal(t, "x,y,terrain,overlay,level,district,height,variation,occupants", lines[0])
}

func TestExportTiles_RequiresOut(t *testing.T) {
	err := execute(t, "export-tiles", "--seed", "1", "--size", "4x4")
	require.Error(t, err)
}

func TestExportStats_WritesOneRowPerDay(t *testing.T) {
	stats := filepath.Join(t.TempDir(), "stats.csv")
	err := execute(t, "export-stats", "--seed", "2", "--size", "16x16", "--days", "4", "--out", stats)
	require.NoError(t, err)

	lines := readLines(t, stats)
	require.Equal(t, 1+4, len(lines))
	require.True(t, strings.HasPrefix(lines[0], "day,population,money,happiness"))
}

func TestDiagnose_PassesOnFreshlyGeneratedWorld(t *testing.T) {
	err := execute(t, "diagnose", "--seed", "13", "--size", "24x24")
	require.NoError(t, err)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything it printed, trimmed. Subcommands like hash print their result
// to stdout rather than returning it, so tests read it back this way.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	require.NoError(t, w.Close())
	os.Stdout = orig
	require.NoError(t, fnErr)

	buf := make([]byte, 0, 256)
	tmp := make([]byte, 256)
	for {
		n, readErr := r.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if readErr != nil {
			break
		}
	}
	return strings.TrimSpace(string(buf))
}
