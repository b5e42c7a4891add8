package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/presentation"
)

// execute runs the CLI with an isolated HOME and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CONDDISPATCH_DEBUG", "")

	var out bytes.Buffer
	a := &app{}
	t.Cleanup(a.teardown)
	root := a.rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestArea_Circle(t *testing.T) {
	out, err := execute(t, "area", "circle", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "area(circle(r=2)) =")
	assert.Contains(t, out, "12.566")
}

func TestArea_TriangleHasNoMatch(t *testing.T) {
	_, err := execute(t, "area", "triangle", "3", "4", "5")
	require.ErrorIs(t, err, dispatch.ErrNoMatch)
}

func TestArea_BadInput(t *testing.T) {
	_, err := execute(t, "area", "hexagon", "1")
	require.ErrorContains(t, err, `unknown shape "hexagon"`)

	_, err = execute(t, "area", "circle", "big")
	require.ErrorContains(t, err, `dimension "big"`)
}

func TestGroups_ListsBuiltins(t *testing.T) {
	out, err := execute(t, "groups")
	require.NoError(t, err)

	var groups []presentation.GroupDTO
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "area", groups[0].Name)
	assert.Equal(t, "perimeter", groups[1].Name)

	names := make([]string, 0, len(groups[0].Candidates))
	for _, c := range groups[0].Candidates {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"circle", "rectangle", "square"}, names)
	assert.True(t, groups[1].Candidates[len(groups[1].Candidates)-1].Default)
}

const callsYAML = `
- group: area
  shape: circle
  dims: [2]
- group: area
  shape: triangle
  dims: [3, 4, 5]
- group: perimeter
  shape: rectangle
  dims: [3, 4]
- group: perimeter
  args: ["hexagon"]
- group: volume
  shape: square
  dims: [1]
`

func TestRun_PrintsEveryResult(t *testing.T) {
	path := writeFile(t, "calls.yaml", callsYAML)

	out, err := execute(t, "run", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "#1 area(circle(r=2)) = 12.566")
	assert.Contains(t, lines[1], "#2 area(triangle(3,4,5)) ! no_match")
	assert.Contains(t, lines[2], "#3 perimeter(rectangle(3x4)) = 14")
	assert.Contains(t, lines[3], "#4 perimeter(hexagon) ! implementation_error: perimeter: not a shape: string")
	assert.Contains(t, lines[4], "#5 volume(square(1)) ! no_match")
}

func TestRun_JSON(t *testing.T) {
	path := writeFile(t, "calls.yaml", callsYAML)

	out, err := execute(t, "run", "--json", path)
	require.NoError(t, err)

	var results []presentation.ResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 5)
	assert.Equal(t, "ok", results[0].Outcome)
	assert.InDelta(t, 12.566, results[0].Value, 0.001)
	assert.Equal(t, "no_match", results[1].Outcome)
}

func TestRun_InvalidFile(t *testing.T) {
	_, err := execute(t, "run", writeFile(t, "calls.yaml", "- group: area\n  shape: hexagon\n"))
	require.ErrorContains(t, err, "call 1: unknown shape")

	_, err = execute(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading calls")
}

// lockedBuffer lets the watch test read output while the command writes it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_WatchPrintsDiff(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeFile(t, "calls.yaml", "- group: area\n  shape: square\n  dims: [2]\n")

	a := &app{}
	require.NoError(t, a.setup(nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() { done <- a.run(ctx, out, path, runOptions{watch: true}) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "#1 area(square(2)) = 4") }, 2*time.Second, 10*time.Millisecond)
	// Let the watcher register before touching the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("- group: area\n  shape: square\n  dims: [3]\n"), 0o644))

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "+ #1 area(square(3)) = 9") }, 3*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "- #1 area(square(2)) = 4")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", out)
	require.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)
}

func TestConfig_ExplicitFileIsLoaded(t *testing.T) {
	path := writeFile(t, "config.yaml", "cache:\n  enabled: false\nlog:\n  level: warn\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Expiration)
}

func TestConfig_Errors(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "groups")
	require.ErrorContains(t, err, "reading config")

	bad := writeFile(t, "config.yaml", "cache:\n  expiration: -1s\n")
	_, err = execute(t, "--config", bad, "groups")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestRun_DisabledCacheStillDispatches(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "cache:\n  enabled: false\n")
	path := writeFile(t, "calls.yaml", callsYAML)

	out, err := execute(t, "--config", cfgPath, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "#3 perimeter(rectangle(3x4)) = 14")
}

func TestConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("CONDDISPATCH_CACHE_ENABLED", "false")
	t.Setenv("CONDDISPATCH_METRICS_ADDR", ":9191")

	cfg, err := loadConfig(writeFile(t, "config.yaml", "cache:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, ":9191", cfg.Metrics.Addr)
}
