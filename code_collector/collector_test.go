package code_collector

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/meysamhadeli/codemd/code_collector/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter keeps every event so tests can check the progress stream
type recordingReporter struct {
	scanned   []string
	processed []string
	skipped   []string
	summaries []int
}

func (r *recordingReporter) ScanningDirectory(dir string) { r.scanned = append(r.scanned, dir) }
func (r *recordingReporter) ProcessingFile(string) {}
func (r *recordingReporter) Processed(rel string) { r.processed = append(r.processed, rel) }
func (r *recordingReporter) Skipped(rel string, _ error) { r.skipped = append(r.skipped, rel) }
func (r *recordingReporter) Summary(count int, _ string) { r.summaries = append(r.summaries, count) }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func collect(t *testing.T, root string) (*models.CollectResult, string, *recordingReporter) {
	t.Helper()
	reporter := &recordingReporter{}
	outputFile := filepath.Join(t.TempDir(), "codebase.md")

	result, err := NewCodeCollector(reporter, nil).Collect(context.Background(), root, outputFile)
	require.NoError(t, err)

	output, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	return result, string(output), reporter
}

func TestCollect_ExampleTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts":              "export const a = 1;",
		"b.tsx":             "export const B = () => <div />;",
		"c.txt":             "not collected",
		"node_modules/d.ts": "export const d = 4;",
	})

	result, output, reporter := collect(t, root)

	expected := "# a.ts\n```typescript\nexport const a = 1;\n```\n\n" +
		"# b.tsx\n```tsx\nexport const B = () => <div />;\n```\n\n"
	assert.Equal(t, expected, output)
	assert.Equal(t, 2, result.FileCount)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []string{"a.ts", "b.tsx"}, reporter.processed)
	assert.Equal(t, []int{2}, reporter.summaries)
	assert.Equal(t, []string{root}, reporter.scanned)
}

func TestCollect_NestedDirectoriesUseRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app/page.tsx":      "page",
		"src/lib/util.ts":       "util",
		"next.config.ts":        "config",
		"src/types/global.d.ts": "declare global {}",
	})

	result, output, _ := collect(t, root)

	assert.Equal(t, 4, result.FileCount)
	for _, rel := range []string{"next.config.ts", "src/app/page.tsx", "src/lib/util.ts", "src/types/global.d.ts"} {
		assert.Contains(t, output, "# "+filepath.FromSlash(rel)+"\n")
	}
	assert.Contains(t, output, "# "+filepath.Join("src", "app", "page.tsx")+"\n```tsx\npage\n```\n\n")
}

func TestCollect_SkipsNodeModulesAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/ui/node_modules/react/index.ts":   "skip",
		"packages/ui/node_modules/react/button.tsx": "skip",
		"packages/ui/index.ts":                      "keep",
		"node_modules/lodash/deep/x.ts":             "skip",
		"not_node_modules/y.ts":                     "keep",
	})

	result, output, reporter := collect(t, root)

	assert.Equal(t, 2, result.FileCount)
	assert.NotContains(t, output, "skip")
	assert.Contains(t, output, "# "+filepath.Join("not_node_modules", "y.ts")+"\n")
	for _, dir := range reporter.scanned {
		assert.NotContains(t, dir, string(filepath.Separator)+"node_modules")
	}
}

func TestCollect_RootNamedNodeModulesIsScanned(t *testing.T) {
	root := filepath.Join(t.TempDir(), "node_modules")
	writeTree(t, root, map[string]string{
		"index.ts":                 "root file",
		"nested/node_modules/z.ts": "excluded",
	})

	result, output, _ := collect(t, root)

	assert.Equal(t, 1, result.FileCount)
	assert.Contains(t, output, "root file")
	assert.NotContains(t, output, "excluded")
}

func TestCollect_UnreadableFilesAreSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"good.ts": "good",
		"next.ts": "next",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "binary.ts"), []byte{0xff, 0xfe, 0x00, 0x80}, 0644))

	result, output, reporter := collect(t, root)

	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "binary.ts", result.Skipped[0].RelativePath)
	assert.True(t, errors.Is(result.Skipped[0].Err, ErrInvalidEncoding))
	assert.Equal(t, []string{"binary.ts"}, reporter.skipped)
	assert.NotContains(t, output, "# binary.ts")
	assert.Contains(t, output, "# good.ts")
	assert.Contains(t, output, "# next.ts")
}

func TestCollect_BrokenSymlinkIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.ts": "real"})
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.ts"), filepath.Join(root, "dangling.ts")))

	result, output, _ := collect(t, root)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "dangling.ts", result.Skipped[0].RelativePath)
	assert.NotContains(t, output, "dangling.ts")
}

func TestCollect_PermissionDeniedIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"open.ts": "open", "secret.ts": "secret"})
	require.NoError(t, os.Chmod(filepath.Join(root, "secret.ts"), 0000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "secret.ts"), 0644) })

	result, output, _ := collect(t, root)

	assert.Equal(t, 1, result.FileCount)
	assert.NotContains(t, output, "secret")
}

func TestCollect_DirectoryWithTsSuffixIsNotAFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"types.ts/inner.ts": "inner"})

	result, output, _ := collect(t, root)

	assert.Equal(t, 1, result.FileCount)
	assert.Equal(t, "# "+filepath.Join("types.ts", "inner.ts")+"\n```typescript\ninner\n```\n\n", output)
	assert.Empty(t, result.Skipped)
}

func TestCollect_SymlinkedDirectoryWithTsSuffixIsIgnored(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real/inner.ts": "inner"})
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linked.ts")))

	result, output, reporter := collect(t, root)

	assert.Equal(t, 1, result.FileCount)
	assert.Equal(t, "# "+filepath.Join("real", "inner.ts")+"\n```typescript\ninner\n```\n\n", output)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, reporter.skipped)
}

func TestCollect_UnlistableDirectoryIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for this user")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "a", "locked/hidden.ts": "hidden"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	result, output, reporter := collect(t, root)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "locked", result.Skipped[0].RelativePath)
	assert.Equal(t, []string{"locked"}, reporter.skipped)
	assert.Equal(t, []int{1}, reporter.summaries)
	assert.Equal(t, "# a.ts\n```typescript\na\n```\n\n", output)
}

func TestCollect_WriteFailureStopsRun(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs /dev/full")
	}
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full is not available")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "a", "b.ts": "b"})
	reporter := &recordingReporter{}

	result, err := NewCodeCollector(reporter, nil).Collect(context.Background(), root, "/dev/full")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteOutput))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.FileCount)
	assert.Empty(t, reporter.processed)
	assert.Empty(t, reporter.summaries)
}

func TestCollect_NormalizesLineEndings(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"crlf.ts": "line1\r\nline2\rline3\n"})

	_, output, _ := collect(t, root)

	assert.Equal(t, "# crlf.ts\n```typescript\nline1\nline2\nline3\n\n```\n\n", output)
}

func TestCollect_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts":          "a",
		"z/b.tsx":       "b",
		"m/n/o/c.ts":    "c",
		"m/readme.md":   "ignored",
		"m/n/d.tsx":     "d",
		"m/n/e.test.ts": "e",
	})
	outputFile := filepath.Join(t.TempDir(), "out.md")
	collector := NewCodeCollector(&recordingReporter{}, nil)

	_, err := collector.Collect(context.Background(), root, outputFile)
	require.NoError(t, err)
	first, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	_, err = collector.Collect(context.Background(), root, outputFile)
	require.NoError(t, err)
	second, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCollect_OverwritesExistingOutput(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "a"})
	outputFile := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, os.WriteFile(outputFile, []byte(strings.Repeat("stale ", 100)), 0644))

	_, err := NewCodeCollector(&recordingReporter{}, nil).Collect(context.Background(), root, outputFile)
	require.NoError(t, err)

	output, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "# a.ts\n```typescript\na\n```\n\n", string(output))
}

func TestCollect_MissingRootWritesNoOutput(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.md")
	reporter := &recordingReporter{}

	result, err := NewCodeCollector(reporter, nil).Collect(context.Background(), filepath.Join(t.TempDir(), "missing"), outputFile)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootNotFound))
	assert.True(t, IsPrecondition(err))
	assert.Nil(t, result)
	assert.NoFileExists(t, outputFile)
	assert.Empty(t, reporter.summaries)
}

func TestCollect_RootIsAFile(t *testing.T) {
	rootFile := filepath.Join(t.TempDir(), "file.ts")
	require.NoError(t, os.WriteFile(rootFile, []byte("x"), 0644))
	outputFile := filepath.Join(t.TempDir(), "out.md")

	result, err := NewCodeCollector(&recordingReporter{}, nil).Collect(context.Background(), rootFile, outputFile)

	assert.True(t, errors.Is(err, ErrRootNotDirectory))
	assert.Nil(t, result)
	assert.NoFileExists(t, outputFile)
}

func TestCollect_OutputCannotBeCreated(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "a"})
	outputFile := filepath.Join(t.TempDir(), "no", "such", "dir", "out.md")

	result, err := NewCodeCollector(&recordingReporter{}, nil).Collect(context.Background(), root, outputFile)

	assert.True(t, errors.Is(err, ErrCreateOutput))
	assert.False(t, IsPrecondition(err))
	assert.Nil(t, result)
}

func TestCollect_CancelledContextStopsWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "a", "b.ts": "b"})
	outputFile := filepath.Join(t.TempDir(), "out.md")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewCodeCollector(&recordingReporter{}, nil).Collect(ctx, root, outputFile)

	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.FileCount)
	// The output was already created before the walk began
	assert.FileExists(t, outputFile)
}

func TestCollect_TracksChangesBetweenRuns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"keep.ts": "keep", "edit.ts": "v1", "drop.tsx": "drop"})
	snapshots, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)
	outputFile := filepath.Join(t.TempDir(), "out.md")
	collector := NewCodeCollector(&recordingReporter{}, snapshots)

	first, err := collector.Collect(context.Background(), root, outputFile)
	require.NoError(t, err)
	assert.Nil(t, first.Changes)

	require.NoError(t, os.WriteFile(filepath.Join(root, "edit.ts"), []byte("v2"), 0644))
	require.NoError(t, os.Remove(filepath.Join(root, "drop.tsx")))
	writeTree(t, root, map[string]string{"new.ts": "new"})

	second, err := collector.Collect(context.Background(), root, outputFile)
	require.NoError(t, err)
	require.NotNil(t, second.Changes)
	assert.Equal(t, []string{"new.ts"}, second.Changes.Added)
	assert.Equal(t, []string{"edit.ts"}, second.Changes.Modified)
	assert.Equal(t, []string{"drop.tsx"}, second.Changes.Removed)

	third, err := collector.Collect(context.Background(), root, outputFile)
	require.NoError(t, err)
	assert.True(t, third.Changes.IsEmpty())
}

func TestRenderRecord(t *testing.T) {
	var buf bytes.Buffer
	collector := NewCodeCollector(&recordingReporter{}, nil)

	err := collector.RenderRecord(&buf, models.FileRecord{
		RelativePath: filepath.Join("src", "index.tsx"),
		Language:     models.LanguageTSX,
		Content:      "const x = 1;\n",
	})

	require.NoError(t, err)
	assert.Equal(t, "# "+filepath.Join("src", "index.tsx")+"\n```tsx\nconst x = 1;\n\n```\n\n", buf.String())
}
