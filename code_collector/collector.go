package code_collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/meysamhadeli/codemd/code_collector/contracts"
	"github.com/meysamhadeli/codemd/code_collector/models"
	"github.com/zeebo/xxh3"
)

// CodeCollector walks a project tree and writes every TypeScript source into one markdown file.
type CodeCollector struct {
	reporter  contracts.IReporter
	snapshots contracts.ISnapshotStore
}

// NewCodeCollector initializes a new CodeCollector. snapshots may be nil to disable change tracking.
func NewCodeCollector(reporter contracts.IReporter, snapshots contracts.ISnapshotStore) contracts.ICodeCollector {
	return &CodeCollector{
		reporter:  reporter,
		snapshots: snapshots,
	}
}

// RenderRecord writes a single file block: header, opening fence with language tag, content, closing fence.
func (collector *CodeCollector) RenderRecord(w io.Writer, record models.FileRecord) error {
	return WriteRecord(w, record)
}

// WriteRecord writes record in the generated document format
func WriteRecord(w io.Writer, record models.FileRecord) error {
	_, err := fmt.Fprintf(w, "# %s\n```%s\n%s\n```\n\n", record.RelativePath, record.Language, record.Content)
	return err
}

// Collect scans rootPath and writes the matching files to outputFile.
// The output file is truncated once and appended to as files are processed, so partial
// output remains on disk when the walk fails. On error the partial result is returned
// alongside the error, except for the precondition failures, which return nil.
func (collector *CodeCollector) Collect(ctx context.Context, rootPath string, outputFile string) (*models.CollectResult, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrRootNotFound, rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s'", ErrRootNotDirectory, rootPath)
	}

	walkRoot := resolveRoot(rootPath)

	output, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}

	result := &models.CollectResult{OutputFile: outputFile}

	var snapshot *models.ProjectSnapshot
	if collector.snapshots != nil {
		snapshot = &models.ProjectSnapshot{
			RootDir:   walkRoot,
			Timestamp: time.Now(),
			Files:     make(map[string]models.FileSnapshot),
		}
	}

	walkErr := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relativePath, relErr := filepath.Rel(walkRoot, path)
		if relErr != nil {
			relativePath = path
		}

		if err != nil {
			// Unlistable directory: report it and keep walking the rest of the tree
			if d == nil {
				return err
			}
			collector.skip(result, relativePath, err)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != walkRoot && IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			collector.reporter.ScanningDirectory(path)
			return nil
		}

		language, ok := LanguageFor(d.Name())
		if !ok {
			return nil
		}

		// A symlinked directory is not descended into, and it is not a source file either
		if d.Type()&fs.ModeSymlink != 0 {
			if target, statErr := os.Stat(path); statErr == nil && target.IsDir() {
				return nil
			}
		}

		collector.reporter.ProcessingFile(d.Name())

		content, err := readSource(path)
		if err != nil {
			collector.skip(result, relativePath, err)
			return nil
		}

		record := models.FileRecord{
			RelativePath: relativePath,
			Language:     language,
			Content:      content,
		}

		// Render into a buffer first so a failed write never leaves half a block behind
		var buffer bytes.Buffer
		if err := collector.RenderRecord(&buffer, record); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		if _, err := output.Write(buffer.Bytes()); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}

		collector.reporter.Processed(relativePath)
		result.FileCount++

		if snapshot != nil {
			snapshot.Files[relativePath] = fileSnapshot(path, record)
		}

		return nil
	})

	if closeErr := output.Close(); closeErr != nil && walkErr == nil {
		walkErr = fmt.Errorf("%w: %w", ErrWriteOutput, closeErr)
	}
	if walkErr != nil {
		return result, walkErr
	}

	if snapshot != nil {
		result.Changes = collector.trackChanges(walkRoot, outputFile, snapshot)
	}

	collector.reporter.Summary(result.FileCount, outputFile)

	return result, nil
}

func (collector *CodeCollector) skip(result *models.CollectResult, relativePath string, err error) {
	result.Skipped = append(result.Skipped, models.SkippedFile{RelativePath: relativePath, Err: err})
	collector.reporter.Skipped(relativePath, err)
}

// trackChanges compares the snapshot against the one saved by the previous run and stores the new one.
// Cache failures are only logged.
func (collector *CodeCollector) trackChanges(root string, outputFile string, snapshot *models.ProjectSnapshot) *models.SnapshotDiff {
	key := SnapshotKey(root, outputFile)

	var changes *models.SnapshotDiff
	if previous, found := collector.snapshots.Load(key); found {
		changes = CompareSnapshots(previous, snapshot)
	}

	if err := collector.snapshots.Save(key, snapshot); err != nil {
		log.Printf("Warning: Failed to save project snapshot: %v", err)
	}

	return changes
}

// resolveRoot follows a symlinked root so the walk descends into its target
func resolveRoot(rootPath string) string {
	linkInfo, err := os.Lstat(rootPath)
	if err != nil || linkInfo.Mode()&fs.ModeSymlink == 0 {
		return rootPath
	}
	resolved, err := filepath.EvalSymlinks(rootPath)
	if err != nil {
		return rootPath
	}
	return resolved
}

// readSource reads a whole file as UTF-8 text with line endings normalized to "\n"
func readSource(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(content) {
		return "", ErrInvalidEncoding
	}
	return normalizeNewlines(string(content)), nil
}

func normalizeNewlines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

func fileSnapshot(path string, record models.FileRecord) models.FileSnapshot {
	entry := models.FileSnapshot{
		RelativePath: record.RelativePath,
		Hash:         fmt.Sprintf("%016x", xxh3.HashString(record.Content)),
	}
	if info, err := os.Stat(path); err == nil {
		entry.ModTime = info.ModTime()
		entry.Size = info.Size()
	}
	return entry
}

// IsPrecondition reports whether err is one of the fatal errors raised before any output is written
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrRootNotFound) || errors.Is(err, ErrRootNotDirectory)
}
