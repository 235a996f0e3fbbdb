package models

import "time"

// LanguageTag is the syntax-highlighting hint written after the opening code fence
type LanguageTag string

const (
	LanguageTSX        LanguageTag = "tsx"
	LanguageTypeScript LanguageTag = "typescript"
)

// FileRecord holds one collected source file
type FileRecord struct {
	RelativePath string
	Language     LanguageTag
	Content      string
}

// SkippedFile is a matching file that could not be read
type SkippedFile struct {
	RelativePath string
	Err          error
}

type CollectResult struct {
	OutputFile string
	FileCount  int
	Skipped    []SkippedFile
	// Changes is nil unless a previous snapshot of the same root was found
	Changes *SnapshotDiff
}

// ProjectSnapshot represents the collected files of one run, used to report changes on the next run
type ProjectSnapshot struct {
	RootDir   string                  `json:"root_dir"`
	Timestamp time.Time               `json:"timestamp"`
	Files     map[string]FileSnapshot `json:"files"`
}

// FileSnapshot represents the state of a single collected file
type FileSnapshot struct {
	RelativePath string    `json:"relative_path"`
	ModTime      time.Time `json:"mod_time"`
	Size         int64     `json:"size"`
	Hash         string    `json:"hash"`
}

// SnapshotDiff lists relative paths that changed between two snapshots
type SnapshotDiff struct {
	Added    []string
	Modified []string
	Removed  []string
}

// IsEmpty reports whether nothing changed
func (d *SnapshotDiff) IsEmpty() bool {
	return d == nil || len(d.Added)+len(d.Modified)+len(d.Removed) == 0
}
