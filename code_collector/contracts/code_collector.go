package contracts

import (
	"context"
	"io"

	"github.com/meysamhadeli/codemd/code_collector/models"
)

type ICodeCollector interface {
	Collect(ctx context.Context, rootPath string, outputFile string) (*models.CollectResult, error)
	RenderRecord(w io.Writer, record models.FileRecord) error
}

// IReporter receives progress events while the collector walks the tree
type IReporter interface {
	ScanningDirectory(dir string)
	ProcessingFile(name string)
	Processed(relativePath string)
	Skipped(relativePath string, err error)
	Summary(fileCount int, outputFile string)
}

type ISnapshotStore interface {
	Load(key string) (*models.ProjectSnapshot, bool)
	Save(key string, snapshot *models.ProjectSnapshot) error
	Clear() error
	Stats() (map[string]interface{}, error)
}
