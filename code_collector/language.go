package code_collector

import (
	"strings"

	"github.com/meysamhadeli/codemd/code_collector/models"
)

// excludedDirName is pruned at any depth below the root, together with its subtree
const excludedDirName = "node_modules"

// LanguageFor returns the language tag for a file name, based only on its suffix.
// Names that do not end in ".tsx" or ".ts" are not collected.
func LanguageFor(name string) (models.LanguageTag, bool) {
	switch {
	case strings.HasSuffix(name, ".tsx"):
		return models.LanguageTSX, true
	case strings.HasSuffix(name, ".ts"):
		return models.LanguageTypeScript, true
	default:
		return "", false
	}
}

// IsExcludedDir reports whether a directory name is skipped during the walk
func IsExcludedDir(name string) bool {
	return name == excludedDirName
}
