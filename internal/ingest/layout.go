package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SubjectDirPattern matches subject directories under a data directory.
const SubjectDirPattern = "output_*"

// Layout locates the input files of one subject directory.
type Layout struct {
	Dir              string
	Identifier       string
	MetadataPath     string
	NightSummaryPath string
}

// ResolveLayout inspects dir. The identifier is the directory name after
// its last underscore; metadata is the first meta/basic/meta_*.json; the
// night summary is meta/ms4.out/<identifier>.csv or .xlsx.
func ResolveLayout(dir string) (*Layout, error) {
	l := &Layout{
		Dir:        dir,
		Identifier: identifierOf(dir),
	}

	pattern := filepath.Join(dir, "meta", "basic", "meta_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoMetadata, pattern, fs.ErrNotExist)
	}
	l.MetadataPath = matches[0]

	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(dir, "meta", "ms4.out", l.Identifier+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			l.NightSummaryPath = path
			break
		}
	}
	if l.NightSummaryPath == "" {
		return nil, fmt.Errorf(
			"%w: %s: %w",
			ErrNoNightSummary,
			filepath.Join(dir, "meta", "ms4.out", l.Identifier+".{csv,xlsx}"),
			fs.ErrNotExist,
		)
	}

	return l, nil
}

// Sources returns readers for the resolved files.
func (l *Layout) Sources() (MetadataSource, NightSummarySource) {
	meta := JSONMetadata{Path: l.MetadataPath}
	if isSpreadsheet(l.NightSummaryPath) {
		return meta, XLSXNightSummary{Path: l.NightSummaryPath}
	}
	return meta, CSVNightSummary{Path: l.NightSummaryPath}
}

func identifierOf(dir string) string {
	name := filepath.Base(filepath.Clean(dir))
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
