// Package archive flattens an uploaded zip of card artwork into a lookup
// table keyed by base filename, for correlation with batch CSV rows.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrArchiveRead wraps failures to open the uploaded archive. Callers treat
// it as "no archive supplied" with a warning rather than failing the batch.
var ErrArchiveRead = errors.New("archive cannot be read")

// Extract walks every entry in the zip and returns base filename -> content.
// Directory entries are skipped and nesting is ignored; only the final path
// segment keys the map. When two entries share a base name the later one
// wins. Empty input yields an empty map.
func Extract(zipBytes []byte) (map[string][]byte, error) {
	images := make(map[string][]byte)
	if len(zipBytes) == 0 {
		return images, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveRead, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
		if name == "." || name == "/" || name == "" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrArchiveRead, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrArchiveRead, f.Name, err)
		}

		images[name] = content
	}

	return images, nil
}
