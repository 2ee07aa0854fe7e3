package director

import (
	"fmt"
	"path/filepath"
)

// AssetName is the file name of a rasterized layer asset. Whole-timeline
// layers pass index -1.
func AssetName(kind LayerKind, index int) string {
	if index < 0 {
		return fmt.Sprintf("%s.png", kind)
	}
	return fmt.Sprintf("%s-%03d.png", kind, index)
}

// IllustrationName is the file name of item index's prepared illustration.
func IllustrationName(index int) string {
	return fmt.Sprintf("image-%03d.png", index)
}

// SnapshotPath is where the preview frame of item index is written.
func SnapshotPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("snapshot-%03d.png", index))
}
