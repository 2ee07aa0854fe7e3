// Package script loads and validates the movie descriptor (meta.json).
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ivlev/script2video/internal/errs"
)

// ScriptItem is one spoken line with its captions and pre-rendered media.
type ScriptItem struct {
	CN          string `json:"cn"`
	EN          string `json:"en"`
	ImagePrompt string `json:"image_prompt"`
	VoicePath   string `json:"voice_path"`
	ImagePath   string `json:"image_path"`
}

// MovieMeta is the root of a script. Items are in playback order.
type MovieMeta struct {
	Title       string       `json:"title"`
	Footer      string       `json:"footer,omitempty"`
	Link        string       `json:"link,omitempty"`
	ScriptItems []ScriptItem `json:"script_items"`

	// Workdir is where relative media paths resolve; it is not part of the file.
	Workdir string `json:"-"`
}

// VoiceFile returns the absolute path of item i's voice clip.
func (m *MovieMeta) VoiceFile(i int) string { return m.resolve(m.ScriptItems[i].VoicePath) }

// ImageFile returns the absolute path of item i's illustration.
func (m *MovieMeta) ImageFile(i int) string { return m.resolve(m.ScriptItems[i].ImagePath) }

func (m *MovieMeta) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Workdir, p)
}

// Load reads <workdir>/<metafile>. A missing file is a config error: nothing
// else in the run can proceed.
func Load(workdir, metafile string) (*MovieMeta, error) {
	path := filepath.Join(workdir, metafile)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Config("load meta", fmt.Errorf("metafile not found: %s", path))
		}
		return nil, errs.Config("load meta", err)
	}

	var meta MovieMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errs.Config("load meta", fmt.Errorf("parse %s: %w", path, err))
	}
	meta.Workdir = workdir
	return &meta, nil
}
