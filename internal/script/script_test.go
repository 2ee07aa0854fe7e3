package script

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/script2video/internal/errs"
)

func writeMeta(t *testing.T, dir string, meta MovieMeta) {
	t.Helper()
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o644))
}

func touch(t *testing.T, dir, rel string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	raw := `{"title":"十二星座","script_items":[{"cn":"你好","en":"hello","image_prompt":"p","voice_path":"a/0.mp3","image_path":"i/0.png"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), []byte(raw), 0o644))

	meta, err := Load(dir, "meta.json")
	require.NoError(t, err)
	assert.Equal(t, "十二星座", meta.Title)
	require.Len(t, meta.ScriptItems, 1)
	assert.Equal(t, "你好", meta.ScriptItems[0].CN)
	assert.Equal(t, "hello", meta.ScriptItems[0].EN)
	assert.Equal(t, dir, meta.Workdir)
	assert.Equal(t, filepath.Join(dir, "a/0.mp3"), meta.VoiceFile(0))
	assert.Equal(t, filepath.Join(dir, "i/0.png"), meta.ImageFile(0))
}

func TestLoadMissingMetafileIsConfigError(t *testing.T) {
	_, err := Load(t.TempDir(), "meta.json")
	require.Error(t, err)
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
	assert.Contains(t, err.Error(), "metafile not found")
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), []byte("{"), 0o644))

	_, err := Load(dir, "meta.json")
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
}

func TestValidateOK(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "audio/0.mp3")
	touch(t, dir, "image/0.png")
	meta := &MovieMeta{
		Title:   "t",
		Workdir: dir,
		ScriptItems: []ScriptItem{
			{CN: "一", EN: "one", VoicePath: "audio/0.mp3", ImagePath: "image/0.png"},
		},
	}
	assert.NoError(t, Validate(meta, zerolog.Nop()))
}

func TestValidateEmptyScript(t *testing.T) {
	err := Validate(&MovieMeta{Workdir: t.TempDir()}, zerolog.Nop())
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestValidateReportsMissingVoicePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "image/0.png")
	meta := &MovieMeta{
		Title:   "t",
		Workdir: dir,
		ScriptItems: []ScriptItem{
			{CN: "一", EN: "one", VoicePath: "audio/missing.mp3", ImagePath: "image/0.png"},
		},
	}

	err := Validate(meta, zerolog.Nop())
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, 0, verr.Issues[0].Index)
	assert.Equal(t, "voice_path", verr.Issues[0].Field)
	assert.Equal(t, filepath.Join(dir, "audio/missing.mp3"), verr.Issues[0].Path)
	assert.Contains(t, err.Error(), "audio/missing.mp3")
}

func TestValidateCollectsEveryIssue(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "image", "dir.png"), 0o755))
	meta := &MovieMeta{
		Title:   "t",
		Workdir: dir,
		ScriptItems: []ScriptItem{
			{CN: " ", EN: "", VoicePath: "", ImagePath: "image/dir.png"},
		},
	}

	err := Validate(meta, zerolog.Nop())
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []string{"cn", "en", "voice_path", "image_path"}, fields)
	assert.Equal(t, "is not a regular file", verr.Issues[3].Reason)
}

func TestValidateReportsEmptyTitle(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "audio/0.mp3")
	touch(t, dir, "image/0.png")
	meta := &MovieMeta{
		Title:   "  ",
		Workdir: dir,
		ScriptItems: []ScriptItem{
			{CN: "一", EN: "one", VoicePath: "audio/0.mp3", ImagePath: "image/0.png"},
		},
	}

	err := Validate(meta, zerolog.Nop())
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, -1, verr.Issues[0].Index)
	assert.Equal(t, "title", verr.Issues[0].Field)
}

func TestWriteMetaRoundTripKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	writeMeta(t, dir, MovieMeta{Title: "x", ScriptItems: []ScriptItem{{CN: "甲"}, {CN: "乙"}, {CN: "丙"}}})

	meta, err := Load(dir, "meta.json")
	require.NoError(t, err)
	require.Len(t, meta.ScriptItems, 3)
	assert.Equal(t, "丙", meta.ScriptItems[2].CN)
}
