package script

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ivlev/script2video/internal/errs"
)

// Validate checks the pre-composition contract: a title, at least one item, non-empty
// captions, and voice/image files that exist as regular readable files.
// Every issue is logged; the returned *errs.ValidationError lists all of them.
func Validate(meta *MovieMeta, logger zerolog.Logger) error {
	var issues []errs.Issue

	if strings.TrimSpace(meta.Title) == "" {
		issues = append(issues, errs.Issue{Index: -1, Field: "title", Reason: "is empty"})
	}
	if len(meta.ScriptItems) == 0 {
		issues = append(issues, errs.Issue{Index: -1, Field: "script_items", Reason: "is empty"})
	}

	for i, item := range meta.ScriptItems {
		if strings.TrimSpace(item.CN) == "" {
			issues = append(issues, errs.Issue{Index: i, Field: "cn", Reason: "is empty"})
		}
		if strings.TrimSpace(item.EN) == "" {
			issues = append(issues, errs.Issue{Index: i, Field: "en", Reason: "is empty"})
		}
		issues = append(issues, checkFile(i, "voice_path", item.VoicePath, meta)...)
		issues = append(issues, checkFile(i, "image_path", item.ImagePath, meta)...)
	}

	if len(issues) == 0 {
		return nil
	}
	for _, issue := range issues {
		logger.Error().
			Int("item", issue.Index).
			Str("field", issue.Field).
			Str("path", issue.Path).
			Msg(issue.Reason)
	}
	return &errs.ValidationError{Issues: issues}
}

func checkFile(index int, field, rel string, meta *MovieMeta) []errs.Issue {
	if strings.TrimSpace(rel) == "" {
		return []errs.Issue{{Index: index, Field: field, Reason: "is empty"}}
	}

	path := meta.resolve(rel)
	info, err := os.Stat(path)
	if err != nil {
		return []errs.Issue{{Index: index, Field: field, Path: path, Reason: "does not exist"}}
	}
	if !info.Mode().IsRegular() {
		return []errs.Issue{{Index: index, Field: field, Path: path, Reason: "is not a regular file"}}
	}
	f, err := os.Open(path)
	if err != nil {
		return []errs.Issue{{Index: index, Field: field, Path: path, Reason: "is not readable"}}
	}
	f.Close()
	return nil
}
