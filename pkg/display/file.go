package display

import (
	"net/url"
	"path"
	"strings"
)

// FileStrategy selects how a stored file locator is presented.
type FileStrategy string

const (
	FileImage    FileStrategy = "image"
	FileDocument FileStrategy = "document"
	FileRow      FileStrategy = "file"
)

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".heic": {},
	".webp": {}, ".bmp": {}, ".tiff": {},
}

// ClassifyFile picks the strategy from the locator extension. Query strings
// and fragments are ignored and the match is case-insensitive.
func ClassifyFile(locator string) FileStrategy {
	ext := strings.ToLower(path.Ext(locatorPath(locator)))
	if _, ok := imageExtensions[ext]; ok {
		return FileImage
	}
	if ext == ".pdf" {
		return FileDocument
	}
	return FileRow
}

// FileName returns the last path element of the locator.
func FileName(locator string) string {
	p := locatorPath(locator)
	if p == "" {
		return ""
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return locator
	}
	return base
}

func locatorPath(locator string) string {
	locator = strings.TrimSpace(locator)
	if parsed, err := url.Parse(locator); err == nil && parsed.Path != "" {
		unescaped, err := url.PathUnescape(parsed.Path)
		if err == nil {
			return unescaped
		}
		return parsed.Path
	}
	if i := strings.IndexAny(locator, "?#"); i >= 0 {
		locator = locator[:i]
	}
	return locator
}

// FileView is the presentation of a file answer.
type FileView struct {
	Strategy FileStrategy `json:"strategy"`
	Locator  string       `json:"locator"`
	Name     string       `json:"name"`
}

// File builds the view for a stored locator.
func File(locator string) FileView {
	return FileView{
		Strategy: ClassifyFile(locator),
		Locator:  locator,
		Name:     FileName(locator),
	}
}
