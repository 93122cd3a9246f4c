// Package inspect examines the entry-point file at startup and reports local
// asset references that the asset directory cannot satisfy.
package inspect

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/f4ah6o/assetserve/internal/logging"
)

// referenceSelector matches elements whose attributes load assets.
const referenceSelector = `script[src], img[src], link[rel~="stylesheet"][href], link[rel~="icon"][href], ` +
	`link[rel~="manifest"][href], link[rel~="preload"][href], link[rel~="modulepreload"][href]`

// Report describes the entry-point file.
type Report struct {
	// Path is the absolute path of the entry-point file.
	Path string
	// Size is the file size in bytes.
	Size int64
	// HTML indicates whether the file was parsed as HTML.
	HTML bool
	// Title is the document title, if any.
	Title string
	// References are the distinct local asset paths referenced by the
	// document, in document order.
	References []string
	// Missing are the references that do not name a regular file in the
	// asset directory.
	Missing []string
}

// isHTML reports whether the file extension denotes an HTML document.
func isHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// localReference converts an attribute value into an asset name relative to
// the asset directory. It returns false for external, inline and fragment
// references.
func localReference(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "#") || strings.HasPrefix(value, "//") {
		return "", false
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	name := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if name == "" {
		return "", false
	}
	return name, true
}

// exists reports whether name is a regular file inside assetDir.
func exists(assetDir, name string) bool {
	file, err := os.OpenInRoot(assetDir, filepath.FromSlash(name))
	if err != nil {
		return false
	}
	defer file.Close()
	info, err := file.Stat()
	return err == nil && info.Mode().IsRegular()
}

// Entry inspects the entry-point file at entryPath, resolving its local asset
// references against assetDir.
func Entry(entryPath, assetDir string) (*Report, error) {
	file, err := os.Open(entryPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open entry point")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "unable to query entry point")
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("entry point is not a regular file: %s", entryPath)
	}

	report := &Report{
		Path: entryPath,
		Size: info.Size(),
	}
	if !isHTML(entryPath) {
		return report, nil
	}

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse entry point")
	}
	report.HTML = true
	report.Title = strings.TrimSpace(doc.Find("title").First().Text())

	seen := make(map[string]bool)
	doc.Find(referenceSelector).Each(func(_ int, s *goquery.Selection) {
		value, ok := s.Attr("src")
		if !ok {
			value, _ = s.Attr("href")
		}
		name, ok := localReference(value)
		if !ok || seen[name] {
			return
		}
		seen[name] = true
		report.References = append(report.References, name)
		if !exists(assetDir, name) {
			report.Missing = append(report.Missing, name)
		}
	})

	return report, nil
}

// Log writes the report summary at the info level and one warning for each
// missing reference.
func (r *Report) Log(logger *logging.Logger) {
	if !r.HTML {
		logger.Infof("Entry point %s (%s)", r.Path, humanize.Bytes(uint64(r.Size)))
		return
	}
	logger.Infof("Entry point %s (%s, title %q, %d asset references)",
		r.Path, humanize.Bytes(uint64(r.Size)), r.Title, len(r.References))
	for _, name := range r.Missing {
		logger.Warnf("entry point references missing asset /%s", name)
	}
}
