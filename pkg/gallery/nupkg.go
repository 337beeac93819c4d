// pkg/gallery/nupkg.go - reading and unpacking downloaded .nupkg archives.

package gallery

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// nuspec is the minimal package metadata carried inside a .nupkg.
type nuspec struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		ID                       string `xml:"id"`
		Version                  string `xml:"version"`
		Authors                  string `xml:"authors"`
		Description              string `xml:"description"`
		LicenseURL               string `xml:"licenseUrl"`
		RequireLicenseAcceptance bool   `xml:"requireLicenseAcceptance"`
	} `xml:"metadata"`
}

// readNuspec extracts the .nuspec metadata from a package archive.
func readNuspec(nupkgPath string) (nuspec, error) {
	var doc nuspec

	r, err := zip.OpenReader(nupkgPath)
	if err != nil {
		return doc, fmt.Errorf("opening package %s: %w", nupkgPath, err)
	}
	defer r.Close()

	var nuspecFile *zip.File
	for _, f := range r.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".nuspec") && !strings.Contains(f.Name, "/") {
			nuspecFile = f
			break
		}
	}
	if nuspecFile == nil {
		return doc, fmt.Errorf("package %s contains no .nuspec", nupkgPath)
	}

	rc, err := nuspecFile.Open()
	if err != nil {
		return doc, fmt.Errorf("opening .nuspec in %s: %w", nupkgPath, err)
	}
	defer rc.Close()

	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return doc, fmt.Errorf("parsing .nuspec in %s: %w", nupkgPath, err)
	}
	return doc, nil
}

// isPackagingEntry reports whether a zip entry is NuGet packaging
// metadata rather than module content.
func isPackagingEntry(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "_rels/"),
		strings.HasPrefix(lower, "package/"),
		strings.HasSuffix(lower, ".nuspec"),
		strings.Contains(lower, "[content_types].xml"):
		return true
	}
	return false
}

// extractModule unpacks the module content of a .nupkg into destDir,
// preserving subdirectory structure and skipping packaging metadata.
func extractModule(nupkgPath, destDir string) error {
	zr, err := zip.OpenReader(nupkgPath)
	if err != nil {
		return fmt.Errorf("opening package %s: %w", nupkgPath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || isPackagingEntry(f.Name) {
			continue
		}

		rel := filepath.FromSlash(f.Name)
		target := filepath.Join(destDir, rel)
		// Reject entries that escape the destination directory.
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("package entry %q escapes destination directory", f.Name)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", target, err)
		}
		if err := writeZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("reading package entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
