package generator

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"template-api/internal/models"
)

// Package zips projectDir into an in-memory archive. Entry names use forward
// slashes and are rooted at the project directory's own name, so extracting
// yields a single project folder. Mode bits are preserved; symlinks are
// stored as link-target entries.
func Package(projectDir string) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	root := filepath.Base(projectDir)

	err := filepath.WalkDir(projectDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return models.Internalf("walking rendered tree: %v", walkErr)
		}
		rel, err := filepath.Rel(projectDir, p)
		if err != nil {
			return models.Internalf("computing archive path: %v", err)
		}
		arc := root
		if rel != "." {
			arc = root + "/" + filepath.ToSlash(rel)
		}

		info, err := d.Info()
		if err != nil {
			return models.Internalf("reading %s: %v", arc, err)
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return models.Internalf("reading symlink %s: %v", arc, err)
			}
			hdr := &zip.FileHeader{Name: arc, Method: zip.Store}
			hdr.SetMode(fs.ModeSymlink | 0o755)
			hdr.Modified = info.ModTime()
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return models.Internalf("adding symlink entry %s: %v", arc, err)
			}
			if _, err := w.Write([]byte(target)); err != nil {
				return models.Internalf("writing symlink entry %s: %v", arc, err)
			}
		case d.IsDir():
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return models.Internalf("building directory entry %s: %v", arc, err)
			}
			hdr.Name = arc + "/"
			hdr.Method = zip.Store
			if _, err := zw.CreateHeader(hdr); err != nil {
				return models.Internalf("adding directory entry %s: %v", arc, err)
			}
		default:
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return models.Internalf("building entry %s: %v", arc, err)
			}
			hdr.Name = arc
			hdr.Method = zip.Deflate
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return models.Internalf("adding entry %s: %v", arc, err)
			}
			f, err := os.Open(p)
			if err != nil {
				return models.Internalf("opening %s: %v", arc, err)
			}
			_, err = io.Copy(w, f)
			f.Close()
			if err != nil {
				return models.Internalf("writing entry %s: %v", arc, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, models.Internalf("finalizing archive: %v", err)
	}
	return &buf, nil
}
