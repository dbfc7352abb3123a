package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Extensions accepted when scanning an image folder.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".gif":  true,
}

// FolderSource serves images from a directory, sorted lexicographically by
// filename. The sort is plain string order on purpose: a2.jpg comes after
// a10.jpg, and users number their files accordingly.
type FolderSource struct {
	paths []string
}

// NewFolderSource scans dir for supported images. A path to a single image
// file yields a one-element source.
func NewFolderSource(path string) (*FolderSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !fi.IsDir() {
		return &FolderSource{paths: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if imageExtensions[ext] {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)

	return &FolderSource{paths: paths}, nil
}

func (s *FolderSource) Count() int { return len(s.paths) }

func (s *FolderSource) Name(i int) string { return filepath.Base(s.paths[i]) }

func (s *FolderSource) Image(i int) (*Image, error) {
	path := s.paths[i]
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	b := img.Bounds()
	return &Image{Path: path, Img: img, Width: b.Dx(), Height: b.Dy()}, nil
}

func (s *FolderSource) Close() error { return nil }
