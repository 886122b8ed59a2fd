package extraction

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageSource yields single-page documents from a multi-page input.
type PageSource interface {
	// Name is the input's base name without extension.
	Name() string
	// PageCount returns the number of pages, numbered from 1.
	PageCount() (int, error)
	// WritePage stores page as its own document under dir and returns its
	// path and MIME type.
	WritePage(page int, dir string) (path string, mimeType string, err error)
}

// OpenSource returns a PageSource for a PDF file or a directory of page images.
func OpenSource(path string) (PageSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	if info.IsDir() {
		return newImageDirSource(path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("unsupported document type %q: expected a PDF or a directory of page images", filepath.Ext(path))
	}
	return &pdfSource{path: path}, nil
}

func baseName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func pageFile(page int, ext string) string {
	return fmt.Sprintf("page-%03d%s", page, ext)
}

type pdfSource struct {
	path string
}

func (s *pdfSource) Name() string {
	return baseName(s.path)
}

func (s *pdfSource) PageCount() (int, error) {
	n, err := api.PageCountFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages of %s: %w", s.path, err)
	}
	return n, nil
}

func (s *pdfSource) WritePage(page int, dir string) (string, string, error) {
	out := filepath.Join(dir, pageFile(page, ".pdf"))
	if err := api.TrimFile(s.path, out, []string{strconv.Itoa(page)}, nil); err != nil {
		return "", "", fmt.Errorf("failed to split page: %w", err)
	}
	return out, "application/pdf", nil
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

type imageDirSource struct {
	dir   string
	files []string
}

func newImageDirSource(dir string) (*imageDirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read page directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageTypes[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page images found in %s", dir)
	}
	slices.SortFunc(files, naturalCompare)

	return &imageDirSource{dir: dir, files: files}, nil
}

// naturalCompare orders file names so embedded numbers compare by value:
// "page2.png" sorts before "page10.png".
func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			ai, bj := digitsEnd(a, i), digitsEnd(b, j)
			an := strings.TrimLeft(a[i:ai], "0")
			bn := strings.TrimLeft(b[j:bj], "0")
			if c := cmp.Compare(len(an), len(bn)); c != 0 {
				return c
			}
			if c := strings.Compare(an, bn); c != 0 {
				return c
			}
			i, j = ai, bj
			continue
		}
		if c := cmp.Compare(a[i], b[j]); c != 0 {
			return c
		}
		i++
		j++
	}
	if c := cmp.Compare(len(a)-i, len(b)-j); c != 0 {
		return c
	}
	// "page01" and "page1" tie on value; keep the order stable
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitsEnd(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func (s *imageDirSource) Name() string {
	return baseName(s.dir)
}

func (s *imageDirSource) PageCount() (int, error) {
	return len(s.files), nil
}

func (s *imageDirSource) WritePage(page int, dir string) (string, string, error) {
	if page < 1 || page > len(s.files) {
		return "", "", fmt.Errorf("page %d out of range", page)
	}
	name := s.files[page-1]
	ext := strings.ToLower(filepath.Ext(name))
	out := filepath.Join(dir, pageFile(page, ext))

	src, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return "", "", fmt.Errorf("failed to open page image: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return "", "", fmt.Errorf("failed to create page file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", "", fmt.Errorf("failed to copy page image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", "", fmt.Errorf("failed to write page file: %w", err)
	}
	return out, imageTypes[ext], nil
}
