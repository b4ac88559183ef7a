package bundle

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/internal/validation"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// DetectCompression guesses the compression of an archive from its name:
// .tar.gz and .tgz are gzip, everything else xz.
func DetectCompression(name string) Compression {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return Gzip
	}
	return XZ
}

// sniff reports the compression of a stream from its magic bytes.
func sniff(r *bufio.Reader) (Compression, bool) {
	head, _ := r.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return XZ, true
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip, true
	}
	return "", false
}

// Reader reads the members of a bundle archive.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens an archive, choosing the decompressor from the file's magic
// bytes and falling back to its name.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	br := bufio.NewReader(f)
	c, ok := sniff(br)
	if !ok {
		c = DetectCompression(path)
	}

	var (
		src          io.Reader
		decompressor io.Closer
	)
	switch c {
	case XZ:
		xzr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		src = xzr
	case Gzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		src, decompressor = gzr, gzr
	}
	return &Reader{Reader: tar.NewReader(src), file: f, decompressor: decompressor}, nil
}

// Close closes the archive and its decompressor.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); first == nil {
		first = err
	}
	return first
}

// Visitor is called for each archive member. Returning stop ends the walk.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate calls visit for every member in archive order.
func (r *Reader) Iterate(visit Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		stop, err := visit(header, r)
		if err != nil || stop {
			return err
		}
	}
}

// Unpack extracts archive into dest and returns the path of the bundle
// directory it contained. Members that would land outside dest are
// rejected.
func Unpack(archive, dest string) (string, error) {
	r, err := Open(archive)
	if err != nil {
		return "", err
	}
	defer r.Close()

	root := filepath.Clean(dest)
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", errors.NewIO("mkdir", root, err)
	}
	var base string
	err = r.Iterate(func(h *tar.Header, content io.Reader) (bool, error) {
		name, err := validation.SanitizePath(root, filepath.FromSlash(strings.TrimSuffix(h.Name, "/")))
		if err != nil {
			return true, fmt.Errorf("member %s: %w", h.Name, err)
		}
		target := filepath.Join(root, name)
		if base == "" {
			if top, _, _ := strings.Cut(filepath.ToSlash(name), "/"); top != "" && top != "." {
				base = filepath.Join(root, top)
			}
		}
		switch h.Typeflag {
		case tar.TypeDir:
			return false, os.MkdirAll(target, 0755)
		case tar.TypeReg:
			return false, extractFile(target, content, h.FileInfo().Mode().Perm())
		}
		return false, nil
	})
	if err != nil {
		return "", fmt.Errorf("unpack %s: %w", archive, err)
	}
	if base == "" {
		base = root
	}
	return base, nil
}

func extractFile(target string, content io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
