// Package bundle packs export bundle directories into compressed tar
// archives and unpacks them again. Archives hold a single top-level
// directory named after the bundle.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/sillsdev/liftbridge/core/errors"
)

// Compression selects the archive compression.
type Compression string

// Supported compressions.
const (
	XZ   Compression = "xz"
	Gzip Compression = "gzip"
)

// Ext returns the archive file extension for c.
func (c Compression) Ext() string {
	if c == Gzip {
		return ".tar.gz"
	}
	return ".tar.xz"
}

// ParseCompression accepts "xz", "gzip" or "gz".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xz":
		return XZ, nil
	case "gzip", "gz":
		return Gzip, nil
	}
	return "", errors.NewValidation("compression", "unknown compression "+s)
}

// Epoch is the modification time written for every archive member.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Options control Pack.
type Options struct {
	Compression Compression
	// BaseDir names the top-level directory inside the archive. It
	// defaults to the base name of the packed directory.
	BaseDir string
}

// Pack writes the contents of dir to archive. Members are added in
// lexical order with normalized timestamps and ownership, so packing the
// same directory twice gives the same tar stream.
func Pack(dir, archive string, opts Options) (err error) {
	if opts.Compression == "" {
		opts.Compression = DetectCompression(archive)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Base(filepath.Clean(dir))
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewIO("stat", dir, err)
	}
	if !info.IsDir() {
		return errors.NewValidation("dir", dir+" is not a directory")
	}
	if err := os.MkdirAll(filepath.Dir(archive), 0755); err != nil {
		return errors.NewIO("mkdir", filepath.Dir(archive), err)
	}

	out, err := os.Create(archive)
	if err != nil {
		return errors.NewIO("create", archive, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.NewIO("close", archive, cerr)
		}
		if err != nil {
			os.Remove(archive)
		}
	}()

	var cw io.WriteCloser
	switch opts.Compression {
	case Gzip:
		cw = gzip.NewWriter(out)
	case XZ:
		if cw, err = xz.NewWriter(out); err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
	default:
		return errors.NewUnsupported("compression", string(opts.Compression))
	}

	tw := tar.NewWriter(cw)
	if err := addTree(tw, dir, opts.BaseDir); err != nil {
		return fmt.Errorf("pack %s: %w", dir, err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", opts.Compression, err)
	}
	return nil
}

func addTree(tw *tar.Writer, dir, base string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = base + "/" + filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}
		header.ModTime = Epoch
		header.AccessTime = time.Time{}
		header.ChangeTime = time.Time{}
		header.Uid, header.Gid = 0, 0
		header.Uname, header.Gname = "", ""
		header.Format = tar.FormatPAX

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}
