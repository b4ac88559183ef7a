package export

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/sillsdev/liftbridge/core/errors"

	"github.com/sillsdev/liftbridge/internal/fileutil"
	"github.com/sillsdev/liftbridge/internal/validation"
)

type mediaKind string

// Media folders of a bundle.
const (
	mediaAudio    mediaKind = "audio"
	mediaPictures mediaKind = "pictures"
)

// mediaSet copies referenced media into a bundle. Files are identified by
// their BLAKE3 hash: a second reference to the same content reuses the
// placed file, while different content under a name already taken gets a
// numeric suffix (a.wav, a-1.wav, ...).
type mediaSet struct {
	dir  string
	root string

	bySource map[string]string
	hashes   map[string]string

	copied  int
	renamed int
	missing []string
	err     error
}

func newMediaSet(dir, root string) *mediaSet {
	return &mediaSet{
		dir:      dir,
		root:     root,
		bySource: make(map[string]string),
		hashes:   make(map[string]string),
	}
}

// hashFile returns the hex BLAKE3 hash of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// source finds the file an href refers to: an absolute path, a path under
// the kind's folder of the media root, or a path under the root itself.
func (m *mediaSet) source(kind mediaKind, href string) (string, bool) {
	p := filepath.FromSlash(strings.TrimPrefix(href, "file://"))
	candidates := []string{p}
	if !filepath.IsAbs(p) {
		candidates = []string{
			filepath.Join(m.root, string(kind), p),
			filepath.Join(m.root, p),
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// place copies the file behind href into the bundle and returns the href to
// write, relative to the kind's folder. A file that cannot be found keeps
// its href.
func (m *mediaSet) place(kind mediaKind, href string) string {
	if href == "" || m.err != nil {
		return href
	}
	src, ok := m.source(kind, href)
	if !ok {
		m.missing = append(m.missing, href)
		return href
	}
	key := string(kind) + "\x00" + src
	if name, done := m.bySource[key]; done {
		return name
	}
	sum, err := hashFile(src)
	if err != nil {
		m.err = errors.NewIO("hash", src, err)
		return href
	}

	base, err := validation.SanitizeFilename(filepath.Base(src))
	if err != nil {
		base = "media" + filepath.Ext(src)
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for n := 1; ; n++ {
		existing, taken := m.hashes[string(kind)+"/"+name]
		if !taken {
			break
		}
		if existing == sum {
			m.bySource[key] = name
			return name
		}
		name = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	if name != base {
		m.renamed++
	}
	if err := fileutil.CopyFile(src, filepath.Join(m.dir, string(kind), name)); err != nil {
		m.err = errors.NewIO("copy", src, err)
		return href
	}
	m.hashes[string(kind)+"/"+name] = sum
	m.bySource[key] = name
	m.copied++
	return name
}

// placeMedia returns the href to write for a media reference, copying the
// file when a bundle is being written.
func (x *Exporter) placeMedia(kind mediaKind, href string) string {
	if x.media == nil {
		return href
	}
	placed := x.media.place(kind, href)
	if placed != href {
		x.logger.Debug("media placed", "kind", kind, "href", href, "as", placed)
	}
	return placed
}
