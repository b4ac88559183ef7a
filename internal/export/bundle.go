package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/internal/fileutil"
	"github.com/sillsdev/liftbridge/internal/logging"
	"github.com/sillsdev/liftbridge/internal/validation"
)

// BundleResult describes a written bundle.
type BundleResult struct {
	LIFTPath     string   `json:"lift_path" yaml:"lift_path"`
	RangesPath   string   `json:"ranges_path" yaml:"ranges_path"`
	MediaCopied  int      `json:"media_copied" yaml:"media_copied"`
	MediaRenamed int      `json:"media_renamed" yaml:"media_renamed"`
	MediaMissing []string `json:"media_missing,omitempty" yaml:"media_missing,omitempty"`
}

// WriteBundle writes <name>.lift and <name>.lift-ranges into dir and, when
// CopyMedia is set, the referenced media into dir/audio and dir/pictures.
// Media hrefs in the written LIFT name the copied files.
func (x *Exporter) WriteBundle(ctx context.Context, dir, name string) (*BundleResult, error) {
	if name == "" {
		name = filepath.Base(filepath.Clean(dir))
	}
	if err := validation.ValidateFilename(name); err != nil {
		return nil, errors.NewValidation("name", err.Error())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewIO("mkdir", dir, err)
	}
	x.rangesHref = name + ".lift-ranges"
	if x.opts.CopyMedia {
		x.media = newMediaSet(dir, x.opts.MediaRoot)
	}
	defer func() {
		x.rangesHref = ""
		x.media = nil
	}()

	res := &BundleResult{
		LIFTPath:   filepath.Join(dir, name+".lift"),
		RangesPath: filepath.Join(dir, x.rangesHref),
	}

	var doc bytes.Buffer
	if err := x.WriteLIFT(ctx, &doc, nil); err != nil {
		return nil, err
	}
	if x.media != nil {
		if x.media.err != nil {
			return nil, x.media.err
		}
		res.MediaCopied = x.media.copied
		res.MediaRenamed = x.media.renamed
		res.MediaMissing = x.media.missing
		for _, href := range x.media.missing {
			x.logger.Warn("media file not found", "href", href, "root", x.opts.MediaRoot)
		}
	}
	if err := fileutil.WriteFileAtomic(res.LIFTPath, doc.Bytes()); err != nil {
		return nil, errors.NewIO("write", res.LIFTPath, err)
	}
	logging.ExportWritten(res.LIFTPath, int64(doc.Len()), "entries", len(x.graph.Entries()))

	var ranges bytes.Buffer
	if err := x.WriteRanges(&ranges); err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(res.RangesPath, ranges.Bytes()); err != nil {
		return nil, errors.NewIO("write", res.RangesPath, err)
	}
	logging.ExportWritten(res.RangesPath, int64(ranges.Len()))
	return res, nil
}
