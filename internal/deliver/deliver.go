// Package deliver places the final artifacts of a successful item into the
// run's delivery directory. Exactly three artifacts go out per item and each
// copy is verified by size and checksum.
package deliver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"subcast/internal/fileutil"
	"subcast/internal/logging"
	"subcast/internal/services"
)

// Artifacts names the three files delivered per item.
type Artifacts struct {
	VideoPath     string
	MetadataPath  string
	ThumbnailPath string
}

// Result maps artifact names to their delivered paths, matching the record's
// artifacts field.
type Result struct {
	VideoPath     string
	MetadataPath  string
	ThumbnailPath string
}

// Deliverer copies artifacts under <delivery_dir>/<run_id>/<item_id>/.
type Deliverer struct {
	deliveryDir string
	logger      *slog.Logger
}

// New builds a deliverer rooted at deliveryDir.
func New(deliveryDir string, logger *slog.Logger) *Deliverer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Deliverer{
		deliveryDir: deliveryDir,
		logger:      logging.WithComponent(logger, "deliver"),
	}
}

// ItemDir reports where one item's artifacts land.
func (d *Deliverer) ItemDir(runID, itemID string) string {
	return filepath.Join(d.deliveryDir, runID, itemID)
}

// Deliver verifies and copies the three artifacts. A zero-byte source is a
// failure before any copy starts, so a partial delivery directory never
// contains an empty file.
func (d *Deliverer) Deliver(runID, itemID string, artifacts Artifacts) (Result, error) {
	sources := []struct {
		name string
		path string
	}{
		{"media", artifacts.VideoPath},
		{"metadata", artifacts.MetadataPath},
		{"thumbnail", artifacts.ThumbnailPath},
	}
	for _, src := range sources {
		if src.path == "" {
			return Result{}, services.Wrap(services.ErrValidation, "deliver", "check artifacts",
				fmt.Sprintf("%s artifact path missing", src.name), nil)
		}
		if err := fileutil.NonZeroSize(src.path); err != nil {
			return Result{}, services.Wrap(services.ErrValidation, "deliver", "check artifacts",
				fmt.Sprintf("%s artifact unusable", src.name), err)
		}
	}

	destDir := d.ItemDir(runID, itemID)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "deliver", "create directory", "delivery directory not writable", err)
	}

	result := Result{
		VideoPath:     filepath.Join(destDir, "video"+filepath.Ext(artifacts.VideoPath)),
		MetadataPath:  filepath.Join(destDir, "metadata.json"),
		ThumbnailPath: filepath.Join(destDir, "thumbnail"+filepath.Ext(artifacts.ThumbnailPath)),
	}
	copies := []struct {
		name string
		src  string
		dst  string
	}{
		{"media", artifacts.VideoPath, result.VideoPath},
		{"metadata", artifacts.MetadataPath, result.MetadataPath},
		{"thumbnail", artifacts.ThumbnailPath, result.ThumbnailPath},
	}
	for _, c := range copies {
		if err := fileutil.CopyFileVerified(c.src, c.dst); err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "deliver", "copy artifact",
				fmt.Sprintf("%s copy failed", c.name), err)
		}
		d.logger.Debug("artifact delivered",
			logging.String("artifact", c.name),
			logging.String("path", c.dst))
	}
	return result, nil
}
