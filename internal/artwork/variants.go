package artwork

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/avif"
	"golang.org/x/image/draw"
)

const VariantPlayer = "player"

const VariantGrid = "grid"

const ThumbnailExtension = ".avif"

type ThumbnailSpec struct {
	Variant string
	Size    int
}

var defaultThumbnailSpecs = []ThumbnailSpec{
	{Variant: VariantPlayer, Size: 96},
	{Variant: VariantGrid, Size: 320},
}

// VariantPath is the cache path of a scaled thumbnail for an album.
func VariantPath(cacheDir, albumID, variant string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s__%s%s", strings.ToLower(strings.TrimSpace(albumID)), variant, ThumbnailExtension))
}

// writeVariants derives the scaled AVIF thumbnails for an album's artwork.
// Best-effort: a failed variant is logged and skipped.
func (c *Cache) writeVariants(source image.Image, albumID string) {
	for _, spec := range defaultThumbnailSpecs {
		if err := c.writeVariant(source, albumID, spec); err != nil {
			c.logger.Warn("writing artwork variant failed",
				"album", albumID,
				"variant", spec.Variant,
				"error", err,
			)
		}
	}
}

func (c *Cache) writeVariant(source image.Image, albumID string, spec ThumbnailSpec) error {
	scaled := scaleToFit(source, spec.Size)

	out, err := os.Create(VariantPath(c.dir, albumID, spec.Variant))
	if err != nil {
		return fmt.Errorf("create variant file: %w", err)
	}
	defer out.Close()

	if err := avif.Encode(out, scaled, avif.Options{Quality: 60, Speed: 8}); err != nil {
		return fmt.Errorf("encode avif variant: %w", err)
	}

	return nil
}

// scaleToFit shrinks the image so its longer edge equals maxDim, preserving
// aspect ratio. Images already small enough are returned unchanged.
func scaleToFit(source image.Image, maxDim int) image.Image {
	bounds := source.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return source
	}

	if width >= height {
		height = height * maxDim / width
		width = maxDim
	} else {
		width = width * maxDim / height
		height = maxDim
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	target := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(target, target.Bounds(), source, bounds, draw.Over, nil)
	return target
}
