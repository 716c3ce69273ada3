package launcher

import (
	"context"
	_ "embed"

	ioutils "github.com/Starkiller645/modtool/internal/io"
)

// IconSize is the edge length of the profile icon in pixels.
const IconSize = 128

//go:embed assets/icon.png
var iconPNG []byte

// Icon returns the modtool profile icon as a data URI.
func Icon(ctx context.Context) (string, error) {
	return ioutils.NewImageService().DataURI(ctx, iconPNG, IconSize)
}
