package autotag

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
)

// addImageTags decodes just the image header (no pixel data) for
// resolution/width/height, the Go stdlib analogue of the original's
// width/height parsing out of libmagic's "WxH" description. webp has no
// stdlib decoder, so it falls back to content-type only.
func addImageTags(c *collector, path string, mtype *mimetype.MIME) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return
	}

	width := strconv.Itoa(cfg.Width)
	height := strconv.Itoa(cfg.Height)

	c.set(valued("resolution", width+"x"+height))
	c.set(sorted("width", width, int64(cfg.Width)))
	c.set(sorted("height", height, int64(cfg.Height)))
}
