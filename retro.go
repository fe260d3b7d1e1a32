/*
Package retro converts images into the style of early PC display adapters.

A conversion resizes the source to the resolution of the chosen adapter, picks
the palette, either the adapter's fixed color table or one derived from the
image, then reduces the image to that palette with one of a number of period
dithering methods. The result is optionally padded onto a canvas with the
correct 4:3 shape and enlarged by an integer factor for modern displays.

Converting the same image with the same Config always gives the same pixels.
*/
package retro

import (
	"image/color"
	"io/ioutil"
	"log"
)

// Background is the color used to fill any padding around the content.
var Background color.Color = color.RGBA{0x00, 0x00, 0x00, 0xff}

// Converter converts images, optionally memoizing the results in a Cache.
// It is safe for concurrent use.
type Converter struct {
	cache  *Cache
	logger *log.Logger
}

// New returns a Converter. cache may be nil to disable caching and logger
// may be nil to discard log output.
func New(cache *Cache, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Converter{
		cache:  cache,
		logger: logger,
	}
}
