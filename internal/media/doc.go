// Package media classifies uploads and performs the in-process image
// operations: resize, grayscale, re-compression and YUV statistics.
//
// Resizing uses libvips (govips) when it has been initialised with
// InitVips and the output is JPEG or PNG; every other path goes through
// disintegration/imaging. Decoders are registered for GIF, JPEG, PNG, BMP,
// TIFF and WebP. Videos are not handled here; see package transcoder.
package media
