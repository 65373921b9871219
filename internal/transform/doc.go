// Package transform provides the block transform codec: an orthonormal
// separable 2D DCT with its inverse, a tiled variant that transforms
// fixed-size blocks concurrently, and a one-level Haar wavelet
// decomposition.
//
// Orthonormal scaling makes the DCT energy preserving, so Decode(Encode(x))
// reproduces x up to floating point rounding.
package transform
