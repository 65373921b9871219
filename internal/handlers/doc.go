// Package handlers provides the HTTP API of the lab server.
//
// It includes handlers for:
//   - The pure codec components: colour conversion, serpentine scan,
//     run-length coding, DCT and Haar wavelet
//   - Upload-driven media jobs delegated to ffmpeg or the in-process image
//     processor
//   - Output downloads, output cleanup and the job history
//   - Health checks and version information
//
// Errors are returned as {"error": "..."} with the status derived from the
// error chain: invalid input and shape mismatches map to 400, disabled
// transcoding to 503 and failed external tools to 500 with the tool's
// diagnostic attached.
package handlers
