package handlers

import (
	"net/http"
	"time"

	"vclab/internal/colorspace"
	"vclab/internal/metrics"
	"vclab/internal/numeric"
	"vclab/internal/rle"
	"vclab/internal/scan"
	"vclab/internal/transform"
)

type rgbRequest struct {
	R *float64 `json:"R"`
	G *float64 `json:"G"`
	B *float64 `json:"B"`
}

type yuvRequest struct {
	Y *float64 `json:"Y"`
	U *float64 `json:"U"`
	V *float64 `json:"V"`
}

type matrixRequest struct {
	Matrix [][]float64 `json:"matrix"`
	// BlockSize switches the DCT endpoints to independent square blocks.
	BlockSize int `json:"blockSize,omitempty"`
}

type serieRequest struct {
	Serie []float64 `json:"serie"`
}

type encodedSerieRequest struct {
	EncodedSerie []rle.Run[float64] `json:"encodedSerie"`
}

type signalRequest struct {
	Data []float64 `json:"data"`
}

// SerpentineResponse carries the anti-diagonal zig-zag read-out of a matrix.
type SerpentineResponse struct {
	SerpentineOrder []float64 `json:"serpentineOrder"`
}

type EncodedSerieResponse struct {
	EncodedSerie []rle.Run[float64] `json:"encodedSerie"`
}

type SerieResponse struct {
	Serie []float64 `json:"serie"`
}

type EncodedMatrixResponse struct {
	EncodedMatrix [][]float64 `json:"encodedMatrix"`
}

type DecodedMatrixResponse struct {
	DecodedMatrix [][]float64 `json:"decodedMatrix"`
}

// DWTResponse holds one level of the Haar transform.
type DWTResponse struct {
	ApproximationCoefficients []float64 `json:"approximationCoefficients"`
	DetailCoefficients        []float64 `json:"detailCoefficients"`
}

func elements(grid [][]float64) int {
	n := 0
	for _, row := range grid {
		n += len(row)
	}
	return n
}

// finishCodec records a codec request that got past body decoding and
// writes either resp or the error.
func (h *Handlers) finishCodec(w http.ResponseWriter, r *http.Request, operation string, start time.Time, err error, resp interface{}) {
	h.record(r, operation, "", nil, start, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// RGBToYUV converts one pixel.
// POST /api/rgb-to-yuv
func (h *Handlers) RGBToYUV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req rgbRequest
	err := decodeJSON(w, r, &req)
	if err == nil && (req.R == nil || req.G == nil || req.B == nil) {
		err = badRequestf("R, G and B are required")
	}
	if err != nil {
		metrics.ObserveCodec("colorspace", "rgb_to_yuv", 0, start, err)
		writeError(w, r, err)
		return
	}

	yuv := colorspace.RGBToYUV(*req.R, *req.G, *req.B)
	err = numeric.CheckFinite([]float64{yuv.Y, yuv.U, yuv.V})
	metrics.ObserveCodec("colorspace", "rgb_to_yuv", 1, start, err)
	h.finishCodec(w, r, "rgb_to_yuv", start, err, yuv)
}

// YUVToRGB converts one pixel.
// POST /api/yuv-to-rgb
func (h *Handlers) YUVToRGB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req yuvRequest
	err := decodeJSON(w, r, &req)
	if err == nil && (req.Y == nil || req.U == nil || req.V == nil) {
		err = badRequestf("Y, U and V are required")
	}
	if err != nil {
		metrics.ObserveCodec("colorspace", "yuv_to_rgb", 0, start, err)
		writeError(w, r, err)
		return
	}

	rgb := colorspace.YUVToRGB(*req.Y, *req.U, *req.V)
	err = numeric.CheckFinite([]float64{rgb.R, rgb.G, rgb.B})
	metrics.ObserveCodec("colorspace", "yuv_to_rgb", 1, start, err)
	h.finishCodec(w, r, "yuv_to_rgb", start, err, rgb)
}

// Serpentine reads a matrix along its anti-diagonals.
// POST /api/serpentine
func (h *Handlers) Serpentine(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req matrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveCodec("scan", "serpentine", 0, start, err)
		writeError(w, r, err)
		return
	}

	order, err := scan.Serpentine(req.Matrix)
	metrics.ObserveCodec("scan", "serpentine", len(order), start, err)
	h.finishCodec(w, r, "serpentine", start, err, SerpentineResponse{SerpentineOrder: order})
}

// RunLengthEncode compresses a series into (value, count) runs.
// POST /api/run-length/encode
func (h *Handlers) RunLengthEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req serieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveCodec("rle", "encode", 0, start, err)
		writeError(w, r, err)
		return
	}

	runs := rle.Encode(req.Serie)
	metrics.ObserveCodec("rle", "encode", len(req.Serie), start, nil)
	h.finishCodec(w, r, "rle_encode", start, nil, EncodedSerieResponse{EncodedSerie: runs})
}

// RunLengthDecode expands runs back into a series.
// POST /api/run-length/decode
func (h *Handlers) RunLengthDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req encodedSerieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveCodec("rle", "decode", 0, start, err)
		writeError(w, r, err)
		return
	}

	serie, err := rle.Decode(req.EncodedSerie)
	metrics.ObserveCodec("rle", "decode", len(serie), start, err)
	h.finishCodec(w, r, "rle_decode", start, err, SerieResponse{Serie: serie})
}

// DCTEncode applies the separable 2-D DCT.
// POST /api/dct/encode
func (h *Handlers) DCTEncode(w http.ResponseWriter, r *http.Request) {
	h.dct(w, r, "dct_encode", transform.Encode, transform.EncodeBlocks, func(out [][]float64) interface{} {
		return EncodedMatrixResponse{EncodedMatrix: out}
	})
}

// DCTDecode inverts DCTEncode.
// POST /api/dct/decode
func (h *Handlers) DCTDecode(w http.ResponseWriter, r *http.Request) {
	h.dct(w, r, "dct_decode", transform.Decode, transform.DecodeBlocks, func(out [][]float64) interface{} {
		return DecodedMatrixResponse{DecodedMatrix: out}
	})
}

func (h *Handlers) dct(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	whole func([][]float64) ([][]float64, error),
	blocks func([][]float64, int) ([][]float64, error),
	wrap func([][]float64) interface{},
) {
	start := time.Now()
	var req matrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveCodec("transform", operation, 0, start, err)
		writeError(w, r, err)
		return
	}

	var out [][]float64
	var err error
	if req.BlockSize > 0 {
		out, err = blocks(req.Matrix, req.BlockSize)
	} else {
		out, err = whole(req.Matrix)
	}
	if err == nil {
		err = numeric.CheckFinite(out...)
	}
	metrics.ObserveCodec("transform", operation, elements(out), start, err)
	h.finishCodec(w, r, operation, start, err, wrap(out))
}

// DWT runs one level of the Haar wavelet transform.
// POST /api/dwt
func (h *Handlers) DWT(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req signalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveCodec("transform", "dwt", 0, start, err)
		writeError(w, r, err)
		return
	}

	approx, detail, err := transform.Haar(req.Data)
	if err == nil {
		err = numeric.CheckFinite(approx, detail)
	}
	metrics.ObserveCodec("transform", "dwt", len(req.Data), start, err)
	h.finishCodec(w, r, "dwt", start, err, DWTResponse{
		ApproximationCoefficients: approx,
		DetailCoefficients:        detail,
	})
}
