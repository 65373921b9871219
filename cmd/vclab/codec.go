package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vclab/internal/colorspace"
	"vclab/internal/rle"
	"vclab/internal/scan"
	"vclab/internal/transform"
)

var rgb2yuvCmd = &cobra.Command{
	Use:   "rgb2yuv R G B",
	Short: "Convert one RGB pixel to YUV",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args)
		if err != nil {
			return err
		}
		yuv := colorspace.RGBToYUV(v[0], v[1], v[2])
		return emit(cmd, yuv, func(w io.Writer) {
			fmt.Fprintf(w, "Y=%.4f U=%.4f V=%.4f\n", yuv.Y, yuv.U, yuv.V)
		})
	},
}

var yuv2rgbCmd = &cobra.Command{
	Use:   "yuv2rgb Y U V",
	Short: "Convert one YUV pixel to RGB",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args)
		if err != nil {
			return err
		}
		rgb := colorspace.YUVToRGB(v[0], v[1], v[2])
		return emit(cmd, rgb, func(w io.Writer) {
			fmt.Fprintf(w, "R=%.4f G=%.4f B=%.4f\n", rgb.R, rgb.G, rgb.B)
		})
	},
}

var serpentineCmd = &cobra.Command{
	Use:     "serpentine MATRIX",
	Short:   "Read a matrix along its anti-diagonals",
	Example: `  vclab serpentine '[[1,2,3],[4,5,6],[7,8,9],[10,11,12]]'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matrix, err := parseMatrix(args[0])
		if err != nil {
			return err
		}
		order, err := scan.Serpentine(matrix)
		if err != nil {
			return err
		}
		return emit(cmd, order, func(w io.Writer) {
			fmt.Fprintln(w, formatFloats(order))
		})
	},
}

var rleCmd = &cobra.Command{
	Use:   "rle",
	Short: "Run-length encode or decode a series",
}

var rleEncodeCmd = &cobra.Command{
	Use:     "encode VALUE...",
	Short:   "Collapse a series into (value, count) runs",
	Example: `  vclab rle encode 1 1 1 4 4 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serie, err := parseFloats(args)
		if err != nil {
			return err
		}
		runs := rle.Encode(serie)
		return emit(cmd, runs, func(w io.Writer) {
			fmt.Fprintln(w, formatRuns(runs))
		})
	},
}

var rleDecodeCmd = &cobra.Command{
	Use:     "decode VALUE:COUNT...",
	Short:   "Expand (value, count) runs back into a series",
	Example: `  vclab rle decode 1:3 4:2 2:1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := parseRuns(args)
		if err != nil {
			return err
		}
		serie, err := rle.Decode(runs)
		if err != nil {
			return err
		}
		return emit(cmd, serie, func(w io.Writer) {
			fmt.Fprintln(w, formatFloats(serie))
		})
	},
}

var dctCmd = &cobra.Command{
	Use:   "dct",
	Short: "Apply the 2-D DCT or its inverse to a matrix",
}

var dctEncodeCmd = &cobra.Command{
	Use:     "encode MATRIX",
	Short:   "Apply the separable 2-D DCT",
	Example: `  vclab dct encode '[[0,1,2,1,5,7]]'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDCT(cmd, args[0], transform.Encode, transform.EncodeBlocks)
	},
}

var dctDecodeCmd = &cobra.Command{
	Use:   "decode MATRIX",
	Short: "Invert the separable 2-D DCT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDCT(cmd, args[0], transform.Decode, transform.DecodeBlocks)
	},
}

var dwtCmd = &cobra.Command{
	Use:     "dwt VALUE...",
	Short:   "Run one level of the Haar wavelet transform",
	Example: `  vclab dwt 0 1 2 1 5 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		signal, err := parseFloats(args)
		if err != nil {
			return err
		}
		approx, detail, err := transform.Haar(signal)
		if err != nil {
			return err
		}
		result := struct {
			Approximation []float64 `json:"approximationCoefficients"`
			Detail        []float64 `json:"detailCoefficients"`
		}{approx, detail}
		return emit(cmd, result, func(w io.Writer) {
			fmt.Fprintf(w, "cA: %s\n", formatFloats(approx))
			fmt.Fprintf(w, "cD: %s\n", formatFloats(detail))
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{dctEncodeCmd, dctDecodeCmd} {
		c.Flags().Int("block", 0, "Transform independent square blocks of this size (0 transforms the whole matrix)")
	}

	rleCmd.AddCommand(rleEncodeCmd, rleDecodeCmd)
	dctCmd.AddCommand(dctEncodeCmd, dctDecodeCmd)
	rootCmd.AddCommand(rgb2yuvCmd, yuv2rgbCmd, serpentineCmd, rleCmd, dctCmd, dwtCmd)
}

type gridFunc func([][]float64) ([][]float64, error)

type blockFunc func([][]float64, int) ([][]float64, error)

func runDCT(cmd *cobra.Command, arg string, whole gridFunc, blocks blockFunc) error {
	matrix, err := parseMatrix(arg)
	if err != nil {
		return err
	}
	size, _ := cmd.Flags().GetInt("block")

	var out [][]float64
	if size > 0 {
		out, err = blocks(matrix, size)
	} else {
		out, err = whole(matrix)
	}
	if err != nil {
		return err
	}
	return emit(cmd, out, func(w io.Writer) {
		for _, row := range out {
			fmt.Fprintln(w, formatFloats(row))
		}
	})
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not a number", i+1, a)
		}
		out[i] = f
	}
	return out, nil
}

func parseMatrix(arg string) ([][]float64, error) {
	var m [][]float64
	if err := json.Unmarshal([]byte(arg), &m); err != nil {
		return nil, fmt.Errorf("matrix must be a JSON array of rows: %w", err)
	}
	return m, nil
}

func parseRuns(args []string) ([]rle.Run[float64], error) {
	runs := make([]rle.Run[float64], len(args))
	for i, a := range args {
		value, count, ok := strings.Cut(a, ":")
		if !ok {
			return nil, fmt.Errorf("run %d: %q is not VALUE:COUNT", i+1, a)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("run %d: %q is not a number", i+1, value)
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("run %d: %q is not an integer count", i+1, count)
		}
		runs[i] = rle.Run[float64]{Value: v, Count: n}
	}
	return runs, nil
}

// formatFloat prints f rounded to six decimals, without a negative zero.
func formatFloat(f float64) string {
	f = math.Round(f*1e6) / 1e6
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatRuns(runs []rle.Run[float64]) string {
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = fmt.Sprintf("(%s, %d)", formatFloat(r.Value), r.Count)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
