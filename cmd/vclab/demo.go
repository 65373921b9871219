package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vclab/internal/colorspace"
	"vclab/internal/rle"
	"vclab/internal/scan"
	"vclab/internal/transform"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run every codec component on the lab's sample values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDemo(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// Sample values of the lab exercises.
var (
	demoRGB    = colorspace.RGB{R: 24, G: 240, B: 0}
	demoMatrix = [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}
	demoSerie  = []float64{1, 1, 1, 4, 4, 2, 5, 4, 5, 5}
	demoSignal = []float64{0, 1, 2, 1, 5, 7}
)

func runDemo(w io.Writer) error {
	yuv := colorspace.RGBToYUV(demoRGB.R, demoRGB.G, demoRGB.B)
	rgb := colorspace.YUVToRGB(yuv.Y, yuv.U, yuv.V)
	fmt.Fprintf(w, "RGB %s -> YUV %s\n", formatFloats([]float64{demoRGB.R, demoRGB.G, demoRGB.B}), formatFloats([]float64{yuv.Y, yuv.U, yuv.V}))
	fmt.Fprintf(w, "YUV -> RGB %s\n", formatFloats([]float64{rgb.R, rgb.G, rgb.B}))

	order, err := scan.Serpentine(demoMatrix)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "serpentine 4x3: %s\n", formatFloats(order))

	fmt.Fprintf(w, "run-length %s: %s\n", formatFloats(demoSerie), formatRuns(rle.Encode(demoSerie)))

	encoded, err := transform.Encode([][]float64{demoSignal})
	if err != nil {
		return err
	}
	decoded, err := transform.Decode(encoded)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "dct %s: %s\n", formatFloats(demoSignal), formatFloats(encoded[0]))
	fmt.Fprintf(w, "idct: %s\n", formatFloats(decoded[0]))

	approx, detail, err := transform.Haar(demoSignal)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "haar cA: %s\n", formatFloats(approx))
	fmt.Fprintf(w, "haar cD: %s\n", formatFloats(detail))
	return nil
}
