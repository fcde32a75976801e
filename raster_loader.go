package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DecodePanopticPNG reads a label PNG in the dataset encoding:
// R = semantic label, G = instance / 256, B = instance % 256.
func DecodePanopticPNG(r io.Reader) (*PanopticRaster, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode panoptic png: %w", err)
	}

	b := img.Bounds()
	raster := NewPanopticRaster(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			instance := int(c.G)*256 + int(c.B)
			raster.Set(y-b.Min.Y, x-b.Min.X, NewPanopticID(Label(c.R), instance))
		}
	}
	return raster, nil
}

// EncodePanopticPNG writes a panoptic raster in the dataset label encoding
func EncodePanopticPNG(w io.Writer, raster *PanopticRaster) error {
	img := image.NewNRGBA(image.Rect(0, 0, raster.Width, raster.Height))
	for i := 0; i < raster.Height; i++ {
		for j := 0; j < raster.Width; j++ {
			id := raster.At(i, j)
			instance := id.Instance()
			img.SetNRGBA(j, i, color.NRGBA{
				R: uint8(id.Label()),
				G: uint8(instance / 256),
				B: uint8(instance % 256),
				A: 255,
			})
		}
	}
	return png.Encode(w, img)
}

// DecodeConfidencePNG reads a grayscale PNG as a confidence raster in [0, 1].
// 16-bit images keep their full precision.
func DecodeConfidencePNG(r io.Reader) (*ConfidenceRaster, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode confidence png: %w", err)
	}

	b := img.Bounds()
	raster := NewConfidenceRaster(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			raster.Set(y-b.Min.Y, x-b.Min.X, float64(g.Y)/0xffff)
		}
	}
	return raster, nil
}

// EncodeConfidencePNG writes a confidence raster as a 16-bit grayscale PNG.
// Values are clamped to [0, 1].
func EncodeConfidencePNG(w io.Writer, raster *ConfidenceRaster) error {
	img := image.NewGray16(image.Rect(0, 0, raster.Width, raster.Height))
	for i := 0; i < raster.Height; i++ {
		for j := 0; j < raster.Width; j++ {
			v := min(max(raster.At(i, j), 0), 1)
			img.SetGray16(j, i, color.Gray16{Y: uint16(v * 0xffff)})
		}
	}
	return png.Encode(w, img)
}

// ReadSegmentation decodes both rasters of a segmentation output concurrently
// and checks that their dimensions match
func ReadSegmentation(ctx context.Context, panopticR, confidenceR io.Reader) (*PanopticRaster, *ConfidenceRaster, error) {
	var panoptic *PanopticRaster
	var confidence *ConfidenceRaster

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		panoptic, err = DecodePanopticPNG(panopticR)
		return err
	})
	g.Go(func() error {
		var err error
		confidence, err = DecodeConfidencePNG(confidenceR)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if panoptic.Width != confidence.Width || panoptic.Height != confidence.Height {
		return nil, nil, fmt.Errorf("panoptic %dx%d, confidence %dx%d: %w",
			panoptic.Width, panoptic.Height, confidence.Width, confidence.Height, ErrRasterMismatch)
	}
	return panoptic, confidence, nil
}

// LoadSegmentation loads the panoptic and confidence PNG files of one floor plan
func LoadSegmentation(ctx context.Context, panopticPath, confidencePath string) (*PanopticRaster, *ConfidenceRaster, error) {
	log.Printf("📂 Loading segmentation %s + %s...\n", filepath.Base(panopticPath), filepath.Base(confidencePath))

	pf, err := os.Open(panopticPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open panoptic raster: %w", err)
	}
	defer pf.Close()

	cf, err := os.Open(confidencePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open confidence raster: %w", err)
	}
	defer cf.Close()

	panoptic, confidence, err := ReadSegmentation(ctx, pf, cf)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("   ✅ Loaded %dx%d rasters\n", panoptic.Width, panoptic.Height)
	return panoptic, confidence, nil
}
