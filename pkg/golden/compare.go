package golden

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest per-channel difference found
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance: maximum allowed difference per color channel (0-255)
	Tolerance int

	// FuzzyRadius: if > 0, a pixel matches if it matches any expected pixel
	// within this radius
	FuzzyRadius int

	// MaxDifferentPercent: if > 0, pass if the percentage of different
	// pixels is <= this value
	MaxDifferentPercent float64

	// DiffImagePath: when set and the images differ, a diff image is written
	// there with mismatches in red over a grayscale copy of actual
	DiffImagePath string
}

// CompareImages compares two images pixel by pixel.
func CompareImages(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds, expected.Bounds())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
	}

	var diffImg *image.RGBA
	if opts.DiffImagePath != "" {
		diffImg = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := rgba8(actual.At(x, y))
			diff := channelDiff(a, rgba8(expected.At(x, y)))
			if diff > result.MaxDifference {
				result.MaxDifference = diff
			}

			matched := diff <= opts.Tolerance
			if !matched && opts.FuzzyRadius > 0 {
				matched = fuzzyMatch(a, expected, x, y, opts.FuzzyRadius, opts.Tolerance)
			}
			if !matched {
				result.Match = false
				result.DifferentPixels++
			}

			if diffImg != nil {
				if matched {
					diffImg.SetRGBA(x, y, color.RGBA{a.R, a.R, a.R, 255})
				} else {
					diffImg.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
				}
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 && result.TotalPixels > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}

	if diffImg != nil && !result.Match {
		if err := imaging.Save(diffImg, opts.DiffImagePath); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}

	return result, nil
}

// fuzzyMatch checks whether a matches any expected pixel within radius of (x, y).
func fuzzyMatch(a color.RGBA, expected image.Image, x, y, radius, tolerance int) bool {
	bounds := expected.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(a, rgba8(expected.At(p.X, p.Y))) <= tolerance {
				return true
			}
		}
	}
	return false
}

func rgba8(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func channelDiff(a, b color.RGBA) int {
	return max(
		absInt(int(a.R)-int(b.R)),
		absInt(int(a.G)-int(b.G)),
		absInt(int(a.B)-int(b.B)),
		absInt(int(a.A)-int(b.A)),
	)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
