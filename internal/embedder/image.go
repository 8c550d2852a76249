package embedder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/localsearch/filesearch/internal/core/domain"
)

const (
	clipImageSize = 224
)

// CLIP's published per-channel normalization constants.
var (
	clipMean = [3]float64{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float64{0.26862954, 0.26130258, 0.27577711}
)

// preprocessImage decodes arbitrary image bytes to RGB, resizes to 224x224
// with bilinear interpolation, scales to [0,1], per-channel normalizes
// with the CLIP mean/std, and transposes to channels-first (CHW) layout.
// No image-resize library is available, so the resize kernel is
// hand-rolled against the stdlib image package (justified in DESIGN.md).
func preprocessImage(raw []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", domain.ErrExtract)
	}

	resized := resizeBilinear(img, clipImageSize, clipImageSize)

	// CHW layout: channel, then row, then column.
	tensor := make([]float32, 3*clipImageSize*clipImageSize)
	plane := clipImageSize * clipImageSize
	for y := 0; y < clipImageSize; y++ {
		for x := 0; x < clipImageSize; x++ {
			r, g, b := resized[y][x][0], resized[y][x][1], resized[y][x][2]
			idx := y*clipImageSize + x
			tensor[0*plane+idx] = float32((r - clipMean[0]) / clipStd[0])
			tensor[1*plane+idx] = float32((g - clipMean[1]) / clipStd[1])
			tensor[2*plane+idx] = float32((b - clipMean[2]) / clipStd[2])
		}
	}
	return tensor, nil
}

// resizeBilinear returns a dstH x dstW grid of [0,1]-scaled RGB triples.
func resizeBilinear(img image.Image, dstW, dstH int) [][][3]float64 {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	out := make([][][3]float64, dstH)
	for y := 0; y < dstH; y++ {
		out[y] = make([][3]float64, dstW)
	}
	if srcW == 0 || srcH == 0 {
		return out
	}

	scaleX := float64(srcW) / float64(dstW)
	scaleY := float64(srcH) / float64(dstH)

	for dy := 0; dy < dstH; dy++ {
		srcY := (float64(dy)+0.5)*scaleY - 0.5
		y0 := int(math.Floor(srcY))
		y1 := y0 + 1
		wy := srcY - float64(y0)
		y0 = clampInt(y0, 0, srcH-1)
		y1 = clampInt(y1, 0, srcH-1)

		for dx := 0; dx < dstW; dx++ {
			srcX := (float64(dx)+0.5)*scaleX - 0.5
			x0 := int(math.Floor(srcX))
			x1 := x0 + 1
			wx := srcX - float64(x0)
			x0 = clampInt(x0, 0, srcW-1)
			x1 = clampInt(x1, 0, srcW-1)

			c00 := pixelAt(img, bounds, x0, y0)
			c10 := pixelAt(img, bounds, x1, y0)
			c01 := pixelAt(img, bounds, x0, y1)
			c11 := pixelAt(img, bounds, x1, y1)

			for ch := 0; ch < 3; ch++ {
				top := c00[ch]*(1-wx) + c10[ch]*wx
				bottom := c01[ch]*(1-wx) + c11[ch]*wx
				out[dy][dx][ch] = top*(1-wy) + bottom*wy
			}
		}
	}
	return out
}

func pixelAt(img image.Image, bounds image.Rectangle, x, y int) [3]float64 {
	r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	return [3]float64{float64(r) / 65535.0, float64(g) / 65535.0, float64(b) / 65535.0}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// serializeTensor encodes a float32 tensor as little-endian bytes for
// transport to the CLIP backend.
func serializeTensor(tensor []float32) []byte {
	buf := make([]byte, 4*len(tensor))
	for i, v := range tensor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
