package onnx

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// preprocess resizes the frame to the model's square input and lays it out as
// a normalized NCHW float32 tensor (batch of one).
func preprocess(img image.Image, size int, mean, std [3]float32) []float32 {
	resized := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := resized.NRGBAAt(x, y)
			i := y*size + x
			data[0*plane+i] = (float32(c.R)/255 - mean[0]) / std[0]
			data[1*plane+i] = (float32(c.G)/255 - mean[1]) / std[1]
			data[2*plane+i] = (float32(c.B)/255 - mean[2]) / std[2]
		}
	}
	return data
}

// maskPlane turns the first output channel into an 8-bit opacity mask,
// min-max rescaled so the most confident foreground pixel maps to 255 and the
// most confident background pixel to 0. A flat map (constant-color input)
// degenerates to uniformly foreground or background instead of dividing by
// zero.
func maskPlane(data []float32, size int, sigmoid bool) *image.Gray {
	plane := data[:size*size]

	lo, hi := plane[0], plane[0]
	vals := make([]float32, len(plane))
	for i, v := range plane {
		if sigmoid {
			v = float32(1 / (1 + math.Exp(-float64(v))))
		}
		vals[i] = v
		if i == 0 {
			lo, hi = v, v
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	mask := image.NewGray(image.Rect(0, 0, size, size))
	if hi-lo < 1e-6 {
		level := uint8(0)
		if lo > 0.5 {
			level = 255
		}
		for i := range mask.Pix {
			mask.Pix[i] = level
		}
		return mask
	}

	scale := hi - lo
	for i, v := range vals {
		mask.Pix[i] = uint8(255 * (v - lo) / scale)
	}
	return mask
}

// applyMask resizes the model-resolution mask back to the frame's dimensions
// and attaches it as the alpha channel over the original RGB values.
func applyMask(src image.Image, mask *image.Gray) *image.NRGBA {
	b := src.Bounds()

	full := image.NewGray(b)
	xdraw.BiLinear.Scale(full, b, mask, mask.Bounds(), xdraw.Src, nil)

	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = full.GrayAt(x, y).Y
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
