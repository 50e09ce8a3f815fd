package image2color

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	r2stypes "raster2svg/type"
)

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func opaqueCount(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestQuantizeColorsSingleColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	fill(img, img.Bounds(), color.NRGBA{R: 200, G: 33, B: 15, A: 255})

	palette := QuantizeColors(img, 8)
	require.Len(t, palette, 1)
	assert.Equal(t, color.NRGBA{R: 192, G: 32, B: 0, A: 255}, palette[0])
}

func TestQuantizeColorsOrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 1))
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	// green 先出现，与 blue 同为 3 个像素
	fill(img, image.Rect(0, 0, 3, 1), green)
	fill(img, image.Rect(3, 0, 7, 1), red)
	fill(img, image.Rect(7, 0, 10, 1), blue)

	palette := QuantizeColors(img, 8)
	assert.Equal(t, r2stypes.Palette{
		{R: 240, A: 255},
		{G: 240, A: 255},
		{B: 240, A: 255},
	}, palette)

	assert.Len(t, QuantizeColors(img, 2), 2)
	assert.Empty(t, QuantizeColors(img, 0))
}

func TestQuantizeColorsIgnoresTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	fill(img, img.Bounds(), color.NRGBA{R: 90, G: 90, B: 90, A: 127})
	assert.Empty(t, QuantizeColors(img, 8))
	assert.Empty(t, MedianCutQuantize(img, 8))

	img.SetNRGBA(1, 1, color.NRGBA{R: 90, G: 90, B: 90, A: 128})
	assert.Equal(t, r2stypes.Palette{{R: 80, G: 80, B: 80, A: 255}}, QuantizeColors(img, 8))
}

func TestQuantizeColorsLimit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
		}
	}
	for _, q := range []Quantizer{Frequency, MedianCut} {
		palette := Quantize(img, 8, q)
		if q == Frequency {
			assert.Len(t, palette, 8, q)
		} else {
			assert.NotEmpty(t, palette, q)
			assert.LessOrEqual(t, len(palette), 8, q)
		}
		seen := map[color.NRGBA]bool{}
		for _, c := range palette {
			assert.False(t, seen[c], "duplicate %v", c)
			seen[c] = true
			assert.Equal(t, uint8(255), c.A)
			assert.Zero(t, c.R%16)
			assert.Zero(t, c.G%16)
		}
	}
}

func TestMedianCutQuantizeTwoRegions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 2))
	fill(img, image.Rect(0, 0, 6, 2), color.NRGBA{R: 250, G: 10, B: 10, A: 255})
	fill(img, image.Rect(6, 0, 8, 2), color.NRGBA{R: 10, G: 10, B: 250, A: 255})

	palette := MedianCutQuantize(img, 4)
	require.Len(t, palette, 2)
	assert.Equal(t, color.NRGBA{R: 240, G: 0, B: 0, A: 255}, palette[0])
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 240, A: 255}, palette[1])
}

func TestMedianCutQuantizeRanksByPopulation(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 3))
	fill(img, image.Rect(0, 0, 2, 3), color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	fill(img, image.Rect(2, 0, 10, 3), color.NRGBA{G: 180, A: 200})
	// 透明像素不参与
	fill(img, image.Rect(0, 2, 10, 3), color.NRGBA{B: 255, A: 20})

	palette := MedianCutQuantize(img, 8)
	require.Len(t, palette, 2)
	assert.Equal(t, color.NRGBA{G: 176, A: 255}, palette[0])
	assert.Equal(t, color.NRGBA{R: 192, G: 192, B: 192, A: 255}, palette[1])

	assert.Empty(t, MedianCutQuantize(img, 0))
	assert.Empty(t, MedianCutQuantize(nil, 4))
}

func TestSplitColors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 130, G: 100, B: 100, A: 200})
	img.SetNRGBA(2, 0, color.NRGBA{R: 160, G: 100, B: 100, A: 255})
	img.SetNRGBA(3, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 100})
	palette := r2stypes.Palette{
		{R: 96, G: 96, B: 96, A: 255},
		{R: 160, G: 96, B: 96, A: 255},
	}

	layers := SplitColors(img, palette, DefaultLayerThreshold, Threshold)
	require.Len(t, layers, 2)

	// 像素 1 离两个颜色都小于 60，两层都有
	assert.Equal(t, color.NRGBA{R: 96, G: 96, B: 96, A: 255}, layers[0].Image.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 96, G: 96, B: 96, A: 200}, layers[0].Image.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, layers[0].Image.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{R: 160, G: 96, B: 96, A: 200}, layers[1].Image.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 160, G: 96, B: 96, A: 255}, layers[1].Image.NRGBAAt(2, 0))
	// 半透明像素被忽略
	assert.Equal(t, color.NRGBA{}, layers[0].Image.NRGBAAt(3, 0))

	for i, l := range layers {
		assert.Equal(t, i, l.Index)
		assert.Equal(t, palette[i], l.Color)
		for p := 0; p < len(l.Image.Pix); p += 4 {
			if l.Image.Pix[p+3] == 0 {
				continue
			}
			assert.Equal(t, []uint8{l.Color.R, l.Color.G, l.Color.B}, l.Image.Pix[p:p+3])
		}
	}

	nearest := SplitColors(img, palette, DefaultLayerThreshold, Nearest)
	assert.Equal(t, 1, opaqueCount(nearest[0].Image))
	assert.Equal(t, 2, opaqueCount(nearest[1].Image))
}

func TestSplitColorsTransparentSource(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	layers := SplitColors(img, r2stypes.Palette{{R: 16, A: 255}}, DefaultLayerThreshold, Threshold)
	require.Len(t, layers, 1)
	assert.Zero(t, opaqueCount(layers[0].Image))

	assert.Nil(t, SplitColors(img, nil, DefaultLayerThreshold, Threshold))
}

func TestToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(3, 3, 5, 5))
	src.Set(3, 3, color.RGBA{R: 50, G: 50, B: 50, A: 128})
	img := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	c := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(128), c.A)
	assert.InDelta(t, 100, int(c.R), 1)

	assert.Equal(t, 0, ToNRGBA(nil).Bounds().Dx())
}

func TestColorDistance(t *testing.T) {
	assert.Equal(t, 0.0, ColorDistance(1, 2, 3, color.NRGBA{R: 1, G: 2, B: 3}))
	assert.Equal(t, 5.0, ColorDistance(3, 4, 0, color.NRGBA{}))
}
