package image2color

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/ericpauley/go-quantize/quantize"

	r2stypes "raster2svg/type"
)

// OpaqueThreshold Alpha 低于此值的像素视为透明，不参与量化和分层
const OpaqueThreshold = 128

// quantStep 每个通道的量化步长
const quantStep = 16

// Quantizer 调色板生成算法
type Quantizer string

const (
	Frequency Quantizer = "frequency"
	MedianCut Quantizer = "mediancut"
)

// Quantize 按指定算法生成调色板
func Quantize(img *image.NRGBA, maxColors int, q Quantizer) r2stypes.Palette {
	if q == MedianCut {
		return MedianCutQuantize(img, maxColors)
	}
	return QuantizeColors(img, maxColors)
}

func snap(v uint8) uint8 {
	return v / quantStep * quantStep
}

type colorCount struct {
	c     color.NRGBA
	count int
}

// QuantizeColors 按出现频率取前 maxColors 个量化颜色，频率相同按首次出现顺序
func QuantizeColors(img *image.NRGBA, maxColors int) r2stypes.Palette {
	if img == nil || maxColors <= 0 {
		return nil
	}
	bounds := img.Bounds()
	index := make(map[color.NRGBA]int)
	var counts []colorCount

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			// 忽略透明像素
			if p[3] < OpaqueThreshold {
				continue
			}
			c := color.NRGBA{R: snap(p[0]), G: snap(p[1]), B: snap(p[2]), A: 255}
			i, ok := index[c]
			if !ok {
				i = len(counts)
				index[c] = i
				counts = append(counts, colorCount{c: c})
			}
			counts[i].count++
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	if len(counts) > maxColors {
		counts = counts[:maxColors]
	}
	palette := make(r2stypes.Palette, len(counts))
	for i, cc := range counts {
		palette[i] = cc.c
	}
	return palette
}

// MedianCutQuantize 中位切分量化（go-quantize），结果吸附到 16 级网格，
// 合并重复颜色后按最近色归属的像素数降序
func MedianCutQuantize(img *image.NRGBA, maxColors int) r2stypes.Palette {
	if img == nil || maxColors <= 0 {
		return nil
	}
	opaque := opaquePixels(img)
	if opaque == nil {
		return nil
	}

	index := make(map[color.NRGBA]int)
	var counts []colorCount
	for _, pc := range (quantize.MedianCutQuantizer{}).Quantize(make(color.Palette, 0, maxColors), opaque) {
		r, g, b, _ := pc.RGBA()
		c := color.NRGBA{R: snap(uint8(r >> 8)), G: snap(uint8(g >> 8)), B: snap(uint8(b >> 8)), A: 255}
		if _, ok := index[c]; !ok {
			index[c] = len(counts)
			counts = append(counts, colorCount{c: c})
		}
	}
	if len(counts) == 0 {
		return nil
	}

	// 每个像素计入最近的颜色
	pix := opaque.Pix
	for i := 0; i < len(pix); i += 4 {
		best, bestDist := 0, math.MaxFloat64
		for j, cc := range counts {
			if d := ColorDistance(pix[i], pix[i+1], pix[i+2], cc.c); d < bestDist {
				best, bestDist = j, d
			}
		}
		counts[best].count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	if len(counts) > maxColors {
		counts = counts[:maxColors]
	}
	palette := make(r2stypes.Palette, len(counts))
	for i, cc := range counts {
		palette[i] = cc.c
	}
	return palette
}

// opaquePixels 不透明像素排成一行并去掉 Alpha，没有时返回 nil
func opaquePixels(img *image.NRGBA) *image.NRGBA {
	bounds := img.Bounds()
	var pix []uint8
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			if p[3] < OpaqueThreshold {
				continue
			}
			pix = append(pix, p[0], p[1], p[2], 255)
		}
	}
	if len(pix) == 0 {
		return nil
	}
	n := len(pix) / 4
	return &image.NRGBA{Pix: pix, Stride: len(pix), Rect: image.Rect(0, 0, n, 1)}
}
