package image2color

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	r2stypes "raster2svg/type"
)

// DefaultLayerThreshold 像素与调色板颜色的最大欧氏距离（不含）
const DefaultLayerThreshold = 60.0

// Assignment 像素归属图层的规则
type Assignment string

const (
	// Threshold 距离小于阈值即加入，同一像素可以出现在多个图层
	Threshold Assignment = "threshold"
	// Nearest 只加入最近的那个颜色的图层，仍需满足阈值
	Nearest Assignment = "nearest"
)

// ToNRGBA 转成以 (0,0) 为原点的非预乘 RGBA 副本
func ToNRGBA(img image.Image) *image.NRGBA {
	if img == nil {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	return imaging.Clone(img)
}

// ColorDistance 计算两个颜色 RGB 分量的欧几里得距离
func ColorDistance(r, g, b uint8, c color.NRGBA) float64 {
	dr := float64(r) - float64(c.R)
	dg := float64(g) - float64(c.G)
	db := float64(b) - float64(c.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// SplitColors 为调色板中每个颜色生成一个图层
func SplitColors(img *image.NRGBA, palette r2stypes.Palette, threshold float64, mode Assignment) []r2stypes.Layer {
	if img == nil || len(palette) == 0 {
		return nil
	}

	bounds := img.Bounds()
	layers := make([]r2stypes.Layer, len(palette))
	for i, c := range palette {
		// 新图层默认全透明
		layers[i] = r2stypes.Layer{
			Index: i,
			Color: c,
			Image: image.NewNRGBA(bounds),
		}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			off := img.PixOffset(x, y)
			p := img.Pix[off : off+4 : off+4]
			if p[3] < OpaqueThreshold {
				continue
			}

			if mode == Nearest {
				best := -1
				bestDist := math.MaxFloat64
				for i, c := range palette {
					if d := ColorDistance(p[0], p[1], p[2], c); d < bestDist {
						bestDist = d
						best = i
					}
				}
				if bestDist < threshold {
					put(layers[best], x, y, p[3])
				}
				continue
			}

			for i, c := range palette {
				if ColorDistance(p[0], p[1], p[2], c) < threshold {
					put(layers[i], x, y, p[3])
				}
			}
		}
	}

	return layers
}

// put 写入图层颜色，保留原像素的透明度
func put(layer r2stypes.Layer, x, y int, alpha uint8) {
	off := layer.Image.PixOffset(x, y)
	d := layer.Image.Pix[off : off+4 : off+4]
	d[0], d[1], d[2], d[3] = layer.Color.R, layer.Color.G, layer.Color.B, alpha
}
