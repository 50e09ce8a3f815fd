// Package layer2edge 从单色图层中提取轮廓边缘。
//
// 流程：膨胀 -> 二值化 -> 高斯平滑 -> Sobel 双阈值 -> 滞后连接。
// 结果是只含 0 和 255 的灰度图。
package layer2edge

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/channel"
	"github.com/disintegration/imaging"

	r2stypes "raster2svg/type"
)

// 边缘图中的取值
const (
	None   = 0
	Weak   = 128
	Strong = 255
)

// opaqueAlpha 膨胀时 Alpha 大于该值才算不透明
const opaqueAlpha = 128

// margin 平滑前在剪影四周补的透明边
const margin = 1

// Params 边缘提取参数
type Params struct {
	DilationRadius int
	BlurSigma      float64
	EdgeLow        float64
	EdgeHigh       float64
}

// DefaultParams 默认参数
var DefaultParams = Params{
	DilationRadius: 2,
	BlurSigma:      0.8,
	EdgeLow:        10,
	EdgeHigh:       40,
}

// ExtractBoundary 返回图层剪影的二值边缘图
func ExtractBoundary(layer r2stypes.Layer, p Params) *image.Gray {
	if layer.Image == nil {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	dilated := Dilate(layer.Image, layer.Color, p.DilationRadius)
	silhouette := Binarize(dilated, margin)
	smooth := Smooth(silhouette, p.BlurSigma)
	edges := LinkEdges(DetectEdges(smooth, p.EdgeLow, p.EdgeHigh))
	return crop(edges, margin)
}

// Dilate 以 radius 为半径的方形邻域内有不透明像素，中心像素即置为不透明
func Dilate(img *image.NRGBA, c color.NRGBA, radius int) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	alpha := channel.Extract(img, channel.Alpha)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !hasOpaque(alpha, x, y, radius) {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, 255
		}
	}
	return dst
}

func hasOpaque(alpha *image.Gray, x, y, radius int) bool {
	w, h := alpha.Rect.Dx(), alpha.Rect.Dy()
	for ny := max(y-radius, 0); ny <= min(y+radius, h-1); ny++ {
		row := alpha.Pix[ny*alpha.Stride:]
		for nx := max(x-radius, 0); nx <= min(x+radius, w-1); nx++ {
			if row[nx] > opaqueAlpha {
				return true
			}
		}
	}
	return false
}

// Binarize 不透明 -> 255，透明 -> 0，四周额外补 pad 像素的 0
func Binarize(img *image.NRGBA, pad int) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, w+2*pad, h+2*pad))
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := gray.Pix[(y+pad)*gray.Stride+pad:]
		for x := 0; x < w; x++ {
			if src[x*4+3] > opaqueAlpha {
				dst[x] = 255
			}
		}
	}
	return gray
}

// Smooth 高斯模糊，减少锯齿状台阶
func Smooth(img *image.Gray, sigma float64) *image.Gray {
	blurred := imaging.Blur(img, sigma)
	w, h := blurred.Rect.Dx(), blurred.Rect.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := blurred.Pix[y*blurred.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

func crop(img *image.Gray, pad int) *image.Gray {
	w, h := img.Rect.Dx()-2*pad, img.Rect.Dy()-2*pad
	out := image.NewGray(image.Rect(0, 0, max(w, 0), max(h, 0)))
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], img.Pix[(y+pad)*img.Stride+pad:])
	}
	return out
}
