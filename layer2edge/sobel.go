package layer2edge

import (
	"image"
	"math"
)

var (
	sobelX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// DetectEdges Sobel 梯度加双阈值，得到 0/128/255 三值图。边界像素不计算。
func DetectEdges(img *image.Gray, low, high float64) *image.Gray {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	result := image.NewGray(image.Rect(0, 0, w, h))

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var gx, gy int
			for i := 0; i < 3; i++ {
				row := img.Pix[(y+i-1)*img.Stride:]
				for j := 0; j < 3; j++ {
					v := int(row[x+j-1])
					gx += v * sobelX[i][j]
					gy += v * sobelY[i][j]
				}
			}

			g := math.Sqrt(float64(gx*gx + gy*gy))
			switch {
			case g >= high:
				result.Pix[y*result.Stride+x] = Strong
			case g >= low:
				result.Pix[y*result.Stride+x] = Weak
			}
		}
	}
	return result
}

// LinkEdges 单遍滞后处理：弱边缘的 8 邻域里有强边缘则提升，否则清除。
// 判断只读处理前的快照，本轮提升的像素不会继续带动别的弱边缘。
func LinkEdges(edges *image.Gray) *image.Gray {
	w, h := edges.Rect.Dx(), edges.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], edges.Pix[y*edges.Stride:])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.Pix[y*edges.Stride+x] != Weak {
				continue
			}
			v := uint8(None)
			if strongNeighbor(edges, x, y) {
				v = Strong
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

func strongNeighbor(edges *image.Gray, x, y int) bool {
	w, h := edges.Rect.Dx(), edges.Rect.Dy()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if edges.Pix[ny*edges.Stride+nx] == Strong {
				return true
			}
		}
	}
	return false
}
