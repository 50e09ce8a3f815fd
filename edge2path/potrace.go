package edge2path

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/gotranspile/gotrace"

	r2stypes "raster2svg/type"
)

// PotraceLayer 使用 gotrace 追踪图层，返回像素坐标系（左上角为原点）下的路径。
// 每个外轮廓连同紧随其后的孔洞合成一条路径，输出可能包含贝塞尔曲线。
func PotraceLayer(layer r2stypes.Layer) ([]string, error) {
	if layer.Image == nil || layer.Image.Bounds().Empty() {
		return nil, nil
	}
	mask := layerMask(layer.Image)
	plist, err := gotrace.Trace(gotrace.BitmapFromGray(mask, nil), nil)
	if err != nil {
		return nil, fmt.Errorf("potrace layer %d: %w", layer.Index, err)
	}
	sz := mask.Bounds().Size()
	return potracePaths(plist, float64(sz.X), float64(sz.Y)), nil
}

// layerMask 黑白掩码图：黑=图层不透明像素，白=其他
func layerMask(img *image.NRGBA) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := uint8(255)
			if img.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y).A > 128 {
				v = 0
			}
			mask.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return mask
}

// potracePaths gotrace 的坐标原点在左下角，这里翻转成 y = h - Y
func potracePaths(plist *gotrace.Path, w, h float64) []string {
	var out []string
	var cur strings.Builder
	for p := plist; p != nil; p = p.Next {
		if p.Sign == '+' && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		writeCurve(&cur, &p.Curve, w, h)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func writeCurve(b *strings.Builder, c *gotrace.Curve, w, h float64) {
	if c.N == 0 {
		return
	}
	pt := func(p gotrace.DPoint) string {
		x := math.Min(math.Max(p.X, 0), w)
		y := math.Min(math.Max(h-p.Y, 0), h)
		return coord(x) + "," + coord(y)
	}
	b.WriteString("M" + pt(c.C[c.N-1][2]))
	for i := 0; i < c.N; i++ {
		switch c.Tag[i] {
		case gotrace.POTRACE_CORNER:
			b.WriteString(" L" + pt(c.C[i][1]) + " L" + pt(c.C[i][2]))
		case gotrace.POTRACE_CURVETO:
			b.WriteString(" C" + pt(c.C[i][0]) + " " + pt(c.C[i][1]) + " " + pt(c.C[i][2]))
		}
	}
	b.WriteString(" Z")
}

func coord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
