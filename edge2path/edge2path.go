package edge2path

import (
	"image"
	"strconv"
	"strings"

	"raster2svg/layer2edge"
	r2stypes "raster2svg/type"
)

// 默认的轮廓限制
const (
	DefaultMaxPoints    = 10000
	DefaultMinPoints    = 3
	DefaultMinPathChars = 20
)

// Params 轮廓追踪参数
type Params struct {
	// MaxPoints 单条轮廓超过该点数即截断
	MaxPoints int
	// MinPoints 少于该点数的轮廓丢弃，不会低于 3
	MinPoints int
	// MinPathChars 序列化后长度不超过该值的路径丢弃
	MinPathChars int
}

// DefaultParams 默认参数
var DefaultParams = Params{
	MaxPoints:    DefaultMaxPoints,
	MinPoints:    DefaultMinPoints,
	MinPathChars: DefaultMinPathChars,
}

// 邻域扫描顺序：按行优先，跳过中心
var neighbors = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// TraceContours 按行扫描强边缘像素，从每个未访问的像素开始贪心行走
func TraceContours(edges *image.Gray, maxPoints int) []r2stypes.Contour {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	w, h := edges.Rect.Dx(), edges.Rect.Dy()
	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}
	strong := func(x, y int) bool {
		return edges.Pix[y*edges.Stride+x] == layer2edge.Strong
	}

	var contours []r2stypes.Contour
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !strong(x, y) || visited[y][x] {
				continue
			}

			var contour r2stypes.Contour
			cx, cy := x, y
			for {
				visited[cy][cx] = true
				contour = append(contour, r2stypes.Point{X: float64(cx), Y: float64(cy)})

				found := false
				for _, d := range neighbors {
					nx, ny := cx+d.X, cy+d.Y
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if strong(nx, ny) && !visited[ny][nx] {
						cx, cy = nx, ny
						found = true
						break
					}
				}
				// 防止无限行走
				if !found || len(contour) > maxPoints {
					break
				}
			}
			contours = append(contours, contour)
		}
	}
	return contours
}

// PathData 序列化为 "M x,y L x,y ... Z"，坐标保留一位小数
func PathData(c r2stypes.Contour) string {
	if len(c) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range c {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteString(" L")
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', 1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', 1, 64))
	}
	b.WriteString(" Z")
	return b.String()
}

// ContoursToPaths 过滤过短的轮廓并序列化
func ContoursToPaths(contours []r2stypes.Contour, p Params) []string {
	minPoints := max(p.MinPoints, DefaultMinPoints)
	var paths []string
	for _, c := range contours {
		if len(c) < minPoints {
			continue
		}
		d := PathData(c)
		// 估算路径长度，忽略太短的路径
		if len(d) <= p.MinPathChars {
			continue
		}
		paths = append(paths, d)
	}
	return paths
}

// TraceEdges 边缘图 -> 路径字符串
func TraceEdges(edges *image.Gray, p Params) []string {
	return ContoursToPaths(TraceContours(edges, p.MaxPoints), p)
}
