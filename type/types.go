package r2stypes

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
)

// Palette 按出现频率降序排列的量化颜色
type Palette []color.NRGBA

// Layer 表示某个调色板颜色的透明图层
type Layer struct {
	Index int          // 在调色板中的位置
	Color color.NRGBA  // 调色板颜色，Alpha 固定 255
	Image *image.NRGBA // 与原图同尺寸，只有属于该颜色的像素不透明
}

// Point 轮廓上的一个像素坐标
type Point struct {
	X, Y float64
}

// Contour 一次贪心边界行走得到的有序点列
type Contour []Point

// TracedPath 单条路径及其来源图层的颜色
type TracedPath struct {
	Layer int
	Color color.NRGBA
	D     string
}

// Fill rgba(r,g,b,a) 形式的填充色，a 为 0..1，最多三位小数
func (p TracedPath) Fill() string {
	a := math.Round(float64(p.Color.A)/255.0*1000) / 1000
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", p.Color.R, p.Color.G, p.Color.B, strconv.FormatFloat(a, 'f', -1, 64))
}

// Frame 表示一帧图像
type Frame struct {
	Index int
	Image image.Image
}

// FramePaths 表示某一帧的追踪结果
type FramePaths struct {
	Index  int
	Width  int
	Height int
	Paths  []TracedPath
}

// FrameData 封装输出的数据结构
type FrameData struct {
	FrameIndex int          `json:"frameIndex"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Data       []PathRecord `json:"data"`
}

// PathRecord 一条路径的 JSON 表示
type PathRecord struct {
	Fill     string `json:"fill"`
	PathData string `json:"pathdata"`
}
