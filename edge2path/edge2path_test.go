package edge2path

import (
	"image"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raster2svg/layer2edge"
	r2stypes "raster2svg/type"
)

func edgeMap(w, h int, pts ...image.Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, p := range pts {
		img.SetGray(p.X, p.Y, color.Gray{Y: layer2edge.Strong})
	}
	return img
}

func TestTraceContoursCluster(t *testing.T) {
	edges := edgeMap(5, 5, image.Pt(1, 1), image.Pt(2, 1), image.Pt(1, 2), image.Pt(2, 2))

	contours := TraceContours(edges, DefaultMaxPoints)
	require.Len(t, contours, 1)
	assert.Equal(t, r2stypes.Contour{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}}, contours[0])

	paths := TraceEdges(edges, DefaultParams)
	assert.Equal(t, []string{"M1.0,1.0 L2.0,1.0 L1.0,2.0 L2.0,2.0 Z"}, paths)
}

func TestTraceContoursIgnoresWeak(t *testing.T) {
	edges := edgeMap(4, 4, image.Pt(0, 0))
	edges.SetGray(1, 1, color.Gray{Y: layer2edge.Weak})
	contours := TraceContours(edges, DefaultMaxPoints)
	assert.Equal(t, []r2stypes.Contour{{{X: 0, Y: 0}}}, contours)
}

func TestTraceContoursVisitOnce(t *testing.T) {
	var pts []image.Point
	for i := 0; i < 12; i++ {
		pts = append(pts, image.Pt(i, 3), image.Pt(3, i), image.Pt(i, i))
	}
	edges := edgeMap(12, 12, pts...)

	seen := map[r2stypes.Point]bool{}
	for _, c := range TraceContours(edges, DefaultMaxPoints) {
		for _, p := range c {
			require.False(t, seen[p], "point %v emitted twice", p)
			seen[p] = true
		}
	}
	strong := 0
	for _, v := range edges.Pix {
		if v == layer2edge.Strong {
			strong++
		}
	}
	assert.Len(t, seen, strong)
}

func TestTraceContoursCap(t *testing.T) {
	var pts []image.Point
	for x := 0; x < 10; x++ {
		pts = append(pts, image.Pt(x, 0))
	}
	contours := TraceContours(edgeMap(10, 1, pts...), 3)
	require.Len(t, contours, 3)
	assert.Len(t, contours[0], 4)
	assert.Len(t, contours[1], 4)
	assert.Len(t, contours[2], 2)
	assert.Equal(t, r2stypes.Point{X: 4, Y: 0}, contours[1][0])
}

func TestTraceContoursEmpty(t *testing.T) {
	assert.Empty(t, TraceContours(image.NewGray(image.Rect(0, 0, 8, 8)), 0))
	assert.Empty(t, TraceContours(image.NewGray(image.Rectangle{}), 0))
}

func TestPathData(t *testing.T) {
	assert.Equal(t, "M0.0,0.0 L10.0,5.5 Z", PathData(r2stypes.Contour{{X: 0, Y: 0}, {X: 10, Y: 5.5}}))
	assert.Equal(t, "", PathData(nil))
}

func TestContoursToPaths(t *testing.T) {
	square := r2stypes.Contour{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	pair := r2stypes.Contour{{X: 0, Y: 0}, {X: 1, Y: 0}}

	assert.Len(t, ContoursToPaths([]r2stypes.Contour{square, pair}, DefaultParams), 1)
	assert.Len(t, ContoursToPaths([]r2stypes.Contour{square}, Params{MinPathChars: 36}), 1)
	assert.Empty(t, ContoursToPaths([]r2stypes.Contour{square}, Params{MinPathChars: 37}))
	assert.Empty(t, ContoursToPaths([]r2stypes.Contour{square}, Params{MinPoints: 5}))
	// 点数下限不会低于 3
	assert.Empty(t, ContoursToPaths([]r2stypes.Contour{pair}, Params{MinPoints: 1}))
}

func TestLayerMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{A: 128})
	mask := layerMask(img)
	assert.Equal(t, []uint8{0, 255, 255}, mask.Pix)
}

var numberRe = regexp.MustCompile(`-?[0-9]*\.?[0-9]+`)

// coords 按 x,y 交替取出路径中的所有数字
func coords(t *testing.T, d string) (xs, ys []float64) {
	t.Helper()
	nums := numberRe.FindAllString(d, -1)
	require.Zero(t, len(nums)%2, d)
	for i := 0; i < len(nums); i += 2 {
		x, err := strconv.ParseFloat(nums[i], 64)
		require.NoError(t, err)
		y, err := strconv.ParseFloat(nums[i+1], 64)
		require.NoError(t, err)
		xs, ys = append(xs, x), append(ys, y)
	}
	return xs, ys
}

func blockLayer(w, h int, r image.Rectangle, hole image.Rectangle) r2stypes.Layer {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !image.Pt(x, y).In(hole) {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			}
		}
	}
	return r2stypes.Layer{Index: 2, Image: img}
}

func TestPotraceLayerPixelSpace(t *testing.T) {
	layer := blockLayer(20, 30, image.Rect(4, 6, 12, 10), image.Rectangle{})
	paths, err := PotraceLayer(layer)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	d := paths[0]
	assert.True(t, strings.HasPrefix(d, "M"), d)
	assert.True(t, strings.HasSuffix(d, " Z"), d)

	xs, ys := coords(t, d)
	require.NotEmpty(t, xs)
	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := range xs {
		assert.True(t, xs[i] >= 0 && xs[i] <= 20, "x %v out of image", xs[i])
		assert.True(t, ys[i] >= 0 && ys[i] <= 30, "y %v out of image", ys[i])
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	// 原点在左上角，方块不能被上下翻转
	assert.InDelta(t, 4, minX, 0.5)
	assert.InDelta(t, 12, maxX, 0.5)
	assert.InDelta(t, 6, minY, 0.5)
	assert.InDelta(t, 10, maxY, 0.5)
}

func TestPotraceLayerHoles(t *testing.T) {
	layer := blockLayer(24, 24, image.Rect(4, 4, 20, 20), image.Rect(9, 9, 15, 15))
	paths, err := PotraceLayer(layer)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 2, strings.Count(paths[0], "M"), paths[0])
	assert.Equal(t, 2, strings.Count(paths[0], "Z"), paths[0])
}

func TestPotraceLayerEmpty(t *testing.T) {
	paths, err := PotraceLayer(r2stypes.Layer{})
	require.NoError(t, err)
	assert.Empty(t, paths)

	paths, err = PotraceLayer(blockLayer(8, 8, image.Rectangle{}, image.Rectangle{}))
	require.NoError(t, err)
	assert.Empty(t, paths)
}
