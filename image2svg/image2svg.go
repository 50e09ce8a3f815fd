// Package image2svg 把位图追踪成按颜色分层的矢量路径。
//
// 量化 -> 分层 -> 边缘提取 -> 轮廓追踪 -> 简化，各图层之间互不依赖，
// 可以并行处理，结果按调色板顺序合并。
package image2svg

import (
	"fmt"
	"image"
	"sync"

	"raster2svg/edge2path"
	"raster2svg/image2color"
	"raster2svg/layer2edge"
	"raster2svg/logx"
	"raster2svg/path2svg"
	"raster2svg/pathsimplify"
	r2stypes "raster2svg/type"
)

// Tracer 图层追踪后端
type Tracer string

const (
	// EdgeTracer 边缘检测加贪心轮廓行走，只输出折线
	EdgeTracer Tracer = "edge"
	// PotraceTracer 交给 gotrace，可能输出曲线
	PotraceTracer Tracer = "potrace"
)

// Options 追踪参数
type Options struct {
	MaxColors      int
	LayerThreshold float64
	Quantizer      image2color.Quantizer
	Assignment     image2color.Assignment
	Edge           layer2edge.Params
	Contour        edge2path.Params
	Simplify       int
	Tracer         Tracer
	// Workers 同时处理的图层数，<= 1 时串行
	Workers int
	Log     *logx.Logger
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		MaxColors:      8,
		LayerThreshold: image2color.DefaultLayerThreshold,
		Quantizer:      image2color.Frequency,
		Assignment:     image2color.Threshold,
		Edge:           layer2edge.DefaultParams,
		Contour:        edge2path.DefaultParams,
		Simplify:       0,
		Tracer:         EdgeTracer,
		Workers:        1,
	}
}

// CreateColorLayers 量化并为每个颜色生成图层
func CreateColorLayers(img image.Image, opts Options) []r2stypes.Layer {
	rgba := image2color.ToNRGBA(img)
	palette := image2color.Quantize(rgba, opts.MaxColors, opts.Quantizer)
	return image2color.SplitColors(rgba, palette, opts.LayerThreshold, opts.Assignment)
}

// TraceLayer 单个图层 -> 简化后的路径
func TraceLayer(layer r2stypes.Layer, opts Options) ([]string, error) {
	var paths []string
	switch opts.Tracer {
	case PotraceTracer:
		var err error
		paths, err = edge2path.PotraceLayer(layer)
		if err != nil {
			return nil, err
		}
	default:
		edges := layer2edge.ExtractBoundary(layer, opts.Edge)
		paths = edge2path.TraceEdges(edges, opts.Contour)
	}
	return pathsimplify.SimplifyPaths(paths, opts.Simplify), nil
}

// TraceImage 完整流程，返回按调色板顺序排列的路径。
// 全透明或空图像返回空结果而不是错误。
func TraceImage(img image.Image, opts Options) ([]r2stypes.TracedPath, error) {
	layers := CreateColorLayers(img, opts)
	opts.Log.Debugf("%d layers", len(layers))

	results := make([][]string, len(layers))
	errs := make(chan error, len(layers))

	parallel := max(opts.Workers, 1)
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for i, layer := range layers {
		wg.Add(1)
		go func(idx int, layer r2stypes.Layer) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			paths, err := TraceLayer(layer, opts)
			if err != nil {
				errs <- err
				return
			}
			opts.Log.Debugf("layer %d color #%02x%02x%02x: %d paths", idx, layer.Color.R, layer.Color.G, layer.Color.B, len(paths))
			results[idx] = paths
		}(i, layer)
	}
	wg.Wait()
	close(errs)

	// 返回第一个错误（如果有）
	for err := range errs {
		return nil, fmt.Errorf("trace layers: %w", err)
	}

	var out []r2stypes.TracedPath
	for i, paths := range results {
		for _, d := range paths {
			out = append(out, r2stypes.TracedPath{Layer: i, Color: layers[i].Color, D: d})
		}
	}
	return out, nil
}

// ConvertImage 位图 -> SVG 文档
func ConvertImage(img image.Image, opts Options) (string, error) {
	paths, err := TraceImage(img, opts)
	if err != nil {
		return "", err
	}
	w, h := ImageSize(img)
	return path2svg.RenderSVG(w, h, paths)
}

// ImageSize 图像宽高，nil 返回 0
func ImageSize(img image.Image) (int, int) {
	if img == nil {
		return 0, 0
	}
	s := img.Bounds().Size()
	return s.X, s.Y
}
