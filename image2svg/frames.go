package image2svg

import (
	"context"
	"fmt"

	"github.com/zeebo/blake3"

	"raster2svg/image2color"
	r2stypes "raster2svg/type"
)

type frameKey struct {
	w, h int
	sum  [32]byte
}

// FrameTracer 逐帧追踪，像素完全相同的帧直接复用之前的结果
type FrameTracer struct {
	opts  Options
	cache map[frameKey][]r2stypes.TracedPath
	hits  int
}

func NewFrameTracer(opts Options) *FrameTracer {
	return &FrameTracer{opts: opts, cache: make(map[frameKey][]r2stypes.TracedPath)}
}

// Hits 复用缓存的帧数
func (t *FrameTracer) Hits() int {
	return t.hits
}

// TraceFrame 追踪单帧
func (t *FrameTracer) TraceFrame(frame r2stypes.Frame) (r2stypes.FramePaths, error) {
	rgba := image2color.ToNRGBA(frame.Image)
	size := rgba.Bounds().Size()
	key := frameKey{w: size.X, h: size.Y, sum: blake3.Sum256(rgba.Pix)}

	paths, ok := t.cache[key]
	if ok {
		t.hits++
	} else {
		var err error
		paths, err = TraceImage(rgba, t.opts)
		if err != nil {
			return r2stypes.FramePaths{}, fmt.Errorf("frame %d: %w", frame.Index, err)
		}
		t.cache[key] = paths
	}
	return r2stypes.FramePaths{Index: frame.Index, Width: size.X, Height: size.Y, Paths: paths}, nil
}

// TraceFrames 按顺序追踪所有帧，ctx 取消时在帧之间停止
func (t *FrameTracer) TraceFrames(ctx context.Context, frames []r2stypes.Frame) ([]r2stypes.FramePaths, error) {
	results := make([]r2stypes.FramePaths, 0, len(frames))
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fp, err := t.TraceFrame(f)
		if err != nil {
			return nil, err
		}
		results = append(results, fp)
		if (i+1)%50 == 0 || i+1 == len(frames) {
			t.opts.Log.Infof("traced %d/%d frames (%d reused)", i+1, len(frames), t.hits)
		}
	}
	return results, nil
}
