package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"raster2svg/config"
	"raster2svg/image2svg"
	"raster2svg/json2bas"
	"raster2svg/logx"
	"raster2svg/path2svg"
	"raster2svg/sink"
	"raster2svg/svg2json"
	r2stypes "raster2svg/type"
	"raster2svg/video2frame"
)

// source 输入：Video 非空时从视频抽帧，否则 Path 是图像文件、目录或已有结果
type source struct {
	Path  string
	Video string
}

func run(ctx context.Context, cfg config.Config, src source, dest string, log *logx.Logger) error {
	frames, err := traceSource(ctx, cfg, src, log)
	if err != nil {
		return err
	}
	if dest == "" {
		dest = defaultOutput(src, cfg.Output.Format)
	}
	log.Infof("Writing %s output to %s", cfg.Output.Format, dest)
	return writeFrames(ctx, cfg, frames, dest, log)
}

// loadTraced 读取之前导出的 .svg 或 .json，ok 为 false 时需要重新追踪
func loadTraced(path string) ([]r2stypes.FramePaths, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".svg" {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, true, err
	}
	if ext == ".json" {
		frames, err := json2bas.FramesFromJSON(data)
		return frames, true, err
	}
	fd, err := svg2json.ParseFrame(0, string(data))
	if err != nil {
		return nil, true, err
	}
	fp, err := json2bas.FromFrameData(fd)
	if err != nil {
		return nil, true, err
	}
	return []r2stypes.FramePaths{fp}, true, nil
}

func loadFrames(ctx context.Context, cfg config.Config, src source, log *logx.Logger) ([]r2stypes.Frame, error) {
	if src.Video != "" {
		if n, err := video2frame.ProbeFrameCount(src.Video); err != nil {
			log.Warnf("probe %s: %v", src.Video, err)
		} else {
			log.Infof("Video has about %d frames", n)
		}
		log.Infof("Extracting frames from video...")
		frames, err := video2frame.ExtractFrames(ctx, src.Video, cfg.Video.FPS, cfg.Video.MaxWidth)
		if err != nil {
			return nil, fmt.Errorf("extract frames: %w", err)
		}
		log.Infof("Extracted %d frames", len(frames))
		return frames, nil
	}

	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		files, err := video2frame.ListImages(src.Path, cfg.Video.Match)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no images in %s", src.Path)
		}
		log.Infof("Loading %d images from %s", len(files), src.Path)
		return video2frame.LoadFrames(files)
	}
	img, err := video2frame.LoadImage(src.Path)
	if err != nil {
		return nil, err
	}
	return []r2stypes.Frame{{Index: 0, Image: img}}, nil
}

func traceSource(ctx context.Context, cfg config.Config, src source, log *logx.Logger) ([]r2stypes.FramePaths, error) {
	if src.Video == "" {
		if frames, ok, err := loadTraced(src.Path); ok {
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", src.Path, err)
			}
			log.Infof("Loaded %d traced frames from %s", len(frames), src.Path)
			return frames, nil
		}
	}
	frames, err := loadFrames(ctx, cfg, src, log)
	if err != nil {
		return nil, err
	}
	log.Infof("Tracing %d frames...", len(frames))
	ft := image2svg.NewFrameTracer(cfg.TraceOptions(log.With("trace")))
	return ft.TraceFrames(ctx, frames)
}

func defaultOutput(src source, format string) string {
	if src.Video != "" {
		return filepath.Join("output", "video."+format)
	}
	clean := filepath.Clean(src.Path)
	base := strings.TrimSuffix(clean, filepath.Ext(clean))
	out := base + "." + format
	if out == clean {
		out = base + "_out." + format
	}
	return out
}

func writeFrames(ctx context.Context, cfg config.Config, frames []r2stypes.FramePaths, dest string, log *logx.Logger) error {
	if len(frames) == 0 {
		return errors.New("nothing to write")
	}
	s, name, err := sink.Open(dest, cfg.Output.S3Region)
	if err != nil {
		return err
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	switch cfg.Output.Format {
	case config.FormatSVG, config.FormatSVGZ:
		// 压缩由 sink 按扩展名决定
		if want := "." + cfg.Output.Format; !strings.EqualFold(ext, want) {
			ext = want
			name = base + ext
		}
		for _, f := range frames {
			doc, err := path2svg.RenderSVG(f.Width, f.Height, f.Paths)
			if err != nil {
				return err
			}
			target := name
			if len(frames) > 1 {
				target = sink.SplitName(base, f.Index, ext)
			}
			if err := s.Put(ctx, target, []byte(doc)); err != nil {
				return err
			}
		}
		log.Infof("Wrote %d SVG documents", len(frames))
	case config.FormatJSON:
		data := make([]r2stypes.FrameData, len(frames))
		for i, f := range frames {
			data[i] = svg2json.FrameData(f)
		}
		out, err := svg2json.MarshalFrames(data)
		if err != nil {
			return err
		}
		return s.Put(ctx, name, out)
	case config.FormatBAS:
		o := json2bas.DefaultOptions()
		o.Scale = cfg.Output.BasScale
		o.FrameRate = float64(cfg.Video.FPS)
		o.Parallel = cfg.Trace.Workers
		log.Infof("Generating BAS code...")
		lines := json2bas.GenerateAllBasText(frames, o)
		names, err := sink.WriteSplit(ctx, s, base, ".bas", lines, cfg.Output.MaxFileSize)
		if err != nil {
			return err
		}
		log.Infof("Wrote %d BAS files", len(names))
	default:
		return fmt.Errorf("unknown format %q", cfg.Output.Format)
	}
	return nil
}
