// Package config 默认参数、TOML 配置文件和参数校验。
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"raster2svg/edge2path"
	"raster2svg/image2color"
	"raster2svg/image2svg"
	"raster2svg/layer2edge"
	"raster2svg/logx"
	"raster2svg/pathsimplify"
)

// 输出格式
const (
	FormatSVG  = "svg"
	FormatSVGZ = "svgz"
	FormatJSON = "json"
	FormatBAS  = "bas"
)

// Config 全部可配置项，对应配置文件中的 [trace] [video] [output]
type Config struct {
	Trace  Trace  `toml:"trace"`
	Video  Video  `toml:"video"`
	Output Output `toml:"output"`
}

// Trace 追踪参数
type Trace struct {
	MaxColors        int     `toml:"max_colors"`
	LayerThreshold   float64 `toml:"layer_threshold"`
	DilationRadius   int     `toml:"dilation_radius"`
	BlurSigma        float64 `toml:"blur_sigma"`
	EdgeLow          float64 `toml:"edge_low"`
	EdgeHigh         float64 `toml:"edge_high"`
	Simplify         int     `toml:"simplify"`
	MaxContourPoints int     `toml:"max_contour_points"`
	MinContourPoints int     `toml:"min_contour_points"`
	MinPathChars     int     `toml:"min_path_chars"`
	Quantizer        string  `toml:"quantizer"`
	Assignment       string  `toml:"assignment"`
	Tracer           string  `toml:"tracer"`
	Workers          int     `toml:"workers"`
}

// Video 视频和目录输入
type Video struct {
	FPS      int    `toml:"fps"`
	MaxWidth int    `toml:"max_width"`
	Match    string `toml:"match"`
}

// Output 输出
type Output struct {
	Format      string `toml:"format"`
	MaxFileSize int    `toml:"max_file_size"`
	LogLevel    string `toml:"log_level"`
	// BasScale BAS 坐标相对像素的放大倍数
	BasScale float64 `toml:"bas_scale"`
	S3Region string  `toml:"s3_region"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Trace: Trace{
			MaxColors:        8,
			LayerThreshold:   image2color.DefaultLayerThreshold,
			DilationRadius:   layer2edge.DefaultParams.DilationRadius,
			BlurSigma:        layer2edge.DefaultParams.BlurSigma,
			EdgeLow:          layer2edge.DefaultParams.EdgeLow,
			EdgeHigh:         layer2edge.DefaultParams.EdgeHigh,
			Simplify:         3,
			MaxContourPoints: edge2path.DefaultMaxPoints,
			MinContourPoints: edge2path.DefaultMinPoints,
			MinPathChars:     edge2path.DefaultMinPathChars,
			Quantizer:        string(image2color.Frequency),
			Assignment:       string(image2color.Threshold),
			Tracer:           string(image2svg.EdgeTracer),
			Workers:          4,
		},
		Video: Video{
			FPS:      10,
			MaxWidth: 96,
		},
		Output: Output{
			Format:      FormatSVG,
			MaxFileSize: 2 * 1024 * 1024,
			LogLevel:    "info",
			BasScale:    10,
			S3Region:    "us-east-1",
		},
	}
}

// Load 在默认配置上解码 TOML 文件，未知的键视为错误
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate 检查参数范围
func (c Config) Validate() error {
	t := c.Trace
	var errs []error
	if t.MaxColors < 1 {
		errs = append(errs, fmt.Errorf("max_colors must be >= 1, got %d", t.MaxColors))
	}
	if t.LayerThreshold <= 0 {
		errs = append(errs, fmt.Errorf("layer_threshold must be > 0, got %g", t.LayerThreshold))
	}
	if t.DilationRadius < 0 {
		errs = append(errs, fmt.Errorf("dilation_radius must be >= 0, got %d", t.DilationRadius))
	}
	if t.BlurSigma < 0 {
		errs = append(errs, fmt.Errorf("blur_sigma must be >= 0, got %g", t.BlurSigma))
	}
	if t.EdgeLow < 0 || t.EdgeLow > t.EdgeHigh {
		errs = append(errs, fmt.Errorf("edge thresholds must satisfy 0 <= edge_low <= edge_high, got %g/%g", t.EdgeLow, t.EdgeHigh))
	}
	if t.Simplify < 0 || t.Simplify > pathsimplify.MaxLevel {
		errs = append(errs, fmt.Errorf("simplify must be in 0..%d, got %d", pathsimplify.MaxLevel, t.Simplify))
	}
	if t.MaxContourPoints < 1 {
		errs = append(errs, fmt.Errorf("max_contour_points must be >= 1, got %d", t.MaxContourPoints))
	}
	switch image2color.Quantizer(t.Quantizer) {
	case image2color.Frequency, image2color.MedianCut:
	default:
		errs = append(errs, fmt.Errorf("unknown quantizer %q", t.Quantizer))
	}
	switch image2color.Assignment(t.Assignment) {
	case image2color.Threshold, image2color.Nearest:
	default:
		errs = append(errs, fmt.Errorf("unknown assignment %q", t.Assignment))
	}
	switch image2svg.Tracer(t.Tracer) {
	case image2svg.EdgeTracer, image2svg.PotraceTracer:
	default:
		errs = append(errs, fmt.Errorf("unknown tracer %q", t.Tracer))
	}
	if c.Video.FPS < 1 {
		errs = append(errs, fmt.Errorf("fps must be >= 1, got %d", c.Video.FPS))
	}
	switch c.Output.Format {
	case FormatSVG, FormatSVGZ, FormatJSON, FormatBAS:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Output.Format))
	}
	if c.Output.MaxFileSize < 1 {
		errs = append(errs, fmt.Errorf("max_file_size must be >= 1, got %d", c.Output.MaxFileSize))
	}
	if c.Output.BasScale <= 0 {
		errs = append(errs, fmt.Errorf("bas_scale must be > 0, got %g", c.Output.BasScale))
	}
	if _, err := logx.ParseLevel(c.Output.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TraceOptions 转成追踪参数，log 可以为 nil
func (c Config) TraceOptions(log *logx.Logger) image2svg.Options {
	t := c.Trace
	return image2svg.Options{
		MaxColors:      t.MaxColors,
		LayerThreshold: t.LayerThreshold,
		Quantizer:      image2color.Quantizer(t.Quantizer),
		Assignment:     image2color.Assignment(t.Assignment),
		Edge: layer2edge.Params{
			DilationRadius: t.DilationRadius,
			BlurSigma:      t.BlurSigma,
			EdgeLow:        t.EdgeLow,
			EdgeHigh:       t.EdgeHigh,
		},
		Contour: edge2path.Params{
			MaxPoints:    t.MaxContourPoints,
			MinPoints:    t.MinContourPoints,
			MinPathChars: t.MinPathChars,
		},
		Simplify: t.Simplify,
		Tracer:   image2svg.Tracer(t.Tracer),
		Workers:  t.Workers,
		Log:      log,
	}
}
