package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"raster2svg/config"
	"raster2svg/logx"
)

func main() {
	def := config.Default()

	input := flag.String("input", "", "输入图像文件、图像目录，或已有的 .svg/.json 结果")
	videoPath := flag.String("video", "", "视频文件路径")
	output := flag.String("output", "", "输出路径，支持 s3://bucket/key")
	format := flag.String("format", def.Output.Format, "输出格式 svg|svgz|json|bas")
	simplify := flag.Int("simplify", def.Trace.Simplify, "路径简化级别 0-10")
	colorCount := flag.Int("colors", def.Trace.MaxColors, "颜色数量")
	configPath := flag.String("config", "", "TOML 配置文件")
	fps := flag.Int("fps", def.Video.FPS, "每秒帧数")
	maxWidth := flag.Int("width", def.Video.MaxWidth, "视频帧最大宽度")
	match := flag.String("match", "", "目录输入时匹配的文件名模式")
	workers := flag.Int("workers", def.Trace.Workers, "并行处理的最大协程数")
	maxFileSize := flag.Int("maxsize", def.Output.MaxFileSize, "单个 BAS 输出文件最大尺寸，单位字节")
	logLevel := flag.String("log", def.Output.LogLevel, "日志级别 debug|info|warn|error")

	help := flag.Bool("help", false, "显示帮助信息")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if (*input == "") == (*videoPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -input and -video is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	// 命令行显式给出的参数覆盖配置文件
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "simplify":
			cfg.Trace.Simplify = *simplify
		case "colors":
			cfg.Trace.MaxColors = *colorCount
		case "fps":
			cfg.Video.FPS = *fps
		case "width":
			cfg.Video.MaxWidth = *maxWidth
		case "match":
			cfg.Video.Match = *match
		case "workers":
			cfg.Trace.Workers = *workers
		case "maxsize":
			cfg.Output.MaxFileSize = *maxFileSize
		case "log":
			cfg.Output.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, _ := logx.ParseLevel(cfg.Output.LogLevel)
	log := logx.New(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := source{Path: *input, Video: *videoPath}
	if err := run(ctx, cfg, src, *output, log); err != nil {
		log.Fatalf("%v", err)
	}
}
