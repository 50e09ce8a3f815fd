// Package json2bas 把追踪好的帧序列编码成 BAS 弹幕脚本。
package json2bas

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	r2stypes "raster2svg/type"
)

const (
	DefaultViewBoxW = 4000
	DefaultViewBoxH = 3620
)

// Options BAS 编码参数
type Options struct {
	// Scale 像素坐标到 BAS viewBox 的放大倍数
	Scale       float64
	FrameRate   float64
	StartTime   float64 // 毫秒
	BorderWidth int
	// SkipBlack 跳过纯黑图层（通常是视频背景）
	SkipBlack bool
	Parallel  int
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{Scale: 10, FrameRate: 10, BorderWidth: 15, SkipBlack: true, Parallel: 4}
}

var (
	tokenRe   = regexp.MustCompile(`-?[0-9]*\.?[0-9]+(?:e[-+]?\d+)?|[MLHVCSQTAZmlhvcsqtaz]|[\s,]+`)
	commandRe = regexp.MustCompile(`^[MLHVCSQTAZmlhvcsqtaz]$`)
)

func groupSize(cmd string) int {
	switch cmd {
	case "H", "h", "V", "v":
		return 1
	case "M", "m", "L", "l", "T", "t":
		return 2
	case "S", "s", "Q", "q":
		return 4
	case "C", "c":
		return 6
	case "A", "a":
		return 7
	default:
		return 0
	}
}

func formatNum(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// transformGroup 放大并上下翻转一组参数
func transformGroup(cmd string, group []float64, scale, viewBoxH float64) []float64 {
	abs := cmd == strings.ToUpper(cmd)
	flipY := func(y float64) float64 {
		if abs {
			return viewBoxH - y*scale
		}
		return -y * scale
	}
	res := make([]float64, len(group))
	switch {
	case cmd == "H" || cmd == "h":
		res[0] = group[0] * scale
	case cmd == "V" || cmd == "v":
		res[0] = flipY(group[0])
	case (cmd == "A" || cmd == "a") && len(group) == 7:
		// 翻转后旋转角取反，sweep 标志取反
		res[0], res[1] = group[0]*scale, group[1]*scale
		res[2] = -group[2]
		res[3] = group[3]
		res[4] = 1 - group[4]
		res[5], res[6] = group[5]*scale, flipY(group[6])
	default:
		for i, val := range group {
			if i%2 == 1 {
				res[i] = flipY(val)
			} else {
				res[i] = val * scale
			}
		}
	}
	return res
}

// TransformPath 把 SVG 路径坐标放大 scale 倍并在高度 viewBoxH 内上下翻转
func TransformPath(d string, scale, viewBoxH float64) string {
	var output []string
	var command string
	var params []float64

	flush := func() {
		size := groupSize(command)
		if size == 0 {
			size = len(params)
		}
		for i := 0; i < len(params); i += size {
			group := transformGroup(command, params[i:min(i+size, len(params))], scale, viewBoxH)
			strs := make([]string, len(group))
			for j, v := range group {
				strs[j] = formatNum(v)
			}
			output = append(output, strings.Join(strs, " "))
		}
		params = nil
	}

	for _, token := range tokenRe.FindAllString(d, -1) {
		t := strings.TrimSpace(token)
		if t == "" || t == "," {
			continue
		}
		if commandRe.MatchString(t) {
			if len(params) > 0 {
				flush()
			}
			command = t
			output = append(output, t)
			continue
		}
		num, _ := strconv.ParseFloat(t, 64)
		params = append(params, num)
	}
	if len(params) > 0 {
		flush()
	}
	return strings.Join(output, " ")
}

// FlipSvgPath 只做上下翻转
func FlipSvgPath(d string, viewBoxH int) string {
	if viewBoxH == 0 {
		viewBoxH = DefaultViewBoxH
	}
	return TransformPath(d, 1, float64(viewBoxH))
}

// HexColor 不带 # 的 rrggbb
func HexColor(c color.NRGBA) string {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return strings.TrimPrefix(cf.Hex(), "#")
}

func viewBox(frame r2stypes.FramePaths, scale float64) (int, int) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return DefaultViewBoxW, DefaultViewBoxH
	}
	return int(math.Round(float64(frame.Width) * scale)), int(math.Round(float64(frame.Height) * scale))
}

// GenerateBasText 单帧的 BAS 代码
func GenerateBasText(frame r2stypes.FramePaths, o Options) string {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.FrameRate <= 0 {
		o.FrameRate = 1
	}
	viewBoxW, viewBoxH := viewBox(frame, o.Scale)
	displayTime := 1000.0 / o.FrameRate
	startOffset := float64(frame.Index)/o.FrameRate*1000.0 - o.StartTime

	var out strings.Builder
	for i, p := range frame.Paths {
		hex := HexColor(p.Color)
		if o.SkipBlack && hex == "000000" {
			continue
		}
		pathData := TransformPath(p.D, o.Scale, float64(viewBoxH))
		name := fmt.Sprintf("%d_%d_%s", frame.Index, i, hex)
		alpha := formatNum(float64(p.Color.A) / 255)

		fmt.Fprintf(&out, `
let p%s = path{d = "%s" viewBox="0 0 %d %d" width = 100%% fillColor = 0x%s alpha = 0
borderWidth = %d
    borderColor = 0x%s
}
set p%s {} %dms
then set p%s {alpha = %s} 0ms
then set p%s {} %dms
then set p%s {alpha = 0} 0ms
`, name, pathData, viewBoxW, viewBoxH, hex, o.BorderWidth, hex,
			name, int(math.Floor(startOffset)),
			name, alpha,
			name, int(math.Floor(displayTime)),
			name,
		)
	}
	return out.String()
}

// GenerateAllBasText 并发编码所有帧，结果顺序与输入一致
func GenerateAllBasText(frames []r2stypes.FramePaths, o Options) []string {
	results := make([]string, len(frames))
	parallel := max(o.Parallel, 1)
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for i, f := range frames {
		wg.Add(1)
		go func(idx int, frame r2stypes.FramePaths) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = GenerateBasText(frame, o)
		}(i, f)
	}
	wg.Wait()
	return results
}

// ParseFill 解析 rgba(r,g,b,a) 或 #rrggbb
func ParseFill(fill string) (color.NRGBA, error) {
	fill = strings.TrimSpace(fill)
	if strings.HasPrefix(fill, "#") {
		cf, err := colorful.Hex(fill)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad fill %q: %w", fill, err)
		}
		r, g, b := cf.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	}
	body, ok := strings.CutPrefix(fill, "rgba(")
	if !ok || !strings.HasSuffix(body, ")") {
		return color.NRGBA{}, fmt.Errorf("bad fill %q", fill)
	}
	parts := strings.Split(strings.TrimSuffix(body, ")"), ",")
	if len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("bad fill %q", fill)
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad fill %q: %w", fill, err)
		}
		rgb[i] = uint8(v)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || a < 0 || a > 1 {
		return color.NRGBA{}, fmt.Errorf("bad fill alpha %q", fill)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(math.Round(a * 255))}, nil
}

// FromFrameData JSON 导出的帧还原成路径
func FromFrameData(fd r2stypes.FrameData) (r2stypes.FramePaths, error) {
	fp := r2stypes.FramePaths{Index: fd.FrameIndex, Width: fd.Width, Height: fd.Height}
	for _, rec := range fd.Data {
		c, err := ParseFill(rec.Fill)
		if err != nil {
			return fp, fmt.Errorf("frame %d: %w", fd.FrameIndex, err)
		}
		fp.Paths = append(fp.Paths, r2stypes.TracedPath{Color: c, D: rec.PathData})
	}
	return fp, nil
}

// FramesFromJSON 读取 svg2json.MarshalFrames 的输出
func FramesFromJSON(data []byte) ([]r2stypes.FramePaths, error) {
	var fds []r2stypes.FrameData
	if err := json.Unmarshal(data, &fds); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	frames := make([]r2stypes.FramePaths, 0, len(fds))
	for _, fd := range fds {
		fp, err := FromFrameData(fd)
		if err != nil {
			return nil, err
		}
		frames = append(frames, fp)
	}
	return frames, nil
}
