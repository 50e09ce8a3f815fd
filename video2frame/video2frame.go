package video2frame

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	r2stypes "raster2svg/type"
)

// VideoProbe 只关心视频流
type VideoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		NbFrames     string `json:"nb_frames"`      // 有些视频是字符串
		AvgFrameRate string `json:"avg_frame_rate"` // fallback
		Duration     string `json:"duration"`
	} `json:"streams"`
}

var errNoVideoStream = errors.New("no video stream found or cannot determine frame count")

// ProbeFrameCount 用 ffprobe 估算总帧数
func ProbeFrameCount(videoPath string) (int, error) {
	probeStr, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}
	return parseFrameCount(probeStr)
}

func parseFrameCount(probeStr string) (int, error) {
	var probe VideoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return 0, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
			return n, nil
		}
		// nb_frames 不存在时使用 avg_frame_rate * duration 估算
		rate, ok := parseRate(stream.AvgFrameRate)
		dur, err := strconv.ParseFloat(stream.Duration, 64)
		if ok && err == nil {
			return int(rate * dur), nil
		}
	}

	return 0, errNoVideoStream
}

func parseRate(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

// ExtractFrames 以 fps 抽帧并缩放到 maxWidth 宽，逐帧解码 PNG 流
func ExtractFrames(ctx context.Context, videoPath string, fps, maxWidth int) ([]r2stypes.Frame, error) {
	if fps <= 0 {
		fps = 1
	}
	kw := ffmpeg.KwArgs{
		"format": "image2pipe",
		"vcodec": "png",
		"r":      strconv.Itoa(fps),
	}
	if maxWidth > 0 {
		kw["vf"] = fmt.Sprintf("scale=%d:-1", maxWidth)
	}

	r, w := io.Pipe()
	cmd := ffmpeg.Input(videoPath).
		Output("pipe:1", kw).
		WithOutput(w).
		WithErrorOutput(os.Stderr)
	cmd.Context = ctx

	// ffmpeg 在另一个协程中写管道，读完后才会退出
	go func() {
		w.CloseWithError(cmd.Run())
	}()

	frames, err := DecodeFrames(r)
	r.Close()
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("no frames extracted")
	}
	return frames, nil
}

// DecodeFrames 从连续的图像流中解码所有帧
func DecodeFrames(r io.Reader) ([]r2stypes.Frame, error) {
	var frames []r2stypes.Frame
	reader := bufio.NewReader(r)
	for index := 0; ; index++ {
		if _, err := reader.Peek(1); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", index, err)
		}
		// 解码器必须直接读 reader，包一层会多读走下一帧的数据
		img, _, err := image.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d failed: %w", index, err)
		}
		frames = append(frames, r2stypes.Frame{Index: index, Image: img})
	}
	return frames, nil
}
