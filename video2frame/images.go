package video2frame

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/gobwas/glob"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	r2stypes "raster2svg/type"
)

// DefaultPattern 目录输入时默认匹配的文件
const DefaultPattern = "*.{png,jpg,jpeg,gif,bmp,tif,tiff,webp}"

// LoadImage 打开图像文件，按 EXIF 方向摆正
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// ListImages 列出目录中文件名匹配 pattern 的文件，按名字排序
func ListImages(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !g.Match(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LoadFrames 依次加载文件作为帧
func LoadFrames(files []string) ([]r2stypes.Frame, error) {
	frames := make([]r2stypes.Frame, 0, len(files))
	for i, f := range files {
		img, err := LoadImage(f)
		if err != nil {
			return nil, err
		}
		frames = append(frames, r2stypes.Frame{Index: i, Image: img})
	}
	return frames, nil
}
