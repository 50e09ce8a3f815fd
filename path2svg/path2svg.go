package path2svg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	svgo "github.com/ajstarks/svgo"

	r2stypes "raster2svg/type"
)

// WriteSVG 写出与原图同尺寸的 SVG 文档，每条路径一个 <path>，顺序不变
func WriteSVG(w io.Writer, width, height int, paths []r2stypes.TracedPath) error {
	bw := bufio.NewWriter(w)
	canvas := svgo.New(bw)
	canvas.Startview(width, height, 0, 0, width, height)
	for _, p := range paths {
		canvas.Path(p.D, fmt.Sprintf(`fill="%s"`, p.Fill()), `stroke="none"`)
	}
	canvas.End()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// RenderSVG 返回 SVG 字符串
func RenderSVG(width, height int, paths []r2stypes.TracedPath) (string, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, width, height, paths); err != nil {
		return "", err
	}
	return buf.String(), nil
}
