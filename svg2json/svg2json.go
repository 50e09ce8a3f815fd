package svg2json

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rustyoz/svg"

	r2stypes "raster2svg/type"
)

// Document SVG 文档中与追踪结果相关的部分
type Document struct {
	Width  float64
	Height float64
	Paths  []r2stypes.PathRecord
}

var errViewBox = errors.New("missing or malformed viewBox")

// ParseDocument 读取 viewBox 尺寸以及所有 <path> 的 d 和 fill
func ParseDocument(doc string) (Document, error) {
	parsed, err := svg.ParseSvg(doc, "document", 1.0)
	if err != nil {
		return Document{}, fmt.Errorf("parse svg: %w", err)
	}
	w, h, err := viewBoxSize(parsed.ViewBox)
	if err != nil {
		return Document{}, err
	}
	paths, err := extractPathRecords(doc)
	if err != nil {
		return Document{}, err
	}
	return Document{Width: w, Height: h, Paths: paths}, nil
}

// viewBoxSize 从 "minx miny w h" 读取宽高
func viewBoxSize(box string) (float64, float64, error) {
	split := strings.FieldsFunc(box, func(r rune) bool { return r == ' ' || r == ',' })
	if len(split) != 4 {
		return 0, 0, fmt.Errorf("%w: %q", errViewBox, box)
	}
	var v [4]float64
	for i, s := range split {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", errViewBox, box)
		}
		v[i] = f
	}
	return v[2], v[3], nil
}

// ExtractPaths 从 SVG 字符串中提取所有 <path> 的 d 属性
func ExtractPaths(doc string) ([]string, error) {
	records, err := extractPathRecords(doc)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.PathData
	}
	return paths, nil
}

// extractPathRecords 遍历整个文档，包括 <g> 内嵌套的 <path>
func extractPathRecords(doc string) ([]r2stypes.PathRecord, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	var fills []string // 每层 <g> 的 fill，供没有 fill 的 path 继承
	var records []r2stypes.PathRecord
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			fill := attr(t, "fill")
			if fill == "" && len(fills) > 0 {
				fill = fills[len(fills)-1]
			}
			switch t.Name.Local {
			case "g":
				fills = append(fills, fill)
			case "path":
				records = append(records, r2stypes.PathRecord{Fill: fill, PathData: attr(t, "d")})
			}
		case xml.EndElement:
			if t.Name.Local == "g" && len(fills) > 0 {
				fills = fills[:len(fills)-1]
			}
		}
	}
	return records, nil
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// FrameData 将追踪结果封装成 JSON 结构
func FrameData(frame r2stypes.FramePaths) r2stypes.FrameData {
	data := make([]r2stypes.PathRecord, len(frame.Paths))
	for i, p := range frame.Paths {
		data[i] = r2stypes.PathRecord{
			Fill:     p.Fill(),
			PathData: p.D,
		}
	}
	return r2stypes.FrameData{
		FrameIndex: frame.Index,
		Width:      frame.Width,
		Height:     frame.Height,
		Data:       data,
	}
}

// ParseFrame 解析一帧的 SVG 文档
func ParseFrame(index int, doc string) (r2stypes.FrameData, error) {
	d, err := ParseDocument(doc)
	if err != nil {
		return r2stypes.FrameData{}, fmt.Errorf("frame %d: %w", index, err)
	}
	return r2stypes.FrameData{
		FrameIndex: index,
		Width:      int(d.Width),
		Height:     int(d.Height),
		Data:       d.Paths,
	}, nil
}

// ParseAllFrame 并行解析多帧 SVG 文档
func ParseAllFrame(docs []string) ([]r2stypes.FrameData, error) {
	results := make([]r2stypes.FrameData, len(docs))
	errs := make(chan error, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(idx int, doc string) {
			defer wg.Done()
			fd, err := ParseFrame(idx, doc)
			if err != nil {
				errs <- err
				return
			}
			results[idx] = fd
		}(i, doc)
	}

	wg.Wait()
	close(errs)

	// 返回第一个错误（如果有）
	for err := range errs {
		return nil, err
	}
	return results, nil
}

// MarshalFrames 返回缩进的 JSON
func MarshalFrames(frames []r2stypes.FrameData) ([]byte, error) {
	return json.MarshalIndent(frames, "", "  ")
}
