// Package sink 把生成的文档写到本地文件或 S3。
package sink

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Sink 按名字保存一份输出
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Open 根据目标选择 Sink，返回对应的名字：
// s3://bucket/key 上传到 S3，其余写本地文件
func Open(dest, region string) (Sink, string, error) {
	if bucket, key, ok := ParseS3URL(dest); ok {
		s, err := NewS3Sink(bucket, region)
		if err != nil {
			return nil, "", err
		}
		return s, key, nil
	}
	return FileSink{}, dest, nil
}

// Encode .svgz 后缀时 gzip 压缩，其他原样返回
func Encode(name string, data []byte) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(name), ".svgz") {
		return data, nil
	}
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// FileSink 写本地文件，自动创建目录
type FileSink struct{}

func (FileSink) Put(_ context.Context, name string, data []byte) error {
	data, err := Encode(name, data)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Split 把多行文本按大小分组，每组不超过 maxSize 字节（含换行）。
// 单行超过 maxSize 时独占一组。
func Split(lines []string, maxSize int) [][]byte {
	var chunks [][]byte
	var current []byte
	for _, line := range lines {
		lineSize := len(line) + 1 // +1 for newline
		if current == nil || len(current)+lineSize > maxSize {
			if current != nil {
				chunks = append(chunks, current)
			}
			current = make([]byte, 0, min(maxSize, 1<<20))
		}
		current = append(current, line...)
		current = append(current, '\n')
	}
	if current != nil {
		chunks = append(chunks, current)
	}
	return chunks
}

// SplitName 第 i 个分片文件名，例如 output/video_0.bas
func SplitName(base string, i int, ext string) string {
	return base + "_" + strconv.Itoa(i) + ext
}

// WriteSplit 分片写出 lines，返回写出的名字
func WriteSplit(ctx context.Context, s Sink, base, ext string, lines []string, maxSize int) ([]string, error) {
	var names []string
	for i, chunk := range Split(lines, maxSize) {
		name := SplitName(base, i, ext)
		if err := s.Put(ctx, name, chunk); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}
