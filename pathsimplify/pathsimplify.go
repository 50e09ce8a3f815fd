// Package pathsimplify 按简化级别降低路径点密度。
package pathsimplify

import (
	"math"
	"strconv"
	"strings"
)

// MaxLevel 最大简化级别
const MaxLevel = 10

// Precision 级别 1..10 对应精度约 9.1..1.0，级别越高精度越低
func Precision(level int) float64 {
	level = min(max(level, 0), MaxLevel)
	return 10.0 - float64(level)*0.9
}

// SimplifyPaths 级别为 0 时原样返回
func SimplifyPaths(paths []string, level int) []string {
	out := make([]string, len(paths))
	if level <= 0 {
		copy(out, paths)
		return out
	}
	precision := Precision(level)
	for i, p := range paths {
		out[i] = SimplifyPath(p, precision)
	}
	return out
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isCommand(c byte) bool {
	return c == 'M' || c == 'L' || c == 'Z' || c == 'z'
}

func isBreak(c byte) bool {
	return isSpace(c) || c == ',' || isCommand(c)
}

// SimplifyPath 坐标吸附到 1/precision 网格，与上一个保留点在两个方向上都
// 相差不到两个网格的点被丢弃，保留点之间的距离因此不小于 1/precision。
// 起点 (M) 总是保留，无法解析的片段原样保留。
func SimplifyPath(path string, precision float64) string {
	var tokens []string
	var prevIx, prevIy float64

	n := len(path)
	for i := 0; i < n; {
		c := path[i]
		switch {
		case c == 'M' || c == 'L':
			start := i
			i++
			for i < n && isSpace(path[i]) {
				i++
			}
			xs := i
			for i < n && isNumberChar(path[i]) {
				i++
			}
			xStr := path[xs:i]
			for i < n && (isSpace(path[i]) || path[i] == ',') {
				i++
			}
			ys := i
			for i < n && isNumberChar(path[i]) {
				i++
			}
			yStr := path[ys:i]

			x, errX := strconv.ParseFloat(xStr, 64)
			y, errY := strconv.ParseFloat(yStr, 64)
			if errX != nil || errY != nil {
				for i < n && !isSpace(path[i]) && !isCommand(path[i]) {
					i++
				}
				tokens = append(tokens, strings.TrimSpace(path[start:i]))
				continue
			}

			// 网格下标
			ix, iy := math.Round(x*precision), math.Round(y*precision)
			if c == 'M' || math.Abs(ix-prevIx) > 1 || math.Abs(iy-prevIy) > 1 {
				rx, ry := ix/precision, iy/precision
				tokens = append(tokens, string(c)+strconv.FormatFloat(rx, 'f', 1, 64)+","+strconv.FormatFloat(ry, 'f', 1, 64))
				prevIx, prevIy = ix, iy
			}
		case c == 'Z' || c == 'z':
			tokens = append(tokens, string(c))
			i++
		case isSpace(c) || c == ',':
			i++
		default:
			start := i
			for i < n && !isBreak(path[i]) {
				i++
			}
			tokens = append(tokens, path[start:i])
		}
	}
	return strings.Join(tokens, " ")
}
