// Package logx 简单的分级日志，终端下给级别标签着色。
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

// Level 日志级别
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	LevelCount
)

var levelNames = [LevelCount]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = [LevelCount]string{
	DEBUG: "\033[37m",
	INFO:  "\033[34m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
}

func (l Level) String() string {
	if l < 0 || l >= LevelCount {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel 不区分大小写
func ParseLevel(s string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(s, n) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Logger nil 值可用，什么也不输出
type Logger struct {
	l      *log.Logger
	min    Level
	color  bool
	prefix string
}

// New 写到 f；f 是终端时带颜色
func New(f *os.File, min Level) *Logger {
	fd := f.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return &Logger{l: log.New(colorable.NewColorable(f), "", log.LstdFlags), min: min, color: true}
	}
	return NewWriter(f, min)
}

// NewWriter 不带颜色
func NewWriter(w io.Writer, min Level) *Logger {
	return &Logger{l: log.New(w, "", log.LstdFlags), min: min}
}

// With 返回带前缀的子日志
func (x *Logger) With(prefix string) *Logger {
	if x == nil {
		return nil
	}
	c := *x
	if c.prefix != "" {
		prefix = c.prefix + "/" + prefix
	}
	c.prefix = prefix
	return &c
}

// Enabled 是否会输出该级别
func (x *Logger) Enabled(level Level) bool {
	return x != nil && level >= x.min
}

func (x *Logger) Printf(level Level, format string, args ...any) {
	if !x.Enabled(level) {
		return
	}
	tag := level.String()
	if x.color {
		tag = levelColors[level] + tag + "\033[0m"
	}
	msg := fmt.Sprintf(format, args...)
	if x.prefix != "" {
		x.l.Printf("%s [%s] %s", tag, x.prefix, msg)
	} else {
		x.l.Printf("%s %s", tag, msg)
	}
}

func (x *Logger) Debugf(format string, args ...any) { x.Printf(DEBUG, format, args...) }
func (x *Logger) Infof(format string, args ...any)  { x.Printf(INFO, format, args...) }
func (x *Logger) Warnf(format string, args ...any)  { x.Printf(WARN, format, args...) }
func (x *Logger) Errorf(format string, args ...any) { x.Printf(ERROR, format, args...) }

// Fatalf 记录错误后退出
func (x *Logger) Fatalf(format string, args ...any) {
	x.Printf(ERROR, format, args...)
	os.Exit(1)
}
