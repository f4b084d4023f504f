package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu       sync.Mutex
	minLevel = LevelInfo
	std      = log.New(os.Stdout, "", log.Ldate|log.Ltime)
)

// Init routes log output to stdout and a size-rotated file under logDir.
func Init(logDir string, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	if debug {
		minLevel = LevelDebug
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "cdr-api.log"),
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	std = log.New(io.MultiWriter(os.Stdout, rotated), "", log.Ldate|log.Ltime)

	// Catch anything written through the default logger too.
	log.SetOutput(io.MultiWriter(os.Stdout, rotated))
}

func logf(level Level, tag, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}
	std.Printf("%s %s", tag, fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	logf(LevelDebug, "DEBUG:", format, v...)
}

func Info(format string, v ...interface{}) {
	logf(LevelInfo, "INFO:", format, v...)
}

func Warn(format string, v ...interface{}) {
	logf(LevelWarn, "WARNING:", format, v...)
}

func Error(format string, v ...interface{}) {
	logf(LevelError, "ERROR:", format, v...)
}
