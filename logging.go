package main

import (
	"io"
	"log"

	"github.com/natefinch/lumberjack"
)

// LogConfig selects where log output goes
type LogConfig struct {
	Logfile string `toml:"logfile"`
	MaxSize int    `toml:"max_log_size"` // megabytes
	MaxAge  int    `toml:"max_log_age"`  // days
}

// SetLogger sends log output to a rotating log file. Without a log file the
// standard logger keeps writing to stderr. The returned closer releases the
// file.
func (c *LogConfig) SetLogger() io.Closer {
	if c == nil || c.Logfile == "" {
		return io.NopCloser(nil)
	}
	log.Printf("📂 Sending log messages to: %s\n", c.Logfile)
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	log.SetOutput(l)
	return l
}
