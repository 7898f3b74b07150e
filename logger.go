package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/refaktor/bridgegen/bridge/bridgeio"
	"github.com/refaktor/bridgegen/config"
	"github.com/refaktor/bridgegen/textutils"
)

// newLogger returns a human readable logger. Debug messages and callers
// are only shown if verbose is set. Levels are colored if color is set.
func newLogger(w io.Writer, verbose, color bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	var opts []zap.Option
	if verbose {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}

// reportError writes err to w. Errors that come with a detailed,
// multi-line rendering are written in full, indented below the message.
func reportError(w io.Writer, err error) {
	var b strings.Builder
	b.WriteString("ERROR:")
	s := err.Error()
	if cErr := (&config.Error{}); errors.As(err, &cErr) {
		s = cErr.String()
	} else if fErr := (&bridgeio.FormatError{}); errors.As(err, &fErr) {
		s = fErr.String()
	}
	if strings.Contains(s, "\n") {
		b.WriteString("\n")
		s = textutils.IndentString(s, "  ", 1)
	} else {
		b.WriteString(" ")
	}
	b.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}
