package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand   LogType = "CMD"
	TypeDB        LogType = "DB"
	TypeSystem    LogType = "SYS"
	TypeDashboard LogType = "DASH"
	TypeError     LogType = "ERR"
)

const prefix = "[Urnby]"

// Messages emitted by disgo internals that would drown everything else.
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"opening gateway connection",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

// internal attrs are folded into the message instead of being printed raw.
var internalAttrs = map[string]struct{}{
	"type":           {},
	"name":           {},
	"user_name":      {},
	"status":         {},
	"error":          {},
	"error_location": {},
}

type CustomHandler struct {
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	color  bool
	attrs  []slog.Attr
	groups []string
}

// NewHandler builds the console handler. A nil writer means stdout.
func NewHandler(level slog.Leveler, out io.Writer) *CustomHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	color := false
	if out == nil {
		out = os.Stdout
		color = true
	}
	return &CustomHandler{
		level: level,
		out:   out,
		mu:    &sync.Mutex{},
		color: color,
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.groups = append(append([]string{}, h.groups...), name)
	return &nh
}

type recordInfo struct {
	logType  LogType
	status   string
	userName string
	cmdName  string
	errText  string
	location string
	extra    []string
}

func collect(info *recordInfo, a slog.Attr) {
	switch a.Key {
	case "type":
		switch a.Value.String() {
		case "cmd":
			info.logType = TypeCommand
		case "db":
			info.logType = TypeDB
		case "dash":
			info.logType = TypeDashboard
		case "error":
			info.logType = TypeError
		}
	case "status":
		info.status = a.Value.String()
	case "user_name":
		info.userName = a.Value.String()
	case "name":
		info.cmdName = a.Value.String()
	case "error":
		info.errText = fmt.Sprintf("%v", a.Value.Any())
	case "error_location":
		info.location = a.Value.String()
	}
	if _, ok := internalAttrs[a.Key]; !ok {
		info.extra = append(info.extra, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(r.Message) {
		return nil
	}

	info := recordInfo{logType: TypeSystem}
	for _, a := range h.attrs {
		collect(&info, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(&info, a)
		return true
	})

	levelColor, levelText := colorGreen, "INFO"
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level < slog.LevelInfo:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	message := r.Message
	if r.Level >= slog.LevelError {
		if info.location == "" {
			if file, line := sourceLocation(r.PC); file != "" {
				info.location = fmt.Sprintf("%s:%d", file, line)
			}
		}
		if info.location != "" {
			message = fmt.Sprintf("%s (%s)", message, info.location)
		}
	}
	if info.errText != "" {
		message = fmt.Sprintf("%s: %s", message, info.errText)
	}
	if info.cmdName != "" && info.userName != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, info.cmdName, info.userName)
	}
	if info.status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, info.status)
	}
	if len(info.extra) > 0 {
		message += " " + strings.Join(info.extra, " ")
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var line string
	if h.color {
		line = fmt.Sprintf("%s%s [%s] [%s%s%s] [%s%s%s] %s%s\n",
			colorWhite, prefix, ts.Format("15:04:05"),
			levelColor, levelText, colorWhite,
			colorCyan, info.logType, colorWhite,
			message, colorReset,
		)
	} else {
		line = fmt.Sprintf("%s [%s] [%s] [%s] %s\n", prefix, ts.Format("15:04:05"), levelText, info.logType, message)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func shouldSkipLog(msg string) bool {
	lower := strings.ToLower(msg)
	for _, skip := range skippedMessages {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

func sourceLocation(pc uintptr) (string, int) {
	if pc == 0 {
		return "", 0
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return "", 0
	}
	return filepath.Base(f.File), f.Line
}
