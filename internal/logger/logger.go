package logger

import (
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

var (
	logMu   sync.Mutex
	sugar   = newSugar(os.Stderr, nil)
	rotator *dailyFile
)

// Init enables file logging under dir. Console output always goes to stderr so
// the login screen on stdout is not disturbed more than necessary.
func Init(logDir string) error {
	if logDir == "" {
		return nil
	}
	// If caller passes /var/log/ttylogin, write logs to /var/log/ttylogin/logs.
	// If caller already passes .../logs, keep it as-is.
	resolved := logDir
	if path.Base(filepath.ToSlash(logDir)) != "logs" {
		resolved = filepath.Join(logDir, "logs")
	}
	if err := os.MkdirAll(resolved, 0o750); err != nil {
		return err
	}

	df := &dailyFile{dir: resolved}
	if err := df.rotate(time.Now()); err != nil {
		return err
	}

	logMu.Lock()
	defer logMu.Unlock()
	if rotator != nil {
		_ = rotator.Close()
	}
	rotator = df
	sugar = newSugar(os.Stderr, df)
	return nil
}

// SetOutput redirects console output, mainly for tests.
func SetOutput(w zapcore.WriteSyncer) {
	logMu.Lock()
	defer logMu.Unlock()
	sugar = newSugar(w, rotator)
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	_ = sugar.Sync()
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
	sugar = newSugar(os.Stderr, nil)
}

func Info(format string, args ...interface{}) {
	log(LevelInfo, format, args...)
}

func Warn(format string, args ...interface{}) {
	log(LevelWarn, format, args...)
}

func Error(format string, args ...interface{}) {
	log(LevelError, format, args...)
}

// With returns a structured logger carrying the given key/value pairs.
func With(kv ...interface{}) *zap.SugaredLogger {
	logMu.Lock()
	defer logMu.Unlock()
	return sugar.With(kv...)
}

func log(lvl Level, format string, args ...interface{}) {
	logMu.Lock()
	s := sugar
	logMu.Unlock()
	switch lvl {
	case LevelInfo:
		s.Infof(format, args...)
	case LevelWarn:
		s.Warnf(format, args...)
	case LevelError:
		s.Errorf(format, args...)
	}
}

func newSugar(console zapcore.WriteSyncer, file *dailyFile) *zap.SugaredLogger {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.CallerKey = ""

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(console), zapcore.InfoLevel),
	}
	if file != nil {
		// File output (no color), with daily rollover
		fileCfg := consoleCfg
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), zapcore.AddSync(file), zapcore.InfoLevel))
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

// dailyFile is a WriteSyncer that switches to <dir>/YYYY-MM-DD.log when the day changes.
type dailyFile struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rotateLocked(time.Now()); err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func (d *dailyFile) rotate(t time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotateLocked(t)
}

func (d *dailyFile) rotateLocked(t time.Time) error {
	day := t.Format("2006-01-02")
	if d.file != nil && d.day == day {
		return nil
	}
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}

	filePath := filepath.Join(d.dir, day+".log")
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	d.file = f
	d.day = day
	return nil
}
