package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Level         string
	Dir           string
	RetentionDays int
}

// Setup installs a JSON slog default writing to stdout and, when Dir is set,
// to a daily file app-YYYY-MM-DD.log. The returned func closes the file.
func Setup(cfg Config) (func(), error) {
	var out io.Writer = os.Stdout
	cleanup := func() {}
	if cfg.Dir != "" {
		file, err := newDailyFile(cfg.Dir, cfg.RetentionDays, time.Now)
		if err != nil {
			return cleanup, err
		}
		out = io.MultiWriter(os.Stdout, file)
		cleanup = func() { _ = file.Close() }
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	slog.SetDefault(slog.New(handler))
	log.SetOutput(out)
	return cleanup, nil
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// dailyFile switches to a new file on the first write of each day and prunes
// files older than the retention window.
type dailyFile struct {
	mu        sync.Mutex
	dir       string
	retention int
	now       func() time.Time
	date      string
	file      *os.File
}

func newDailyFile(dir string, retentionDays int, now func() time.Time) (*dailyFile, error) {
	if retentionDays <= 0 || retentionDays > 7 {
		retentionDays = 7
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	d := &dailyFile{dir: dir, retention: retentionDays, now: now}
	if err := d.rotate(now().Format("2006-01-02")); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date := d.now().Format("2006-01-02"); date != d.date {
		if err := d.rotate(date); err != nil {
			return 0, err
		}
	}
	return d.file.Write(p)
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

func (d *dailyFile) rotate(date string) error {
	name := filepath.Join(d.dir, fmt.Sprintf("app-%s.log", date))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if d.file != nil {
		_ = d.file.Close()
	}
	d.file = file
	d.date = date
	d.prune()
	return nil
}

func (d *dailyFile) prune() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	cutoff := d.now().AddDate(0, 0, -(d.retention - 1)).Format("2006-01-02")
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log")
		if _, err := time.Parse("2006-01-02", datePart); err != nil {
			continue
		}
		if datePart < cutoff {
			_ = os.Remove(filepath.Join(d.dir, name))
		}
	}
}
