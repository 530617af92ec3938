package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotDebugger handles debug screenshots. A nil debugger is a no-op.
type ScreenshotDebugger struct {
	outputDir string
	logger    *slog.Logger
}

func NewScreenshotDebugger(dir string, logger *slog.Logger) *ScreenshotDebugger {
	if dir == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenshotDebugger{outputDir: dir, logger: logger}
}

func (s *ScreenshotDebugger) CaptureAndLog(page Page, name, message string) error {
	if s == nil || page == nil {
		return nil
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.logger.Info("📸 "+message, "url", page.URL())

	if err := page.Screenshot(path); err != nil {
		s.logger.Warn("failed to capture screenshot", "err", err)
		return err
	}
	s.logger.Info("screenshot saved", "path", path)
	return nil
}
