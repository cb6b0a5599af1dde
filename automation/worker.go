package automation

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/RizzZzz09/steam-screenshot-rebinder/rebind"
)

const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

type Status struct {
	Timestamp time.Time
	Message   string
	Level     string
}

func emit(ch chan<- Status, level, format string, args ...any) {
	ch <- Status{
		Timestamp: time.Now(),
		Message:   fmt.Sprintf(format, args...),
		Level:     level,
	}
}

// RunPreview сканирует OLD/NEW, строит пары и пишет предпросмотр в лог.
// Возвращает очередь пар для последующей замены; ok=false означает, что
// пар нет и замену запускать нельзя.
func RunPreview(ctx context.Context, cfg Config, statusChan chan<- Status) (pairs []rebind.Pair, ok bool) {
	emit(statusChan, LevelInfo, "=== Предпросмотр пар ===")

	oldFiles, newFiles, scanWarnings, err := rebind.ScanOldNew(cfg.OldDir, cfg.NewDir)
	if err != nil {
		emit(statusChan, LevelError, "Ошибка сканирования: %v", err)
		return nil, false
	}

	pairs, mapWarnings, err := rebind.BuildPairs(oldFiles, newFiles, 0, false)
	if err != nil {
		emit(statusChan, LevelError, "Ошибка построения пар: %v", err)
		return nil, false
	}

	if len(pairs) == 0 {
		emit(statusChan, LevelError, "%v: OLD=%d, NEW=%d",
			rebind.ErrNoPairableFiles, len(oldFiles), len(newFiles))
		return nil, false
	}

	for _, line := range rebind.PreviewPairs(pairs, cfg.PreviewLimit) {
		select {
		case <-ctx.Done():
			emit(statusChan, LevelInfo, "Предпросмотр остановлен")
			return nil, false
		default:
		}
		emit(statusChan, LevelInfo, "  %s", line)
	}
	if cfg.PreviewLimit > 0 && len(pairs) > cfg.PreviewLimit {
		emit(statusChan, LevelInfo, "  ... и ещё %d пар", len(pairs)-cfg.PreviewLimit)
	}

	for _, w := range append(scanWarnings, mapWarnings...) {
		emit(statusChan, LevelWarning, "%s", w)
	}
	for _, w := range rebind.ProbeConversionWarnings(pairs, forceFormat(cfg.Format)) {
		emit(statusChan, LevelWarning, "%s", w)
	}

	emit(statusChan, LevelSuccess, "Итого пар: %d (OLD=%d, NEW=%d)",
		len(pairs), len(oldFiles), len(newFiles))
	return pairs, true
}

// RunReplace заменяет содержимое NEW файлов по очереди пар из предпросмотра.
// Ошибка одной пары не прерывает остальные; отмена проверяется между парами.
func RunReplace(ctx context.Context, cfg Config, pairs []rebind.Pair, statusChan chan<- Status) {
	mode := "dry-run: OFF"
	if cfg.DryRun {
		mode = "dry-run: ON"
	}
	emit(statusChan, LevelInfo, "=== Замена содержимого (%s, формат: %s) ===", mode, cfg.Format)

	if len(pairs) == 0 {
		emit(statusChan, LevelError, "%v: сначала сделайте предпросмотр", rebind.ErrNoPairableFiles)
		return
	}

	var okCount, errCount int
	for i, p := range pairs {
		select {
		case <-ctx.Done():
			emit(statusChan, LevelInfo, "Остановлено: %d/%d", i, len(pairs))
			return
		default:
		}

		res := rebind.ReplaceOne(p.Old, p.New, forceFormat(cfg.Format), cfg.DryRun)
		if res.OK {
			okCount++
			emit(statusChan, LevelSuccess, "OK  %s <- %s (%s)",
				filepath.Base(res.New), filepath.Base(res.Old), res.Action)
		} else {
			errCount++
			emit(statusChan, LevelError, "ERR %s <- %s: %s",
				filepath.Base(res.New), filepath.Base(res.Old), res.Err)
		}
	}

	level := LevelSuccess
	if errCount > 0 {
		level = LevelWarning
	}
	emit(statusChan, level, "Готово: %d/%d, ошибок: %d", okCount, len(pairs), errCount)
}

// forceFormat переводит значение селектора формата в аргумент rebind:
// "auto" означает "по расширению NEW".
func forceFormat(format string) string {
	if format == "auto" {
		return ""
	}
	return format
}

// CheckFolders быстро проверяет обе папки перед запуском операции:
// ошибки папок всплывают оператору до старта, а не из фонового воркера.
func CheckFolders(oldDir, newDir string) error {
	if _, err := rebind.ListImagesRaw(oldDir); err != nil {
		return fmt.Errorf("OLD: %w", err)
	}
	if _, err := rebind.ListImagesRaw(newDir); err != nil {
		return fmt.Errorf("NEW: %w", err)
	}
	return nil
}
