package rebind

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
)

// Pair связывает файл-источник (контент берётся из Old) с файлом-приёмником
// (имя и расположение New сохраняются). Связь строго позиционная.
type Pair struct {
	Old string
	New string
}

// ImageInfo хранит базовые сведения об изображении для предпросмотра.
type ImageInfo struct {
	Path      string
	Width     int
	Height    int
	Format    string // "JPEG", "PNG"
	SizeBytes int64
}

// GetImageInfo читает заголовок изображения, не декодируя пиксели целиком.
func GetImageInfo(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("не удалось прочитать изображение %s: %w", filepath.Base(path), err)
	}
	info, err := f.Stat()
	if err != nil {
		return ImageInfo{}, err
	}
	return ImageInfo{
		Path:      path,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    strings.ToUpper(format),
		SizeBytes: info.Size(),
	}, nil
}

// BuildPairs формирует пары позиционно: i-й OLD с i-м NEW, без сортировки
// и без сопоставления по именам. Количество пар = min(OLD, NEW), либо n,
// если n > 0 и меньше. Лишние файлы не ошибка: о них сообщается
// предупреждением.
func BuildPairs(oldFiles, newFiles []string, n int, strictEqual bool) ([]Pair, []string, error) {
	if strictEqual && len(oldFiles) != len(newFiles) {
		return nil, nil, fmt.Errorf("количество файлов не совпадает: OLD=%d, NEW=%d",
			len(oldFiles), len(newFiles))
	}

	limit := len(oldFiles)
	if len(newFiles) < limit {
		limit = len(newFiles)
	}
	if n > 0 && n < limit {
		limit = n
	}

	var warnings []string
	if excess := len(newFiles) - limit; excess > 0 {
		warnings = append(warnings, fmt.Sprintf("Лишних файлов NEW: %d (игнорируются)", excess))
	}
	if excess := len(oldFiles) - limit; excess > 0 {
		warnings = append(warnings, fmt.Sprintf("Лишних файлов OLD: %d (игнорируются)", excess))
	}
	if len(oldFiles) != len(newFiles) {
		warnings = append(warnings, fmt.Sprintf("Будет использовано пар: %d (OLD=%d, NEW=%d)",
			limit, len(oldFiles), len(newFiles)))
	}

	pairs := make([]Pair, 0, limit)
	for i := 0; i < limit; i++ {
		pairs = append(pairs, Pair{Old: oldFiles[i], New: newFiles[i]})
	}
	return pairs, warnings, nil
}

// PreviewPairs готовит строки предпросмотра для первых limit пар.
// Ошибка чтения отдельной пары попадает в её строку и не прерывает остальные.
func PreviewPairs(pairs []Pair, limit int) []string {
	if limit <= 0 || limit > len(pairs) {
		limit = len(pairs)
	}

	lines := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		p := pairs[i]
		oldInfo, oldErr := GetImageInfo(p.Old)
		newInfo, newErr := GetImageInfo(p.New)
		if oldErr != nil || newErr != nil {
			err := oldErr
			if err == nil {
				err = newErr
			}
			lines = append(lines, fmt.Sprintf("%s <- %s | ошибка чтения: %v",
				filepath.Base(p.New), filepath.Base(p.Old), err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s <- %s | OLD: %dx%d %s, NEW: %dx%d %s",
			filepath.Base(p.New), filepath.Base(p.Old),
			oldInfo.Width, oldInfo.Height, oldInfo.Format,
			newInfo.Width, newInfo.Height, newInfo.Format))
	}
	return lines
}

// ProbeConversionWarnings предупреждает о парах, которые будут перекодированы
// при замене. forceFormat: "jpg", "png" или "" (по расширению NEW).
func ProbeConversionWarnings(pairs []Pair, forceFormat string) []string {
	var warns []string
	ff := strings.ToLower(forceFormat)
	for _, p := range pairs {
		oldInfo, err := GetImageInfo(p.Old)
		if err != nil {
			warns = append(warns, fmt.Sprintf("%s: ошибка чтения для проверки формата: %v",
				filepath.Base(p.New), err))
			continue
		}
		newExt := strings.ToLower(filepath.Ext(p.New))
		switch {
		case ff == "jpg" || ff == "jpeg":
			if oldInfo.Format != "JPEG" {
				warns = append(warns, fmt.Sprintf("%s: принудительно JPEG (OLD был %s)",
					filepath.Base(p.New), oldInfo.Format))
			}
		case ff == "png":
			if oldInfo.Format != "PNG" {
				warns = append(warns, fmt.Sprintf("%s: принудительно PNG (OLD был %s)",
					filepath.Base(p.New), oldInfo.Format))
			}
		default:
			if (newExt == ".jpg" || newExt == ".jpeg") && oldInfo.Format != "JPEG" {
				warns = append(warns, fmt.Sprintf("%s: будет JPEG (OLD был %s)",
					filepath.Base(p.New), oldInfo.Format))
			}
			if newExt == ".png" && oldInfo.Format != "PNG" {
				warns = append(warns, fmt.Sprintf("%s: будет PNG (OLD был %s)",
					filepath.Base(p.New), oldInfo.Format))
			}
		}
	}
	return warns
}
