package rebind

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFolderNotFound  = errors.New("папка не найдена")
	ErrNotAFolder      = errors.New("путь не является папкой")
	ErrNoPairableFiles = errors.New("нет файлов для пар")
)

// DefaultImageExts покрывает форматы скриншотов Steam.
var DefaultImageExts = []string{".jpg", ".jpeg", ".png"}

// ListImagesRaw возвращает файлы изображений из папки в том порядке,
// в котором их отдаёт ОС (без сортировки). Подпапки (thumbnails и прочие)
// не просматриваются.
func ListImagesRaw(dir string, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultImageExts
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = struct{}{}
	}

	f, err := os.Open(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, dir)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFolder, dir)
	}

	// os.ReadDir сортирует по имени, а нам нужен нативный порядок каталога.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// ScanOldNew сканирует папки OLD и NEW и готовит полные списки файлов.
// Урезание до min и предупреждения о лишних файлах делает BuildPairs.
func ScanOldNew(oldDir, newDir string) (oldFiles, newFiles []string, warnings []string, err error) {
	oldFiles, err = ListImagesRaw(oldDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("OLD: %w", err)
	}
	newFiles, err = ListImagesRaw(newDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("NEW: %w", err)
	}

	if len(oldFiles) == 0 {
		warnings = append(warnings, "Папка OLD пуста")
	}
	if len(newFiles) == 0 {
		warnings = append(warnings, "Папка NEW пуста")
	}
	return oldFiles, newFiles, warnings, nil
}
