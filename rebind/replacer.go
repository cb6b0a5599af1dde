package rebind

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const jpegQuality = 95

// ReplaceResult описывает итог замены содержимого одной пары.
type ReplaceResult struct {
	Old         string
	New         string
	Action      string // "copy-bytes", "reencode->JPEG", "reencode->PNG", "dry-run", "error"
	BytesBefore int64
	BytesAfter  int64
	OK          bool
	Err         string
}

// targetFormatFor выбирает целевой формат: принудительный, иначе по
// расширению NEW. По умолчанию JPEG — в Steam он встречается чаще.
func targetFormatFor(newPath, forceFormat string) (string, error) {
	switch strings.ToLower(forceFormat) {
	case "jpg", "jpeg":
		return "JPEG", nil
	case "png":
		return "PNG", nil
	case "", "auto":
	default:
		return "", fmt.Errorf("неизвестный формат: %s", forceFormat)
	}

	switch strings.ToLower(filepath.Ext(newPath)) {
	case ".jpg", ".jpeg":
		return "JPEG", nil
	case ".png":
		return "PNG", nil
	}
	return "JPEG", nil
}

// writeAtomic пишет во временный файл рядом с целевым и заменяет его
// через rename, чтобы при сбое не оставить NEW наполовину записанным.
func writeAtomic(dstPath string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), filepath.Base(dstPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func copyBytesAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func reencodeAtomic(src, dst, format string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("не удалось декодировать %s: %w", filepath.Base(src), err)
	}

	return writeAtomic(dst, func(w io.Writer) error {
		switch format {
		case "JPEG":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
		case "PNG":
			return png.Encode(w, img)
		}
		return fmt.Errorf("неподдерживаемый формат назначения: %s", format)
	})
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// ReplaceOne заменяет содержимое NEW содержимым OLD, сохраняя имя NEW.
// При dry-run выполняется только проверка читаемости OLD и определение
// действия; на диск ничего не пишется.
func ReplaceOne(oldPath, newPath, forceFormat string, dryRun bool) ReplaceResult {
	res := ReplaceResult{
		Old:         oldPath,
		New:         newPath,
		BytesBefore: fileSize(newPath),
	}
	res.BytesAfter = res.BytesBefore

	fail := func(err error) ReplaceResult {
		res.Action = "error"
		res.Err = err.Error()
		return res
	}

	if _, err := os.Stat(oldPath); err != nil {
		return fail(fmt.Errorf("OLD не найден: %s", filepath.Base(oldPath)))
	}
	if _, err := os.Stat(newPath); err != nil {
		return fail(fmt.Errorf("NEW не найден: %s", filepath.Base(newPath)))
	}

	targetFormat, err := targetFormatFor(newPath, forceFormat)
	if err != nil {
		return fail(err)
	}

	oldInfo, infoErr := GetImageInfo(oldPath)

	if dryRun {
		if infoErr != nil {
			return fail(infoErr)
		}
		res.Action = "dry-run"
		res.OK = true
		return res
	}

	forced := forceFormat != "" && !strings.EqualFold(forceFormat, "auto")
	if infoErr == nil && oldInfo.Format == targetFormat && !forced {
		if err := copyBytesAtomic(oldPath, newPath); err != nil {
			return fail(err)
		}
		res.Action = "copy-bytes"
	} else {
		// OLD не прочитался заголовком или формат не совпал: пробуем
		// перекодировать, ошибки декодирования всплывут здесь.
		if err := reencodeAtomic(oldPath, newPath, targetFormat); err != nil {
			return fail(err)
		}
		res.Action = "reencode->" + targetFormat
	}

	res.BytesAfter = fileSize(newPath)
	res.OK = true
	return res
}

// ReplaceMany применяет ReplaceOne ко всем парам по порядку. Ошибка одной
// пары не прерывает остальные.
func ReplaceMany(pairs []Pair, forceFormat string, dryRun bool) []ReplaceResult {
	results := make([]ReplaceResult, 0, len(pairs))
	for _, p := range pairs {
		results = append(results, ReplaceOne(p.Old, p.New, forceFormat, dryRun))
	}
	return results
}
