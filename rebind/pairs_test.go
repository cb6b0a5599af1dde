package rebind

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, w, h int, c color.RGBA, format string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch format {
	case "JPEG":
		require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
	case "PNG":
		require.NoError(t, png.Encode(f, img))
	default:
		t.Fatalf("неизвестный формат фикстуры: %s", format)
	}
}

func makeNames(dir, prefix, ext string, n int) []string {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, filepath.Join(dir, fmt.Sprintf("%s%d%s", prefix, i, ext)))
	}
	return names
}

func TestBuildPairs_CountIsMin(t *testing.T) {
	tests := []struct {
		name      string
		oldCount  int
		newCount  int
		wantPairs int
		wantWarn  string
	}{
		{"поровну", 3, 3, 3, ""},
		{"лишние NEW", 3, 5, 3, "Лишних файлов NEW: 2 (игнорируются)"},
		{"лишние OLD", 4, 1, 1, "Лишних файлов OLD: 3 (игнорируются)"},
		{"NEW пуст", 2, 0, 0, "Лишних файлов OLD: 2 (игнорируются)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldFiles := makeNames("old", "o", ".jpg", tt.oldCount)
			newFiles := makeNames("new", "n", ".jpg", tt.newCount)

			pairs, warnings, err := BuildPairs(oldFiles, newFiles, 0, false)
			require.NoError(t, err)
			require.Len(t, pairs, tt.wantPairs)
			if tt.wantWarn != "" {
				require.Contains(t, warnings, tt.wantWarn)
			} else {
				require.Empty(t, warnings)
			}
		})
	}
}

func TestBuildPairs_Positional(t *testing.T) {
	// Пары строятся по индексу, имена файлов не участвуют.
	oldFiles := []string{"old/zzz.jpg", "old/aaa.jpg", "old/mmm.jpg"}
	newFiles := []string{"new/1.jpg", "new/0.jpg", "new/2.jpg"}

	pairs, _, err := BuildPairs(oldFiles, newFiles, 0, false)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for i, p := range pairs {
		require.Equal(t, oldFiles[i], p.Old)
		require.Equal(t, newFiles[i], p.New)
	}
}

func TestBuildPairs_LimitN(t *testing.T) {
	pairs, _, err := BuildPairs(makeNames("old", "o", ".jpg", 5), makeNames("new", "n", ".jpg", 5), 2, false)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
}

func TestBuildPairs_StrictEqual(t *testing.T) {
	_, _, err := BuildPairs(makeNames("old", "o", ".jpg", 2), makeNames("new", "n", ".jpg", 3), 0, true)
	require.Error(t, err)
	require.ErrorContains(t, err, "не совпадает")
}

func TestGetImageInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.jpg")
	writeImage(t, path, 10, 12, color.RGBA{R: 128, G: 128, B: 128, A: 255}, "JPEG")

	info, err := GetImageInfo(path)
	require.NoError(t, err)
	require.Equal(t, 10, info.Width)
	require.Equal(t, 12, info.Height)
	require.Equal(t, "JPEG", info.Format)
	require.Greater(t, info.SizeBytes, int64(0))
}

func TestGetImageInfo_Unreadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("это не изображение"), 0644))

	_, err := GetImageInfo(path)
	require.Error(t, err)
}

func TestPreviewPairs(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.jpg")
	newPath := filepath.Join(dir, "new.jpg")
	writeImage(t, oldPath, 10, 12, color.RGBA{R: 1, G: 2, B: 3, A: 255}, "JPEG")
	writeImage(t, newPath, 8, 8, color.RGBA{R: 4, G: 5, B: 6, A: 255}, "JPEG")

	lines := PreviewPairs([]Pair{{Old: oldPath, New: newPath}}, 5)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "OLD: 10x12 JPEG")
	require.Contains(t, lines[0], "NEW: 8x8 JPEG")
}

func TestPreviewPairs_LimitAndErrors(t *testing.T) {
	dir := t.TempDir()
	goodOld := filepath.Join(dir, "o1.jpg")
	goodNew := filepath.Join(dir, "n1.jpg")
	brokenOld := filepath.Join(dir, "o2.jpg")
	writeImage(t, goodOld, 4, 4, color.RGBA{A: 255}, "JPEG")
	writeImage(t, goodNew, 4, 4, color.RGBA{A: 255}, "JPEG")
	require.NoError(t, os.WriteFile(brokenOld, []byte("мусор"), 0644))

	pairs := []Pair{
		{Old: goodOld, New: goodNew},
		{Old: brokenOld, New: goodNew},
	}

	lines := PreviewPairs(pairs, 0)
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "ошибка чтения")

	lines = PreviewPairs(pairs, 1)
	require.Len(t, lines, 1)
}

func TestProbeConversionWarnings(t *testing.T) {
	dir := t.TempDir()
	oldPNG := filepath.Join(dir, "old.png")
	oldJPG := filepath.Join(dir, "old.jpg")
	newJPG := filepath.Join(dir, "new.jpg")
	writeImage(t, oldPNG, 4, 4, color.RGBA{A: 255}, "PNG")
	writeImage(t, oldJPG, 4, 4, color.RGBA{A: 255}, "JPEG")

	// Авторежим: PNG-источник в .jpg приёмник будет перекодирован.
	warns := ProbeConversionWarnings([]Pair{{Old: oldPNG, New: newJPG}}, "")
	require.Len(t, warns, 1)
	require.Contains(t, warns[0], "будет JPEG (OLD был PNG)")

	// Совпадающий формат предупреждений не даёт.
	warns = ProbeConversionWarnings([]Pair{{Old: oldJPG, New: newJPG}}, "")
	require.Empty(t, warns)

	// Принудительный PNG при JPEG-источнике.
	warns = ProbeConversionWarnings([]Pair{{Old: oldJPG, New: newJPG}}, "png")
	require.Len(t, warns, 1)
	require.Contains(t, warns[0], "принудительно PNG")
}
