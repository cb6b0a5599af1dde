package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

var ErrInvalidCaptureConfig = errors.New("неверные настройки автосъёмки")

// CaptureConfig описывает цикл автосъёмки: стартовая задержка, затем
// Count нажатий клавиши с интервалом IntervalSec между ними.
type CaptureConfig struct {
	Count         int
	IntervalSec   float64
	StartDelaySec float64
	Key           string
}

func (c CaptureConfig) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("%w: количество снимков должно быть > 0", ErrInvalidCaptureConfig)
	}
	if c.IntervalSec <= 0 {
		return fmt.Errorf("%w: интервал должен быть > 0", ErrInvalidCaptureConfig)
	}
	if c.StartDelaySec < 0 {
		return fmt.Errorf("%w: стартовая задержка должна быть >= 0", ErrInvalidCaptureConfig)
	}
	if c.Key == "" {
		return fmt.Errorf("%w: не задана клавиша", ErrInvalidCaptureConfig)
	}
	return nil
}

func (c CaptureConfig) interval() time.Duration {
	return time.Duration(c.IntervalSec * float64(time.Second))
}

func (c CaptureConfig) startDelay() time.Duration {
	return time.Duration(c.StartDelaySec * float64(time.Second))
}

// KeyPresser отправляет глобальное нажатие клавиши. В тестах подменяется.
type KeyPresser func(key string) error

// PressKey — боевой KeyPresser поверх robotgo.
func PressKey(key string) error {
	return robotgo.KeyTap(key)
}

func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RunCapture выполняет цикл автосъёмки: задержка, затем Count нажатий с
// интервалом. Отмена проверяется на каждой границе и сразу возвращает цикл
// в простой с логом "Остановлено на снимке i/count", где i — число уже
// сделанных нажатий. Неудачное нажатие логируется, цикл продолжается.
func RunCapture(ctx context.Context, cfg CaptureConfig, statusChan chan<- Status, press KeyPresser) {
	if err := cfg.Validate(); err != nil {
		emit(statusChan, LevelError, "Ошибка настроек: %v", err)
		return
	}
	if press == nil {
		press = PressKey
	}

	if cfg.StartDelaySec > 0 {
		emit(statusChan, LevelInfo, "Стартовая задержка: %.1f сек", cfg.StartDelaySec)
	}
	if !sleepOrCancel(ctx, cfg.startDelay()) {
		emit(statusChan, LevelInfo, "Остановлено на снимке 0/%d", cfg.Count)
		return
	}

	for i := 1; i <= cfg.Count; i++ {
		select {
		case <-ctx.Done():
			emit(statusChan, LevelInfo, "Остановлено на снимке %d/%d", i-1, cfg.Count)
			return
		default:
		}

		if err := press(cfg.Key); err != nil {
			emit(statusChan, LevelError, "Снимок %d/%d: ошибка нажатия %s: %v", i, cfg.Count, cfg.Key, err)
		} else {
			emit(statusChan, LevelInfo, "Снимок %d/%d (клавиша %s)", i, cfg.Count, cfg.Key)
		}

		if i == cfg.Count {
			break
		}
		if !sleepOrCancel(ctx, cfg.interval()) {
			emit(statusChan, LevelInfo, "Остановлено на снимке %d/%d", i, cfg.Count)
			return
		}
	}

	emit(statusChan, LevelSuccess, "Готово: снимков %d/%d", cfg.Count, cfg.Count)
}
