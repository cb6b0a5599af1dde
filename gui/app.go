package gui

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/RizzZzz09/steam-screenshot-rebinder/automation"
	"github.com/RizzZzz09/steam-screenshot-rebinder/rebind"
)

const configFile = "config.json"

const (
	opPreview = "Предпросмотр"
	opReplace = "Замена"
	opCapture = "Автосъёмка"
)

type App struct {
	window     *app.Window
	theme      *material.Theme
	config     automation.Config
	statusChan chan automation.Status

	logMutex  sync.Mutex
	logBuffer []string
	maxLogs   int

	previewBtn widget.Clickable
	replaceBtn widget.Clickable
	captureBtn widget.Clickable
	stopBtn    widget.Clickable

	oldDirEditor   widget.Editor
	newDirEditor   widget.Editor
	limitEditor    widget.Editor
	countEditor    widget.Editor
	intervalEditor widget.Editor
	delayEditor    widget.Editor
	keyEditor      widget.Editor

	formatEnum  widget.Enum
	dryRunCheck widget.Bool

	opMutex      sync.Mutex
	running      bool
	activeOp     string
	cancelFn     context.CancelFunc
	replaceQueue []rebind.Pair
}

func NewApp() *App {
	config, err := automation.LoadConfig(configFile)
	if err != nil {
		log.Printf("Не удалось загрузить конфиг, использую значения по умолчанию: %v", err)
		config = automation.DefaultConfig()
	}

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	a := &App{
		window:     app.NewWindow(app.Title("Steam Screenshot Rebinder"), app.Size(unit.Dp(900), unit.Dp(700))),
		theme:      th,
		config:     config,
		statusChan: make(chan automation.Status, 100),
		logBuffer:  make([]string, 0, 200),
		maxLogs:    200,
	}

	for _, e := range []*widget.Editor{
		&a.oldDirEditor, &a.newDirEditor, &a.limitEditor,
		&a.countEditor, &a.intervalEditor, &a.delayEditor, &a.keyEditor,
	} {
		e.SingleLine = true
	}

	a.oldDirEditor.SetText(config.OldDir)
	a.newDirEditor.SetText(config.NewDir)
	a.limitEditor.SetText(fmt.Sprintf("%d", config.PreviewLimit))
	a.countEditor.SetText(fmt.Sprintf("%d", config.CaptureCount))
	a.intervalEditor.SetText(fmt.Sprintf("%g", config.CaptureInterval))
	a.delayEditor.SetText(fmt.Sprintf("%g", config.CaptureStartDelay))
	a.keyEditor.SetText(config.CaptureKey)

	a.formatEnum.Value = config.Format
	a.dryRunCheck.Value = config.DryRun

	return a
}

func (a *App) Run() error {
	var ops op.Ops

	go func() {
		for status := range a.statusChan {
			logLine := fmt.Sprintf("[%s] %s",
				status.Timestamp.Format("15:04:05"),
				status.Message)

			a.logMutex.Lock()
			a.logBuffer = append(a.logBuffer, logLine)
			if len(a.logBuffer) > a.maxLogs {
				a.logBuffer = a.logBuffer[1:]
			}
			a.logMutex.Unlock()

			a.window.Invalidate()
		}
	}()

	for {
		e := a.window.NextEvent()
		switch e := e.(type) {
		case app.DestroyEvent:
			a.stopOperation()
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) isRunning() bool {
	a.opMutex.Lock()
	defer a.opMutex.Unlock()
	return a.running
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.header(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.pathsPanel(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.optionsPanel(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.capturePanel(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.controls(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.logView(gtx)
		}),
	)
}

func (a *App) header(gtx layout.Context) layout.Dimensions {
	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis:    layout.Vertical,
			Spacing: layout.SpaceEnd,
		}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				title := material.H5(a.theme, "Steam Screenshot Rebinder")
				title.Alignment = text.Middle
				return title.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				subtitle := material.Body2(a.theme, "Привязка старых скриншотов к именам файлов Steam + автосъёмка")
				subtitle.Alignment = text.Middle
				subtitle.Color = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
				return subtitle.Layout(gtx)
			}),
		)
	})
}

func (a *App) pathsPanel(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis: layout.Vertical,
		}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Папка OLD:", &a.oldDirEditor, 560)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Папка NEW (screenshots):", &a.newDirEditor, 560)
			}),
		)
	})
}

func (a *App) optionsPanel(gtx layout.Context) layout.Dimensions {
	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis:      layout.Horizontal,
			Alignment: layout.Middle,
		}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := material.Body2(a.theme, "Формат:")
				label.Font.Weight = font.Bold
				return label.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.isRunning() {
					gtx = gtx.Disabled()
				}
				return material.RadioButton(a.theme, &a.formatEnum, "auto", "auto").Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.isRunning() {
					gtx = gtx.Disabled()
				}
				return material.RadioButton(a.theme, &a.formatEnum, "jpg", "JPG").Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.isRunning() {
					gtx = gtx.Disabled()
				}
				return material.RadioButton(a.theme, &a.formatEnum, "png", "PNG").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(24)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.isRunning() {
					gtx = gtx.Disabled()
				}
				return material.CheckBox(a.theme, &a.dryRunCheck, "Dry-run").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(24)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Предпросмотр (строк):", &a.limitEditor, 60)
			}),
		)
	})
}

func (a *App) capturePanel(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis:      layout.Horizontal,
			Alignment: layout.Middle,
		}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := material.Body2(a.theme, "Автосъёмка:")
				label.Font.Weight = font.Bold
				return label.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Снимков:", &a.countEditor, 60)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Интервал (сек):", &a.intervalEditor, 60)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Задержка (сек):", &a.delayEditor, 60)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.inputField(gtx, "Клавиша:", &a.keyEditor, 60)
			}),
		)
	})
}

func (a *App) controls(gtx layout.Context) layout.Dimensions {
	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis:      layout.Horizontal,
			Spacing:   layout.SpaceEvenly,
			Alignment: layout.Middle,
		}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.previewBtn.Clicked(gtx) {
					a.startPreview()
				}
				btn := material.Button(a.theme, &a.previewBtn, "ПРЕДПРОСМОТР")
				btn.Background = color.NRGBA{R: 0, G: 100, B: 180, A: 255}
				if a.isRunning() {
					btn.Background = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
					gtx = gtx.Disabled()
				}
				return btn.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.replaceBtn.Clicked(gtx) {
					a.startReplace()
				}
				btn := material.Button(a.theme, &a.replaceBtn, "ЗАМЕНИТЬ")
				btn.Background = color.NRGBA{R: 0, G: 150, B: 0, A: 255}
				if a.isRunning() || !a.hasQueue() {
					btn.Background = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
					gtx = gtx.Disabled()
				}
				return btn.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.captureBtn.Clicked(gtx) {
					a.startCapture()
				}
				btn := material.Button(a.theme, &a.captureBtn, "АВТОСЪЁМКА")
				btn.Background = color.NRGBA{R: 150, G: 90, B: 0, A: 255}
				if a.isRunning() {
					btn.Background = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
					gtx = gtx.Disabled()
				}
				return btn.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.stopBtn.Clicked(gtx) {
					a.stopOperation()
				}
				btn := material.Button(a.theme, &a.stopBtn, "СТОП")
				btn.Background = color.NRGBA{R: 200, G: 0, B: 0, A: 255}
				if !a.isRunning() {
					btn.Background = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
					gtx = gtx.Disabled()
				}
				return btn.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(24)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				a.opMutex.Lock()
				status := "Простой"
				statusColor := color.NRGBA{R: 100, G: 100, B: 100, A: 255}
				if a.running {
					status = a.activeOp
					statusColor = color.NRGBA{R: 0, G: 150, B: 0, A: 255}
				}
				a.opMutex.Unlock()
				label := material.H6(a.theme, fmt.Sprintf("Статус: %s", status))
				label.Color = statusColor
				return label.Layout(gtx)
			}),
		)
	})
}

func (a *App) inputField(gtx layout.Context, label string, editor *widget.Editor, width int) layout.Dimensions {
	return layout.Flex{
		Axis:      layout.Horizontal,
		Alignment: layout.Middle,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(a.theme, label)
			lbl.Color = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if a.isRunning() {
				gtx = gtx.Disabled()
			}
			gtx.Constraints.Min.X = gtx.Dp(unit.Dp(width))
			gtx.Constraints.Max.X = gtx.Dp(unit.Dp(width))
			e := material.Editor(a.theme, editor, "")
			e.Color = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
			return e.Layout(gtx)
		}),
	)
}

func (a *App) logView(gtx layout.Context) layout.Dimensions {
	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{
			Axis: layout.Vertical,
		}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := material.Body2(a.theme, "Лог событий:")
				label.Font.Weight = font.Bold
				return label.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return a.renderLogs(gtx)
			}),
		)
	})
}

func (a *App) renderLogs(gtx layout.Context) layout.Dimensions {
	a.logMutex.Lock()
	logText := ""
	start := 0
	if len(a.logBuffer) > 30 {
		start = len(a.logBuffer) - 30
	}
	for i := start; i < len(a.logBuffer); i++ {
		logText += a.logBuffer[i] + "\n"
	}
	a.logMutex.Unlock()

	if logText == "" {
		logText = "Укажите папки OLD и NEW и нажмите ПРЕДПРОСМОТР.\n\n" +
			"Порядок работы:\n" +
			"- АВТОСЪЁМКА нажимает клавишу Steam (по умолчанию F12) по таймеру\n" +
			"- ПРЕДПРОСМОТР строит пары OLD → NEW по порядку папок\n" +
			"- ЗАМЕНИТЬ переносит содержимое OLD в файлы NEW, имена сохраняются\n" +
			"- Dry-run проверяет всё без записи на диск"
	}

	label := material.Body2(a.theme, logText)
	label.Font.Typeface = "monospace"
	return label.Layout(gtx)
}

func (a *App) pushStatus(level, format string, args ...any) {
	a.statusChan <- automation.Status{
		Timestamp: time.Now(),
		Message:   fmt.Sprintf(format, args...),
		Level:     level,
	}
}

func (a *App) applySettings() {
	a.config.OldDir = strings.Trim(strings.TrimSpace(a.oldDirEditor.Text()), `"`)
	a.config.NewDir = strings.Trim(strings.TrimSpace(a.newDirEditor.Text()), `"`)

	if a.formatEnum.Value != "" {
		a.config.Format = a.formatEnum.Value
	}
	a.config.DryRun = a.dryRunCheck.Value

	if limit, err := strconv.Atoi(a.limitEditor.Text()); err == nil && limit > 0 {
		a.config.PreviewLimit = limit
	}
	if count, err := strconv.Atoi(a.countEditor.Text()); err == nil {
		a.config.CaptureCount = count
	}
	if interval, err := strconv.ParseFloat(a.intervalEditor.Text(), 64); err == nil {
		a.config.CaptureInterval = interval
	}
	if delay, err := strconv.ParseFloat(a.delayEditor.Text(), 64); err == nil {
		a.config.CaptureStartDelay = delay
	}
	if key := strings.TrimSpace(a.keyEditor.Text()); key != "" {
		a.config.CaptureKey = strings.ToLower(key)
	}

	if err := a.config.Save(configFile); err != nil {
		log.Printf("Ошибка сохранения конфигурации: %v", err)
	}
}

// beginOperation отмечает начало фоновой операции. Одновременно может
// работать только одна: повторный запуск отклоняется.
func (a *App) beginOperation(name string) (context.Context, bool) {
	a.opMutex.Lock()
	defer a.opMutex.Unlock()
	if a.running {
		a.pushStatus(automation.LevelWarning, "Операция «%s» уже выполняется, дождитесь завершения", a.activeOp)
		return nil, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.running = true
	a.activeOp = name
	a.cancelFn = cancel
	return ctx, true
}

func (a *App) finishOperation() {
	a.opMutex.Lock()
	if a.cancelFn != nil {
		a.cancelFn()
		a.cancelFn = nil
	}
	a.running = false
	a.activeOp = ""
	a.opMutex.Unlock()
	a.window.Invalidate()
}

func (a *App) hasQueue() bool {
	a.opMutex.Lock()
	defer a.opMutex.Unlock()
	return len(a.replaceQueue) > 0
}

func (a *App) startPreview() {
	a.applySettings()

	if err := automation.CheckFolders(a.config.OldDir, a.config.NewDir); err != nil {
		a.pushStatus(automation.LevelError, "Ошибка: %v", err)
		return
	}

	ctx, ok := a.beginOperation(opPreview)
	if !ok {
		return
	}

	cfg := a.config
	go func() {
		defer a.finishOperation()
		pairs, ok := automation.RunPreview(ctx, cfg, a.statusChan)
		a.opMutex.Lock()
		if ok {
			a.replaceQueue = pairs
		} else {
			a.replaceQueue = nil
		}
		a.opMutex.Unlock()
	}()

	log.Println("Предпросмотр запущен")
}

func (a *App) startReplace() {
	a.applySettings()

	a.opMutex.Lock()
	queue := a.replaceQueue
	a.opMutex.Unlock()
	if len(queue) == 0 {
		a.pushStatus(automation.LevelWarning, "Сначала сделайте предпросмотр")
		return
	}

	ctx, ok := a.beginOperation(opReplace)
	if !ok {
		return
	}

	cfg := a.config
	go func() {
		defer a.finishOperation()
		automation.RunReplace(ctx, cfg, queue, a.statusChan)
	}()

	log.Println("Замена запущена")
}

func (a *App) startCapture() {
	a.applySettings()

	captureCfg := a.config.Capture()
	if err := captureCfg.Validate(); err != nil {
		a.pushStatus(automation.LevelError, "Ошибка: %v", err)
		return
	}

	ctx, ok := a.beginOperation(opCapture)
	if !ok {
		return
	}

	go func() {
		defer a.finishOperation()
		automation.RunCapture(ctx, captureCfg, a.statusChan, nil)
	}()

	log.Println("Автосъёмка запущена")
}

func (a *App) stopOperation() {
	a.opMutex.Lock()
	if a.cancelFn != nil {
		a.cancelFn()
		a.cancelFn = nil
		log.Println("Операция остановлена")
	}
	a.opMutex.Unlock()
}
