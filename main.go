package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"termemu/config"
	"termemu/ui"
)

// ConfigReloadEvent carries a freshly loaded config to the main event loop.
type ConfigReloadEvent struct {
	tcell.EventTime
	Cfg *config.Config
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	shell := cfg.Shell
	if len(os.Args) > 1 {
		shell = os.Args[1]
	}

	if err := run(cfg, shell); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, shell string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	width, height := screen.Size()
	term := ui.NewTerminal(screen, shell, height-1, width, cfg.Scrollback)
	term.Theme = cfg.GetTheme()
	term.SetFocused(true)
	defer term.Close()

	watcher, err := config.Watch(func(next *config.Config) {
		ev := &ConfigReloadEvent{Cfg: next}
		ev.SetEventNow()
		screen.PostEvent(ev)
	})
	if err == nil && watcher != nil {
		defer watcher.Close()
	}

	title := ""
	draw := func() {
		term.Render(screen, 0, 0, width, height)
		drawTitleBar(screen, term.Theme, title, width)
		screen.Show()
	}
	draw()

	for {
		switch ev := screen.PollEvent().(type) {
		case *ui.TermOutputEvent:
			term.ProcessOutput(ev.Data)
			draw()
		case *ui.TermTitleEvent:
			title = ev.Title
			draw()
		case *ui.TermClosedEvent:
			return nil
		case *ConfigReloadEvent:
			term.Theme = ev.Cfg.GetTheme()
			draw()
		case *tcell.EventResize:
			width, height = ev.Size()
			term.Resize(height-1, width)
			screen.Sync()
			draw()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ {
				return nil
			}
			if ev.Key() == tcell.KeyCtrlY && term.CopySelection() {
				draw()
				continue
			}
			if ev.Key() == tcell.KeyCtrlV {
				term.PasteClipboard()
				continue
			}
			term.HandleKey(ev)
		case *tcell.EventMouse:
			term.HandleMouse(ev)
			draw()
		case nil:
			return nil
		}
	}
}

// drawTitleBar paints the child's window title over the widget's separator
// row.
func drawTitleBar(screen tcell.Screen, theme *config.ColorScheme, title string, width int) {
	if theme == nil || title == "" {
		return
	}
	st := tcell.StyleDefault.Background(theme.TitleBarBg).Foreground(theme.TitleBarFg)
	col := 2
	for _, ch := range " " + title + " " {
		if col >= width {
			break
		}
		screen.SetContent(col, 0, ch, nil, st)
		col++
	}
}
