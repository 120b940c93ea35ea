// Package terminal plays a snake session in the terminal with tcell.
//
// The App owns the screen and one driver loop. Key events are translated
// to the browser key names understood by the input package, so the
// terminal, the web page and MCP agents share one set of controls.
package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/snake-arcade/game/driver"
	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/game/input"
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFood   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBonus  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// App renders a driver loop to a tcell screen and feeds it key presses
type App struct {
	screen tcell.Screen
	loop   *driver.Loop
	name   string
}

// New creates an App. The screen must already be initialized.
func New(screen tcell.Screen, loop *driver.Loop, name string) *App {
	return &App{screen: screen, loop: loop, name: name}
}

// Run draws every published state and forwards keys until the player quits,
// ctx is cancelled or the loop stops.
func (a *App) Run(ctx context.Context) error {
	states, unsubscribe := a.loop.Subscribe()
	defer unsubscribe()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// Fini was called
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	a.draw(a.loop.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil
			}

		case state, ok := <-states:
			if !ok {
				return driver.ErrStopped
			}
			a.draw(state)
		}
	}
}

// handleEvent returns false when the player asked to quit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
			return false
		}

		key := KeyName(ev)
		if key == "" {
			return true
		}
		cmd, ok := input.MapKey(key, a.loop.Snapshot())
		if !ok {
			return true
		}
		if err := a.loop.Send(cmd); err != nil {
			log.Debug().Err(err).Str("cmd", cmd.String()).Msg("command dropped")
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.draw(a.loop.Snapshot())
	}

	return true
}

// KeyName converts a tcell key event to the browser key name used by the
// input package; it returns "" for keys that have no meaning in the game
func KeyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "ArrowUp"
	case tcell.KeyDown:
		return "ArrowDown"
	case tcell.KeyLeft:
		return "ArrowLeft"
	case tcell.KeyRight:
		return "ArrowRight"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

// draw renders the board with two terminal columns per cell
func (a *App) draw(state engine.GameState) {
	a.screen.Clear()

	rows := engine.RenderGrid(state)
	width := state.GridSize*2 + 2

	drawText(a.screen, 0, 0, styleText, fmt.Sprintf("%s  score %d  high %d  length %d", a.name, state.Score, state.HighScore, len(state.Snake)))

	for x := 0; x < width; x++ {
		a.screen.SetContent(x, 1, '-', nil, styleBorder)
		a.screen.SetContent(x, len(rows)+2, '-', nil, styleBorder)
	}
	for y, row := range rows {
		a.screen.SetContent(0, y+2, '|', nil, styleBorder)
		a.screen.SetContent(width-1, y+2, '|', nil, styleBorder)
		for x, ch := range row {
			r, style := cellGlyph(ch)
			a.screen.SetContent(1+x*2, y+2, r, nil, style)
			a.screen.SetContent(2+x*2, y+2, ' ', nil, style)
		}
	}

	statusY := len(rows) + 3
	switch {
	case state.GameOver:
		drawText(a.screen, 0, statusY, styleAlert, "GAME OVER - press r to play again, q to quit")
	case state.IsPaused:
		drawText(a.screen, 0, statusY, styleAlert, "PAUSED - space to resume")
	default:
		drawText(a.screen, 0, statusY, styleText, "arrows/wasd steer, space pause, q quit")
	}

	a.screen.Show()
}

func cellGlyph(ch rune) (rune, tcell.Style) {
	switch ch {
	case '@':
		return '@', styleHead
	case 'o':
		return 'o', styleBody
	case '*':
		return '*', styleFood
	case '$':
		return '$', styleBonus
	}
	return ' ', tcell.StyleDefault
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
