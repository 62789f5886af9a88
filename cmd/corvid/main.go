package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"

	"github.com/corvidterm/corvid/internal/config"
	"github.com/corvidterm/corvid/internal/encode"
	"github.com/corvidterm/corvid/internal/logging"
	"github.com/corvidterm/corvid/internal/session"
	"github.com/corvidterm/corvid/internal/term"
	"github.com/corvidterm/corvid/gpu"
	"github.com/corvidterm/corvid/render"
	"github.com/corvidterm/corvid/window"
)

var version = "dev"

var (
	shellOverride string
	initialCols   int
	initialRows   int
	themeOverride string
	fontSize      float32
)

var rootCmd = &cobra.Command{
	Use:   "corvid",
	Short: "Corvid - a GPU-accelerated terminal emulator",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&shellOverride, "shell", "", "shell binary to launch (overrides config)")
	rootCmd.Flags().IntVar(&initialCols, "cols", 0, "initial column count (0 = derive from window size)")
	rootCmd.Flags().IntVar(&initialRows, "rows", 0, "initial row count (0 = derive from window size)")
	rootCmd.Flags().StringVar(&themeOverride, "theme", "", "theme name override (overrides config; disables live theme reload)")
	rootCmd.Flags().Float32Var(&fontSize, "font-size", 0, "font size in points (0 = use config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("corvid " + version)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.New("main")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if shellOverride != "" {
		cfg.Shell.Path = shellOverride
	}
	if fontSize > 0 {
		cfg.FontSize = fontSize
	}

	overrides, err := config.LoadKeybindingOverrides()
	if err != nil {
		log.Printf("keybinding overrides unavailable: %v", err)
		overrides = config.DefaultKeybindingOverrides()
	}

	win, err := window.New(window.Config{Width: 900, Height: 600, Title: "Corvid"})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()

	renderer, err := gpu.NewRenderer(cfg.FontSize)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Destroy()

	width, height := win.GetFramebufferSize()
	renderer.Resize(width, height)
	cols, rows := renderer.CalculateGridSize()
	if initialCols > 0 {
		cols = initialCols
	}
	if initialRows > 0 {
		rows = initialRows
	}
	if cols <= 0 {
		cols = cfg.Cols
	}
	if rows <= 0 {
		rows = cfg.Rows
	}

	sess, err := session.New(cfg, cols, rows)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.Close()

	theme := cfg.Theme
	if themeOverride != "" {
		theme = themeOverride
	}
	palette := newPaletteHolder(render.ThemeByName(theme))

	if themeOverride == "" {
		last := *cfg
		watcher, err := config.Watch(func(reloaded *config.Config) {
			if reloaded.Theme != last.Theme {
				log.Printf("theme changed: %s -> %s", last.Theme, reloaded.Theme)
				palette.Set(render.ThemeByName(reloaded.Theme))
			}
			if reloaded.Shell.Path != last.Shell.Path {
				log.Printf("shell path changed to %s; restart to apply", reloaded.Shell.Path)
			}
			if reloaded.FontSize != last.FontSize || reloaded.Cols != last.Cols || reloaded.Rows != last.Rows {
				log.Printf("font size / grid dimensions changed; restart to apply")
			}
			last = *reloaded
		})
		if err != nil {
			log.Printf("config watch unavailable: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	var currentMods glfw.ModifierKey
	cursorVisible := true
	lastBlink := time.Now()
	const blinkInterval = 500 * time.Millisecond

	win.GLFW().SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		currentMods = mods
		if named, ok := namedKeyFor(key); ok {
			ev := term.KeyEvent{Named: named, Modifiers: modifiersFor(mods)}
			_ = sess.Write(encode.EncodeWithOverrides(ev, overrides.Overrides, sess.AppCursorKeys()))
		}
	})

	win.GLFW().SetCharCallback(func(w *glfw.Window, char rune) {
		ev := term.KeyEvent{Char: char, Modifiers: modifiersFor(currentMods)}
		_ = sess.Write(encode.Encode(ev, sess.AppCursorKeys()))
	})

	win.GLFW().SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		renderer.Resize(width, height)
		cols, rows := renderer.CalculateGridSize()
		if cols > 0 && rows > 0 {
			sess.Resize(cols, rows)
		}
	})

	const frameInterval = time.Millisecond * 16

	for !win.ShouldClose() {
		frameStart := time.Now()
		window.PollEvents()

		select {
		case <-sess.Dirty():
		default:
		}

		if time.Since(lastBlink) >= blinkInterval {
			cursorVisible = !cursorVisible
			lastBlink = time.Now()
		}

		pal := palette.Get()
		snap := sess.Snapshot()
		overlays := render.Overlays{
			CursorRow:     snap.CursorRow,
			CursorCol:     snap.CursorCol,
			CursorVisible: snap.CursorVisible && cursorVisible,
		}
		cmds := render.Generate(snap, overlays, pal)
		renderer.Render(cmds, pal.DefaultBg)

		win.SwapBuffers()

		if elapsed := time.Since(frameStart); elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
		}

		if sess.HasExited() {
			win.SetShouldClose(true)
		}
	}

	return nil
}

// paletteHolder lets the config watcher goroutine swap the active
// palette while the render loop reads it every frame.
type paletteHolder struct {
	mu sync.RWMutex
	p  *term.Palette
}

func newPaletteHolder(p *term.Palette) *paletteHolder {
	return &paletteHolder{p: p}
}

func (h *paletteHolder) Get() *term.Palette {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.p
}

func (h *paletteHolder) Set(p *term.Palette) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.p = p
}

func modifiersFor(mods glfw.ModifierKey) term.Modifiers {
	return term.Modifiers{
		Shift: mods&glfw.ModShift != 0,
		Ctrl:  mods&glfw.ModControl != 0,
		Alt:   mods&glfw.ModAlt != 0,
	}
}

func namedKeyFor(key glfw.Key) (term.NamedKey, bool) {
	switch key {
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return term.KeyEnter, true
	case glfw.KeyTab:
		return term.KeyTab, true
	case glfw.KeyEscape:
		return term.KeyEscape, true
	case glfw.KeyBackspace:
		return term.KeyBackspace, true
	case glfw.KeyDelete:
		return term.KeyDelete, true
	case glfw.KeyUp:
		return term.KeyArrowUp, true
	case glfw.KeyDown:
		return term.KeyArrowDown, true
	case glfw.KeyLeft:
		return term.KeyArrowLeft, true
	case glfw.KeyRight:
		return term.KeyArrowRight, true
	case glfw.KeyHome:
		return term.KeyHome, true
	case glfw.KeyEnd:
		return term.KeyEnd, true
	case glfw.KeyPageUp:
		return term.KeyPageUp, true
	case glfw.KeyPageDown:
		return term.KeyPageDown, true
	}
	return term.KeyNone, false
}
