package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/engine"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/render/term"
)

const (
	// viewFrameInterval paces the viewer's animation frames.
	viewFrameInterval = time.Second / 30

	// cellWidth is the simulation width of one terminal column. A row is
	// twice as tall.
	cellWidth = 6.0

	// wheelDelta is the pixel delta one wheel notch reports.
	wheelDelta = 100.0
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		watchFS bool
		save    string
	)
	defaults := defaultOptions()

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "Explore a graph interactively in the terminal",
		Long: `Explore a graph interactively in the terminal.

The simulation fills the terminal and runs live. Drag a node to move it
(it stays pinned where you drop it), drag the background to pan, scroll to
zoom. Hovering shows the node's label; clicking selects it.

Keys: q quit, r reheat, 0 reset zoom, l toggle labels, s save the layout,
? help. With --watch, saving the data file updates the view in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, bindLayoutFlags, bindStyleFlags, bindInteractFlags)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), args[0], opts, watchFS, save)
		},
	}

	cmd.Flags().BoolVarP(&watchFS, "watch", "w", false, "reload the graph when the file changes")
	cmd.Flags().StringVar(&save, "save", "", "layout file written by the s key (default: <input>.layout.json)")
	bindLayoutFlags(cmd.Flags(), defaults)
	bindStyleFlags(cmd.Flags(), defaults)
	bindInteractFlags(cmd.Flags(), defaults)

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, opts pipeline.Options, watchFS bool, save string) error {
	if watchFS && pipeline.IsRemote(input) {
		return fmt.Errorf("--watch needs a local file, got %s", input)
	}
	in, err := pipeline.LoadContext(ctx, input)
	if err != nil {
		return err
	}
	if save == "" {
		save = strings.TrimSuffix(in.Path, filepath.Ext(in.Path)) + ".layout.json"
		save = strings.Replace(save, ".layout.layout.json", ".layout.json", 1)
	}

	m := newViewModel(in, opts, save)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	if watchFS {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		// The terminal belongs to the viewer, so the watcher stays quiet
		// and reports through the status line.
		go watchGraph(watchCtx, log.New(io.Discard), input, func(in pipeline.Input, err error) {
			p.Send(reloadMsg{graph: in.Graph, err: err})
		})
	}

	final, err := p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	vm := final.(*viewModel)
	if vm.err != nil {
		return vm.err
	}
	if vm.eng != nil {
		st := vm.eng.Stats()
		c.Logger.Debug("viewer closed", "ticks", st.Ticks, "frames", st.Frames)
	}
	return nil
}

// =============================================================================
// Key Map
// =============================================================================

type viewKeyMap struct {
	Quit   key.Binding
	Reheat key.Binding
	Reset  key.Binding
	Labels key.Binding
	Save   key.Binding
	Help   key.Binding
}

func defaultViewKeys() viewKeyMap {
	return viewKeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
		Reheat: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat")),
		Reset:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		Labels: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "labels")),
		Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save layout")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Reheat, k.Reset, k.Help}
}

// FullHelp implements help.KeyMap.
func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help},
		{k.Reheat, k.Reset},
		{k.Labels, k.Save},
	}
}

// =============================================================================
// Model
// =============================================================================

type frameMsg time.Time

type reloadMsg struct {
	graph graph.Graph
	err   error
}

// viewModel owns one engine driven by the Manual scheduler: frames run on
// bubbletea's goroutine from tea.Tick, so the engine, the canvas and the
// callbacks never race.
type viewModel struct {
	name string
	save string
	g    graph.Graph
	opts pipeline.Options

	eng    *engine.Engine
	canvas *term.Canvas
	keys   viewKeyMap
	help   help.Model

	cols, rows     int
	frameW, frameH float64
	ticking        bool
	labels         bool

	hovered  string
	selected string
	status   string
	err      error
}

func newViewModel(in pipeline.Input, opts pipeline.Options, save string) *viewModel {
	return &viewModel{
		name:   filepath.Base(in.Path),
		save:   save,
		g:      in.Graph,
		opts:   opts,
		canvas: term.NewCanvas(0, 0),
		keys:   defaultViewKeys(),
		help:   help.New(),
		labels: opts.Labels,
	}
}

func (m *viewModel) Init() tea.Cmd { return nil }

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.help.Width = msg.Width
		if err := m.layout(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, m.kick()

	case frameMsg:
		if m.eng == nil || !m.eng.Frame() {
			m.ticking = false
			return m, nil
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if ev, ok := m.pointer(msg); ok && m.eng != nil {
			m.eng.Dispatch(ev)
			return m, m.kick()
		}

	case reloadMsg:
		if msg.err == nil && m.eng != nil {
			msg.err = m.eng.Replace(msg.graph)
		}
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
			return m, nil
		}
		m.g = msg.graph
		m.status = fmt.Sprintf("reloaded %d nodes", len(msg.graph.Nodes))
		return m, m.kick()
	}
	return m, nil
}

func (m *viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if err := m.layout(); err != nil {
			m.err = err
			return m, tea.Quit
		}
	case m.eng == nil:
	case key.Matches(msg, m.keys.Reheat):
		m.eng.Reheat(interact.DefaultReheatAlpha)
		return m, m.kick()
	case key.Matches(msg, m.keys.Reset):
		m.eng.ResetView()
	case key.Matches(msg, m.keys.Labels):
		m.labels = !m.labels
		m.canvas.SetLabels(m.labels)
		m.eng.Redraw()
	case key.Matches(msg, m.keys.Save):
		if err := graph.WriteLayoutFile(m.eng.Layout(), m.save); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved " + m.save
		}
	}
	return m, nil
}

// layout sizes the canvas to the terminal minus the status lines, and
// starts the engine on the first usable size.
func (m *viewModel) layout() error {
	rows := m.rows - lipgloss.Height(m.footer())
	if m.cols < 1 || rows < 1 {
		m.canvas.Resize(0, 0)
		return nil
	}
	m.canvas.Resize(m.cols, rows)
	if m.eng == nil {
		return m.start()
	}
	m.eng.Redraw()
	return nil
}

// start builds the engine with the simulation sized to the canvas. Later
// resizes scale the drawing rather than the simulation.
func (m *viewModel) start() error {
	opts := m.opts
	opts.Width, opts.Height = m.canvas.ScreenSize(cellWidth)
	eo, err := opts.EngineOptions()
	if err != nil {
		return err
	}
	eo.Scheduler = &engine.Manual{}
	eo.Callbacks = m.callbacks()

	eng, err := engine.New(m.g, eo)
	if err != nil {
		return err
	}
	m.canvas.SetLabels(m.labels)
	m.frameW, m.frameH = opts.Width, opts.Height
	m.eng = eng
	return eng.Mount(m.canvas)
}

func (m *viewModel) callbacks() interact.Callbacks {
	return interact.CallbackFuncs{
		NodeClick: func(n *graph.Node, _ interact.Event) {
			m.selected = n.DisplayLabel()
		},
		NodeHover: func(n *graph.Node, _ interact.Event) {
			m.hovered = ""
			if n != nil {
				m.hovered = n.DisplayLabel()
			}
		},
		LinkClick: func(l *graph.Link, _ interact.Event) {
			m.selected = l.Source + " → " + l.Target
		},
	}
}

// kick starts the frame loop unless it is already running.
func (m *viewModel) kick() tea.Cmd {
	if m.ticking || m.eng == nil {
		return nil
	}
	m.ticking = true
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(viewFrameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// pointer maps a mouse message to a pointer event in frame pixels. The
// pointer leaves when it moves onto the status lines; a release there
// still ends the press.
func (m *viewModel) pointer(msg tea.MouseMsg) (interact.Event, bool) {
	cols, rows := m.canvas.Size()
	if cols == 0 || rows == 0 {
		return interact.Event{}, false
	}
	x, y := m.canvas.ToScreen(&render.Frame{Width: m.frameW, Height: m.frameH}, msg.X, msg.Y)
	ev := interact.Event{X: x, Y: y, Button: interact.ButtonLeft, Time: time.Now()}

	if msg.Y >= rows {
		ev.Kind = interact.PointerLeave
		if msg.Action == tea.MouseActionRelease {
			ev.Kind = interact.PointerUp
		}
		return ev, true
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Kind, ev.DeltaY = interact.Wheel, -wheelDelta
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Kind, ev.DeltaY = interact.Wheel, wheelDelta
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ev.Kind = interact.PointerDown
	case msg.Action == tea.MouseActionRelease:
		ev.Kind = interact.PointerUp
	case msg.Action == tea.MouseActionMotion:
		ev.Kind = interact.PointerMove
	default:
		return interact.Event{}, false
	}
	return ev, true
}

// =============================================================================
// View
// =============================================================================

var (
	viewBarStyle   = lipgloss.NewStyle().Foreground(colorGray)
	viewNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	viewFocusStyle = lipgloss.NewStyle().Foreground(colorWhite)
	viewErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

func (m *viewModel) View() string {
	if m.eng == nil {
		return StyleDim.Render("waiting for the terminal size...")
	}
	return m.canvas.String() + "\n" + m.footer()
}

// footer is the status line plus help.
func (m *viewModel) footer() string {
	return m.statusLine() + "\n" + m.help.View(m.keys)
}

func (m *viewModel) statusLine() string {
	parts := []string{viewNameStyle.Render(m.name)}
	if m.eng != nil {
		st := m.eng.Stats()
		state := "settled"
		if st.Active {
			state = fmt.Sprintf("α %.3f", st.Alpha)
		}
		parts = append(parts,
			fmt.Sprintf("%d nodes", st.Nodes),
			fmt.Sprintf("%d links", st.Links),
			state,
			fmt.Sprintf("zoom %.2f×", st.Scale))
	}
	if m.hovered != "" {
		parts = append(parts, viewFocusStyle.Render("hover "+m.hovered))
	}
	if m.selected != "" {
		parts = append(parts, viewFocusStyle.Render("selected "+m.selected))
	}
	if m.status != "" {
		style := viewBarStyle
		if strings.Contains(m.status, "failed") {
			style = viewErrStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	line := strings.Join(parts, viewBarStyle.Render(" · "))
	return lipgloss.NewStyle().MaxWidth(max(m.cols, 1)).Render(line)
}
