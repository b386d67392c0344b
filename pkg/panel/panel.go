// Package panel implements the help panel: a modal that fetches the help
// document once per mount and shows a loading, error or content view.
package panel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/internal/helpclient"
	"github.com/loanbuddy/helpctl/pkg/panel/modal"
)

// Fetcher retrieves the help document. *helpclient.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) (*help.Response, error)
}

// View identifies which of the mutually exclusive views is shown.
type View int

const (
	ViewLoading View = iota
	ViewError
	ViewEmpty
	ViewContent
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewContent:
		return "content"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// LoadedMsg carries the result of the mount's fetch. Gen identifies the
// mount that issued it.
type LoadedMsg struct {
	Gen     uint64
	Content *help.Response
	Err     error
}

// CloseMsg asks the host to dismiss the panel.
type CloseMsg struct{}

// frame overhead: border, vertical padding and the hint line.
const (
	frameVertical = 2 + 2 + 2
	defaultWidth  = 72
)

// Option configures a Panel.
type Option func(*Panel)

// WithWidth sets the modal width.
func WithWidth(w int) Option {
	return func(p *Panel) {
		if w > 0 {
			p.modalWidth = w
		}
	}
}

// WithKeyMap replaces the default keybindings.
func WithKeyMap(k KeyMap) Option {
	return func(p *Panel) { p.keys = k }
}

// Panel is the help panel component. It is not safe for concurrent use; all
// methods run on the Bubble Tea event loop.
type Panel struct {
	fetcher    Fetcher
	keys       KeyMap
	modalWidth int
	width      int
	height     int

	content      *help.Response
	isLoading    bool
	errorMessage string

	mounted bool
	gen     uint64
	cancel  context.CancelFunc

	viewport viewport.Model
	offsets  []int
	filter   filterState
}

// New creates an unmounted panel. It starts in the loading state.
func New(fetcher Fetcher, opts ...Option) *Panel {
	p := &Panel{
		fetcher:    fetcher,
		keys:       DefaultKeyMap(),
		modalWidth: defaultWidth,
		isLoading:  true,
		viewport:   viewport.New(0, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.filter.input = newFilterInput()
	return p
}

// Mount resets the panel state and returns the command that performs the
// single fetch for this mount. Mounting an already mounted panel is a no-op.
func (p *Panel) Mount() tea.Cmd {
	if p.mounted {
		return nil
	}
	p.gen++
	p.mounted = true
	p.content = nil
	p.isLoading = true
	p.errorMessage = ""
	p.offsets = nil
	p.filter.close()
	p.viewport.GotoTop()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	return fetchCmd(ctx, p.fetcher, p.gen)
}

// Unmount detaches the panel. A fetch still in flight is cancelled and its
// result is dropped when it arrives.
func (p *Panel) Unmount() {
	if !p.mounted {
		return
	}
	p.mounted = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Mounted reports whether the panel is mounted.
func (p *Panel) Mounted() bool { return p.mounted }

// Content returns the loaded document, or nil.
func (p *Panel) Content() *help.Response { return p.content }

// Loading reports whether the fetch has not settled yet.
func (p *Panel) Loading() bool { return p.isLoading }

// ErrorMessage returns the failure text, empty unless the fetch failed.
func (p *Panel) ErrorMessage() string { return p.errorMessage }

// State returns the view the panel renders, in priority order.
func (p *Panel) State() View {
	switch {
	case p.isLoading:
		return ViewLoading
	case p.errorMessage != "":
		return ViewError
	case p.content == nil:
		return ViewEmpty
	default:
		return ViewContent
	}
}

func fetchCmd(ctx context.Context, f Fetcher, gen uint64) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = LoadedMsg{Gen: gen, Err: fmt.Errorf("help fetch panicked: %v", r)}
			}
		}()
		if f == nil {
			return LoadedMsg{Gen: gen, Err: fmt.Errorf("no help content source configured")}
		}
		doc, err := f.Fetch(ctx)
		return LoadedMsg{Gen: gen, Content: doc, Err: err}
	}
}

// Update handles a message and returns the follow-up command, if any.
func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		p.settle(msg)
		return nil

	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.layout()
		return nil

	case tea.KeyMsg:
		return p.handleKey(msg)

	case tea.MouseMsg:
		if p.State() != ViewContent || p.filter.active || !p.scrollable() {
			return nil
		}
		var cmd tea.Cmd
		p.viewport, cmd = p.viewport.Update(msg)
		return cmd
	}
	return nil
}

// settle applies the fetch result. Results from another mount, or arriving
// after unmount, leave the state untouched.
func (p *Panel) settle(msg LoadedMsg) {
	if !p.mounted || msg.Gen != p.gen || !p.isLoading {
		slog.Debug("dropping stale help result", "gen", msg.Gen, "current", p.gen, "mounted", p.mounted)
		return
	}

	p.isLoading = false
	if msg.Err != nil {
		p.content = nil
		p.errorMessage = helpclient.UserMessage(msg.Err)
		slog.Debug("help fetch failed", "err", msg.Err)
		return
	}

	p.errorMessage = ""
	p.content = msg.Content
	p.layout()
	if p.content != nil {
		slog.Debug("help loaded", "sections", len(p.content.Sections), "items", p.content.ItemCount())
	}
}

func (p *Panel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.filter.active {
		return p.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, p.keys.Close):
		return func() tea.Msg { return CloseMsg{} }
	case key.Matches(msg, p.keys.Filter) && p.State() == ViewContent:
		return p.openFilter()
	}

	if p.State() == ViewContent && p.scrollable() {
		var cmd tea.Cmd
		p.viewport, cmd = p.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (p *Panel) newModal(title string, opts ...modal.Option) *modal.Modal {
	return modal.New(title, append([]modal.Option{modal.WithWidth(p.modalWidth)}, opts...)...)
}

// contentWidth is the width available to the document body.
func (p *Panel) contentWidth() int {
	return p.newModal("").ContentWidth(p.width)
}

// scrollable reports whether the body is shown through the viewport. Before
// the first window size message the body renders in full.
func (p *Panel) scrollable() bool {
	return p.height > 0
}

func (p *Panel) layout() {
	if p.content == nil {
		return
	}
	body, offsets := RenderDocument(p.content, p.contentWidth())
	p.offsets = offsets
	if !p.scrollable() {
		return
	}
	p.viewport.Width = p.contentWidth()
	p.viewport.Height = max(3, p.height-frameVertical-2)
	p.viewport.SetContent(body)
}

// View renders the panel for the current state.
func (p *Panel) View() string {
	if p.filter.active {
		return p.filterModal().Render(p.width, p.height)
	}

	switch p.State() {
	case ViewLoading:
		return p.newModal("").
			AddSection(modal.Muted(LoadingText)).
			Render(p.width, p.height)

	case ViewError:
		return p.newModal("", modal.WithVariant(modal.VariantDanger)).
			AddSection(modal.ErrorText(p.errorMessage)).
			Render(p.width, p.height)

	case ViewEmpty:
		return p.newModal("").
			AddSection(modal.Text(NoDataText)).
			Render(p.width, p.height)
	}

	m := p.newModal("", modal.WithVariant(modal.VariantInfo),
		modal.WithHintText("↑/↓ scroll   / filter   esc close"))
	if p.scrollable() {
		m.AddSection(modal.Custom(func(int) string { return p.viewport.View() }))
	} else {
		body, _ := RenderDocument(p.content, p.contentWidth())
		m.AddSection(modal.Custom(func(int) string { return body }))
	}
	return m.Render(p.width, p.height)
}
