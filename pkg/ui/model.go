// Package ui implements arbor's terminal tree browser: a bubbletea program
// that hosts an engine.Engine over one snapshot file.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/engine"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/watcher"
	"github.com/vanderheijden86/arbor/pkg/window"
)

// FileChangedMsg is sent when the snapshot file changes on disk.
type FileChangedMsg struct{}

// reloadedMsg carries the result of re-reading the snapshot.
type reloadedMsg struct {
	nodes []model.Node
	err   error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func reloadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		nodes, err := datasource.Load(path)
		return reloadedMsg{nodes: nodes, err: err}
	}
}

// Options configures New.
type Options struct {
	// Path is the snapshot file; Save writes back to it.
	Path string
	// Nodes is the initial snapshot, usually datasource.Load(Path).
	Nodes  []model.Node
	Config config.Config
	// StateDir enables open-state persistence when set.
	StateDir string
	// Watcher, when set, triggers reloads. The caller starts and stops it.
	Watcher *watcher.Watcher
	// Renderer defaults to a stdout renderer.
	Renderer *lipgloss.Renderer
	// Clipboard replaces the system clipboard, for tests.
	Clipboard func(string) error
}

// Model is the bubbletea model of the browser.
type Model struct {
	eng    *engine.Engine
	path   string
	source string
	ui     config.UIConfig
	theme  Theme
	keys   keyMap

	width, height int
	cursor        int
	offset        int

	search    textinput.Model
	searching bool
	naming    bool
	name      textinput.Model
	picked    model.ID

	status    string
	statusErr bool
	dirty     bool
	detail    bool
	md        *glamour.TermRenderer

	watcher   *watcher.Watcher
	statePath string
	clip      func(string) error
}

// New builds the browser. Open state saved for Path is restored unless the
// configuration asks to open everything.
func New(opts Options) (Model, error) {
	cfg := opts.Config
	ec := cfg.EngineConfig()

	statePath := OpenStatePath(opts.StateDir, opts.Path)
	if state := LoadOpenState(statePath); state != nil && !ec.InitialOpen.All {
		ec.InitialOpen.IDs = state.Open
	}
	ec.OnChangeOpen = func(ids []model.ID) {
		if err := SaveOpenState(statePath, opts.Path, ids); err != nil {
			debug.Log("saving open state: %v", err)
		}
	}
	// One terminal row per entry; the container height follows the window.
	ec.Sizing.ItemHeight = 1
	ec.Sizing.Overscan = 0

	eng, err := engine.New(ec, opts.Nodes)
	if err != nil {
		return Model{}, err
	}

	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"
	name := textinput.New()
	name.Prompt = "name: "

	indent := cfg.UI.Indent
	if indent <= 0 {
		indent = 2
	}
	cfg.UI.Indent = indent

	m := Model{
		eng:       eng,
		path:      opts.Path,
		source:    filepath.Base(opts.Path),
		ui:        cfg.UI,
		theme:     DefaultTheme(r),
		keys:      defaultKeyMap(),
		search:    search,
		name:      name,
		watcher:   opts.Watcher,
		statePath: statePath,
		clip:      opts.Clipboard,
	}
	if m.clip == nil {
		m.clip = clipboard.WriteAll
	}
	if faults := eng.Faults(); faults != nil {
		m.setError("snapshot has faults: %v", faults)
	}
	return m, nil
}

// Engine exposes the hosted engine.
func (m Model) Engine() *engine.Engine { return m.eng }

// Cursor returns the selected row index.
func (m Model) Cursor() int { return m.cursor }

// Status returns the current status line message.
func (m Model) Status() string { return m.status }

// Dirty reports unsaved changes.
func (m Model) Dirty() bool { return m.dirty }

// Picked returns the node being moved, or "".
func (m Model) Picked() model.ID { return m.picked }

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = true
}

// entries returns the current visible rows.
func (m Model) entries() []model.Entry {
	v, err := m.eng.View()
	if err != nil {
		return nil
	}
	return v.Entries
}

func (m Model) selectedNode() (model.Node, bool) {
	es := m.entries()
	if m.cursor < 0 || m.cursor >= len(es) {
		return model.Node{}, false
	}
	return es[m.cursor].Node, true
}

// listHeight is the number of rows available for entries.
func (m Model) listHeight() int {
	h := m.height - 2 // header + footer
	if h < 1 {
		return 1
	}
	return h
}

// clampCursor keeps the cursor on a row and the row on screen, then tells
// the engine which part of the list is visible.
func (m *Model) clampCursor() {
	n := len(m.entries())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset > n-h {
		m.offset = n - h
	}
	if m.offset < 0 {
		m.offset = 0
	}
	m.eng.SetViewport(window.Viewport{ScrollOffset: m.offset, Height: h})
}

// selectID moves the cursor to id when it is visible.
func (m *Model) selectID(id model.ID) {
	for i, e := range m.entries() {
		if e.Node.ID == id {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		s := m.eng.Sizing()
		s.ContainerHeight = m.listHeight()
		m.eng.SetSizing(s)
		m.md = newMarkdownRenderer(m.detailWidth() - 4)
		m.clampCursor()
		return m, nil

	case FileChangedMsg:
		return m, reloadCmd(m.path)

	case reloadedMsg:
		var cmd tea.Cmd
		if m.watcher != nil {
			cmd = WatchFileCmd(m.watcher)
		}
		switch {
		case msg.err != nil:
			m.setError("reload failed: %v", msg.err)
		case m.dirty:
			m.setError("file changed on disk; unsaved changes kept (s to overwrite)")
		default:
			m.install(msg.nodes)
		}
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.naming {
			return m.updateNaming(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

// install replaces the snapshot, keeping the cursor on the same node.
func (m *Model) install(nodes []model.Node) {
	sel, hadSel := m.selectedNode()
	if err := m.eng.SetNodes(nodes); err != nil {
		m.setError("snapshot has faults: %v", err)
	} else {
		m.setStatus("reloaded %d nodes", len(nodes))
	}
	if hadSel {
		m.selectID(sel.ID)
	}
	m.clampCursor()
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.runSearch("")
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.runSearch(m.search.Value())
	return m, cmd
}

func (m *Model) runSearch(term string) {
	res, err := m.eng.SetSearchTerm(term)
	switch {
	case err != nil:
		m.setError("search: %v", err)
	case res.Applied:
		more := ""
		if res.HasMore {
			more = "+"
		}
		m.setStatus("%d%s matches", res.TotalMatches, more)
	default:
		m.status = ""
	}
	m.cursor = 0
	m.offset = 0
	m.clampCursor()
}

func (m Model) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.naming = false
		m.name.Blur()
		m.name.SetValue("")
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.name.Value())
		m.naming = false
		m.name.Blur()
		m.name.SetValue("")
		if text != "" {
			m.addChild(text)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

// insertParent is the container a new node goes into: the selected row when
// it is a folder, else the selected row's parent, else the root.
func (m Model) insertParent() model.ID {
	n, ok := m.selectedNode()
	switch {
	case !ok:
		return m.eng.Config().RootID
	case n.Droppable:
		return n.ID
	default:
		return n.Parent
	}
}

// addChild inserts a new leaf through the engine's external drop path.
func (m *Model) addChild(text string) {
	parent := m.insertParent()
	n := model.Node{ID: model.ID(uuid.NewString()), Text: text}
	out, err := m.eng.Drop(model.DropIntent{Source: &n, TargetID: parent, Index: model.NoIndex})
	if err != nil {
		m.setError("add: %v", err)
		return
	}
	m.commit(out)
	m.eng.Controller().Open(parent)
	m.selectID(n.ID)
	m.setStatus("added %q", text)
}

// commit installs a mutated snapshot produced by this session.
func (m *Model) commit(nodes []model.Node) {
	if err := m.eng.SetNodes(nodes); err != nil {
		m.setError("snapshot has faults: %v", err)
	}
	m.dirty = true
}

func (m *Model) drop(intent model.DropIntent) {
	out, err := m.eng.Drop(intent)
	if err != nil {
		m.setError("move: %v", err)
		return
	}
	moved := m.picked
	m.commit(out)
	m.picked = ""
	if intent.TargetID != m.eng.Config().RootID {
		m.eng.Controller().Open(intent.TargetID)
	}
	m.selectID(moved)
	m.setStatus("moved %s", moved)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.eng.Controller()
	n, hasSel := m.selectedNode()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.picked != "":
			m.picked = ""
			m.setStatus("move cancelled")
		case m.eng.SearchTerm() != "":
			m.search.SetValue("")
			m.runSearch("")
		}

	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.listHeight()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.listHeight()
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.entries()) - 1

	case key.Matches(msg, m.keys.Toggle):
		if hasSel && n.Droppable {
			c.Toggle(n.ID)
		}
	case key.Matches(msg, m.keys.Open):
		if hasSel && n.Droppable {
			c.Open(n.ID)
		}
	case key.Matches(msg, m.keys.Close):
		switch {
		case hasSel && n.Droppable && m.eng.IsOpen(n.ID):
			c.Close(n.ID)
		case hasSel && n.Parent != m.eng.Config().RootID:
			m.selectID(n.Parent)
		}
	case key.Matches(msg, m.keys.OpenAll):
		c.OpenAll()
	case key.Matches(msg, m.keys.CloseAll):
		c.CloseAll()
		if hasSel {
			if root, ok := m.topAncestor(n.ID); ok {
				m.selectID(root)
			}
		}

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.eng.SearchTerm())
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Pick):
		if !hasSel {
			break
		}
		if !m.eng.CanDrag(n.ID) {
			m.setError("%s cannot be moved", n.Text)
			break
		}
		m.picked = n.ID
		m.setStatus("moving %q: p drops into a folder, P before a row, esc cancels", n.Text)

	case key.Matches(msg, m.keys.DropInto):
		if m.picked == "" || !hasSel {
			m.setError("nothing picked (m)")
			break
		}
		m.drop(model.DropIntent{SourceID: m.picked, TargetID: n.ID, Index: model.NoIndex})

	case key.Matches(msg, m.keys.DropHere):
		if m.picked == "" || !hasSel {
			m.setError("nothing picked (m)")
			break
		}
		slot := model.NoIndex
		for i, id := range m.eng.Index().ChildIDs(n.Parent) {
			if id == n.ID {
				slot = i
				break
			}
		}
		m.drop(model.DropIntent{SourceID: m.picked, TargetID: n.Parent, Index: slot})

	case key.Matches(msg, m.keys.Copy):
		if !hasSel {
			break
		}
		if err := m.clip(string(n.ID)); err != nil {
			m.setError("clipboard error: %v", err)
		} else {
			m.setStatus("copied %s to clipboard", n.ID)
		}

	case key.Matches(msg, m.keys.New):
		m.naming = true
		cmd := m.name.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		if err := datasource.Save(m.path, m.eng.Nodes()); err != nil {
			m.setError("save failed: %v", err)
			break
		}
		m.dirty = false
		m.setStatus("saved %d nodes to %s", len(m.eng.Nodes()), m.path)

	case key.Matches(msg, m.keys.Detail):
		m.detail = !m.detail
		m.md = newMarkdownRenderer(m.detailWidth() - 4)
	}

	m.clampCursor()
	return m, nil
}

// topAncestor returns the outermost ancestor of id below the root, or id
// itself when it is top level.
func (m Model) topAncestor(id model.ID) (model.ID, bool) {
	path, err := m.eng.Index().Ancestors(id)
	if err != nil {
		return "", false
	}
	if len(path) == 0 {
		return id, true
	}
	return path[len(path)-1].ID, true
}

func (m Model) detailWidth() int {
	if !m.detail || m.width < 60 {
		return 0
	}
	return m.width * 2 / 5
}

// View renders the header, the visible rows of the window and the footer.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	v, err := m.eng.View()
	if err != nil {
		return m.theme.StatusErr.Render(err.Error())
	}

	listWidth := m.width - m.detailWidth()
	h := m.listHeight()
	start, end := m.offset, min(m.offset+h, len(v.Entries))

	rows := make([]string, 0, h)
	emit := func(i int, e model.Entry) {
		rows = append(rows, m.renderRow(e, rowState{
			selected: i == m.cursor,
			picked:   e.Node.ID == m.picked,
			open:     m.eng.IsOpen(e.Node.ID),
			term:     m.eng.SearchTerm(),
			showIDs:  m.ui.ShowIDs,
			indent:   m.ui.Indent,
			width:    listWidth,
		}))
	}
	if v.Window != nil {
		for _, it := range v.Window.Items {
			if it.Index >= start && it.Index < end {
				emit(it.Index, it.Entry)
			}
		}
	} else if start < end {
		for i := start; i < end; i++ {
			emit(i, v.Entries[i])
		}
	}

	var body string
	if len(v.Entries) == 0 {
		body = m.renderEmptyState()
	} else {
		body = strings.Join(rows, "\n")
	}
	body = lipgloss.NewStyle().Height(h).MaxHeight(h).Render(body)
	if w := m.detailWidth(); w > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(listWidth).Render(body),
			m.renderDetail(w, h))
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter(start, end, len(v.Entries)))
	return sb.String()
}

func (m Model) renderFooter(start, end, total int) string {
	switch {
	case m.searching:
		return m.search.View()
	case m.naming:
		return m.name.View() + m.theme.MutedText.Render(fmt.Sprintf("  (into %s)", m.insertParent()))
	case m.status != "":
		style := m.theme.StatusOK
		if m.statusErr {
			style = m.theme.StatusErr
		}
		return style.Render(truncate(m.status, max(m.width-1, 10)))
	}
	var help []string
	for _, b := range m.keys.footerBindings() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	line := strings.Join(help, " • ")
	if total > m.listHeight() {
		line = positionIndicator(start, end, total) + "  " + line
	}
	return m.theme.MutedText.Render(truncate(line, max(m.width-1, 10)))
}
