package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/internal/adapters/tui/styles"
	"github.com/i5heu/pinforest/internal/eventLog"
	"github.com/i5heu/pinforest/pkg/dagbuilder"
	"github.com/i5heu/pinforest/pkg/types"
)

// Forest is what the browser needs from *pinforest.Forest.
type Forest interface {
	EdgeSource
	Refresh(ctx context.Context) (dagbuilder.Result, error)
	Roots() []types.ContentID
	Unpin(ctx context.Context, root types.ContentID) ([]types.ContentID, error)
	Stats() pinforest.Stats
}

// LogSource supplies the entries of the log panel, newest first.
type LogSource interface {
	Recent() []eventLog.Entry
}

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Enter   key.Binding
	Refresh key.Binding
	Unpin   key.Binding
	Copy    key.Binding
	Logs    key.Binding
	Yes     key.Binding
	Quit    key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Unpin: key.NewBinding(
		key.WithKeys("u", "delete"),
		key.WithHelp("u", "unpin"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy cid"),
	),
	Logs: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logs"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

const logPanelLines = 8

// BrowserModel is the forest tree browser.
type BrowserModel struct {
	ViewState

	forest Forest
	logs   LogSource
	copy   func(string) error

	root      *Node
	flatNodes []*Node
	cursor    int
	// expanded holds the paths of expanded nodes so a reload keeps them open.
	expanded map[string]bool

	loading  bool
	pending  *Node
	showLogs bool
}

func NewBrowserModel(forest Forest, logs LogSource) *BrowserModel {
	return &BrowserModel{
		forest:   forest,
		logs:     logs,
		copy:     clipboard.WriteAll,
		expanded: make(map[string]bool),
		showLogs: true,
	}
}

type refreshedMsg struct {
	result dagbuilder.Result
}

type unpinnedMsg struct {
	id      types.ContentID
	removed int
}

type errMsg struct {
	err error
}

// Init starts the first refresh.
func (m *BrowserModel) Init() tea.Cmd {
	m.loading = true
	return m.refresh
}

func (m *BrowserModel) refresh() tea.Msg {
	res, err := m.forest.Refresh(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return refreshedMsg{res}
}

func (m *BrowserModel) unpin(id types.ContentID) tea.Cmd {
	return func() tea.Msg {
		removed, err := m.forest.Unpin(context.Background(), id)
		if err != nil {
			return errMsg{fmt.Errorf("unpin %s: %w", id, err)}
		}
		return unpinnedMsg{id: id, removed: len(removed)}
	}
}

func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case refreshedMsg:
		m.loading = false
		m.reload()
		m.SetMessage(fmt.Sprintf("%d refs, %d directories, %d failed",
			msg.result.Refs, msg.result.Directories, msg.result.Failed), msg.result.Failed > 0)
		return m, nil

	case unpinnedMsg:
		m.reload()
		m.SetMessage(fmt.Sprintf("Unpinned %s, removed %d nodes", msg.id, msg.removed), false)
		return m, nil

	case errMsg:
		m.loading = false
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pending != nil {
		node := m.pending
		m.pending = nil
		if key.Matches(msg, BrowserKeys.Yes) {
			m.SetMessage("Unpinning "+node.ID.String()+"...", false)
			return m, m.unpin(node.ID)
		}
		m.SetMessage("Unpin cancelled", false)
		return m, nil
	}

	m.ClearMessage()

	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, BrowserKeys.Down):
		if m.cursor < len(m.flatNodes)-1 {
			m.cursor++
		}

	case key.Matches(msg, BrowserKeys.Left):
		node := m.selectedNode()
		if node == nil {
			break
		}
		if node.IsExpanded {
			m.collapse(node)
		} else if node.Parent != nil && node.Parent != m.root {
			for i, n := range m.flatNodes {
				if n == node.Parent {
					m.cursor = i
					break
				}
			}
		}

	case key.Matches(msg, BrowserKeys.Right), key.Matches(msg, BrowserKeys.Enter):
		node := m.selectedNode()
		if node == nil {
			break
		}
		if node.IsExpanded {
			if key.Matches(msg, BrowserKeys.Enter) {
				m.collapse(node)
			}
		} else {
			m.expand(node)
		}

	case key.Matches(msg, BrowserKeys.Refresh):
		if m.loading {
			break
		}
		m.loading = true
		m.SetMessage("Reading pinned refs...", false)
		return m, m.refresh

	case key.Matches(msg, BrowserKeys.Unpin):
		if node := m.selectedNode(); node != nil {
			m.pending = node
		}

	case key.Matches(msg, BrowserKeys.Copy):
		if node := m.selectedNode(); node != nil {
			if err := m.copy(node.ID.String()); err != nil {
				m.SetMessage("copy failed: "+err.Error(), true)
			} else {
				m.SetMessage("Copied "+node.ID.String(), false)
			}
		}

	case key.Matches(msg, BrowserKeys.Logs):
		m.showLogs = !m.showLogs
	}

	return m, nil
}

func pathKey(n *Node) string {
	ids := n.Path()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, "/")
}

func (m *BrowserModel) expand(n *Node) {
	n.Expand(m.forest)
	if n.IsExpanded {
		m.expanded[pathKey(n)] = true
	}
	m.refreshFlatNodes()
}

func (m *BrowserModel) collapse(n *Node) {
	n.Collapse()
	delete(m.expanded, pathKey(n))
	m.refreshFlatNodes()
}

// reload rebuilds the tree from the current roots and reopens the nodes that
// were expanded before and still exist.
func (m *BrowserModel) reload() {
	var selected string
	if n := m.selectedNode(); n != nil {
		selected = pathKey(n)
	}

	m.root = NewForestRoot(m.forest.Roots())
	m.restore(m.root)
	m.refreshFlatNodes()

	for i, n := range m.flatNodes {
		if pathKey(n) == selected {
			m.cursor = i
			break
		}
	}
}

func (m *BrowserModel) restore(n *Node) {
	for _, c := range n.Children {
		if !m.expanded[pathKey(c)] {
			continue
		}
		c.Expand(m.forest)
		m.restore(c)
	}
}

func (m *BrowserModel) selectedNode() *Node {
	if m.cursor >= 0 && m.cursor < len(m.flatNodes) {
		return m.flatNodes[m.cursor]
	}
	return nil
}

func (m *BrowserModel) refreshFlatNodes() {
	if m.root == nil {
		return
	}
	m.flatNodes = m.root.Flatten()[1:]
	if m.cursor >= len(m.flatNodes) {
		m.cursor = len(m.flatNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("pinforest"))
	b.WriteString("  ")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	switch {
	case m.root == nil && m.loading:
		b.WriteString(styles.MutedText.Render("Reading pinned refs..."))
		b.WriteString("\n")
	case len(m.flatNodes) == 0:
		b.WriteString(styles.MutedText.Render("No pinned directories."))
		b.WriteString("\n")
	default:
		for i, node := range m.flatNodes {
			b.WriteString(m.renderNode(node, i == m.cursor))
			b.WriteString("\n")
		}
	}

	if m.pending != nil {
		b.WriteString("\n")
		b.WriteString(styles.Confirm.Render(fmt.Sprintf("Unpin %s and its orphaned descendants? (y/N)", m.pending.ID)))
	} else if m.Message != "" {
		b.WriteString("\n")
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
	}

	if m.showLogs && m.logs != nil {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderStats() string {
	s := m.forest.Stats()
	return styles.StatusBar.Render(fmt.Sprintf("%d pinned  %d roots  %d nodes  %d edges",
		s.PinnedRefs, s.Roots, s.Nodes, s.Edges))
}

func (m *BrowserModel) renderNode(node *Node, selected bool) string {
	indent := strings.Repeat("  ", node.Depth())

	var prefix string
	switch {
	case !node.Expandable():
		prefix = styles.TreeLeaf
	case node.IsExpanded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.ID.String()
	if node.Name != "" {
		text = fmt.Sprintf("%s  %s (%d B)", node.Name, node.ID, node.Size)
	}

	var style lipgloss.Style
	switch {
	case node.Cycle:
		style = styles.NodeCycle
		text += " [cycle]"
	case node.Parent == m.root:
		style = styles.NodeRoot
	case node.Expandable():
		style = styles.NodeDirectory
	default:
		style = styles.NodeLeaf
	}

	styled := style.Render(text)
	if selected {
		styled = styles.NodeSelected.Render(text)
	}
	return fmt.Sprintf("%s%s%s", indent, styles.TreeBranch.Render(prefix), styled)
}

func (m *BrowserModel) renderLogs() string {
	entries := m.logs.Recent()
	if len(entries) > logPanelLines {
		entries = entries[:logPanelLines]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, styles.LogLine.Render(e.String()))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.LogLine.Render("no log entries"))
	}
	return styles.LogPanel.Render(strings.Join(lines, "\n"))
}

func (m *BrowserModel) renderHelpLine() string {
	bindings := []key.Binding{
		BrowserKeys.Down, BrowserKeys.Up, BrowserKeys.Right, BrowserKeys.Left,
		BrowserKeys.Refresh, BrowserKeys.Unpin, BrowserKeys.Copy, BrowserKeys.Logs, BrowserKeys.Quit,
	}

	var parts []string
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, fmt.Sprintf("%s %s",
			styles.HelpKey.Render(h.Key),
			styles.HelpDesc.Render(h.Desc),
		))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}
