package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/discovery"
)

type scanStartMsg struct{}
type scanCompleteMsg struct {
	bridges []*discovery.Bridge
	err     error
}

type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Enter}, {k.Rescan, k.Manual, k.Quit}}
}

// bridgeItem wraps a Bridge for bubbles/list
type bridgeItem struct {
	bridge *discovery.Bridge
	manual bool
}

func (b bridgeItem) FilterValue() string { return b.bridge.Instance + " " + b.bridge.IP }

// bridgeDelegate renders each bridge as a small card
type bridgeDelegate struct{}

func (d bridgeDelegate) Height() int                               { return 5 }
func (d bridgeDelegate) Spacing() int                              { return 1 }
func (d bridgeDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d bridgeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	bi, ok := item.(bridgeItem)
	if !ok {
		return
	}
	b := bi.bridge
	selected := index == m.Index()

	name := b.Instance
	if bi.manual {
		name = "Manual: " + b.IP
	}
	if selected {
		name = SelectedStyle.Render("→ " + name)
	} else {
		name = "  " + name
	}

	ver := b.Version
	if ver == "" {
		ver = "unknown"
	}
	body := strings.Join([]string{
		name,
		fmt.Sprintf("  Address: %s:%d", b.IP, b.Port),
		fmt.Sprintf("  Version: %s", ver),
	}, "\n")

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		MarginLeft(2).
		Width(max(m.Width()-6, 30))
	if selected {
		card = card.BorderForeground(HighlightColor)
	}
	fmt.Fprint(w, card.Render(body))
}

// DiscoveryModel lists bridges found on the LAN.
type DiscoveryModel struct {
	ctx    context.Context
	finder Finder

	Scanning   bool
	BridgeList list.Model
	Selected   bool
	Err        error

	ManualMode bool
	IPInput    textinput.Model

	Width, Height int
	Spinner       spinner.Model
	ScanStart     time.Time
	Help          help.Model
	Keys          discoveryKeyMap
}

// NewDiscoveryModel creates the picker; it starts scanning on Init.
func NewDiscoveryModel(ctx context.Context, finder Finder) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ip := textinput.New()
	ip.Placeholder = "192.168.1.50"
	ip.CharLimit = 39
	ip.Width = 30

	bridges := list.New(nil, bridgeDelegate{}, MinTerminalWidth-4, 16)
	bridges.Title = "IR bridges on this network"
	bridges.Styles.Title = TitleStyle
	bridges.SetShowStatusBar(false)
	bridges.SetFilteringEnabled(false)
	bridges.SetShowHelp(false)

	return DiscoveryModel{
		ctx:        ctx,
		finder:     finder,
		BridgeList: bridges,
		IPInput:    ip,
		Spinner:    s,
		Help:       help.New(),
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual IP")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
	}
}

func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(func() tea.Msg { return scanStartMsg{} }, m.scan(), m.Spinner.Tick)
}

func (m DiscoveryModel) scan() tea.Cmd {
	finder, ctx := m.finder, m.ctx
	return func() tea.Msg {
		bridges, err := finder.Scan(ctx)
		return scanCompleteMsg{bridges: bridges, err: err}
	}
}

func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.ManualMode {
			return m.updateManual(msg)
		}
		return m.updateNormal(msg)

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.BridgeList.SetSize(msg.Width-4, max(msg.Height-10, 6))
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStart = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.bridges))
		for i, b := range msg.bridges {
			items[i] = bridgeItem{bridge: b}
		}
		cmd := m.BridgeList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m DiscoveryModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "m":
		m.ManualMode = true
		m.Err = nil
		m.IPInput.SetValue("")
		cmd := m.IPInput.Focus()
		return m, cmd
	}
	if m.Scanning {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if m.BridgeList.SelectedItem() != nil {
			m.Selected = true
			return m, tea.Quit
		}
		return m, nil
	case "r":
		m.Err = nil
		cmd := m.BridgeList.SetItems(nil)
		return m, tea.Batch(cmd, func() tea.Msg { return scanStartMsg{} }, m.scan(), m.Spinner.Tick)
	}

	var cmd tea.Cmd
	m.BridgeList, cmd = m.BridgeList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ManualMode = false
		m.IPInput.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.IPInput.Value())
		if net.ParseIP(value) == nil {
			m.Err = fmt.Errorf("%q is not an IP address", value)
			return m, nil
		}
		b := &discovery.Bridge{
			Instance:     value,
			Hostname:     value,
			IP:           value,
			Port:         discovery.DefaultPort,
			DiscoveredAt: time.Now(),
		}
		items := append([]list.Item{bridgeItem{bridge: b, manual: true}}, m.BridgeList.Items()...)
		cmd := m.BridgeList.SetItems(items)
		m.BridgeList.Select(0)
		m.ManualMode = false
		m.Err = nil
		m.IPInput.Blur()
		return m, cmd
	}
	var cmd tea.Cmd
	m.IPInput, cmd = m.IPInput.Update(msg)
	return m, cmd
}

// GetSelectedBridge returns the chosen bridge, or nil if the user quit.
func (m DiscoveryModel) GetSelectedBridge() *discovery.Bridge {
	if !m.Selected {
		return nil
	}
	if item, ok := m.BridgeList.SelectedItem().(bridgeItem); ok {
		return item.bridge
	}
	return nil
}

func (m DiscoveryModel) View() string {
	var content, helpText string
	switch {
	case m.ManualMode:
		content = "\n" + RenderSubtitle("Enter the bridge's IP address") + "\n\n  IP Address: " + m.IPInput.View()
		if m.Err != nil {
			content += "\n\n" + RenderError(m.Err.Error())
		}
		helpText = "enter confirm • esc cancel"
	case m.Scanning:
		content = lipgloss.JoinVertical(lipgloss.Left,
			"",
			RenderTitle(m.Spinner.View()+" SEARCHING FOR BRIDGES"),
			"",
			RenderSubtitle(fmt.Sprintf("Browsing mDNS... %ds", int(time.Since(m.ScanStart).Seconds()))),
		)
		helpText = "m manual IP • q quit"
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(troubleshootingText)
	case len(m.BridgeList.Items()) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).PaddingLeft(2).
			Render("⚠ No bridges found on your network"))
		b.WriteString("\n\n")
		b.WriteString(troubleshootingText)
	default:
		b.WriteString(m.BridgeList.View())
	}
	return b.String()
}

const troubleshootingText = `  Troubleshooting:
    • Check the bridge is powered and its WiFi LED is steady
    • A blinking LED means it is still joining or in setup mode
    • Make sure this computer is on the same network
    • Press r to scan again or m to enter an address`
