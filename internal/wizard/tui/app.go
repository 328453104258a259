package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/bridgeclient"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/discovery"
)

// BridgeAPI is the part of the bridge client the wizard drives.
type BridgeAPI interface {
	Networks(ctx context.Context) ([]string, error)
	Configure(ctx context.Context, creds credstore.Credentials) error
}

// Finder locates bridges on the local network.
type Finder interface {
	Scan(ctx context.Context) ([]*discovery.Bridge, error)
	WaitFor(ctx context.Context, instance string) (*discovery.Bridge, error)
}

// Config wires the wizard. Finder may be nil, in which case the wizard ends
// once the bridge accepts the credentials.
type Config struct {
	API      BridgeAPI
	Finder   Finder
	Hostname string        // pre-filled hostname
	WaitHint time.Duration // how long the bridge is expected to take to rejoin
}

// Screen is the active step of the wizard
type Screen string

const (
	ScreenNetworks Screen = "networks"
	ScreenPassword Screen = "password"
	ScreenHostname Screen = "hostname"
	ScreenSending  Screen = "sending"
	ScreenWaiting  Screen = "waiting"
	ScreenSuccess  Screen = "success"
	ScreenFailure  Screen = "failure"
)

// ErrAborted is returned by Result when the user quit before finishing.
var ErrAborted = errors.New("setup aborted")

// Async results
type networksMsg struct {
	ssids []string
	err   error
}
type configuredMsg struct{ err error }
type foundMsg struct {
	bridge *discovery.Bridge
	err    error
}
type waitTickMsg time.Time

type appKeyMap struct {
	Select key.Binding
	Manual key.Binding
	Rescan key.Binding
	Back   key.Binding
	Retry  key.Binding
	Edit   key.Binding
	Quit   key.Binding
}

func (k appKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Manual, k.Rescan, k.Back, k.Quit}
}

func (k appKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Select, k.Manual, k.Rescan}, {k.Back, k.Retry, k.Edit, k.Quit}}
}

// networkItem adapts an SSID for bubbles/list
type networkItem string

func (n networkItem) FilterValue() string { return string(n) }
func (n networkItem) Title() string       { return string(n) }
func (n networkItem) Description() string { return "" }

// AppModel is the setup wizard.
type AppModel struct {
	ctx context.Context
	cfg Config

	CurrentScreen Screen
	Loading       bool
	Manual        bool // typing an SSID instead of picking one
	Networks      list.Model
	SSIDInput     textinput.Model
	PasswordInput textinput.Model
	HostnameInput textinput.Model

	Creds     credstore.Credentials
	Bridge    *discovery.Bridge
	LastError error
	FieldErr  string
	WaitStart time.Time
	done      bool

	Width, Height int
	Spinner       spinner.Model
	Progress      progress.Model
	Help          help.Model
	Keys          appKeyMap
}

// NewAppModel builds the wizard at the network list
func NewAppModel(ctx context.Context, cfg Config) AppModel {
	if cfg.WaitHint <= 0 {
		cfg.WaitHint = 30 * time.Second
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	networks := list.New(nil, delegate, MinTerminalWidth-4, 12)
	networks.Title = "Networks the bridge can see"
	networks.Styles.Title = TitleStyle
	networks.SetShowStatusBar(false)
	networks.SetFilteringEnabled(false)
	networks.SetShowHelp(false)

	ssid := textinput.New()
	ssid.Placeholder = "network name"
	ssid.CharLimit = bridgeclient.MaxSSIDLength

	password := textinput.New()
	password.Placeholder = "leave empty for an open network"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = bridgeclient.MaxPasswordLength

	hostname := textinput.New()
	hostname.Placeholder = "living-room"
	hostname.CharLimit = bridgeclient.MaxHostnameLength
	hostname.SetValue(cfg.Hostname)

	return AppModel{
		ctx:           ctx,
		cfg:           cfg,
		CurrentScreen: ScreenNetworks,
		Loading:       true,
		Networks:      networks,
		SSIDInput:     ssid,
		PasswordInput: password,
		HostnameInput: hostname,
		Spinner:       s,
		Progress:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		Help:          help.New(),
		Keys: appKeyMap{
			Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "other network")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
			Retry:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
			Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
			Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.fetchNetworks(), m.Spinner.Tick)
}

func (m AppModel) fetchNetworks() tea.Cmd {
	api, ctx := m.cfg.API, m.ctx
	return func() tea.Msg {
		ssids, err := api.Networks(ctx)
		return networksMsg{ssids: ssids, err: err}
	}
}

func (m AppModel) configure() tea.Cmd {
	api, ctx, creds := m.cfg.API, m.ctx, m.Creds
	return func() tea.Msg {
		return configuredMsg{err: api.Configure(ctx, creds)}
	}
}

func (m AppModel) waitForBridge() tea.Cmd {
	finder, ctx, hostname := m.cfg.Finder, m.ctx, m.Creds.Hostname
	return func() tea.Msg {
		b, err := finder.WaitFor(ctx, hostname)
		return foundMsg{bridge: b, err: err}
	}
}

func waitTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return waitTickMsg(t) })
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Networks.SetSize(msg.Width-6, max(msg.Height-12, 5))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.updateKeys(msg)

	case networksMsg:
		m.Loading = false
		m.LastError = msg.err
		items := make([]list.Item, len(msg.ssids))
		for i, ssid := range msg.ssids {
			items[i] = networkItem(ssid)
		}
		cmd := m.Networks.SetItems(items)
		return m, cmd

	case configuredMsg:
		if msg.err != nil {
			m.LastError = msg.err
			m.CurrentScreen = ScreenFailure
			return m, nil
		}
		if m.cfg.Finder == nil {
			m.CurrentScreen = ScreenSuccess
			m.done = true
			return m, nil
		}
		m.CurrentScreen = ScreenWaiting
		m.WaitStart = time.Now()
		return m, tea.Batch(m.waitForBridge(), waitTick(), m.Spinner.Tick)

	case foundMsg:
		if m.CurrentScreen != ScreenWaiting {
			return m, nil
		}
		if msg.err != nil {
			m.LastError = msg.err
			m.CurrentScreen = ScreenFailure
			return m, nil
		}
		m.Bridge = msg.bridge
		m.CurrentScreen = ScreenSuccess
		m.done = true
		return m, nil

	case waitTickMsg:
		if m.CurrentScreen == ScreenWaiting {
			return m, waitTick()
		}
		return m, nil

	case spinner.TickMsg:
		if m.Loading || m.CurrentScreen == ScreenSending || m.CurrentScreen == ScreenWaiting {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m AppModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.CurrentScreen {
	case ScreenNetworks:
		return m.updateNetworks(msg)
	case ScreenPassword:
		return m.updatePassword(msg)
	case ScreenHostname:
		return m.updateHostname(msg)
	case ScreenSuccess:
		if msg.String() == "q" || msg.String() == "enter" {
			return m, tea.Quit
		}
	case ScreenFailure:
		switch msg.String() {
		case "r":
			m.LastError = nil
			m.CurrentScreen = ScreenSending
			return m, tea.Batch(m.configure(), m.Spinner.Tick)
		case "e":
			m.LastError = nil
			return m.toNetworks()
		case "q", "esc":
			return m, tea.Quit
		}
	case ScreenWaiting:
		if msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m AppModel) toNetworks() (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenNetworks
	m.Manual = false
	m.FieldErr = ""
	m.Loading = true
	return m, tea.Batch(m.fetchNetworks(), m.Spinner.Tick)
}

func (m AppModel) updateNetworks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Manual {
		switch msg.String() {
		case "esc":
			m.Manual = false
			m.FieldErr = ""
			m.SSIDInput.Blur()
			return m, nil
		case "enter":
			return m.chooseNetwork(strings.TrimSpace(m.SSIDInput.Value()))
		}
		var cmd tea.Cmd
		m.SSIDInput, cmd = m.SSIDInput.Update(msg)
		return m, cmd
	}

	if m.Loading {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		return m.toNetworks()
	case "m":
		m.Manual = true
		m.FieldErr = ""
		m.SSIDInput.SetValue("")
		cmd := m.SSIDInput.Focus()
		return m, cmd
	case "enter":
		if item, ok := m.Networks.SelectedItem().(networkItem); ok {
			return m.chooseNetwork(string(item))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Networks, cmd = m.Networks.Update(msg)
	return m, cmd
}

func (m AppModel) chooseNetwork(ssid string) (tea.Model, tea.Cmd) {
	if err := bridgeclient.ValidateSSID(ssid); err != nil {
		m.FieldErr = err.Error()
		return m, nil
	}
	m.Creds.SSID = ssid
	m.Manual = false
	m.FieldErr = ""
	m.SSIDInput.Blur()
	m.CurrentScreen = ScreenPassword
	cmd := m.PasswordInput.Focus()
	return m, cmd
}

func (m AppModel) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.PasswordInput.Blur()
		m.FieldErr = ""
		m.CurrentScreen = ScreenNetworks
		return m, nil
	case "enter":
		password := m.PasswordInput.Value()
		if err := bridgeclient.ValidatePassword(password); err != nil {
			m.FieldErr = err.Error()
			return m, nil
		}
		m.Creds.Password = password
		m.FieldErr = ""
		m.PasswordInput.Blur()
		m.CurrentScreen = ScreenHostname
		cmd := m.HostnameInput.Focus()
		return m, cmd
	}
	var cmd tea.Cmd
	m.PasswordInput, cmd = m.PasswordInput.Update(msg)
	return m, cmd
}

func (m AppModel) updateHostname(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.HostnameInput.Blur()
		m.FieldErr = ""
		m.CurrentScreen = ScreenPassword
		cmd := m.PasswordInput.Focus()
		return m, cmd
	case "enter":
		hostname := strings.TrimSpace(m.HostnameInput.Value())
		if err := bridgeclient.ValidateHostname(hostname); err != nil {
			m.FieldErr = err.Error()
			return m, nil
		}
		m.Creds.Hostname = hostname
		m.FieldErr = ""
		m.HostnameInput.Blur()
		m.CurrentScreen = ScreenSending
		return m, tea.Batch(m.configure(), m.Spinner.Tick)
	}
	var cmd tea.Cmd
	m.HostnameInput, cmd = m.HostnameInput.Update(msg)
	return m, cmd
}

// Result reports what the wizard achieved once the program has exited.
// The returned credentials never carry the password. bridge is nil when no
// Finder was configured.
func (m AppModel) Result() (*discovery.Bridge, credstore.Credentials, error) {
	creds := m.Creds
	creds.Password = ""
	switch {
	case m.done:
		return m.Bridge, creds, nil
	case m.LastError != nil:
		return nil, creds, m.LastError
	default:
		return nil, creds, ErrAborted
	}
}

func (m AppModel) View() string {
	var content string
	switch m.CurrentScreen {
	case ScreenNetworks:
		content = m.viewNetworks()
	case ScreenPassword:
		content = m.viewInput("Password for "+m.Creds.SSID, m.PasswordInput)
	case ScreenHostname:
		content = m.viewInput("Name this bridge", m.HostnameInput)
	case ScreenSending:
		content = "\n" + RenderTitle(m.Spinner.View()+" Sending credentials to the bridge...")
	case ScreenWaiting:
		content = m.viewWaiting()
	case ScreenSuccess:
		content = m.viewSuccess()
	case ScreenFailure:
		content = m.viewFailure()
	}
	return RenderApplicationContainer(content, m.helpText(), m.Width, m.Height)
}

func (m AppModel) helpText() string {
	switch m.CurrentScreen {
	case ScreenNetworks:
		if m.Manual {
			return "enter confirm • esc cancel"
		}
		return m.Help.View(m.Keys)
	case ScreenPassword, ScreenHostname:
		return "enter next • esc back • ctrl+c quit"
	case ScreenFailure:
		return "r retry • e edit • q quit"
	case ScreenSuccess:
		return "enter/q exit"
	default:
		return "q quit"
	}
}

func (m AppModel) viewNetworks() string {
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.Manual:
		b.WriteString(RenderSubtitle("Type the network name"))
		b.WriteString("\n\n  ")
		b.WriteString(m.SSIDInput.View())
	case m.Loading:
		b.WriteString(RenderTitle(m.Spinner.View() + " Asking the bridge which networks it can see..."))
	case m.LastError != nil:
		b.WriteString(RenderError("Could not reach the bridge: " + bridgeclient.GetShortErrorMessage(m.LastError)))
		b.WriteString("\n\n")
		b.WriteString(InfoBoxStyle.Render(bridgeclient.GetTroubleshootingHint(m.LastError)))
	case len(m.Networks.Items()) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).PaddingLeft(2).
			Render("⚠ The bridge sees no networks"))
		b.WriteString("\n\n")
		b.WriteString(RenderSubtitle("Press r to scan again or m to type a hidden network."))
	default:
		b.WriteString(m.Networks.View())
	}
	if m.FieldErr != "" {
		b.WriteString("\n\n")
		b.WriteString(RenderError(m.FieldErr))
	}
	return b.String()
}

func (m AppModel) viewInput(title string, input textinput.Model) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderTitle(title))
	b.WriteString("\n\n")
	b.WriteString(RenderField("Network", m.Creds.SSID))
	b.WriteString("\n\n  ")
	b.WriteString(input.View())
	if m.FieldErr != "" {
		b.WriteString("\n\n")
		b.WriteString(RenderError(m.FieldErr))
	}
	return b.String()
}

func (m AppModel) viewWaiting() string {
	elapsed := time.Since(m.WaitStart)
	pct := float64(elapsed) / float64(m.cfg.WaitHint)
	if pct > 1 {
		pct = 1
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		RenderTitle(fmt.Sprintf("%s Waiting for %q to join %s", m.Spinner.View(), m.Creds.Hostname, m.Creds.SSID)),
		"",
		RenderSubtitle("The bridge restarts once it has joined. Reconnect this computer to "+m.Creds.SSID+"."),
		"",
		"  "+m.Progress.ViewAs(pct),
		"",
		RenderSubtitle(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
	)
}

func (m AppModel) viewSuccess() string {
	lines := []string{
		RenderSuccess("Bridge configured"),
		"",
		RenderField("Hostname", m.Creds.Hostname),
		RenderField("Network", m.Creds.SSID),
	}
	if m.Bridge != nil {
		lines = append(lines, RenderField("Address", fmt.Sprintf("%s:%d", m.Bridge.IP, m.Bridge.Port)))
	} else {
		lines = append(lines, "", RenderSubtitle("The bridge accepted the credentials and is joining the network."))
	}
	return "\n" + SuccessBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m AppModel) viewFailure() string {
	var lines []string
	lines = append(lines, RenderError("Setup failed"), "")
	if m.LastError != nil {
		lines = append(lines, "  "+bridgeclient.GetShortErrorMessage(m.LastError), "")
		lines = append(lines, SubtitleStyle.Render(bridgeclient.GetTroubleshootingHint(m.LastError)))
	}
	return "\n" + ErrorBoxStyle.Render(strings.Join(lines, "\n"))
}
