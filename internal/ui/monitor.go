package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/protocol"
)

// MonitorOptions configures the live pin monitor.
type MonitorOptions struct {
	Target           string        // connection description for the status line, e.g. "/dev/ttyACM0 @ 57600"
	AnalogChannels   int           // analog channels covered by the reporting toggle (default 8)
	DigitalPorts     int           // digital ports covered by the reporting toggle (default 3)
	SamplingInterval time.Duration // 0 keeps the board's default sweep rate
	LogLines         int           // message log depth (default 8)
}

func (o MonitorOptions) withDefaults() MonitorOptions {
	if o.AnalogChannels <= 0 {
		o.AnalogChannels = 8
	}
	if o.DigitalPorts <= 0 {
		o.DigitalPorts = 3
	}
	if o.LogLines <= 0 {
		o.LogLines = 8
	}
	return o
}

// Messages fed into the monitor from the board listeners
type analogReadingMsg struct {
	pin   int
	value int
	at    time.Time
}

type digitalReadingMsg struct {
	port int
	pins byte
	at   time.Time
}

type firmwareMsg struct {
	name         string
	major, minor int
}

type protocolVersionMsg struct {
	major, minor int
}

type boardTextMsg struct {
	text string
	at   time.Time
}

type noteMsg struct {
	text string
}

type linkDownMsg struct {
	err error
}

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	ToggleAnalog  key.Binding
	ToggleDigital key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleAnalog, k.ToggleDigital, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleAnalog, k.ToggleDigital},
		{k.Help, k.Quit},
	}
}

func newMonitorKeyMap() monitorKeyMap {
	return monitorKeyMap{
		ToggleAnalog: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle analog"),
		),
		ToggleDigital: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle digital"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type reading struct {
	value int
	at    time.Time
}

type portReading struct {
	pins byte
	at   time.Time
}

type logEntry struct {
	at   time.Time
	text string
}

// MonitorModel is the Bubble Tea model behind the live pin monitor. Board
// traffic arrives as messages pushed in by RunMonitor's listeners; key
// presses toggle reporting by sending commands back to the board.
type MonitorModel struct {
	client *firmata.Client
	opts   MonitorOptions

	// UI state
	Width  int
	Height int

	firmware string
	protocol string

	analog  map[int]reading
	digital map[int]portReading
	log     []logEntry

	analogOn  bool
	digitalOn bool

	help help.Model
	keys monitorKeyMap

	err error
}

// NewMonitorModel creates a monitor model for an already started client.
func NewMonitorModel(client *firmata.Client, opts MonitorOptions) MonitorModel {
	return MonitorModel{
		client:    client,
		opts:      opts.withDefaults(),
		analog:    make(map[int]reading),
		digital:   make(map[int]portReading),
		analogOn:  true,
		digitalOn: true,
		help:      help.New(),
		keys:      newMonitorKeyMap(),
	}
}

// Init queries the board's identity and switches reporting on
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.identifyBoardCmd(),
		m.analogReportingCmd(true),
		m.digitalReportingCmd(true),
	)
}

// identifyBoardCmd asks the board who it is and applies the sampling
// interval override if one was requested.
func (m MonitorModel) identifyBoardCmd() tea.Cmd {
	client := m.client
	interval := m.opts.SamplingInterval
	return func() tea.Msg {
		if err := client.QueryFirmware(); err != nil {
			return linkDownMsg{err: err}
		}
		if err := client.QueryProtocolVersion(); err != nil {
			return linkDownMsg{err: err}
		}
		if interval > 0 {
			if err := client.SetSamplingInterval(interval); err != nil {
				return linkDownMsg{err: err}
			}
			return noteMsg{text: fmt.Sprintf("sampling interval set to %s", interval)}
		}
		return nil
	}
}

func (m MonitorModel) analogReportingCmd(on bool) tea.Cmd {
	client, channels := m.client, m.opts.AnalogChannels
	return func() tea.Msg {
		for ch := 0; ch < channels; ch++ {
			if err := client.ReportAnalog(ch, on); err != nil {
				return linkDownMsg{err: err}
			}
		}
		return noteMsg{text: fmt.Sprintf("analog reporting %s (%d channels)", onOff(on), channels)}
	}
}

func (m MonitorModel) digitalReportingCmd(on bool) tea.Cmd {
	client, ports := m.client, m.opts.DigitalPorts
	return func() tea.Msg {
		for port := 0; port < ports; port++ {
			if err := client.ReportDigital(port, on); err != nil {
				return linkDownMsg{err: err}
			}
		}
		return noteMsg{text: fmt.Sprintf("digital reporting %s (%d ports)", onOff(on), ports)}
	}
}

// Update handles key presses and board traffic
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleAnalog):
			m.analogOn = !m.analogOn
			return m, m.analogReportingCmd(m.analogOn)
		case key.Matches(msg, m.keys.ToggleDigital):
			m.digitalOn = !m.digitalOn
			return m, m.digitalReportingCmd(m.digitalOn)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case analogReadingMsg:
		m.analog[msg.pin] = reading{value: msg.value, at: msg.at}
		return m, nil

	case digitalReadingMsg:
		m.digital[msg.port] = portReading{pins: msg.pins, at: msg.at}
		return m, nil

	case firmwareMsg:
		m.firmware = fmt.Sprintf("%s %d.%d", msg.name, msg.major, msg.minor)
		return m.appendLog(time.Now(), "firmware: "+m.firmware), nil

	case protocolVersionMsg:
		m.protocol = fmt.Sprintf("%d.%d", msg.major, msg.minor)
		return m.appendLog(time.Now(), "protocol version "+m.protocol), nil

	case boardTextMsg:
		return m.appendLog(msg.at, "board: "+msg.text), nil

	case noteMsg:
		return m.appendLog(time.Now(), msg.text), nil

	case linkDownMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m MonitorModel) appendLog(at time.Time, text string) MonitorModel {
	m.log = append(m.log, logEntry{at: at, text: text})
	if over := len(m.log) - m.opts.LogLines; over > 0 {
		m.log = m.log[over:]
	}
	return m
}

// View renders the monitor screen
func (m MonitorModel) View() string {
	if m.Width == 0 {
		return "Starting monitor..."
	}
	content := m.buildContent()
	helpText := m.help.View(m.keys)
	return RenderAppContainer(content, helpText, m.Width, m.Height)
}

func (m MonitorModel) buildContent() string {
	var b strings.Builder

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n\n")

	b.WriteString(SectionTitleStyle.Render("ANALOG INPUTS"))
	b.WriteString("\n")
	b.WriteString(m.renderAnalogTable())
	b.WriteString("\n\n")

	b.WriteString(SectionTitleStyle.Render("DIGITAL PORTS"))
	b.WriteString("\n")
	b.WriteString(m.renderDigitalTable())
	b.WriteString("\n\n")

	b.WriteString(SectionTitleStyle.Render("MESSAGES"))
	b.WriteString("\n")
	b.WriteString(m.renderLog())

	return b.String()
}

func (m MonitorModel) renderStatusLine() string {
	firmware := m.firmware
	if firmware == "" {
		firmware = "querying..."
	}
	proto := m.protocol
	if proto == "" {
		proto = "-"
	}

	parts := []string{
		StatusKeyStyle.Render("Target: ") + StatusValueStyle.Render(m.opts.Target),
		StatusKeyStyle.Render("Firmware: ") + StatusValueStyle.Render(firmware),
		StatusKeyStyle.Render("Protocol: ") + StatusValueStyle.Render(proto),
		StatusKeyStyle.Render("Analog: ") + renderToggle(m.analogOn),
		StatusKeyStyle.Render("Digital: ") + renderToggle(m.digitalOn),
	}
	return strings.Join(parts, "   ")
}

func renderToggle(on bool) string {
	if on {
		return ReportingOnStyle.Render("on")
	}
	return ReportingOffStyle.Render("off")
}

func (m MonitorModel) renderAnalogTable() string {
	if len(m.analog) == 0 {
		return EmptyHintStyle.Render("  waiting for analog reports...")
	}

	pins := make([]int, 0, len(m.analog))
	for pin := range m.analog {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	rows := make([]string, 0, len(pins)+1)
	rows = append(rows, TableHeaderStyle.Render(fmt.Sprintf("  %-4s %6s  %-20s  %s", "PIN", "VALUE", "", "UPDATED")))
	for _, pin := range pins {
		r := m.analog[pin]
		rows = append(rows, fmt.Sprintf("  %-4s %6d  %s  %s",
			fmt.Sprintf("A%d", pin),
			r.value,
			renderGauge(r.value, 20),
			UpdatedStyle.Render(r.at.Format("15:04:05")),
		))
	}
	return strings.Join(rows, "\n")
}

// renderGauge draws value as a bar of width cells, scaled to the 10-bit
// range most boards report. Larger values fill the bar.
func renderGauge(value, width int) string {
	const fullScale = 1023
	if value < 0 {
		value = 0
	}
	if value > fullScale {
		value = fullScale
	}
	filled := value * width / fullScale
	bar := strings.Repeat(GaugeFilled, filled) + strings.Repeat(GaugeEmpty, width-filled)
	return GaugeStyle.Render(bar)
}

func (m MonitorModel) renderDigitalTable() string {
	if len(m.digital) == 0 {
		return EmptyHintStyle.Render("  waiting for digital reports...")
	}

	ports := make([]int, 0, len(m.digital))
	for port := range m.digital {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	rows := make([]string, 0, len(ports)+1)
	rows = append(rows, TableHeaderStyle.Render(fmt.Sprintf("  %-5s %-7s %-10s %-6s %s", "PORT", "PINS", "76543210", "VALUE", "UPDATED")))
	for _, port := range ports {
		r := m.digital[port]
		rows = append(rows, fmt.Sprintf("  %-5d %-7s %-10s 0x%02X   %s",
			port,
			fmt.Sprintf("%d-%d", port*8, port*8+7),
			portBits(r.pins),
			r.pins,
			UpdatedStyle.Render(r.at.Format("15:04:05")),
		))
	}
	return strings.Join(rows, "\n")
}

// portBits renders a port bitmask with bit 7 on the left, matching the
// column caption.
func portBits(pins byte) string {
	return fmt.Sprintf("%08b", pins)
}

func (m MonitorModel) renderLog() string {
	if len(m.log) == 0 {
		return EmptyHintStyle.Render("  no messages yet")
	}

	lines := make([]string, 0, len(m.log))
	for _, e := range m.log {
		lines = append(lines, "  "+LogTimeStyle.Render(e.at.Format("15:04:05"))+"  "+e.text)
	}
	return strings.Join(lines, "\n")
}

func onOff(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// RunMonitor runs the full-screen pin monitor against a started client until
// the user quits or the board link goes down. The client's subscriptions and
// lifecycle stay with the caller; RunMonitor only adds listeners for the
// duration of the program and removes them on exit.
func RunMonitor(client *firmata.Client, opts MonitorOptions) error {
	m := NewMonitorModel(client, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	subs := []*firmata.Subscription{
		client.Listen(protocol.KindAnalog, func(msg protocol.Message) {
			if a, ok := msg.(*protocol.AnalogMessage); ok {
				p.Send(analogReadingMsg{pin: a.Pin, value: a.Value, at: time.Now()})
			}
		}),
		client.Listen(protocol.KindDigital, func(msg protocol.Message) {
			if d, ok := msg.(*protocol.DigitalMessage); ok {
				p.Send(digitalReadingMsg{port: d.Port, pins: d.Pins, at: time.Now()})
			}
		}),
		client.Listen(protocol.KindReportFirmware, func(msg protocol.Message) {
			if f, ok := msg.(*protocol.ReportFirmwareMessage); ok {
				p.Send(firmwareMsg{name: f.Name, major: f.Major, minor: f.Minor})
			}
		}),
		client.Listen(protocol.KindProtocolVersion, func(msg protocol.Message) {
			if v, ok := msg.(*protocol.ProtocolVersionMessage); ok {
				p.Send(protocolVersionMsg{major: v.Major, minor: v.Minor})
			}
		}),
		client.Listen(protocol.KindStringData, func(msg protocol.Message) {
			if s, ok := msg.(*protocol.StringDataMessage); ok {
				p.Send(boardTextMsg{text: s.Value, at: time.Now()})
			}
		}),
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-client.Done():
			p.Send(linkDownMsg{err: client.Err()})
		case <-watchDone:
		}
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(MonitorModel); ok && fm.err != nil {
		return fmt.Errorf("board link lost: %w", fm.err)
	}
	return nil
}
