// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// DeviceLister returns the devices to show.
type DeviceLister func() ([]audio.Device, error)

// DeviceListModel represents the Bubble Tea model for listing audio devices
type DeviceListModel struct {
	list          DeviceLister
	blockDuration float64

	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewDeviceListModel creates a new device list model. blockDuration is used
// to preview the capture format of the selected device.
func NewDeviceListModel(list DeviceLister, blockDuration float64) DeviceListModel {
	return DeviceListModel{
		list:          list,
		blockDuration: blockDuration,
		activeScreen:  ListScreen,
	}
}

// Init initializes the Bubble Tea model
func (m DeviceListModel) Init() tea.Cmd {
	list := m.list
	return func() tea.Msg {
		devices, err := list()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg{devices}
	}
}

// Update handles input and updates the model
func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
			m.viewport.SetContent(m.content())
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.selectedIndex >= len(m.devices) {
			m.selectedIndex = 0
		}
		if m.ready {
			m.viewport.SetContent(m.content())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if m.err != nil || key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = DetailScreen
				}
			}
		case DetailScreen:
			if key.Matches(msg, key.NewBinding(key.WithKeys("esc", "backspace"))) {
				m.activeScreen = ListScreen
			}
		}
		if m.ready {
			m.viewport.SetContent(m.content())
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the UI
func (m DeviceListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Audio Device List")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Device Details")
		help = infoStyle.Render("Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DeviceListModel) content() string {
	if m.activeScreen == DetailScreen && len(m.devices) > 0 {
		return m.renderDeviceDetails()
	}
	return m.renderDevices()
}

// renderDevices formats the device list
func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Type())
		deviceInfo += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderDeviceDetails shows the selected device and the capture format it
// would be opened with.
func (m DeviceListModel) renderDeviceDetails() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	fmt.Fprintf(&sb, "Device: %s\n\n", highlightStyle.Render(device.Name))
	fmt.Fprintf(&sb, "  Host API:            %s\n", device.HostAPI)
	fmt.Fprintf(&sb, "  Type:                %s\n", device.Type())
	fmt.Fprintf(&sb, "  Loopback capture:    %s\n", yesNo(device.IsLoopback))
	fmt.Fprintf(&sb, "  Default sample rate: %.0f Hz\n\n", device.DefaultSampleRate)

	if device.MaxInputChannels == 0 {
		sb.WriteString("This device cannot be captured from.\n")
		return sb.String()
	}

	mode := audio.ModeInput
	if device.IsLoopback {
		mode = audio.ModeLoopback
	}
	cfg := audio.CaptureConfigFor(device, mode, m.blockDuration)
	sb.WriteString("Capture format:\n")
	fmt.Fprintf(&sb, "  Mode:         %s\n", cfg.Mode)
	fmt.Fprintf(&sb, "  Channels:     %d\n", cfg.Channels)
	fmt.Fprintf(&sb, "  Block:        %d frames (%.1f ms)\n", cfg.BlockLength(), cfg.BlockDuration*1000)
	fmt.Fprintf(&sb, "  FFT bins:     %d\n", cfg.BlockLength()/2)
	fmt.Fprintf(&sb, "  Bin spacing:  %.2f Hz\n", cfg.SampleRate/float64(max(cfg.BlockLength(), 1)))
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// StartDeviceListUI launches the Bubble Tea TUI for listing devices
func StartDeviceListUI(list DeviceLister, blockDuration float64) error {
	p := tea.NewProgram(
		NewDeviceListModel(list, blockDuration),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
