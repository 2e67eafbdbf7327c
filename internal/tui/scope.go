// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/engine"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// frameInterval is how often the views poll their sinks.
const frameInterval = 33 * time.Millisecond

var (
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065")).Bold(true)
	axisStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E05252")).Bold(true)
)

// Controller is the part of the capture engine the scope view drives.
type Controller interface {
	TogglePause() bool
	Paused() bool
	Stats() engine.Stats
	Err() error
}

// Views selects which sinks are shown and their vertical ranges. A nil sink
// hides its view.
type Views struct {
	Scope         *present.ScopeSink
	ScopeRange    Range
	Spectrum      *present.SpectrumSink
	SpectrumRange Range
	Bars          *present.BarSink
	BarRange      Range
}

func (v Views) count() int {
	n := 0
	if v.Scope != nil {
		n++
	}
	if v.Spectrum != nil {
		n++
	}
	if v.Bars != nil {
		n++
	}
	return n
}

type scopeKeyMap struct {
	Pause key.Binding
	Reset key.Binding
	Quit  key.Binding
}

func (k scopeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Quit}
}

func (k scopeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var scopeKeys = scopeKeyMap{
	Pause: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset max hold")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ScopeModel is the Bubble Tea model for the live views. It polls the sink
// mailboxes on every tick and draws whatever frame is newest.
type ScopeModel struct {
	ctrl  Controller
	views Views
	title string
	keys  scopeKeyMap
	help  help.Model

	width, height int
	ready         bool

	wave     present.WaveformFrame
	waveSeq  uint64
	spectrum present.SpectrumFrame
	specSeq  uint64
	bars     present.BarFrame
	barSeq   uint64

	err error
}

// NewScopeModel creates the live view model. title describes the capture
// source and is shown in the header.
func NewScopeModel(ctrl Controller, views Views, title string) ScopeModel {
	return ScopeModel{
		ctrl:  ctrl,
		views: views,
		title: title,
		keys:  scopeKeys,
		help:  help.New(),
	}
}

// Init starts the polling tick.
func (m ScopeModel) Init() tea.Cmd {
	return tick()
}

// Update handles ticks, resizes and key presses.
func (m ScopeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case tickMsg:
		return m.poll(), tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.ctrl.TogglePause()
		case key.Matches(msg, m.keys.Reset):
			if m.views.Spectrum != nil {
				m.views.Spectrum.Reset()
			}
			if m.views.Bars != nil {
				m.views.Bars.Reset()
			}
		}
	}
	return m, nil
}

// poll picks up any frames published since the last tick. Once the engine
// has failed nothing new arrives and the last frames stay on screen.
func (m ScopeModel) poll() ScopeModel {
	if s := m.views.Scope; s != nil {
		if f, seq, ok := s.Frames.Since(m.waveSeq); ok {
			m.wave, m.waveSeq = f, seq
		}
	}
	if s := m.views.Spectrum; s != nil {
		if f, seq, ok := s.Frames.Since(m.specSeq); ok {
			m.spectrum, m.specSeq = f, seq
		}
	}
	if s := m.views.Bars; s != nil {
		if f, seq, ok := s.Frames.Since(m.barSeq); ok {
			m.bars, m.barSeq = f, seq
		}
	}
	if err := m.ctrl.Err(); err != nil {
		m.err = err
	}
	return m
}

// View renders the enabled views, the status line and the key help.
func (m ScopeModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("SoundWaveformInspect"))
	if m.title != "" {
		sb.WriteString(" " + infoStyle.Render(m.title))
	}
	sb.WriteString("\n\n")

	plotHeight := m.plotHeight()
	if m.views.Scope != nil {
		title := fmt.Sprintf("Time domain  L rms %.1f pk %d", m.wave.LeftRMS, m.wave.LeftPeak)
		if m.wave.Right != nil {
			title += fmt.Sprintf("  R rms %.1f pk %d", m.wave.RightRMS, m.wave.RightPeak)
		}
		m.writePanel(&sb, title,
			renderWaveform(m.wave, m.views.ScopeRange, m.width, plotHeight),
			waveformAxis(m.wave, m.width))
	}
	if m.views.Spectrum != nil {
		m.writePanel(&sb, fmt.Sprintf("Frequency domain  peak %s", formatHz(m.spectrum.PeakFrequency())),
			renderSpectrum(m.spectrum, m.views.SpectrumRange, m.width, plotHeight),
			spectrumAxis(m.spectrum, m.width))
	}
	if m.views.Bars != nil {
		m.writePanel(&sb, fmt.Sprintf("Spectrum bars  %d bands", len(m.bars.Levels)),
			renderBars(m.bars, m.views.BarRange, m.width, plotHeight),
			barsAxis(m.bars, m.width))
	}

	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// plotHeight shares the rows left after the header, status and help lines
// between the enabled views. Each view also needs a title and an axis line.
func (m ScopeModel) plotHeight() int {
	n := max(m.views.count(), 1)
	return max((m.height-4)/n-2, 3)
}

func (m ScopeModel) writePanel(sb *strings.Builder, title, plot, axis string) {
	sb.WriteString(sectionStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(plot)
	sb.WriteString("\n")
	sb.WriteString(axis)
	sb.WriteString("\n")
}

func (m ScopeModel) statusLine() string {
	var state string
	switch {
	case m.err != nil:
		state = errorStyle.Render("■ STOPPED: " + m.err.Error())
	case m.ctrl.Paused():
		state = pausedStyle.Render("❚❚ PAUSED")
	default:
		state = liveStyle.Render("● LIVE")
	}
	st := m.ctrl.Stats()
	return fmt.Sprintf("%s  %s", state, infoStyle.Render(fmt.Sprintf(
		"blocks read %d, shown %d, skipped %d", st.BlocksRead, st.BlocksProcessed, st.BlocksSkipped)))
}

// StartScopeUI runs the live views until the user quits or ctx is
// cancelled.
func StartScopeUI(ctx context.Context, model ScopeModel) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
