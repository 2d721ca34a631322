// Package dashboard provides the Bubble Tea dashboard interface.
package dashboard

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/injurydash/internal/chart"
	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/describe"
	"github.com/verte-zerg/injurydash/internal/model"
	"github.com/verte-zerg/injurydash/internal/stats"
)

const (
	tabDatasets = iota
	tabDashboard
)

const (
	plotHeight   = 10
	dateLayout   = "2006-01-02"
	dateStepDays = 7
	appTitle     = "Consumer Product Safety Commission"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	columnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	store *dataset.Store
	cfg   model.DashboardConfig

	scope    stats.Scope
	criteria model.FilterCriteria
	dash     chart.Dashboard
	errMsg   string

	tabs      []string
	activeTab int
	viewports []viewport.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a dashboard UI model over a loaded dataset.
func NewModel(st *dataset.Store, cfg model.DashboardConfig) *Model {
	scope := stats.NewScope(st, cfg.ProductMode, cfg.ProductCode)
	m := &Model{
		store:    st,
		cfg:      cfg,
		scope:    scope,
		criteria: scope.DefaultCriteria(cfg.AgeMin, cfg.AgeMax),
		tabs:     []string{"Datasets", "Dashboard"},
	}
	m.initInputs()
	m.initViewports()
	m.renderDatasetsTab()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		}
		if m.activeTab == tabDashboard && m.nudge(msg.String()) {
			return m, nil
		}
		vp := m.viewports[m.activeTab]
		var cmd tea.Cmd
		vp, cmd = vp.Update(msg)
		m.viewports[m.activeTab] = vp
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("From (YYYY-MM-DD): "),
		newFilterInput("To (YYYY-MM-DD): "),
		newFilterInput("Age min: "),
		newFilterInput("Age max: "),
	}
	m.setInputsFromCriteria()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromCriteria() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(m.criteria.DateStart.Format(dateLayout))
	m.filterInputs[1].SetValue(m.criteria.DateEnd.Format(dateLayout))
	m.filterInputs[2].SetValue(strconv.Itoa(m.criteria.AgeMin))
	m.filterInputs[3].SetValue(strconv.Itoa(m.criteria.AgeMax))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

// nudge moves one bound of the selection the way a slider handle would. The
// selection stays inside the scope bounds and is never inverted.
func (m *Model) nudge(key string) bool {
	c := m.criteria
	switch key {
	case "[":
		c.DateStart = c.DateStart.AddDate(0, 0, -dateStepDays)
	case "]":
		c.DateStart = minTime(c.DateStart.AddDate(0, 0, dateStepDays), c.DateEnd)
	case "{":
		c.DateEnd = maxTime(c.DateEnd.AddDate(0, 0, -dateStepDays), c.DateStart)
	case "}":
		c.DateEnd = c.DateEnd.AddDate(0, 0, dateStepDays)
	case ",":
		c.AgeMin--
	case ".":
		c.AgeMin = minInt(c.AgeMin+1, c.AgeMax)
	case "<":
		c.AgeMax = maxInt(c.AgeMax-1, c.AgeMin)
	case ">":
		c.AgeMax++
	case "r":
		c = m.scope.DefaultCriteria(m.cfg.AgeMin, m.cfg.AgeMax)
	default:
		return false
	}
	m.criteria = m.scope.Clamp(c)
	m.refreshReport()
	return true
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := lipgloss.JoinHorizontal(lipgloss.Center, m.renderTabs(), "  "+titleStyle.Render(appTitle))
	return padLines(tabs, m.width) + "\n" + padLines(m.renderSelectionSummary(), m.width)
}

func (m *Model) renderSelectionSummary() string {
	c := m.criteria
	summary := fmt.Sprintf("Product %d (%s)  seen in hospital %s..%s  age of patients %d-%d",
		m.scope.ProductCode, m.scope.ProductTitle,
		c.DateStart.Format(dateLayout), c.DateEnd.Format(dateLayout), c.AgeMin, c.AgeMax)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.activeTab == tabDashboard {
		help = "Nav: left/right  From: [ ]  To: { }  Age min: , .  Age max: < >  Reset: r  Range: /  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{
		"Range (enter to apply, esc to cancel)",
		headerStyle.Render(fmt.Sprintf("Dates %s..%s  Ages %d-%d",
			m.scope.MinDate.Format(dateLayout), m.scope.MaxDate.Format(dateLayout), m.scope.MinAge, m.scope.MaxAge)),
	}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.store, m.scope, m.criteria)
	if err != nil {
		m.errMsg = err.Error()
		m.renderDashboardTab()
		return
	}
	m.errMsg = ""
	m.dash = chart.Build(report)
	m.renderDashboardTab()
}

// renderTabContents rebuilds both tabs; only a resize changes the Datasets tab.
func (m *Model) renderTabContents() {
	m.renderDatasetsTab()
	m.renderDashboardTab()
}

func (m *Model) renderDatasetsTab() {
	if len(m.viewports) == 0 {
		return
	}
	m.viewports[tabDatasets].SetContent(renderDatasets(m.store, m.contentWidth()))
}

func (m *Model) renderDashboardTab() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		m.viewports[tabDashboard].SetContent("Failed to build dashboard.")
		return
	}
	m.viewports[tabDashboard].SetContent(renderDashboard(m.dash, m.contentWidth()))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func renderDatasets(st *dataset.Store, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Purpose") + "\n")
	b.WriteString(wrapText(describe.Purpose, width) + "\n\n")
	b.WriteString(sectionStyle.Render("Potential Uses") + "\n")
	for _, u := range describe.PotentialUses {
		b.WriteString(wrapText(u.Name+": "+u.Text, width) + "\n")
	}
	for _, t := range describe.Tables {
		b.WriteString("\n" + sectionStyle.Render(t.File) + "\n")
		b.WriteString(wrapText(t.Summary, width) + "\n")
		for _, c := range t.Columns {
			wrapped := wrapText(c.Name+": "+c.Doc, width)
			b.WriteString(strings.Replace(wrapped, c.Name, columnStyle.Render(c.Name), 1) + "\n")
		}
		b.WriteString("\n")
		lines := describe.Preview(st, t.File, describe.DefaultRows)
		if len(lines) <= 1 {
			b.WriteString(mutedStyle.Render("(no rows)") + "\n")
			continue
		}
		b.WriteString(headerStyle.Render(truncateLine(lines[0], width)) + "\n")
		for _, line := range lines[1:] {
			b.WriteString(mutedStyle.Render(truncateLine(line, width)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDashboard(d chart.Dashboard, width int) string {
	var buf bytes.Buffer
	if err := chart.RenderDashboard(&buf, d, chart.TextOptions{Width: width, PlotHeight: plotHeight, Color: true}); err != nil {
		return fmt.Sprintf("Failed to render dashboard: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.activeTab = tabDashboard
	m.setInputsFromCriteria()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	start, err := dataset.ParseDate(strings.TrimSpace(m.filterInputs[0].Value()))
	if err != nil {
		return fmt.Errorf("invalid from date (expected YYYY-MM-DD)")
	}
	end, err := dataset.ParseDate(strings.TrimSpace(m.filterInputs[1].Value()))
	if err != nil {
		return fmt.Errorf("invalid to date (expected YYYY-MM-DD)")
	}
	ageMin, err := strconv.Atoi(strings.TrimSpace(m.filterInputs[2].Value()))
	if err != nil {
		return fmt.Errorf("invalid age min (use integer)")
	}
	ageMax, err := strconv.Atoi(strings.TrimSpace(m.filterInputs[3].Value()))
	if err != nil {
		return fmt.Errorf("invalid age max (use integer)")
	}
	c := model.FilterCriteria{DateStart: start, DateEnd: end, AgeMin: ageMin, AgeMax: ageMax}
	if err := stats.ValidateCriteria(c); err != nil {
		return err
	}
	m.criteria = m.scope.Clamp(c)
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
