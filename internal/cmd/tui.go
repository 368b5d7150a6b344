package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/adrianmross/region-select/internal/logger"
	"github.com/adrianmross/region-select/pkg/config"
	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/adrianmross/region-select/pkg/selector"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	stagedColor = lipgloss.Color("205")
	infoColor   = lipgloss.Color("244")
	alertColor  = lipgloss.Color("203")
)

const (
	focusStates = iota
	focusLGAs
)

// isTerminal checks if stdin and stdout are TTYs. Swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newTuiCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive state and LGA picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal() {
				return runPromptFallback(cmd, cfgPath)
			}
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			m := newTuiModel(cmd.Context(), cfg, path, datasetLoader(cfg))
			p := tea.NewProgram(m, tea.WithContext(cmd.Context()))
			finalModel, err := p.Run()
			if err != nil {
				return err
			}
			fm := finalModel.(tuiModel)
			if fm.saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", formatSelection(fm.selected))
			}
			if fm.err != nil {
				return fm.err
			}
			return fm.loadErr
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	return cmd
}

// alertBox is the TUI notifier. The model holds a pointer so the message
// survives bubbletea's value copies.
type alertBox struct {
	message string
}

func (a *alertBox) Alert(message string) { a.message = message }

type optionItem struct{ selector.Option }

func (o optionItem) Title() string       { return o.Text }
func (o optionItem) Description() string { return "" }
func (o optionItem) FilterValue() string { return o.Text }

func toOptionItems(opts []selector.Option) []list.Item {
	items := make([]list.Item, 0, len(opts))
	for _, o := range opts {
		items = append(items, optionItem{o})
	}
	return items
}

type markedItem struct {
	base  list.Item
	title string
}

func (m markedItem) Title() string       { return m.title }
func (m markedItem) Description() string { return "" }
func (m markedItem) FilterValue() string { return m.base.FilterValue() }

// savedDelegate colors the option matching the saved selection.
type savedDelegate struct {
	list.DefaultDelegate
	saved string
}

func configureDefaultDelegateDensity(d *list.DefaultDelegate) {
	d.SetHeight(1)
	d.SetSpacing(0)
	d.ShowDescription = false
}

func newSavedDelegate(saved string) *savedDelegate {
	d := list.NewDefaultDelegate()
	configureDefaultDelegateDensity(&d)
	return &savedDelegate{DefaultDelegate: d, saved: saved}
}

func (d *savedDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	if oi, ok := listItem.(optionItem); ok && d.saved != "" && oi.Value == d.saved {
		origNormal := d.Styles.NormalTitle
		origSelected := d.Styles.SelectedTitle
		d.Styles.NormalTitle = origNormal.Foreground(stagedColor).Bold(true)
		d.Styles.SelectedTitle = origSelected.Foreground(stagedColor).Bold(true)
		d.DefaultDelegate.Render(w, m, index, markedItem{base: listItem, title: "[*] " + oi.Text})
		d.Styles.NormalTitle = origNormal
		d.Styles.SelectedTitle = origSelected
		return
	}
	d.DefaultDelegate.Render(w, m, index, listItem)
}

type tuiModel struct {
	ctx      context.Context
	sel      *selector.RegionSelector
	alert    *alertBox
	load     selector.LoaderFunc
	states   list.Model
	lgas     list.Model
	focus    int
	cfg      config.Config
	cfgPath  string
	loading  bool
	status   string
	selected config.Selection
	saved    bool
	quitting bool
	err      error
	loadErr  error
}

type datasetMsg struct {
	ds  *regions.Dataset
	err error
}

func newTuiModel(ctx context.Context, cfg config.Config, cfgPath string, load selector.LoaderFunc) tuiModel {
	if ctx == nil {
		ctx = context.Background()
	}
	defaultWidth, defaultHeight := 80, 20
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if w > 0 {
			defaultWidth = w
		}
		if h > 0 {
			defaultHeight = h - 4
		}
	}
	if defaultWidth < 40 {
		defaultWidth = 40
	}
	if defaultHeight < 10 {
		defaultHeight = 10
	}

	alert := &alertBox{}
	sel := selector.NewDefault(cfg.Options.Settings(), alert, logger.L())

	states := newOptionList("Jiha", cfg.Selection.Region, defaultWidth/2, defaultHeight)
	lgas := newOptionList("LGA", cfg.Selection.SubRegion, defaultWidth-defaultWidth/2, defaultHeight)

	return tuiModel{
		ctx:     ctx,
		sel:     sel,
		alert:   alert,
		load:    load,
		states:  states,
		lgas:    lgas,
		cfg:     cfg,
		cfgPath: cfgPath,
		loading: true,
	}
}

func newOptionList(title, saved string, width, height int) list.Model {
	l := list.New(nil, newSavedDelegate(saved), width, height)
	l.Title = title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	return l
}

func (m tuiModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m tuiModel) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		ds, err := load(ctx)
		return datasetMsg{ds: ds, err: err}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.states.SetSize(msg.Width/2, msg.Height-4)
		m.lgas.SetSize(msg.Width-msg.Width/2, msg.Height-4)
		return m, nil
	case datasetMsg:
		m.applyDataset(msg)
		return m, nil
	case tea.KeyMsg:
		if m.alert.message != "" {
			// any key dismisses the alert
			m.alert.message = ""
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		// while filtering, every key goes to the focused list
		if m.focused().FilterState() == list.Filtering {
			return m.updateFocused(msg)
		}

		switch msg.String() {
		case "esc":
			m.quitting = true
			return m, tea.Quit
		case "q", "ctrl+s":
			return m.saveAndQuit()
		case "tab", "shift+tab":
			if m.sel.Loaded() {
				m.focus = 1 - m.focus
			}
			return m, nil
		case "enter":
			if !m.sel.Loaded() {
				return m, nil
			}
			if m.focus == focusStates {
				m.focus = focusLGAs
				return m, nil
			}
			return m.saveAndQuit()
		}
		return m.updateFocused(msg)
	}

	if m.focus == focusLGAs {
		m.lgas, cmd = m.lgas.Update(msg)
	} else {
		m.states, cmd = m.states.Update(msg)
	}
	return m, cmd
}

// applyDataset hands the load result to the selector and mirrors its options
// into the lists. A saved selection is restored as if the user picked it.
func (m *tuiModel) applyDataset(msg datasetMsg) {
	m.loading = false
	err := m.sel.Initialize(context.Background(), func(context.Context) (*regions.Dataset, error) {
		return msg.ds, msg.err
	})
	if err != nil {
		m.loadErr = err
		return
	}
	if sel := m.cfg.Selection; sel.Region != "" {
		m.sel.Choose(sel.Region, sel.SubRegion)
	}
	m.states.SetItems(toOptionItems(m.sel.Primary.Options()))
	m.states.Select(indexOfValue(m.sel.Primary))
	m.refreshSubRegions()
}

func (m *tuiModel) focused() *list.Model {
	if m.focus == focusLGAs {
		return &m.lgas
	}
	return &m.states
}

func (m tuiModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusLGAs {
		m.lgas, cmd = m.lgas.Update(msg)
		m.syncSecondary()
		return m, cmd
	}
	m.states, cmd = m.states.Update(msg)
	m.syncPrimary()
	return m, cmd
}

// syncPrimary treats the states cursor as the primary selection.
func (m *tuiModel) syncPrimary() {
	if !m.sel.Loaded() {
		return
	}
	item, ok := m.states.SelectedItem().(optionItem)
	if !ok {
		return
	}
	before := m.sel.Primary.Value()
	m.sel.Primary.SetValue(item.Value)
	if m.sel.Primary.Value() != before {
		m.refreshSubRegions()
	}
}

func (m *tuiModel) syncSecondary() {
	if !m.sel.Loaded() {
		return
	}
	if item, ok := m.lgas.SelectedItem().(optionItem); ok {
		m.sel.Secondary.SetValue(item.Value)
	}
}

func (m *tuiModel) refreshSubRegions() {
	m.lgas.ResetFilter()
	m.lgas.SetItems(toOptionItems(m.sel.Secondary.Options()))
	m.lgas.Select(indexOfValue(m.sel.Secondary))
}

func indexOfValue(s *selector.Select) int {
	for i, o := range s.Options() {
		if o.Value == s.Value() {
			return i
		}
	}
	return 0
}

// saveAndQuit persists the current selection and exits. Nothing is saved
// while the primary selector sits on its placeholder.
func (m tuiModel) saveAndQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	region := m.sel.Primary.Value()
	if !m.sel.Loaded() || region == "" {
		return m, tea.Quit
	}
	cfg := m.cfg
	if err := cfg.SetSelection(m.sel.Dataset(), region, m.sel.Secondary.Value()); err != nil {
		m.err = err
		return m, tea.Quit
	}
	if m.cfgPath != "" {
		if err := config.Save(m.cfgPath, cfg); err != nil {
			m.err = err
			return m, tea.Quit
		}
	}
	m.cfg = cfg
	m.selected = cfg.Selection
	m.saved = true
	return m, tea.Quit
}

func (m tuiModel) View() string {
	info := lipgloss.NewStyle().Foreground(infoColor)
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}
	if m.quitting {
		if m.saved {
			return fmt.Sprintf("Selected %s\n", formatSelection(m.selected))
		}
		return ""
	}
	if m.alert.message != "" {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(alertColor).
			Padding(1, 2).
			Render(m.alert.message)
		return fmt.Sprintf("%s\n%s", box, info.Render("press any key"))
	}
	if m.loading {
		return info.Render("Loading…")
	}

	active := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(stagedColor)
	idle := lipgloss.NewStyle().Border(lipgloss.HiddenBorder())
	left, right := idle, idle
	if m.focus == focusStates {
		left = active
	} else {
		right = active
	}
	instructions := "tab switch • enter next/save • / filter • q save • esc quit"
	meta := fmt.Sprintf("state:%s | lga:%s", orDash(m.sel.Primary.Value()), orDash(m.sel.Secondary.Value()))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left.Render(m.states.View()), right.Render(m.lgas.View()))
	return fmt.Sprintf("%s\n%s\n%s", info.Render(instructions), info.Render(meta), body)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// runPromptFallback provides a non-TTY prompt-based flow.
func runPromptFallback(cmd *cobra.Command, cfgPathFlag string) error {
	path, cfg, err := loadConfig(cmd, cfgPathFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	notifier := selector.NotifierFunc(func(msg string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "alert: %s\n", msg)
	})
	sel := selector.NewDefault(cfg.Options.Settings(), notifier, logger.L())
	if err := sel.Initialize(cmd.Context(), datasetLoader(cfg)); err != nil {
		return err
	}

	states := sel.Primary.Options()[1:]
	fmt.Fprintln(out, "Select state:")
	for i, o := range states {
		fmt.Fprintf(out, "%d) %s\n", i+1, o.Text)
	}
	idx, err := readChoice(cmd, len(states))
	if err != nil {
		return err
	}
	sel.Primary.SetValue(states[idx].Value)

	lgas := sel.Secondary.Options()[1:]
	if len(lgas) > 0 {
		fmt.Fprintln(out, "Select LGA (or 0 for none):")
		fmt.Fprintf(out, "0) %s\n", sel.Settings().Placeholder)
		for i, o := range lgas {
			fmt.Fprintf(out, "%d) %s\n", i+1, o.Text)
		}
		lidx, err := readChoiceZero(cmd, len(lgas))
		if err != nil {
			return err
		}
		if lidx >= 0 {
			sel.Secondary.SetValue(lgas[lidx].Value)
		}
	}

	if err := cfg.SetSelection(sel.Dataset(), sel.Primary.Value(), sel.Secondary.Value()); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Selected %s\n", formatSelection(cfg.Selection))
	return nil
}

func readChoice(cmd *cobra.Command, n int) (int, error) {
	var choice int
	if _, err := fmt.Fscan(cmd.InOrStdin(), &choice); err != nil {
		return 0, err
	}
	if choice < 1 || choice > n {
		return 0, fmt.Errorf("invalid choice")
	}
	return choice - 1, nil
}

func readChoiceZero(cmd *cobra.Command, n int) (int, error) {
	var choice int
	if _, err := fmt.Fscan(cmd.InOrStdin(), &choice); err != nil {
		return 0, err
	}
	if choice == 0 {
		return -1, nil
	}
	if choice < 1 || choice > n {
		return 0, fmt.Errorf("invalid choice")
	}
	return choice - 1, nil
}
