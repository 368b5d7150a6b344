package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/adrianmross/region-select/pkg/selector"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func staticLoader(ds *regions.Dataset, err error) selector.LoaderFunc {
	return func(context.Context) (*regions.Dataset, error) { return ds, err }
}

// loadedModel runs the model's Init command and feeds the result back, as
// the bubbletea runtime would.
func loadedModel(t *testing.T, cfg config.Config, cfgPath string, load selector.LoaderFunc) tuiModel {
	t.Helper()
	m := newTuiModel(context.Background(), cfg, cfgPath, load)
	if !m.loading {
		t.Fatalf("expected loading before Init resolves")
	}
	if len(m.states.Items()) != 0 {
		t.Fatalf("expected no states before load")
	}
	model, _ := m.Update(m.Init()())
	return model.(tuiModel)
}

func TestTUILoadUsesCommandContextWithoutDeadline(t *testing.T) {
	type ctxKey struct{}
	parent := context.WithValue(context.Background(), ctxKey{}, "cmd")
	var got context.Context
	load := func(ctx context.Context) (*regions.Dataset, error) {
		got = ctx
		return sampleDataset(), nil
	}

	m := newTuiModel(parent, config.DefaultConfig(t.TempDir()), "", load)
	m.Init()()
	if got == nil {
		t.Fatalf("loader was not called")
	}
	if _, ok := got.Deadline(); ok {
		t.Fatalf("loader context should carry no deadline")
	}
	if got.Value(ctxKey{}) != "cmd" {
		t.Fatalf("loader should receive the command context")
	}
}

func press(m tuiModel, keys ...tea.KeyMsg) tuiModel {
	for _, k := range keys {
		model, _ := m.Update(k)
		m = model.(tuiModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyQ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func optionValues(l list.Model) []string {
	var out []string
	for _, it := range l.Items() {
		out = append(out, it.(optionItem).Value)
	}
	return out
}

func TestTUILoadPopulatesStates(t *testing.T) {
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(sampleDataset(), nil))

	if m.loading {
		t.Fatalf("expected loading to end")
	}
	if got := strings.Join(optionValues(m.states), ","); got != ",Lagos,Abia,Kano" {
		t.Fatalf("unexpected states %q", got)
	}
	if got := optionValues(m.lgas); len(got) != 1 || got[0] != "" {
		t.Fatalf("expected lga placeholder only, got %v", got)
	}
	if !strings.Contains(m.View(), "Jiha") {
		t.Fatalf("expected states list in view")
	}
}

func TestTUIPrimaryCursorRepopulatesLGAs(t *testing.T) {
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(sampleDataset(), nil))

	m = press(m, keyDown)
	if m.sel.Primary.Value() != "Lagos" {
		t.Fatalf("expected Lagos selected, got %q", m.sel.Primary.Value())
	}
	if got := strings.Join(optionValues(m.lgas), ","); got != ",Ikeja,Eti-Osa" {
		t.Fatalf("unexpected lgas %q", got)
	}

	m = press(m, keyTab, keyDown, keyDown)
	if m.sel.Secondary.Value() != "Eti-Osa" {
		t.Fatalf("expected Eti-Osa, got %q", m.sel.Secondary.Value())
	}

	// changing state again resets the lga list to the new state
	m = press(m, keyTab, keyDown)
	if m.sel.Primary.Value() != "Abia" {
		t.Fatalf("expected Abia, got %q", m.sel.Primary.Value())
	}
	if m.sel.Secondary.Value() != "" || m.lgas.Index() != 0 {
		t.Fatalf("expected lga reset to placeholder, got %q at %d", m.sel.Secondary.Value(), m.lgas.Index())
	}
	if got := strings.Join(optionValues(m.lgas), ","); got != ",Aba North,Umuahia South" {
		t.Fatalf("unexpected lgas %q", got)
	}
}

func TestTUIEnterOnLGASaves(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), cfgPath, staticLoader(sampleDataset(), nil))

	// enter on states moves focus, enter on lgas saves
	m = press(m, keyDown, keyEnter, keyDown, keyEnter)
	if !m.saved || !m.quitting {
		t.Fatalf("expected saved and quitting")
	}
	want := config.Selection{Region: "Lagos", SubRegion: "Ikeja"}
	if m.selected != want {
		t.Fatalf("want %+v, got %+v", want, m.selected)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Selection != want {
		t.Fatalf("selection not persisted: %+v", cfg.Selection)
	}
}

func TestTUIQuitSavesRegionOnQ(t *testing.T) {
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(sampleDataset(), nil))

	m = press(m, keyDown, keyDown, keyQ)
	if !m.saved {
		t.Fatalf("expected q to save")
	}
	if m.selected != (config.Selection{Region: "Abia"}) {
		t.Fatalf("unexpected selection %+v", m.selected)
	}
}

func TestTUIQuitOnPlaceholderSavesNothing(t *testing.T) {
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(sampleDataset(), nil))

	m = press(m, keyQ)
	if !m.quitting || m.saved {
		t.Fatalf("expected quit without save, quitting=%v saved=%v", m.quitting, m.saved)
	}
}

func TestTUIEscQuitsWithoutSave(t *testing.T) {
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(sampleDataset(), nil))

	m = press(m, keyDown, keyEsc)
	if !m.quitting {
		t.Fatalf("expected quitting after esc")
	}
	if m.saved {
		t.Fatalf("expected no save after esc")
	}
}

func TestTUIRestoresSavedSelection(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Selection = config.Selection{Region: "Lagos", SubRegion: "Eti-Osa"}
	m := loadedModel(t, cfg, "", staticLoader(sampleDataset(), nil))

	if m.states.Index() != 1 {
		t.Fatalf("expected Lagos under the cursor, got index %d", m.states.Index())
	}
	if m.lgas.Index() != 2 {
		t.Fatalf("expected Eti-Osa under the cursor, got index %d", m.lgas.Index())
	}
}

func TestTUILoadFailureShowsAlert(t *testing.T) {
	loadErr := &regions.LoadError{Source: "nigeria.json", Err: errors.New("404 Not Found")}
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(nil, loadErr))

	if !errors.Is(m.loadErr, regions.ErrDatasetLoad) {
		t.Fatalf("expected load error recorded, got %v", m.loadErr)
	}
	if !strings.Contains(m.View(), selector.DefaultFailureMessage) {
		t.Fatalf("expected alert in view, got %q", m.View())
	}
	if len(m.states.Items()) != 0 || len(m.lgas.Items()) != 0 {
		t.Fatalf("lists should stay empty after failure")
	}

	// any key dismisses the alert without quitting
	m = press(m, keyDown)
	if m.alert.message != "" || m.quitting {
		t.Fatalf("expected alert dismissed, message=%q quitting=%v", m.alert.message, m.quitting)
	}
	m = press(m, keyQ)
	if !m.quitting || m.saved {
		t.Fatalf("expected quit without save")
	}
}

func TestTUIFilteringGuardsHotkeys(t *testing.T) {
	m := loadedModel(t, config.DefaultConfig(t.TempDir()), "", staticLoader(sampleDataset(), nil))
	m.states.SetFilteringEnabled(true)
	m.states.SetFilterState(list.Filtering)

	m = press(m, keyQ)
	if m.quitting {
		t.Fatalf("expected q to be typed into the filter, not quit")
	}
	if m.states.FilterState() != list.Filtering {
		t.Fatalf("expected filtering state to remain active")
	}
}

func TestTUIPromptFallback(t *testing.T) {
	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })
	stubDataset(t, sampleDataset(), nil)
	cfgPath := writeConfig(t, config.DefaultConfig(t.TempDir()))

	tests := []struct {
		name  string
		input string
		want  config.Selection
	}{
		{name: "state and lga", input: "1\n2\n", want: config.Selection{Region: "Lagos", SubRegion: "Eti-Osa"}},
		{name: "state only", input: "3\n0\n", want: config.Selection{Region: "Kano"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTuiCmd()
			out := &bytes.Buffer{}
			cmd.SetOut(out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetArgs([]string{"--config", cfgPath})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !strings.Contains(out.String(), "1) Lagos") || !strings.Contains(out.String(), "Selected "+formatSelection(tt.want)) {
				t.Fatalf("unexpected prompt output:\n%s", out.String())
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Selection != tt.want {
				t.Fatalf("want %+v, got %+v", tt.want, cfg.Selection)
			}
		})
	}
}

func TestTUIPromptFallbackLoadFailure(t *testing.T) {
	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })
	stubDataset(t, nil, &regions.LoadError{Source: "x", Err: errors.New("boom")})
	cfgPath := writeConfig(t, config.DefaultConfig(t.TempDir()))

	cmd := newTuiCmd()
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"--config", cfgPath})
	if err := cmd.Execute(); !errors.Is(err, regions.ErrDatasetLoad) {
		t.Fatalf("expected dataset load error, got %v", err)
	}
	if strings.Count(stderr.String(), "alert: "+selector.DefaultFailureMessage) != 1 {
		t.Fatalf("expected exactly one alert, got %q", stderr.String())
	}
}

func TestTUIInvalidChoice(t *testing.T) {
	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })
	stubDataset(t, sampleDataset(), nil)
	cfgPath := writeConfig(t, config.DefaultConfig(t.TempDir()))

	cmd := newTuiCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("9\n"))
	cmd.SetArgs([]string{"--config", cfgPath})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "invalid choice") {
		t.Fatalf("expected invalid choice, got %v", err)
	}
}
