package selector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adrianmross/region-select/pkg/regions"
)

const (
	// PrimaryID and SecondaryID are the element identifiers of the two selectors.
	PrimaryID   = "state"
	SecondaryID = "lga"

	DefaultPrimaryPlaceholder = "-- Zaɓi Jiha --"
	DefaultPlaceholder        = "-- Zaɓi LGA --"
	DefaultFailureMessage     = "An kasa loda fayil ɗin nigeria.json"
)

var errNoDataset = errors.New("loader returned no dataset")

// Settings holds the literal display text used by a RegionSelector.
type Settings struct {
	PrimaryPlaceholder string
	Placeholder        string
	FailureMessage     string
}

// DefaultSettings returns the stock display text.
func DefaultSettings() Settings {
	return Settings{
		PrimaryPlaceholder: DefaultPrimaryPlaceholder,
		Placeholder:        DefaultPlaceholder,
		FailureMessage:     DefaultFailureMessage,
	}
}

// WithDefaults fills empty fields with the stock text.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.PrimaryPlaceholder == "" {
		s.PrimaryPlaceholder = d.PrimaryPlaceholder
	}
	if s.Placeholder == "" {
		s.Placeholder = d.Placeholder
	}
	if s.FailureMessage == "" {
		s.FailureMessage = d.FailureMessage
	}
	return s
}

// Notifier shows a blocking, user-visible message.
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Alert(message string) { f(message) }

// LoaderFunc retrieves the dataset. It is the only suspension point of a
// RegionSelector.
type LoaderFunc func(ctx context.Context) (*regions.Dataset, error)

// RegionSelector keeps a secondary selector in step with a primary one using
// a dataset loaded once.
type RegionSelector struct {
	Primary   *Select
	Secondary *Select

	settings Settings
	notifier Notifier
	log      *slog.Logger
	data     *regions.Dataset
}

// New wires a RegionSelector over host-owned selectors.
func New(primary, secondary *Select, settings Settings, notifier Notifier, log *slog.Logger) *RegionSelector {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	if log == nil {
		log = slog.Default()
	}
	return &RegionSelector{
		Primary:   primary,
		Secondary: secondary,
		settings:  settings.WithDefaults(),
		notifier:  notifier,
		log:       log,
	}
}

// NewDefault creates both selectors with their placeholder options and wires
// them together.
func NewDefault(settings Settings, notifier Notifier, log *slog.Logger) *RegionSelector {
	settings = settings.WithDefaults()
	primary := NewSelect(PrimaryID, Option{Value: "", Text: settings.PrimaryPlaceholder})
	secondary := NewSelect(SecondaryID, Option{Value: "", Text: settings.Placeholder})
	return New(primary, secondary, settings, notifier, log)
}

// Settings returns the effective display text.
func (r *RegionSelector) Settings() Settings { return r.settings }

// Loaded reports whether Initialize has succeeded.
func (r *RegionSelector) Loaded() bool { return r.data != nil }

// Dataset returns the loaded dataset, or nil before a successful Initialize.
func (r *RegionSelector) Dataset() *regions.Dataset { return r.data }

// Initialize loads the dataset, appends one primary option per region in
// dataset order and starts listening for primary changes. On failure it
// alerts once, logs the cause and leaves both selectors untouched; the error
// is returned for exit-status purposes only. A loaded selector ignores
// further calls.
func (r *RegionSelector) Initialize(ctx context.Context, load LoaderFunc) error {
	if r.data != nil {
		return nil
	}
	ds, err := load(ctx)
	if err == nil && ds == nil {
		err = &regions.LoadError{Source: "loader", Err: errNoDataset}
	}
	if err != nil {
		r.notifier.Alert(r.settings.FailureMessage)
		r.log.Error("dataset load failed", "error", err)
		return err
	}

	r.data = ds
	for _, region := range ds.Regions() {
		r.Primary.Append(Option{Value: region, Text: region})
	}
	r.Primary.OnChange(r.OnPrimarySelectionChange)
	r.log.Debug("dataset loaded", "regions", ds.Len())
	return nil
}

// OnPrimarySelectionChange resets the secondary selector to its placeholder
// and, when the primary value names a known region, appends its sub-regions.
func (r *RegionSelector) OnPrimarySelectionChange() {
	r.Secondary.Reset(SecondaryOptions(r.data, r.settings.Placeholder, r.Primary.Value())...)
}

// Choose selects region and then subRegion, as a user would. Unknown values
// are accepted and yield no sub-regions.
func (r *RegionSelector) Choose(region, subRegion string) {
	r.Primary.SetValue(region)
	if subRegion != "" {
		r.Secondary.SetValue(subRegion)
	}
}

// SecondaryOptions returns the secondary options for region: the placeholder
// followed by the region's sub-regions in dataset order. An empty or unknown
// region yields the placeholder alone.
func SecondaryOptions(ds *regions.Dataset, placeholder, region string) []Option {
	out := []Option{{Value: "", Text: placeholder}}
	if region == "" {
		return out
	}
	subs, ok := ds.SubRegions(region)
	if !ok {
		return out
	}
	for _, s := range subs {
		out = append(out, Option{Value: s, Text: s})
	}
	return out
}
