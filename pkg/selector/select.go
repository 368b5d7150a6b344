package selector

// Option is one entry of a selection input.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Text  string `json:"text" yaml:"text"`
}

// Select models a single-choice selection input owned by a host (a terminal
// list, an HTML <select>, a prompt). It is not safe for concurrent use; hosts
// drive it from one event loop.
type Select struct {
	ID        string
	options   []Option
	value     string
	listeners []func()
}

// NewSelect returns a Select holding the host's initial options. The value
// starts at the first option, as a browser select does.
func NewSelect(id string, initial ...Option) *Select {
	s := &Select{ID: id}
	s.Reset(initial...)
	return s
}

// Options returns a copy of the current options.
func (s *Select) Options() []Option {
	return append([]Option(nil), s.options...)
}

// Value returns the current value.
func (s *Select) Value() string { return s.value }

// Append adds options after the existing ones.
func (s *Select) Append(opts ...Option) {
	s.options = append(s.options, opts...)
}

// Reset replaces all options and moves the value to the first one.
func (s *Select) Reset(opts ...Option) {
	s.options = append(s.options[:0:0], opts...)
	s.value = ""
	if len(s.options) > 0 {
		s.value = s.options[0].Value
	}
}

// OnChange registers fn to run after every value change.
func (s *Select) OnChange(fn func()) {
	s.listeners = append(s.listeners, fn)
}

// SetValue changes the value and notifies listeners. Setting the current
// value again is not a change.
func (s *Select) SetValue(v string) {
	if v == s.value {
		return
	}
	s.value = v
	for _, fn := range s.listeners {
		fn()
	}
}

// Text returns the display text of the option holding the current value.
func (s *Select) Text() string {
	for _, o := range s.options {
		if o.Value == s.value {
			return o.Text
		}
	}
	return ""
}
