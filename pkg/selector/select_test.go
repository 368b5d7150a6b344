package selector

import "testing"

func TestSelectResetMovesValueToFirstOption(t *testing.T) {
	s := NewSelect("lga", Option{Value: "", Text: "pick"})
	s.Append(Option{Value: "a", Text: "A"})
	s.SetValue("a")
	if s.Value() != "a" {
		t.Fatalf("expected a, got %q", s.Value())
	}
	s.Reset(Option{Value: "", Text: "pick"})
	if s.Value() != "" || len(s.Options()) != 1 {
		t.Fatalf("reset did not restore placeholder: %q %+v", s.Value(), s.Options())
	}
	s.Reset()
	if s.Value() != "" || len(s.Options()) != 0 {
		t.Fatalf("empty reset should clear everything")
	}
}

func TestSelectSetValueNotifiesOnChangeOnly(t *testing.T) {
	s := NewSelect("state", Option{Value: "", Text: "pick"})
	calls := 0
	s.OnChange(func() { calls++ })

	s.SetValue("Lagos")
	s.SetValue("Lagos")
	s.SetValue("")
	if calls != 2 {
		t.Fatalf("expected 2 change notifications, got %d", calls)
	}
}

func TestSelectOptionsReturnsCopy(t *testing.T) {
	s := NewSelect("state", Option{Value: "x", Text: "X"})
	opts := s.Options()
	opts[0].Text = "mutated"
	if s.Options()[0].Text != "X" {
		t.Fatalf("options mutated through returned slice")
	}
	if s.Text() != "X" {
		t.Fatalf("expected text X, got %q", s.Text())
	}
}
