package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	p := Make(WithMode("cpu"), WithDir("/tmp/x"), WithQuiet(true))

	if p.Mode != "cpu" || p.Dir != "/tmp/x" || !p.Quiet {
		t.Errorf("Make = %+v", p)
	}
}

func TestStartDisabled(t *testing.T) {
	// An empty mode never starts a session, regardless of build tags.
	s := Make().Start()
	s.Stop()

	if _, ok := s.(ignore); !ok {
		t.Errorf("Start with empty mode = %T, want ignore", s)
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if Enabled != (len(modes) > 0) {
		t.Errorf("Enabled = %v with %d modes", Enabled, len(modes))
	}

	if !slices.IsSorted(modes) {
		t.Errorf("Modes() not sorted: %v", modes)
	}
}
