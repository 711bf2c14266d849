package param

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("OrderAndLookup", func(t *testing.T) {
		reg := NewRegistry()

		p1 := GainParameter("gain", "Gain").Build()
		p2 := BypassParameter("bypass", "Bypass").Build()
		p3 := FrequencyParameter("cutoff", "Cutoff", 20, 20000, 1000).Build()

		if err := reg.Add(p1, p2, p3); err != nil {
			t.Fatalf("Registration failed: %v", err)
		}

		if reg.Count() != 3 {
			t.Errorf("Expected 3 parameters, got %d", reg.Count())
		}
		if reg.Get("bypass") != p2 {
			t.Error("Failed to retrieve parameter by ID")
		}
		if reg.Get("missing") != nil {
			t.Error("Expected nil for unknown ID")
		}

		var ids []string
		for p := range reg.Params() {
			ids = append(ids, p.ID)
		}
		expected := []string{"gain", "bypass", "cutoff"}
		for i, id := range expected {
			if ids[i] != id {
				t.Errorf("Position %d: expected %s, got %s", i, id, ids[i])
			}
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Add(Float("gain", "Gain", 0, 1, 0).Build()); err != nil {
			t.Fatalf("Registration failed: %v", err)
		}
		if err := reg.Add(Float("gain", "Other Gain", 0, 1, 0).Build()); err == nil {
			t.Error("Expected error for duplicate ID")
		}
		if reg.Count() != 1 {
			t.Errorf("Expected 1 parameter, got %d", reg.Count())
		}
	})

	t.Run("EmptyID", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Add(Float("", "Nameless", 0, 1, 0).Build()); err == nil {
			t.Error("Expected error for empty ID")
		}
	})

	t.Run("ResetAll", func(t *testing.T) {
		reg := NewRegistry()
		p := MixParameter("mix", "Mix").Build()
		reg.Add(p)

		p.SetValue(0.2)
		reg.ResetAll()
		if p.GetValue() != 1 {
			t.Errorf("Expected default 1, got %f", p.GetValue())
		}
	})
}

func TestHost(t *testing.T) {
	reg := NewRegistry()
	gain := Float("gain", "Gain", 0, 1, 0.5).Build()
	reg.Add(gain)

	host := NewHost(reg, 2)

	var changes []float64
	host.OnChange(func(id string, v float64) {
		if id == "gain" {
			changes = append(changes, v)
		}
	})

	t.Run("Gesture", func(t *testing.T) {
		host.BeginEdit("gain")
		if !host.InGesture("gain") {
			t.Error("Expected open gesture")
		}
		host.PerformEdit("gain", 0.6)
		host.PerformEdit("gain", 0.8)
		host.EndEdit("gain")

		if host.InGesture("gain") {
			t.Error("Expected gesture to be closed")
		}
		if gain.GetValue() != 0.8 {
			t.Errorf("Expected 0.8, got %f", gain.GetValue())
		}
		if len(changes) != 2 {
			t.Errorf("Expected 2 change notifications, got %d", len(changes))
		}

		history := host.History()
		if len(history) != 1 {
			t.Fatalf("Expected 1 recorded edit, got %d", len(history))
		}
		if history[0].Before != 0.5 || history[0].After != 0.8 {
			t.Errorf("Unexpected edit %+v", history[0])
		}
	})

	t.Run("NoChangeNotRecorded", func(t *testing.T) {
		host.BeginEdit("gain")
		host.PerformEdit("gain", 0.8)
		host.EndEdit("gain")
		if len(host.History()) != 1 {
			t.Errorf("Expected unchanged gesture to be skipped, history %v", host.History())
		}
	})

	t.Run("Undo", func(t *testing.T) {
		edit, ok := host.Undo()
		if !ok {
			t.Fatal("Expected an edit to undo")
		}
		if edit.ID != "gain" || gain.GetValue() != 0.5 {
			t.Errorf("Expected gain restored to 0.5, got %f", gain.GetValue())
		}
		if _, ok := host.Undo(); ok {
			t.Error("Expected empty history")
		}
	})

	t.Run("HistoryLimit", func(t *testing.T) {
		for _, v := range []float64{0.1, 0.2, 0.3} {
			host.BeginEdit("gain")
			host.PerformEdit("gain", v)
			host.EndEdit("gain")
		}
		history := host.History()
		if len(history) != 2 {
			t.Fatalf("Expected history capped at 2, got %d", len(history))
		}
		if history[1].After != 0.3 {
			t.Errorf("Expected newest edit last, got %+v", history[1])
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		host.BeginEdit("missing")
		host.PerformEdit("missing", 1)
		host.EndEdit("missing")
		if host.InGesture("missing") {
			t.Error("Expected unknown ID to be ignored")
		}
	})
}
