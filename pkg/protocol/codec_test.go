package protocol

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeGui(t *testing.T) {
	t.Run("Init", func(t *testing.T) {
		for _, v := range []Value{"Init", map[string]any{"Init": nil}} {
			msg, err := DecodeGui(v)
			if err != nil {
				t.Fatalf("DecodeGui(%v) error: %v", v, err)
			}
			if !msg.IsInit() {
				t.Errorf("Expected Init, got %s", msg.Kind())
			}
		}
	})

	t.Run("ParamChange", func(t *testing.T) {
		msg, err := DecodeGui(map[string]any{
			"ParamChange": map[string]any{"id": "gain", "value": 0.8},
		})
		if err != nil {
			t.Fatalf("DecodeGui error: %v", err)
		}
		pc, ok := msg.ParamChange()
		if !ok {
			t.Fatalf("Expected ParamChange, got %s", msg.Kind())
		}
		if pc.ID != "gain" || pc.Value != 0.8 {
			t.Errorf("Expected gain=0.8, got %s=%v", pc.ID, pc.Value)
		}
	})

	t.Run("IntegerValue", func(t *testing.T) {
		msg, err := DecodeGui(map[string]any{
			"ParamChange": map[string]any{"id": "bypass", "value": int8(1)},
		})
		if err != nil {
			t.Fatalf("DecodeGui error: %v", err)
		}
		if pc, _ := msg.ParamChange(); pc.Value != 1 {
			t.Errorf("Expected value 1, got %v", pc.Value)
		}
	})

	t.Run("Message", func(t *testing.T) {
		payload := map[string]any{"Ping": 3.0}
		msg, err := DecodeGui(map[string]any{"Message": payload})
		if err != nil {
			t.Fatalf("DecodeGui error: %v", err)
		}
		got, ok := msg.Payload()
		if !ok {
			t.Fatalf("Expected Message, got %s", msg.Kind())
		}
		if got.(map[string]any)["Ping"] != 3.0 {
			t.Errorf("Unexpected payload %v", got)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		tests := []struct {
			name  string
			value Value
		}{
			{"nil", nil},
			{"number", 1.0},
			{"unknown unit tag", "Reset"},
			{"unknown tag", map[string]any{"Bogus": 1.0}},
			{"two tags", map[string]any{"Init": nil, "Message": nil}},
			{"init with payload", map[string]any{"Init": 1.0}},
			{"param body not a map", map[string]any{"ParamChange": "gain"}},
			{"missing id", map[string]any{"ParamChange": map[string]any{"value": 0.1}}},
			{"empty id", map[string]any{"ParamChange": map[string]any{"id": "", "value": 0.1}}},
			{"string value", map[string]any{"ParamChange": map[string]any{"id": "gain", "value": "0.1"}}},
			{"nan value", map[string]any{"ParamChange": map[string]any{"id": "gain", "value": math.NaN()}}},
		}

		for _, tt := range tests {
			_, err := DecodeGui(tt.value)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("%s: expected ErrDecode, got %v", tt.name, err)
			}
		}
	})
}

func TestDecodePluginRejectsInit(t *testing.T) {
	if _, err := DecodePlugin("Init"); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestParamChangeRoundTrip(t *testing.T) {
	ids := []string{"gain", "x", "band 1 frequency", "ü-param"}
	values := []float64{0, 1, 0.5, 0.1, 1.0 / 3.0, math.SmallestNonzeroFloat64, math.Nextafter(1, 0)}

	for _, id := range ids {
		for _, value := range values {
			encoded, err := EncodePlugin(PluginParamChange(id, value))
			if err != nil {
				t.Fatalf("EncodePlugin(%s, %v) error: %v", id, value, err)
			}

			// Through a JSON frame as well, since that is what the GUI sees.
			frame, err := JSONFrames{}.Marshal(encoded)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			tree, err := JSONFrames{}.Unmarshal(frame)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			for _, v := range []Value{encoded, tree} {
				decoded, err := DecodePlugin(v)
				if err != nil {
					t.Fatalf("DecodePlugin error: %v", err)
				}
				pc, ok := decoded.ParamChange()
				if !ok || pc.ID != id || pc.Value != value {
					t.Errorf("Round trip of %s=%v produced %s=%v", id, value, pc.ID, pc.Value)
				}
			}
		}
	}
}

func TestGuiRoundTrip(t *testing.T) {
	messages := []GuiMessage{
		Init(),
		GuiParamChange("gain", 0.25),
		GuiCustom(map[string]any{"Ping": 1.0}),
	}

	for _, msg := range messages {
		encoded, err := EncodeGui(msg)
		if err != nil {
			t.Fatalf("EncodeGui(%s) error: %v", msg.Kind(), err)
		}
		decoded, err := DecodeGui(encoded)
		if err != nil {
			t.Fatalf("DecodeGui(%v) error: %v", encoded, err)
		}
		if decoded.Kind() != msg.Kind() {
			t.Errorf("Expected %s, got %s", msg.Kind(), decoded.Kind())
		}
	}
}

func TestEncodePluginPayload(t *testing.T) {
	type status struct {
		Level float64 `json:"level"`
		Label string  `json:"label"`
	}

	t.Run("Struct", func(t *testing.T) {
		v, err := EncodePlugin(PluginCustom(status{Level: 0.5, Label: "ok"}))
		if err != nil {
			t.Fatalf("EncodePlugin error: %v", err)
		}
		body := v.(map[string]any)["Message"].(map[string]any)
		if body["level"] != 0.5 || body["label"] != "ok" {
			t.Errorf("Unexpected payload %v", body)
		}
	})

	t.Run("NonFinite", func(t *testing.T) {
		payloads := []any{
			math.Inf(1),
			map[string]any{"level": math.NaN()},
			status{Level: math.NaN()},
			[]any{1.0, math.Inf(-1)},
		}
		for _, p := range payloads {
			if _, err := EncodePlugin(PluginCustom(p)); !errors.Is(err, ErrEncode) {
				t.Errorf("Expected ErrEncode for %v, got %v", p, err)
			}
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := EncodePlugin(PluginCustom(make(chan int))); !errors.Is(err, ErrEncode) {
			t.Errorf("Expected ErrEncode, got %v", err)
		}
	})

	t.Run("ZeroMessage", func(t *testing.T) {
		if _, err := EncodePlugin(PluginMessage{}); !errors.Is(err, ErrEncode) {
			t.Errorf("Expected ErrEncode for a zero message, got %v", err)
		}
	})
}

func TestDecodePayload(t *testing.T) {
	type ping struct {
		Ping int `json:"Ping"`
	}

	got, err := DecodePayload[ping](map[string]any{"Ping": 7.0})
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}
	if got.Ping != 7 {
		t.Errorf("Expected 7, got %d", got.Ping)
	}

	if _, err := DecodePayload[ping]("nope"); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}
