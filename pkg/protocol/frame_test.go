package protocol

import (
	"errors"
	"testing"
)

func TestFrameCodecs(t *testing.T) {
	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := FrameCodecByName(name)
			if err != nil {
				t.Fatalf("FrameCodecByName error: %v", err)
			}

			encoded, err := EncodePlugin(PluginParamChange("gain", 0.75))
			if err != nil {
				t.Fatalf("EncodePlugin error: %v", err)
			}
			frame, err := codec.Marshal(encoded)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			tree, err := codec.Unmarshal(frame)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			msg, err := DecodePlugin(tree)
			if err != nil {
				t.Fatalf("DecodePlugin error: %v", err)
			}
			pc, ok := msg.ParamChange()
			if !ok || pc.ID != "gain" || pc.Value != 0.75 {
				t.Errorf("Expected gain=0.75, got %+v", pc)
			}
		})
	}
}

func TestMsgpackIntegerValues(t *testing.T) {
	codec := MsgpackFrames{}
	frame, err := codec.Marshal(map[string]any{
		"ParamChange": map[string]any{"id": "bypass", "value": 1},
	})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	tree, err := codec.Unmarshal(frame)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	msg, err := DecodeGui(tree)
	if err != nil {
		t.Fatalf("DecodeGui error: %v", err)
	}
	if pc, _ := msg.ParamChange(); pc.Value != 1 {
		t.Errorf("Expected value 1, got %v", pc.Value)
	}
}

func TestFrameDecodeErrors(t *testing.T) {
	if _, err := (JSONFrames{}).Unmarshal([]byte("{not json")); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
	if _, err := FrameCodecByName("xml"); err == nil {
		t.Error("Expected error for unknown encoding")
	}
	if codec, _ := FrameCodecByName(""); codec.Name() != "json" {
		t.Errorf("Expected json default, got %s", codec.Name())
	}
}
