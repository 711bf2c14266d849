package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FrameCodec serializes structured values into transport frames.
type FrameCodec interface {
	// Name is the configuration name of the codec.
	Name() string
	// Binary reports whether frames should travel as binary websocket messages.
	Binary() bool
	Marshal(v Value) ([]byte, error)
	Unmarshal(data []byte) (Value, error)
}

// JSONFrames encodes values as JSON text frames.
type JSONFrames struct{}

func (JSONFrames) Name() string { return "json" }
func (JSONFrames) Binary() bool { return false }

func (JSONFrames) Marshal(v Value) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: json frame: %v", ErrEncode, err)
	}
	return data, nil
}

func (JSONFrames) Unmarshal(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: json frame: %v", ErrDecode, err)
	}
	return v, nil
}

// MsgpackFrames encodes values as MessagePack binary frames.
type MsgpackFrames struct{}

func (MsgpackFrames) Name() string { return "msgpack" }
func (MsgpackFrames) Binary() bool { return true }

func (MsgpackFrames) Marshal(v Value) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: msgpack frame: %v", ErrEncode, err)
	}
	return data, nil
}

func (MsgpackFrames) Unmarshal(data []byte) (Value, error) {
	var v Value
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: msgpack frame: %v", ErrDecode, err)
	}
	return v, nil
}

// FrameCodecByName returns the frame codec registered under name. An empty name
// selects JSON.
func FrameCodecByName(name string) (FrameCodec, error) {
	switch name {
	case "", "json":
		return JSONFrames{}, nil
	case "msgpack":
		return MsgpackFrames{}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown frame encoding %q", name)
	}
}
