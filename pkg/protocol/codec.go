package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDecode is returned when a structured value does not match any message variant.
	ErrDecode = errors.New("protocol: decode")
	// ErrEncode is returned when a message payload cannot be represented as a structured value.
	ErrEncode = errors.New("protocol: encode")
)

// DecodeGui decodes a structured value received from the GUI.
func DecodeGui(v Value) (GuiMessage, error) {
	tag, body, err := splitTag(v)
	if err != nil {
		return GuiMessage{}, err
	}

	switch tag {
	case TagInit:
		if body != nil {
			return GuiMessage{}, fmt.Errorf("%w: Init carries no payload", ErrDecode)
		}
		return Init(), nil
	case TagParamChange:
		pc, err := decodeParamChange(body)
		if err != nil {
			return GuiMessage{}, err
		}
		return GuiMessage{kind: KindParamChange, param: pc}, nil
	case TagMessage:
		return GuiCustom(body), nil
	default:
		return GuiMessage{}, fmt.Errorf("%w: unknown tag %q", ErrDecode, tag)
	}
}

// DecodePlugin decodes a structured value sent by the plugin. The payload of a
// Message variant is left as a structured value.
func DecodePlugin(v Value) (PluginMessage, error) {
	tag, body, err := splitTag(v)
	if err != nil {
		return PluginMessage{}, err
	}

	switch tag {
	case TagParamChange:
		pc, err := decodeParamChange(body)
		if err != nil {
			return PluginMessage{}, err
		}
		return PluginMessage{kind: KindParamChange, param: pc}, nil
	case TagMessage:
		return PluginCustom(body), nil
	default:
		return PluginMessage{}, fmt.Errorf("%w: unknown tag %q", ErrDecode, tag)
	}
}

// EncodeGui encodes a GUI message. Only the payload of a Message variant can fail.
func EncodeGui(m GuiMessage) (Value, error) {
	switch m.kind {
	case KindInit:
		return TagInit, nil
	case KindParamChange:
		return encodeParamChange(m.param), nil
	case KindMessage:
		payload, err := ToValue(m.payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{TagMessage: payload}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrEncode, m.kind)
	}
}

// EncodePlugin encodes a plugin message. Only the payload of a Message variant can fail.
func EncodePlugin(m PluginMessage) (Value, error) {
	switch m.kind {
	case KindParamChange:
		return encodeParamChange(m.param), nil
	case KindMessage:
		payload, err := ToValue(m.payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{TagMessage: payload}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a plugin message", ErrEncode, m.kind)
	}
}

// ToValue converts an application payload into a structured value. Values that
// already are trees are validated in place; anything else goes through its JSON
// representation.
func ToValue(payload any) (Value, error) {
	plain, err := walkTree(payload)
	if err != nil {
		return nil, err
	}
	if plain {
		return payload, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return v, nil
}

// DecodePayload converts a structured payload into an application type.
func DecodePayload[T any](v Value) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}
	return out, nil
}

func encodeParamChange(pc ParamChange) Value {
	return map[string]any{
		TagParamChange: map[string]any{
			"id":    pc.ID,
			"value": pc.Value,
		},
	}
}

// splitTag extracts the variant tag of an externally tagged value: either a bare
// string (unit variants) or a single-key map.
func splitTag(v Value) (string, Value, error) {
	switch t := v.(type) {
	case string:
		return t, nil, nil
	case map[string]any:
		if len(t) != 1 {
			return "", nil, fmt.Errorf("%w: expected exactly one tag, got %d keys", ErrDecode, len(t))
		}
		for tag, body := range t {
			return tag, body, nil
		}
	case map[any]any:
		m, err := stringKeys(t)
		if err != nil {
			return "", nil, err
		}
		return splitTag(m)
	case nil:
		return "", nil, fmt.Errorf("%w: empty value", ErrDecode)
	}
	return "", nil, fmt.Errorf("%w: unexpected %T", ErrDecode, v)
}

func decodeParamChange(body Value) (ParamChange, error) {
	var fields map[string]any
	switch t := body.(type) {
	case map[string]any:
		fields = t
	case map[any]any:
		m, err := stringKeys(t)
		if err != nil {
			return ParamChange{}, err
		}
		fields = m
	default:
		return ParamChange{}, fmt.Errorf("%w: ParamChange body is %T", ErrDecode, body)
	}

	id, ok := fields["id"].(string)
	if !ok || id == "" {
		return ParamChange{}, fmt.Errorf("%w: ParamChange needs a non-empty string id", ErrDecode)
	}
	value, ok := toFloat(fields["value"])
	if !ok {
		return ParamChange{}, fmt.Errorf("%w: ParamChange %q has no numeric value", ErrDecode, id)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ParamChange{}, fmt.Errorf("%w: ParamChange %q value is not finite", ErrDecode, id)
	}
	return ParamChange{ID: id, Value: value}, nil
}

func stringKeys(m map[any]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		s, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string key %v", ErrDecode, k)
		}
		out[s] = v
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// walkTree reports whether v is made only of tree types. Non-finite numbers are
// rejected wherever they appear.
func walkTree(v any) (bool, error) {
	switch t := v.(type) {
	case nil, bool, string, int, int64:
		return true, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return false, fmt.Errorf("%w: non-finite number %v", ErrEncode, t)
		}
		return true, nil
	case float32:
		return walkTree(float64(t))
	case []any:
		plain := true
		for _, item := range t {
			ok, err := walkTree(item)
			if err != nil {
				return false, err
			}
			plain = plain && ok
		}
		return plain, nil
	case map[string]any:
		plain := true
		for _, item := range t {
			ok, err := walkTree(item)
			if err != nil {
				return false, err
			}
			plain = plain && ok
		}
		return plain, nil
	}
	return false, nil
}
