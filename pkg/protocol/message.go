// Package protocol defines the messages exchanged between a plugin and its web GUI
// and the codec that maps them to and from structured values.
//
// A structured value is the JSON-shaped tree the GUI runtime hands over: nil, bool,
// numbers, strings, []any and map[string]any. Trees produced by the msgpack frame
// codec (with sized integer types) are accepted as well.
package protocol

// Value is a decoded structured value as delivered by the GUI runtime.
type Value = any

// Wire tags of the message variants.
const (
	TagInit        = "Init"
	TagParamChange = "ParamChange"
	TagMessage     = "Message"
)

// Kind discriminates the variants of GuiMessage and PluginMessage.
type Kind int

const (
	KindInit Kind = iota
	KindParamChange
	KindMessage
)

// String returns the wire tag of the kind.
func (k Kind) String() string {
	switch k {
	case KindInit:
		return TagInit
	case KindParamChange:
		return TagParamChange
	case KindMessage:
		return TagMessage
	default:
		return "Unknown"
	}
}

// ParamChange carries a parameter's normalized value (0-1), not its plain value.
type ParamChange struct {
	ID    string  `json:"id" msgpack:"id"`
	Value float64 `json:"value" msgpack:"value"`
}

// GuiMessage is a message sent from the GUI to the plugin.
type GuiMessage struct {
	kind    Kind
	param   ParamChange
	payload Value
}

// Init returns the message a GUI sends to request the full parameter state.
func Init() GuiMessage {
	return GuiMessage{kind: KindInit}
}

// GuiParamChange returns a GUI-originated parameter change.
func GuiParamChange(id string, value float64) GuiMessage {
	return GuiMessage{kind: KindParamChange, param: ParamChange{ID: id, Value: value}}
}

// GuiCustom wraps an application-defined payload sent by the GUI.
func GuiCustom(payload Value) GuiMessage {
	return GuiMessage{kind: KindMessage, payload: payload}
}

// Kind returns the variant of the message.
func (m GuiMessage) Kind() Kind { return m.kind }

// IsInit reports whether the message is an Init request.
func (m GuiMessage) IsInit() bool { return m.kind == KindInit }

// ParamChange returns the parameter change carried by the message, if any.
func (m GuiMessage) ParamChange() (ParamChange, bool) {
	return m.param, m.kind == KindParamChange
}

// Payload returns the application payload carried by the message, if any.
func (m GuiMessage) Payload() (Value, bool) {
	return m.payload, m.kind == KindMessage
}

// PluginMessage is a message sent from the plugin to the GUI.
type PluginMessage struct {
	kind    Kind
	param   ParamChange
	payload any
}

// PluginParamChange returns a plugin-originated parameter change.
func PluginParamChange(id string, value float64) PluginMessage {
	return PluginMessage{kind: KindParamChange, param: ParamChange{ID: id, Value: value}}
}

// PluginCustom wraps an application-defined payload for the GUI. The payload is
// converted to a structured value when the message is encoded, which is where
// unrepresentable payloads are rejected.
func PluginCustom(payload any) PluginMessage {
	return PluginMessage{kind: KindMessage, payload: payload}
}

// Kind returns the variant of the message.
func (m PluginMessage) Kind() Kind { return m.kind }

// ParamChange returns the parameter change carried by the message, if any.
func (m PluginMessage) ParamChange() (ParamChange, bool) {
	return m.param, m.kind == KindParamChange
}

// Payload returns the application payload carried by the message, if any.
func (m PluginMessage) Payload() (any, bool) {
	return m.payload, m.kind == KindMessage
}
