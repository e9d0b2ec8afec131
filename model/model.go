package model

// Client message types.
const (
	MessageReady       = "ready"
	MessageColorScheme = "color-scheme"
	MessageEvent       = "event"
)

// Server message types.
const (
	MessagePatch = "patch"
	MessageError = "error"
)

// ClientMessage is sent by the page script over the websocket.
type ClientMessage struct {
	Type        string        `json:"type"`
	PrefersDark *bool         `json:"prefers_dark,omitempty"`
	Event       *EventPayload `json:"event,omitempty"`
}

// EventPayload is a browser event forwarded to the server. Target is the
// hydration ID of the event target; empty targets the document.
type EventPayload struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Key    string `json:"key,omitempty"`
	Ctrl   bool   `json:"ctrl,omitempty"`
	Shift  bool   `json:"shift,omitempty"`
	Alt    bool   `json:"alt,omitempty"`
	Meta   bool   `json:"meta,omitempty"`
}

// Patch is one DOM change for the browser to apply.
type Patch struct {
	Op     string `json:"op"`
	Target string `json:"target"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	HTML   string `json:"html,omitempty"`
}

// ServerMessage is sent to the page script.
type ServerMessage struct {
	Type    string  `json:"type"`
	Patches []Patch `json:"patches,omitempty"`
	Error   string  `json:"error,omitempty"`
}
