package protocol

import (
	"encoding/json"
	"strconv"
)

const ProtocolVersion = "1.0"

// Envelope is the outermost JSON document exchanged on the device link:
// {"EasyDarwin": {"Header": {...}, "Body": {...}}}.
type Envelope struct {
	EasyDarwin Frame `json:"EasyDarwin"`
}

// Frame is the inner Header/Body pair carried by every Envelope.
type Frame struct {
	Header Header `json:"Header"`
	Body   Body   `json:"Body"`
}

// Header carries protocol bookkeeping shared by every message kind. CSeq is
// wire-encoded as a string, matching the source protocol, but is handled as
// an int everywhere else in this codebase via CSeq()/SetCSeq.
type Header struct {
	Version     string `json:"Version"`
	MessageType int    `json:"MessageName"`
	CSeq        string `json:"CSeq"`
	ErrorNum    int    `json:"ErrorNum"`
	ErrorString string `json:"ErrorString,omitempty"`
}

// CSeqInt parses the header's string-encoded CSeq, returning 0 if it is absent
// or malformed.
func (h Header) CSeqInt() int {
	n, err := strconv.Atoi(h.CSeq)
	if err != nil {
		return 0
	}
	return n
}

// SetCSeq encodes an integer CSeq onto the header.
func (h *Header) SetCSeq(cseq int) {
	h.CSeq = strconv.Itoa(cseq)
}

// Body is the flat union of fields used across all nine message kinds. Only
// the fields relevant to a given MessageType are populated; the rest are
// omitted from the wire encoding.
type Body struct {
	// Device identity (register, most device-addressed messages).
	Serial       string `json:"Serial,omitempty"`
	Name         string `json:"Name,omitempty"`
	Tag          string `json:"Tag,omitempty"`
	AppType      string `json:"AppType,omitempty"`
	TerminalType string `json:"TerminalType,omitempty"`
	Token        string `json:"Token,omitempty"`
	SessionID    string `json:"SessionId,omitempty"`

	// Channel / stream addressing.
	Channel      string        `json:"Channel,omitempty"`
	Protocol     string        `json:"Protocol,omitempty"`
	Reserve      string        `json:"Reserve,omitempty"` // stream id / stream type, overloaded per message kind
	ChannelCount int           `json:"ChannelCount,omitempty"`
	Channels     []ChannelInfo `json:"Channels,omitempty"`

	// get-stream brokering.
	URL                  string `json:"URL,omitempty"`
	EasyDarwinServerAddr string `json:"EasyDarwinServerAddr,omitempty"`
	EasyDarwinServerPort string `json:"EasyDarwinServerPort,omitempty"`

	// Device enumeration.
	DeviceCount int             `json:"DeviceCount,omitempty"`
	Devices     []DeviceSummary `json:"Devices,omitempty"`

	// Snapshot upload.
	Image   string `json:"Image,omitempty"`
	Type    string `json:"Type,omitempty"`
	Time    string `json:"Time,omitempty"`
	SnapURL string `json:"SnapURL,omitempty"`
}

// DeviceSummary is one entry of a device-list response.
type DeviceSummary struct {
	Serial       string `json:"Serial"`
	Name         string `json:"Name"`
	Tag          string `json:"Tag"`
	AppType      string `json:"AppType"`
	TerminalType string `json:"TerminalType"`
	SnapURL      string `json:"SnapURL,omitempty"`
}

// ChannelInfo is one entry of an NVR's channel list.
type ChannelInfo struct {
	Channel string `json:"Channel"`
	Name    string `json:"Name,omitempty"`
	Status  string `json:"Status,omitempty"`
	SnapURL string `json:"SnapURL,omitempty"`
}

// NewRequest builds a bare envelope of the given kind and CSeq, ready for the
// caller to populate Body fields before marshaling.
func NewRequest(kind MessageType, cseq int) Envelope {
	var env Envelope
	env.EasyDarwin.Header.Version = ProtocolVersion
	env.EasyDarwin.Header.MessageType = int(kind)
	env.EasyDarwin.Header.SetCSeq(cseq)
	return env
}

// NewResponse builds a reply envelope echoing the request's CSeq, with the
// given error code and ack message type.
func NewResponse(kind MessageType, cseq, errorNum int, errorString string) Envelope {
	env := NewRequest(kind, cseq)
	env.EasyDarwin.Header.ErrorNum = errorNum
	env.EasyDarwin.Header.ErrorString = errorString
	return env
}

// MessageType reads the header's message type as the typed enum.
func (e Envelope) MessageType() MessageType {
	return MessageType(e.EasyDarwin.Header.MessageType)
}

// CSeq reads the header's CSeq as an int.
func (e Envelope) CSeq() int {
	return e.EasyDarwin.Header.CSeqInt()
}

// Marshal serializes the envelope to its wire JSON form.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a raw JSON body into an Envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
