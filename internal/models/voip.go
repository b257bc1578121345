package models

import "time"

// NotApplicable fills server-observed string fields the backend has not reported yet.
const NotApplicable = "N/A"

type Protocol string

const (
	ProtocolPJSIP Protocol = "PJSIP"
	ProtocolSIP   Protocol = "SIP"
)

func (p Protocol) Valid() bool {
	return p == ProtocolPJSIP || p == ProtocolSIP
}

type ExtensionStatus string

const (
	ExtensionRegistered   ExtensionStatus = "Registered"
	ExtensionUnregistered ExtensionStatus = "Unregistered"
	ExtensionRinging      ExtensionStatus = "Ringing"
	ExtensionInUse        ExtensionStatus = "In Use"
	ExtensionUnavailable  ExtensionStatus = "Unavailable"
)

func (s ExtensionStatus) Valid() bool {
	switch s {
	case ExtensionRegistered, ExtensionUnregistered, ExtensionRinging, ExtensionInUse, ExtensionUnavailable:
		return true
	}
	return false
}

type Voicemail struct {
	Enabled bool   `json:"enabled"`
	PIN     string `json:"pin,omitempty"`
	Email   string `json:"email,omitempty"`
}

type CallRecording struct {
	Incoming bool `json:"incoming"`
	Outgoing bool `json:"outgoing"`
}

// Extension is an internal endpoint registered on the switch. Status, IPAddress
// and UserAgent are observed by the server and never set by the client on create.
type Extension struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Name          string          `json:"name"`
	Secret        string          `json:"secret"`
	Protocol      Protocol        `json:"protocol"`
	Status        ExtensionStatus `json:"status"`
	IPAddress     string          `json:"ipAddress"`
	UserAgent     string          `json:"userAgent"`
	Voicemail     Voicemail       `json:"voicemail"`
	CallRecording CallRecording   `json:"callRecording"`
}

// NewExtension is the create payload for an extension.
type NewExtension struct {
	Number        string        `json:"number"`
	Name          string        `json:"name"`
	Secret        string        `json:"secret"`
	Protocol      Protocol      `json:"protocol"`
	Voicemail     Voicemail     `json:"voicemail"`
	CallRecording CallRecording `json:"callRecording"`
}

// Extension builds the full record with the given id and the defaults used
// before the server has observed the endpoint.
func (n NewExtension) Extension(id string) Extension {
	return Extension{
		ID:            id,
		Number:        n.Number,
		Name:          n.Name,
		Secret:        n.Secret,
		Protocol:      n.Protocol,
		Status:        ExtensionUnregistered,
		IPAddress:     NotApplicable,
		UserAgent:     NotApplicable,
		Voicemail:     n.Voicemail,
		CallRecording: n.CallRecording,
	}
}

type TrunkType string

const (
	TrunkPJSIP TrunkType = "PJSIP"
	TrunkSIP   TrunkType = "SIP"
	TrunkIAX2  TrunkType = "IAX2"
)

func (t TrunkType) Valid() bool {
	return t == TrunkPJSIP || t == TrunkSIP || t == TrunkIAX2
}

type TrunkStatus string

const (
	TrunkRegistered   TrunkStatus = "Registered"
	TrunkUnregistered TrunkStatus = "Unregistered"
	TrunkUnreachable  TrunkStatus = "Unreachable"
)

func (s TrunkStatus) Valid() bool {
	return s == TrunkRegistered || s == TrunkUnregistered || s == TrunkUnreachable
}

type Trunk struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   TrunkType   `json:"type"`
	Status TrunkStatus `json:"status"`
	Host   string      `json:"host"`
}

type NewTrunk struct {
	Name string    `json:"name"`
	Type TrunkType `json:"type"`
	Host string    `json:"host"`
}

func (n NewTrunk) Trunk(id string) Trunk {
	return Trunk{ID: id, Name: n.Name, Type: n.Type, Status: TrunkUnregistered, Host: n.Host}
}

type Disposition string

const (
	DispositionAnswered Disposition = "ANSWERED"
	DispositionNoAnswer Disposition = "NO ANSWER"
	DispositionBusy     Disposition = "BUSY"
	DispositionFailed   Disposition = "FAILED"
)

func (d Disposition) Valid() bool {
	switch d {
	case DispositionAnswered, DispositionNoAnswer, DispositionBusy, DispositionFailed:
		return true
	}
	return false
}

// CDR is an immutable call detail record. Field names follow the Asterisk cdr table.
type CDR struct {
	ID                 string      `json:"id"`
	CallDate           time.Time   `json:"calldate"`
	CallerID           string      `json:"clid"`
	Src                string      `json:"src"`
	Dst                string      `json:"dst"`
	Context            string      `json:"dcontext"`
	Channel            string      `json:"channel"`
	DestinationChannel string      `json:"dstchannel"`
	LastApplication    string      `json:"lastapp"`
	LastData           string      `json:"lastdata"`
	Duration           int         `json:"duration"`
	BillableSeconds    int         `json:"billsec"`
	Disposition        Disposition `json:"disposition"`
	AMAFlags           int         `json:"amaflags"`
	AccountCode        string      `json:"accountcode"`
	UniqueID           string      `json:"uniqueid"`
	UserField          string      `json:"userfield"`
	RecordingFile      string      `json:"recordingfile,omitempty"`
}

type CallState string

const (
	CallRinging CallState = "Ringing"
	CallUp      CallState = "Up"
	CallDown    CallState = "Down"
)

// Call is a live channel shown on the dashboard. It only exists inside the simulator.
type Call struct {
	ID          string    `json:"id"`
	CallerID    string    `json:"callerId"`
	Destination string    `json:"destination"`
	StartTime   time.Time `json:"startTime"`
	Duration    int       `json:"duration"`
	Channel     string    `json:"channel"`
	State       CallState `json:"state"`
}
