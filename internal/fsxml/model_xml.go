package fsxml

import "encoding/xml"

// Document is the XML_CURL response envelope.
type Document struct {
	XMLName xml.Name  `xml:"document"`
	Type    string    `xml:"type,attr"`
	Section []Section `xml:"section"`
}

type Section struct {
	Name        string      `xml:"name,attr"`
	Description string      `xml:"description,attr,omitempty"`
	Domain      *DomainNode `xml:"domain,omitempty"`
}

type DomainNode struct {
	Name string     `xml:"name,attr"`
	User []UserNode `xml:"user"`
}

type UserNode struct {
	ID     string         `xml:"id,attr"`
	Params []ParamNode    `xml:"params>param,omitempty"`
	Vars   []VariableNode `xml:"variables>variable,omitempty"`
}

type ParamNode struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type VariableNode struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}
