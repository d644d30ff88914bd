// Package twiml renders Twilio voice-control documents. Only the verbs
// this agent uses are modeled: Say, Play, Gather and Hangup.
package twiml

import (
	"encoding/xml"
	"fmt"
)

// Say speaks text with Twilio's built-in voice
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Play fetches and plays an audio file
type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

// Hangup terminates the call
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Gather collects speech and/or DTMF input and posts it to Action.
// Nested verbs play while Twilio listens.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	Action        string   `xml:"action,attr,omitempty"`
	Method        string   `xml:"method,attr,omitempty"`
	Verbs         []any    `xml:",any"`
}

// Append nests a verb inside the gather
func (g *Gather) Append(verb any) {
	g.Verbs = append(g.Verbs, verb)
}

// Response is one TwiML document
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

// Append adds a top-level verb to the document
func (r *Response) Append(verb any) {
	r.Verbs = append(r.Verbs, verb)
}

// Render serializes the document with the XML declaration Twilio expects
func (r *Response) Render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to render TwiML: %w", err)
	}
	return xml.Header + string(body), nil
}
