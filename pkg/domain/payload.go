package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is a generation response in the upstream candidates/content/parts shape.
type Payload struct {
	Candidates []Candidate `json:"candidates"`

	// Raw holds the upstream bytes so the relay endpoint can echo them untouched.
	Raw json.RawMessage `json:"-"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type Part struct {
	Text string `json:"text,omitempty"`
}

// DecodePayload parses upstream JSON and keeps the original bytes.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	p.Raw = append(json.RawMessage(nil), data...)
	return &p, nil
}

// TextPayload builds a single-candidate payload, mostly for tests and fakes.
func TextPayload(text string) *Payload {
	return &Payload{Candidates: []Candidate{{Content: Content{Role: "model", Parts: []Part{{Text: text}}}}}}
}

// Text extracts candidates[0].content.parts[0].text.
// A missing or empty text is reported as ErrMalformedPayload; whitespace is
// returned as is.
func (p *Payload) Text() (string, error) {
	if p == nil || len(p.Candidates) == 0 || len(p.Candidates[0].Content.Parts) == 0 {
		return "", ErrMalformedPayload
	}
	text := p.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrMalformedPayload
	}
	return text, nil
}

// Bytes returns the upstream bytes when known, else the marshaled payload.
func (p *Payload) Bytes() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(p)
}
