package domain

import "fmt"

// IntentResult is a classifier-assigned label for a message, with confidence.
// The classifier returns results best-first; only the top result drives
// routing, the rest are passed through to the chosen dialog.
type IntentResult struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func (i IntentResult) String() string {
	return fmt.Sprintf("%s (%.2f)", i.Name, i.Score)
}

// EntityResult is a structured fragment extracted from the message text.
// Opaque to the router; dialogs interpret kind and value themselves.
type EntityResult struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (e EntityResult) String() string {
	return fmt.Sprintf("%s=%s", e.Kind, e.Value)
}
