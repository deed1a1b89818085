// Package message composes translation keys and icon tokens into the
// messages handed to the TV renderer.
package message

import (
	"strings"

	"github.com/i474232898/forecaster-text/internal/weather"
)

// Separator is the placeholder written before each icon.
const Separator = "..."

// Source names the surface a message is shown on.
type Source string

const SourceTV Source = "tv"

// Translator resolves a translation key to localized text.
type Translator interface {
	Resolve(key string) string
}

// Part is one icon appended to a message.
type Part struct {
	Placeholder string       `json:"placeholder"`
	Icon        weather.Icon `json:"icon"`
}

// Message is a translation key followed by icon parts, in order.
type Message struct {
	Source Source `json:"source"`
	Key    string `json:"key"`
	Parts  []Part `json:"parts"`
}

// Builder accumulates parts for a single translation key.
type Builder struct {
	key   string
	parts []Part
}

// NewBuilder starts a message for key.
func NewBuilder(key string) *Builder {
	return &Builder{key: key}
}

// AddIcon appends icon after placeholder.
func (b *Builder) AddIcon(placeholder string, icon weather.Icon) *Builder {
	b.parts = append(b.parts, Part{Placeholder: placeholder, Icon: icon})
	return b
}

// Build returns the message for the TV source.
func (b *Builder) Build() Message {
	return Message{
		Source: SourceTV,
		Key:    b.key,
		Parts:  append([]Part(nil), b.parts...),
	}
}

// Compose builds a TV message from key and icons, keeping icon order.
func Compose(key string, icons []weather.Icon) Message {
	b := NewBuilder(key)
	for _, icon := range icons {
		b.AddIcon(Separator, icon)
	}
	return b.Build()
}

// Icons returns the icons of m in order.
func (m Message) Icons() []weather.Icon {
	out := make([]weather.Icon, 0, len(m.Parts))
	for _, p := range m.Parts {
		out = append(out, p.Icon)
	}
	return out
}

// Tokens reads the message back as the key followed by each icon name.
func (m Message) Tokens() []string {
	out := make([]string, 0, len(m.Parts)+1)
	out = append(out, m.Key)
	for _, p := range m.Parts {
		out = append(out, p.Icon.String())
	}
	return out
}

// Render resolves the key with tr and appends each part as placeholder and
// glyph. A nil translator leaves the key as is.
func (m Message) Render(tr Translator) string {
	text := m.Key
	if tr != nil {
		text = tr.Resolve(m.Key)
	}

	var sb strings.Builder
	sb.WriteString(text)
	for _, p := range m.Parts {
		sb.WriteString(" ")
		sb.WriteString(p.Placeholder)
		sb.WriteString(p.Icon.Glyph())
	}
	return sb.String()
}
