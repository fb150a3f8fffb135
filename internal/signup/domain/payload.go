package domain

import (
	"net/url"
	"strings"
)

// FormPayload is an ordered field name -> value mapping. Keys are unique, the
// first Set of a name fixes its position.
type FormPayload struct {
	names  []string
	values map[string]string
}

func NewFormPayload() *FormPayload {
	return &FormPayload{values: make(map[string]string)}
}

func (p *FormPayload) Set(name, value string) {
	if _, exists := p.values[name]; !exists {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

func (p *FormPayload) Get(name string) string {
	return p.values[name]
}

func (p *FormPayload) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *FormPayload) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *FormPayload) Len() int {
	return len(p.names)
}

func (p *FormPayload) Clone() *FormPayload {
	clone := &FormPayload{
		names:  make([]string, len(p.names)),
		values: make(map[string]string, len(p.values)),
	}
	copy(clone.names, p.names)
	for k, v := range p.values {
		clone.values[k] = v
	}
	return clone
}

func (p *FormPayload) delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

// Encode renders the payload as an x-www-form-urlencoded body, keeping
// insertion order (url.Values.Encode would sort the keys).
func (p *FormPayload) Encode() string {
	var buf strings.Builder
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(name))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(p.values[name]))
	}
	return buf.String()
}

// Splicer pulls sensitive fields out of a payload before it is sent to the
// backend. The original copy stays readable and is never mutated.
type Splicer struct {
	original  *FormPayload
	remainder *FormPayload
}

func NewSplicer(payload *FormPayload) *Splicer {
	return &Splicer{
		original:  payload.Clone(),
		remainder: payload.Clone(),
	}
}

// Splice removes name from the remainder and returns its value. Splicing a
// name that is absent, or was already spliced, returns ("", false).
func (s *Splicer) Splice(name string) (string, bool) {
	if !s.remainder.Has(name) {
		return "", false
	}
	value := s.remainder.Get(name)
	s.remainder.delete(name)
	return value, true
}

// Value reads from the original payload whether or not name was spliced.
func (s *Splicer) Value(name string) string {
	return s.original.Get(name)
}

func (s *Splicer) Original() *FormPayload {
	return s.original.Clone()
}

func (s *Splicer) Remainder() *FormPayload {
	return s.remainder.Clone()
}
