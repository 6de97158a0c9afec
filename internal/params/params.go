package params

import (
	"net/url"
	"strings"
)

// Param is a single name/value pair.
type Param struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Value string `mapstructure:"value" yaml:"value"`
}

// Set is an ordered collection of name/value pairs used for headers,
// transport configuration entries and POST fields. Duplicate names are kept
// in insertion order. The zero value is an empty set ready to use.
type Set struct {
	items []Param
}

// New returns a Set holding the given pairs in order.
func New(ps ...Param) Set {
	var s Set
	for _, p := range ps {
		s.Add(p.Name, p.Value)
	}
	return s
}

// Add appends an entry. Duplicates are never rejected.
func (s *Set) Add(name, value string) {
	s.items = append(s.items, Param{Name: name, Value: value})
}

// Pairs returns a copy of the entries in insertion order.
func (s Set) Pairs() []Param {
	if len(s.items) == 0 {
		return nil
	}
	out := make([]Param, len(s.items))
	copy(out, s.items)
	return out
}

func (s Set) Len() int { return len(s.items) }

// Clone returns an independent copy; later Adds on either side do not leak.
func (s Set) Clone() Set {
	return Set{items: s.Pairs()}
}

// Encode renders the set as application/x-www-form-urlencoded, keeping the
// exact entry order (url.Values.Encode would sort by name).
func (s Set) Encode() string {
	var b strings.Builder
	for i, p := range s.items {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Map applies fn to every value and returns the transformed set.
func (s Set) Map(fn func(name, value string) string) Set {
	out := Set{items: make([]Param, 0, len(s.items))}
	for _, p := range s.items {
		out.items = append(out.items, Param{Name: p.Name, Value: fn(p.Name, p.Value)})
	}
	return out
}
