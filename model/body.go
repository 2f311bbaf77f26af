package model

import (
	"fmt"
	"strings"
)

// Body identifies a point whose geocentric position can be queried.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	TrueNode
	MeanNode
	MeanApogee // Mean Lilith, the Black Moon
)

// Planets are the bodies exported by the reference data run by default.
var Planets = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// AllBodies lists every supported body in enumeration order.
var AllBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, TrueNode, MeanNode, MeanApogee}

var bodyNames = [...]string{
	Sun:        "Sun",
	Moon:       "Moon",
	Mercury:    "Mercury",
	Venus:      "Venus",
	Mars:       "Mars",
	Jupiter:    "Jupiter",
	Saturn:     "Saturn",
	Uranus:     "Uranus",
	Neptune:    "Neptune",
	Pluto:      "Pluto",
	TrueNode:   "True Node",
	MeanNode:   "Mean Node",
	MeanApogee: "Mean Lilith",
}

var bodyAliases = map[string]Body{
	"true_node":   TrueNode,
	"truenode":    TrueNode,
	"mean_node":   MeanNode,
	"meannode":    MeanNode,
	"lilith":      MeanApogee,
	"mean_lilith": MeanApogee,
	"mean_apogee": MeanApogee,
	"meanapogee":  MeanApogee,
	"mean_apog":   MeanApogee,
}

// Valid reports whether b is one of the enumerated bodies.
func (b Body) Valid() bool {
	return b >= Sun && b <= MeanApogee
}

// String returns the name used in exported reference data.
func (b Body) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// MarshalText encodes the body by name so it can key JSON objects.
func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("unknown body %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText parses a body name.
func (b *Body) UnmarshalText(text []byte) error {
	parsed, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBody resolves a body name or alias, ignoring case.
func ParseBody(name string) (Body, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range bodyNames {
		if strings.ToLower(n) == key {
			return Body(i), nil
		}
	}
	if b, ok := bodyAliases[strings.ReplaceAll(key, " ", "_")]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("unknown body %q", name)
}

// ParseBodies resolves a list of names, failing on the first unknown one.
func ParseBodies(names []string) ([]Body, error) {
	out := make([]Body, 0, len(names))
	for _, n := range names {
		b, err := ParseBody(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
