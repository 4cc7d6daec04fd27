package ical

import "strings"

// Params is a set of property parameters, keyed by upper-cased name. Per
// RFC 5545 section 3.2, a parameter has one or more values.
type Params map[string][]string

// Get returns the first value for name, or "" if absent.
func (p Params) Get(name string) string {
	if vs := p[strings.ToUpper(name)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// All returns every value for name.
func (p Params) All(name string) []string {
	return p[strings.ToUpper(name)]
}

func (p Params) set(name string, values ...string) {
	p[strings.ToUpper(name)] = values
}

// Prop is a single raw, undecoded property: a name, its parameters, and its
// value string. Per the data model invariant, a Prop always has exactly one
// value string (lists are encoded within that string, e.g. comma-joined).
type Prop struct {
	Name   string
	Params Params
	Value  string
}

func newProp(name, value string) *Prop {
	return &Prop{Name: strings.ToUpper(name), Params: make(Params), Value: value}
}

// Props is an ordered-by-insertion multiset of properties, keyed by
// upper-cased name, mirroring how BEGIN/END components hold their property
// list in RFC 5545.
type Props map[string][]*Prop

func (p Props) get(name string) *Prop {
	if l := p[strings.ToUpper(name)]; len(l) > 0 {
		return l[0]
	}
	return nil
}

func (p Props) all(name string) []*Prop {
	return p[strings.ToUpper(name)]
}

func (p Props) add(prop *Prop) {
	key := strings.ToUpper(prop.Name)
	p[key] = append(p[key], prop)
}

// Component is a node of the raw parse tree: a BEGIN/END block with an
// ordered list of child components and an ordered-within-name list of
// properties. Name comparison is ASCII case-insensitive; the original case
// is preserved here for diagnostics.
type Component struct {
	Name      string
	Props     Props
	PropOrder []*Prop // preserves original textual order across all names
	Children  []*Component
}

func newComponent(name string) *Component {
	return &Component{Name: name, Props: make(Props)}
}

func (c *Component) addProp(p *Prop) {
	c.Props.add(p)
	c.PropOrder = append(c.PropOrder, p)
}

// upperName returns the component name folded to upper case for dispatch.
func (c *Component) upperName() string {
	return strings.ToUpper(c.Name)
}
