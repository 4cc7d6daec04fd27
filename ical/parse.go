package ical

import (
	"io"
	"strings"
)

// ParseStream performs the syntactic parse only: bytes in, a forest of raw
// Components out. It does not interpret any property value; see
// BuildCalendar for semantic interpretation.
func ParseStream(r io.Reader) ([]*Component, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, syntaxErr("reading input", err)
	}
	return ParseString(string(data))
}

// ParseString is ParseStream for an in-memory string, which is how this
// library is most often driven (iCalendar files are small).
func ParseString(text string) ([]*Component, error) {
	lines := splitLines(unfold(text))

	var roots []*Component
	var stack []*Component

	for _, line := range lines {
		rl, err := parseLine(line)
		if err != nil {
			return nil, err
		}

		switch strings.ToUpper(rl.Name) {
		case "BEGIN":
			name := strings.TrimSpace(rl.Value)
			if name == "" {
				return nil, syntaxErr("BEGIN with no component name", nil)
			}
			stack = append(stack, newComponent(name))
		case "END":
			name := strings.TrimSpace(rl.Value)
			if len(stack) == 0 {
				return nil, syntaxErr("END:"+name+" with no matching BEGIN", nil)
			}
			top := stack[len(stack)-1]
			if !strings.EqualFold(top.Name, name) {
				return nil, syntaxErr("END:"+name+" does not match BEGIN:"+top.Name, nil)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				roots = append(roots, top)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, top)
			}
		default:
			if len(stack) == 0 {
				return nil, syntaxErr("property "+rl.Name+" outside of any component", nil)
			}
			prop := &Prop{Name: strings.ToUpper(rl.Name), Params: rl.Params, Value: rl.Value}
			stack[len(stack)-1].addProp(prop)
		}
	}

	if len(stack) != 0 {
		return nil, syntaxErr("stream ended with unclosed component "+stack[len(stack)-1].Name, nil)
	}

	return roots, nil
}
