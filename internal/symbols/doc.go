package symbols

import "strings"

type ParamDoc struct {
	Name        string
	Description string
}

// Documentation is the parsed form of the `#` comment block before a
// declaration. It is always defined; an undocumented symbol has the zero value.
type Documentation struct {
	Description    string
	HasDescription bool
	Params         []ParamDoc
	Return         string
	HasReturn      bool
}

// ParseDocumentation reads markdown doc lines:
//
//	# Adds numbers.
//	# + a - first operand
//	# + return - the sum
func ParseDocumentation(lines []string) Documentation {
	var doc Documentation
	var desc []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "+ "); ok {
			name, text, _ := strings.Cut(rest, " - ")
			name = strings.TrimSpace(strings.TrimSuffix(name, " -"))
			text = strings.TrimSpace(text)
			if name == "return" {
				doc.Return, doc.HasReturn = text, true
				continue
			}
			doc.Params = append(doc.Params, ParamDoc{Name: name, Description: text})
			continue
		}
		// продолжение описания параметра
		if n := len(doc.Params); n > 0 && trimmed != "" && strings.HasPrefix(line, "  ") {
			doc.Params[n-1].Description += " " + trimmed
			continue
		}
		desc = append(desc, trimmed)
	}
	for len(desc) > 0 && desc[len(desc)-1] == "" {
		desc = desc[:len(desc)-1]
	}
	if len(desc) > 0 {
		doc.Description = strings.Join(desc, "\n")
		doc.HasDescription = true
	}
	return doc
}

// Param returns the doc of one parameter.
func (d Documentation) Param(name string) (string, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p.Description, true
		}
	}
	return "", false
}
