package markup

import "strings"

// Declaration is one property: value pair from an inline style attribute.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyle splits an inline style into declarations. Property names are lowercased
// and malformed entries are dropped. Semicolons inside parentheses or quotes, as in
// url(data:...;base64,...), do not end a declaration.
func ParseStyle(style string) []Declaration {
	var decls []Declaration
	for _, part := range splitDeclarations(style) {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		decls = SetDeclaration(decls, prop, value)
	}
	return decls
}

func splitDeclarations(style string) []string {
	var (
		parts []string
		depth int
		quote byte
		last  int
	)
	for i := 0; i < len(style); i++ {
		c := style[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ';' && depth == 0:
			parts = append(parts, style[last:i])
			last = i + 1
		}
	}
	return append(parts, style[last:])
}

// MergeStyles combines several style attribute values. A later declaration for the
// same property wins but keeps the position of the first one.
func MergeStyles(styles ...string) []Declaration {
	var decls []Declaration
	for _, s := range styles {
		for _, d := range ParseStyle(s) {
			decls = SetDeclaration(decls, d.Property, d.Value)
		}
	}
	return decls
}

// SetDeclaration replaces prop in place or appends it.
func SetDeclaration(decls []Declaration, prop, value string) []Declaration {
	prop = strings.ToLower(prop)
	for i := range decls {
		if decls[i].Property == prop {
			decls[i].Value = value
			return decls
		}
	}
	return append(decls, Declaration{Property: prop, Value: value})
}

// Lookup returns the value for prop.
func Lookup(decls []Declaration, prop string) (string, bool) {
	for _, d := range decls {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return "", false
}

// FormatStyle renders declarations as "prop: value; prop: value".
func FormatStyle(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}
