package extrato

import "github.com/ginjaninja78/sat-extrato/internal/config"

// Mode is the print mode of a session. The zero value is the normal mode.
type Mode struct {
	Bold      bool
	Italic    bool
	Condensed bool
	Expanded  bool
}

// Width returns the number of columns available in this mode. Condensed
// and expanded only apply when set alone; both set falls back to normal.
func (m Mode) Width(c config.Columns) int {
	switch {
	case m.Condensed && !m.Expanded:
		return c.Condensed
	case m.Expanded && !m.Condensed:
		return c.Expanded
	default:
		return c.Normal
	}
}

// IsNormal reports whether every flag is off.
func (m Mode) IsNormal() bool {
	return m == Mode{}
}
