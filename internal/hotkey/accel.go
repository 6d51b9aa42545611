package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is a platform-neutral modifier key. The platform manager
// maps these onto the hotkey library's own modifier type.
type Modifier int

const (
	ModCtrl Modifier = iota
	ModShift
	ModAlt
	ModWin
)

// Accel is a parsed accelerator like "ctrl+alt+m": zero or more
// modifiers plus exactly one key token.
type Accel struct {
	Mods []Modifier
	Key  string
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"win":     ModWin,
	"windows": ModWin,
	"super":   ModWin,
}

// Parse splits a "+"-separated accelerator string into modifiers and a
// key. Tokens are case-insensitive; the key must be the last token.
func Parse(s string) (Accel, error) {
	var a Accel

	tokens := strings.Split(s, "+")
	for i, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			return Accel{}, fmt.Errorf("empty token in accelerator %q", s)
		}
		if mod, ok := modifierNames[tok]; ok {
			a.Mods = append(a.Mods, mod)
			continue
		}
		if i != len(tokens)-1 {
			return Accel{}, fmt.Errorf("key %q must be the last token in %q", tok, s)
		}
		a.Key = tok
	}

	if a.Key == "" {
		return Accel{}, fmt.Errorf("accelerator %q has no key", s)
	}
	return a, nil
}
