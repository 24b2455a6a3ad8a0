// Package hotkeys binds per-mode global hotkey combinations onto the shared
// input hook and persists the resolved bindings so a user-customized combo
// survives restarts.
package hotkeys

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Binding is a parsed hotkey combination. Keys holds, per participating key,
// the rawcodes that satisfy it (left and right variants for modifiers).
type Binding struct {
	Combo string     `json:"combo"`
	Keys  [][]uint16 `json:"keys"`
}

// ParseCombo converts a combo string like "Ctrl+Shift+2" into a Binding.
// Key names are case-insensitive; "win", "cmd" and "super" are synonyms.
func ParseCombo(combo string) (Binding, error) {
	parts := strings.Split(strings.ToLower(combo), "+")
	b := Binding{Combo: combo}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		codes := keyRawcodes(part)
		if len(codes) == 0 {
			return Binding{}, fmt.Errorf("unknown key %q in hotkey %q", part, combo)
		}
		b.Keys = append(b.Keys, codes)
	}
	if len(b.Keys) == 0 {
		return Binding{}, fmt.Errorf("empty hotkey %q", combo)
	}
	return b, nil
}

// ParseSingleKey resolves a key name to exactly one rawcode. Combos and keys
// with left/right variants are rejected: callers use this for roles (like the
// cancel key) that the hook matches against a single rawcode.
func ParseSingleKey(name string) (uint16, error) {
	b, err := ParseCombo(name)
	if err != nil {
		return 0, err
	}
	if len(b.Keys) != 1 {
		return 0, fmt.Errorf("%q is a combination, not a single key", name)
	}
	if len(b.Keys[0]) != 1 {
		return 0, fmt.Errorf("%q has multiple variants and cannot serve as a single key", name)
	}
	return b.Keys[0][0], nil
}

var modifierCodes = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN
	"win":   {91, 92},
	"super": {91, 92},
}

var specialCodes = map[string]uint16{
	"space":     32,
	"enter":     13,
	"return":    13,
	"esc":       27,
	"escape":    27,
	"tab":       9,
	"backspace": 8,
	"delete":    46,
	"del":       46,
	"insert":    45,
	"ins":       45,
	"home":      36,
	"end":       35,
	"pageup":    33,
	"pgup":      33,
	"pagedown":  34,
	"pgdn":      34,
	"left":      37,
	"up":        38,
	"right":     39,
	"down":      40,
}

// keyRawcodes maps a normalized key name to Windows virtual-key rawcodes, the
// codes the low-level hook reports on every platform it supports.
func keyRawcodes(name string) []uint16 {
	if codes, ok := modifierCodes[name]; ok {
		return codes
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if strings.HasPrefix(name, "f") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}
	if code, ok := specialCodes[name]; ok {
		return []uint16{code}
	}
	return nil
}

// Store persists one opaque blob per mode key.
type Store interface {
	Save(mode string, data []byte) error
	Load(mode string) ([]byte, bool, error)
}

// Registrar is the chord surface of the input hook.
type Registrar interface {
	RegisterChord(keys [][]uint16, cb func()) func()
}

// Manager owns the registered hotkey set.
type Manager struct {
	hook    Registrar
	store   Store // optional
	removes []func()
}

// NewManager wires the hook; store may be nil to disable persistence.
func NewManager(hook Registrar, store Store) *Manager {
	return &Manager{hook: hook, store: store}
}

// Bind registers the hotkey for a mode. A persisted binding for the mode wins
// over fallback; the resolved binding is written back so first runs seed the
// store. cb fires on the hook goroutine.
func (m *Manager) Bind(mode, fallback string, cb func()) error {
	combo := fallback
	if m.store != nil {
		if data, ok, err := m.store.Load(mode); err != nil {
			log.Printf("hotkeys: loading binding for %s: %v", mode, err)
		} else if ok {
			var saved Binding
			if err := json.Unmarshal(data, &saved); err != nil || saved.Combo == "" {
				log.Printf("hotkeys: discarding corrupt binding for %s", mode)
			} else {
				combo = saved.Combo
			}
		}
	}

	b, err := ParseCombo(combo)
	if err != nil {
		if combo == fallback {
			return err
		}
		// Persisted combo went bad; fall back to the default.
		log.Printf("hotkeys: %v, using default %q", err, fallback)
		if b, err = ParseCombo(fallback); err != nil {
			return err
		}
	}

	if m.store != nil {
		data, err := json.Marshal(b)
		if err == nil {
			err = m.store.Save(mode, data)
		}
		if err != nil {
			log.Printf("hotkeys: persisting binding for %s: %v", mode, err)
		}
	}

	log.Printf("hotkeys: %s bound to %s", mode, b.Combo)
	m.removes = append(m.removes, m.hook.RegisterChord(b.Keys, cb))
	return nil
}

// Close removes every registered hotkey.
func (m *Manager) Close() {
	for _, remove := range m.removes {
		remove()
	}
	m.removes = nil
}
