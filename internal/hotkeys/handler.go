// Package hotkeys maps modifier+key presses to compositor actions.
package hotkeys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/xrdesk/internal/input"
)

// Action is something a binding triggers in the compositor.
type Action int

const (
	ActionNone Action = iota
	ActionExit
	ActionCycleFocus
	ActionSpawnTerminal
	ActionCloseView
)

var actionNames = map[Action]string{
	ActionExit:          "exit",
	ActionCycleFocus:    "cycle_focus",
	ActionSpawnTerminal: "spawn_terminal",
	ActionCloseView:     "close_view",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ParseAction resolves an action name such as "cycle_focus".
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// Keysym is an X keysym value.
type Keysym uint32

const (
	KeysymTab    Keysym = 0xff09
	KeysymReturn Keysym = 0xff0d
	KeysymEscape Keysym = 0xff1b
	KeysymQ      Keysym = 0x0071
)

var namedKeysyms = map[string]Keysym{
	"escape":    KeysymEscape,
	"tab":       KeysymTab,
	"return":    KeysymReturn,
	"enter":     KeysymReturn,
	"space":     0x0020,
	"backspace": 0xff08,
	"delete":    0xffff,
}

// KeysymFromName resolves a key name. Single letters and digits map to
// their Latin-1 keysym; letters are case-insensitive.
func KeysymFromName(name string) (Keysym, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if sym, ok := namedKeysyms[n]; ok {
		return sym, nil
	}
	if len(n) == 1 && (n[0] >= 'a' && n[0] <= 'z' || n[0] >= '0' && n[0] <= '9') {
		return Keysym(n[0]), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// ParseModifier resolves a modifier name.
func ParseModifier(name string) (input.Modifiers, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alt", "mod1":
		return input.ModAlt, nil
	case "super", "logo", "mod4", "win":
		return input.ModSuper, nil
	case "ctrl", "control":
		return input.ModCtrl, nil
	case "shift":
		return input.ModShift, nil
	default:
		return 0, fmt.Errorf("unknown modifier %q", name)
	}
}

// Binding is one key bound to an action.
type Binding struct {
	Keysym Keysym
	Action Action
}

// Table holds the bindings active while the modifier is held.
type Table struct {
	modifier input.Modifiers
	keys     map[Keysym]Action
}

// Default returns the built-in bindings under mod.
func Default(mod input.Modifiers) *Table {
	return &Table{
		modifier: mod,
		keys: map[Keysym]Action{
			KeysymEscape: ActionExit,
			KeysymTab:    ActionCycleFocus,
			KeysymReturn: ActionSpawnTerminal,
			KeysymQ:      ActionCloseView,
		},
	}
}

// Parse builds a table from a modifier name and action-to-key names.
// Actions not named in keys keep their default key.
func Parse(modifier string, keys map[string]string) (*Table, error) {
	mod, err := ParseModifier(modifier)
	if err != nil {
		return nil, err
	}
	t := Default(mod)
	for actionName, keyName := range keys {
		action, err := ParseAction(actionName)
		if err != nil {
			return nil, err
		}
		sym, err := KeysymFromName(keyName)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", actionName, err)
		}
		if other, taken := t.keys[sym]; taken && other != action {
			if _, rebound := keys[other.String()]; !rebound {
				return nil, fmt.Errorf("binding %s: key %q already bound to %s", actionName, keyName, other)
			}
		}
		for k, a := range t.keys {
			if a == action {
				delete(t.keys, k)
			}
		}
		t.keys[sym] = action
	}
	return t, nil
}

// Modifier returns the modifier the table requires.
func (t *Table) Modifier() input.Modifiers {
	return t.modifier
}

// Lookup returns the action for sym pressed with mods, or ActionNone.
// Upper-case letters match their lower-case binding.
func (t *Table) Lookup(mods input.Modifiers, sym Keysym) Action {
	if !mods.Has(t.modifier) {
		return ActionNone
	}
	if sym >= 'A' && sym <= 'Z' {
		sym += 'a' - 'A'
	}
	return t.keys[sym]
}

// Bindings lists the table ordered by action.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.keys))
	for sym, a := range t.keys {
		out = append(out, Binding{Keysym: sym, Action: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}
