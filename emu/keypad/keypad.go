// Package keypad tracks the 16 key hex keypad and the wait-for-key state used
// by the blocking LD Vx,K instruction.
package keypad

import (
	"fmt"
	"strings"
)

// Keys is the number of keypad keys, labelled 0x0-0xF.
const Keys = 16

// Keypad holds the pressed state of each key. While a wait is armed the CPU
// sits still; the next KeyDown resolves the wait and records which key and
// destination register satisfied it.
type Keypad struct {
	keys [Keys]bool

	waiting  bool
	waitDest uint8

	resolved    bool
	resolvedKey uint8
}

// New returns a keypad with every key released.
func New() *Keypad {
	return &Keypad{}
}

// Reset releases all keys and clears any pending wait.
func (k *Keypad) Reset() {
	*k = Keypad{}
}

// KeyDown marks a key as pressed. Keys outside 0x0-0xF are ignored. A pending
// wait is resolved by any valid key.
func (k *Keypad) KeyDown(key uint8) {
	if key >= Keys {
		return
	}
	k.keys[key] = true

	if k.waiting {
		k.waiting = false
		k.resolved = true
		k.resolvedKey = key
	}
}

// KeyUp marks a key as released. Keys outside 0x0-0xF are ignored.
func (k *Keypad) KeyUp(key uint8) {
	if key >= Keys {
		return
	}
	k.keys[key] = false
}

// IsPressed reports whether a key is held. Keys outside 0x0-0xF read as
// released.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= Keys {
		return false
	}
	return k.keys[key]
}

// PollAny returns the lowest numbered held key, if any.
func (k *Keypad) PollAny() (uint8, bool) {
	for key := uint8(0); key < Keys; key++ {
		if k.keys[key] {
			return key, true
		}
	}
	return 0, false
}

// BeginWait arms the wait state. dest is the register the resolving key will
// be stored into.
func (k *Keypad) BeginWait(dest uint8) {
	k.waiting = true
	k.waitDest = dest
	k.resolved = false
}

// Waiting reports whether a wait is armed and unresolved.
func (k *Keypad) Waiting() bool {
	return k.waiting
}

// TakeResolved returns the destination register and key of a resolved wait,
// consuming it. ok is false if no wait has resolved since the last call.
func (k *Keypad) TakeResolved() (dest, key uint8, ok bool) {
	if !k.resolved {
		return 0, 0, false
	}
	k.resolved = false
	return k.waitDest, k.resolvedKey, true
}

// DebugState lists the held keys, for log lines and debug overlays.
func (k *Keypad) DebugState() string {
	var b strings.Builder
	b.WriteString("Keys:")
	for key := 0; key < Keys; key++ {
		if k.keys[key] {
			fmt.Fprintf(&b, " %X", key)
		}
	}
	if k.waiting {
		fmt.Fprintf(&b, " | waiting for V%X", k.waitDest)
	}
	return b.String()
}
