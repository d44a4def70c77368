package protocol

import "sync"

// Registry maps command bytes to builders for top-level messages and sysex
// sub-command bytes to builders for enveloped ones. A Registry is an explicit
// object rather than package state so independent connections can carry
// independent command sets; the zero value is not usable, construct with
// NewRegistry or NewEmptyRegistry.
//
// Registration may happen concurrently with decoding. A resolve in progress
// sees either the state before or after any given registration, never a
// partial entry.
type Registry struct {
	mu       sync.RWMutex
	commands map[byte]BuildFunc
	sysex    map[byte]SysexBuildFunc
}

// NewRegistry returns a Registry preloaded with the built-in message set.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	registerBuiltins(r)
	return r
}

// NewEmptyRegistry returns a Registry with no builders installed. Useful for
// stacks that speak only a custom command set.
func NewEmptyRegistry() *Registry {
	return &Registry{
		commands: make(map[byte]BuildFunc),
		sysex:    make(map[byte]SysexBuildFunc),
	}
}

// Register installs fn as the builder for cmd, replacing any earlier builder
// for the same byte. Channel-bearing families register their base byte (low
// nibble zero); the decoder folds the channel out of the raw byte before the
// builder runs. Callers registering custom commands are responsible for
// staying clear of protocol-reserved bytes.
func (r *Registry) Register(cmd byte, fn BuildFunc) {
	r.mu.Lock()
	r.commands[cmd] = fn
	r.mu.Unlock()
}

// RegisterSysex installs fn as the builder for the sysex sub-command sub,
// replacing any earlier builder for the same byte.
func (r *Registry) RegisterSysex(sub byte, fn SysexBuildFunc) {
	r.mu.Lock()
	r.sysex[sub] = fn
	r.mu.Unlock()
}

// resolveCommand maps a raw command byte to its builder and channel. Exact
// registrations win; bytes below 0xF0 fall back to their family base with
// the low nibble masked off. The channel depends on the byte alone: every
// command below 0xF0 carries its channel in the low nibble (the base byte
// itself is channel 0), commands at 0xF0 and above carry none.
func (r *Registry) resolveCommand(raw byte) (BuildFunc, int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.commands[raw]; ok {
		return fn, channelOf(raw), true
	}
	if raw < CmdStartSysex {
		if fn, ok := r.commands[raw&commandMask]; ok {
			return fn, int(raw & channelMask), true
		}
	}
	return nil, NoChannel, false
}

// resolveSysex maps a sysex sub-command byte to its builder. Exact match
// only; sysex sub-commands never embed a channel.
func (r *Registry) resolveSysex(sub byte) (SysexBuildFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.sysex[sub]
	return fn, ok
}

func channelOf(raw byte) int {
	if raw < CmdStartSysex {
		return int(raw & channelMask)
	}
	return NoChannel
}
