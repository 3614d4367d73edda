package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace bool // log every CPU instruction at debug level
}
