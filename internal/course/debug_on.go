//go:build coursedebug

package course

// Built with -tags coursedebug, invalid paths reaching the locator panic.
const debug = true
