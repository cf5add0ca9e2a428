//go:build !coursedebug

package course

const debug = false
