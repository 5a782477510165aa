//go:build androidtarget

package jdwp

// Builds tagged androidtarget are the only ones where an unspecified
// transport may default to dt_android_adb, matching the host this
// behavior was originally written for: a desktop build with no local
// ADB broker has no sensible tunnel to fall back to.
func init() {
	hostTunnelAvailable = true
}
