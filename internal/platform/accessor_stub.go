//go:build !linux && !darwin
// +build !linux,!darwin

package platform

func provideSystemAccessor(_ zerolog.Logger) Accessor {
	// Stub for compile-time error
	return THIS_OPERATING_SYSTEM_IS_NOT_SUPPORTED
}
