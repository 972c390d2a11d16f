package platform

import "os"

// PrivilegeGate reports whether the current process may mutate network
// configuration.
type PrivilegeGate interface {
	Elevated() bool
}

type processGate struct{}

func (processGate) Elevated() bool {
	return os.Geteuid() == 0
}

// GetPrivilegeGate returns the gate for the current process.
func GetPrivilegeGate() PrivilegeGate {
	return processGate{}
}
