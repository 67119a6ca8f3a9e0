// Package guard holds the checks that must pass before monofmt touches the repository.
package guard

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/andyballingall/monofmt/internal/fs"
)

// AllowRootEnvVar lets container images that only have a root user opt out of the privilege check.
const AllowRootEnvVar = "MONOFMT_ALLOW_ROOT"

// superuserUID is the effective uid of root on POSIX systems.
const superuserUID = 0

// PermissionPolicyViolationError is returned when monofmt is invoked by a disallowed principal.
type PermissionPolicyViolationError struct {
	UID int
}

func (e *PermissionPolicyViolationError) Error() string {
	return fmt.Sprintf("refusing to run as the superuser (uid %d); formatted files would end up owned by root. "+
		"Set %s=1 to override", e.UID, AllowRootEnvVar)
}

// Identity reports who the current process runs as.
type Identity interface {
	// EUID returns the effective user id, or -1 where the platform has no such concept.
	EUID() int
}

// OSIdentity reads the identity of the running process.
type OSIdentity struct{}

// EUID returns os.Geteuid(), which is -1 on Windows.
func (OSIdentity) EUID() int {
	return os.Geteuid()
}

// Guard is a precondition evaluated once before any step runs.
type Guard interface {
	Check() error
}

// EUIDGuard rejects runs by the superuser.
type EUIDGuard struct {
	identity    Identity
	envProvider fs.EnvProvider
	logger      *slog.Logger
}

// NewEUIDGuard creates an EUIDGuard. A nil identity uses the running process.
func NewEUIDGuard(identity Identity, envProvider fs.EnvProvider, logger *slog.Logger) *EUIDGuard {
	if identity == nil {
		identity = OSIdentity{}
	}
	if envProvider == nil {
		envProvider = fs.NewEnvProvider()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EUIDGuard{identity: identity, envProvider: envProvider, logger: logger}
}

// Check returns a *PermissionPolicyViolationError if the effective user is the superuser.
func (g *EUIDGuard) Check() error {
	uid := g.identity.EUID()
	if uid != superuserUID {
		return nil
	}

	if g.envProvider.Get(AllowRootEnvVar) == "1" {
		g.logger.Warn("running as the superuser because " + AllowRootEnvVar + "=1")
		return nil
	}

	return &PermissionPolicyViolationError{UID: uid}
}
