package conf

import (
	"errors"
	"os/exec"
	"os/user"
	"strings"
)

// Lookups used by Username, replaced in tests.
var (
	currentUser = user.Current
	whoami      = func() ([]byte, error) { return exec.Command("whoami").Output() }
)

// Username picks the login name sent in every frame: the explicit value,
// else the OS account, else the output of whoami.
func Username(explicit string) (string, error) {
	if u := strings.TrimSpace(explicit); u != "" {
		return u, nil
	}
	if u, err := currentUser(); err == nil {
		if name := stripDomain(u.Username); name != "" {
			return name, nil
		}
	}
	out, err := whoami()
	if err != nil {
		return "", errors.New("could not determine username, use --user")
	}
	if name := stripDomain(strings.TrimSpace(string(out))); name != "" {
		return name, nil
	}
	return "", errors.New("could not determine username, use --user")
}

// stripDomain drops a Windows "DOMAIN\" prefix.
func stripDomain(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
