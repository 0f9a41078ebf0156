package runner

import (
	"fmt"
	"strings"
)

// Identity is the stable key correlating a repository across the GitHub API
// and the container engine. It is the only durable link between the two:
// every managed container carries it in its labels, and every reconciliation
// run re-derives the mapping from those labels alone.
type Identity struct {
	Owner string
	Name  string
}

func (id Identity) String() string {
	return id.Owner + "/" + id.Name
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id.Owner == "" && id.Name == ""
}

// ParseIdentity parses an "owner/name" pair. Both parts must be non-empty
// and the name must not contain further slashes.
func ParseIdentity(s string) (Identity, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Identity{}, fmt.Errorf("%w: %q", ErrMalformedLabel, s)
	}
	return Identity{Owner: owner, Name: name}, nil
}
