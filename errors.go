package typereg

import (
	"fmt"
	"strings"
)

// UnknownKeyError is returned when deserialization encounters a dispatch key
// that has no registered type, and the registry has no unknown-entries
// fallback configured.
//
// Registered lists every key known to the registry, in registration order, to
// make it obvious which registration is missing.
type UnknownKeyError[K comparable] struct {
	Key        K
	Registered []K
}

func (e *UnknownKeyError[K]) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type key %q not registered in type registry; available keys:", fmt.Sprint(e.Key))

	if len(e.Registered) == 0 {
		sb.WriteString(" (none)")
		return sb.String()
	}

	for idx, key := range e.Registered {
		if idx > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " %q", fmt.Sprint(key))
	}

	return sb.String()
}
