package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// GenerateKey derives a deterministic cache key from a capability name and its
// arguments. Nil and empty argument maps produce the identical key, and
// encoding/json sorts map keys, so equal logical inputs always hash the same
// across process restarts. The key is a 32-bit FNV-1a hash rendered as eight
// zero-padded lowercase hex characters: collisions are possible and are
// accepted as cache inefficiency (a stale value served until overwritten),
// never a correctness hazard.
func GenerateKey(capabilityName string, arguments map[string]any) string {
	canonical := capabilityName
	if len(arguments) > 0 {
		// Marshaling a map cannot fail for JSON-compatible argument values;
		// anything else came from a JSON body in the first place.
		encoded, err := json.Marshal(arguments)
		if err == nil {
			canonical += "::" + string(encoded)
		} else {
			canonical += "::" + fmt.Sprintf("%v", arguments)
		}
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(canonical))

	return fmt.Sprintf("%08x", h.Sum32())
}
