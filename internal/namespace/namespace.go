// Package namespace maps between fully-qualified capability names
// ("journey.findTrips") and backend server identities. All lookups are pure
// functions over a static alias table; every input has a defined output, so
// there are no error paths.
package namespace

import "strings"

// aliases maps the short namespace prefix used by clients to the id of the
// backend server registration that owns it.
var aliases = map[string]string{
	"journey":  "journey-service-mcp",
	"mobility": "swiss-mobility-mcp",
	"aareguru": "aareguru-mcp",
	"meteo":    "open-meteo-mcp",
	"weather":  "open-meteo-mcp",
}

// canonical maps a backend server id back to its canonical namespace alias.
// Where several aliases share a backend (meteo/weather) the canonical one wins.
var canonical = map[string]string{
	"journey-service-mcp": "journey",
	"swiss-mobility-mcp":  "mobility",
	"aareguru-mcp":        "aareguru",
	"open-meteo-mcp":      "meteo",
}

// ExtractServerID resolves the namespace segment of a fully-qualified
// capability name to a backend server id. The namespace is the text before the
// first dot; a name without a dot is treated as a bare namespace. Unknown
// namespaces fall back to "<namespace>-mcp".
func ExtractServerID(fullName string) string {
	ns := fullName
	if i := strings.Index(fullName, "."); i >= 0 {
		ns = fullName[:i]
	}
	if id, ok := aliases[ns]; ok {
		return id
	}
	return ns + "-mcp"
}

// StripNamespace removes the leading "<namespace>." segment from a
// fully-qualified capability name. Names without a dot are returned unchanged,
// and only the first segment is stripped so nested dotted names survive intact.
func StripNamespace(fullName string) string {
	if i := strings.Index(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// AddNamespace composes a fully-qualified capability name from a backend
// server id and a local capability name. It is the inverse of ExtractServerID
// combined with StripNamespace for every server with a canonical alias.
func AddNamespace(serverID, localName string) string {
	return Prefix(serverID) + "." + localName
}

// Prefix returns the namespace alias for a backend server id. Unknown ids fall
// back to the id with any trailing "-mcp" suffix removed.
func Prefix(serverID string) string {
	if ns, ok := canonical[serverID]; ok {
		return ns
	}
	return strings.TrimSuffix(serverID, "-mcp")
}
