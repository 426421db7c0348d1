package namespace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractServerID(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name     string
		fullName string
		expected string
	}{
		{
			name:     "known namespace",
			fullName: "journey.findTrips",
			expected: "journey-service-mcp",
		},
		{
			name:     "known namespace with nested dots",
			fullName: "mobility.stations.nearby",
			expected: "swiss-mobility-mcp",
		},
		{
			name:     "weather alias shares a backend with meteo",
			fullName: "weather.getForecast",
			expected: "open-meteo-mcp",
		},
		{
			name:     "meteo alias shares a backend with weather",
			fullName: "meteo.getForecast",
			expected: "open-meteo-mcp",
		},
		{
			name:     "unknown namespace falls back to -mcp suffix",
			fullName: "parking.findSpots",
			expected: "parking-mcp",
		},
		{
			name:     "name without dot is treated as a bare namespace",
			fullName: "aareguru",
			expected: "aareguru-mcp",
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.expected, ExtractServerID(testCase.fullName))
		})
	}
}

func TestStripNamespace(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name     string
		fullName string
		expected string
	}{
		{
			name:     "strips the leading segment",
			fullName: "journey.findTrips",
			expected: "findTrips",
		},
		{
			name:     "only the first segment is stripped",
			fullName: "journey.trips.byStation",
			expected: "trips.byStation",
		},
		{
			name:     "name without dot is returned unchanged",
			fullName: "findTrips",
			expected: "findTrips",
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.expected, StripNamespace(testCase.fullName))
		})
	}
}

func TestAddNamespace(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name      string
		serverID  string
		localName string
		expected  string
	}{
		{
			name:      "known server id uses its canonical alias",
			serverID:  "journey-service-mcp",
			localName: "findTrips",
			expected:  "journey.findTrips",
		},
		{
			name:      "shared backend renders the canonical alias",
			serverID:  "open-meteo-mcp",
			localName: "getForecast",
			expected:  "meteo.getForecast",
		},
		{
			name:      "unknown server id drops a trailing -mcp suffix",
			serverID:  "parking-mcp",
			localName: "findSpots",
			expected:  "parking.findSpots",
		},
		{
			name:      "unknown server id without suffix is used verbatim",
			serverID:  "velo",
			localName: "routes",
			expected:  "velo.routes",
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.expected, AddNamespace(testCase.serverID, testCase.localName))
		})
	}
}

// Every server id with a canonical alias must round-trip through AddNamespace
// and ExtractServerID.
func TestNamespace_RoundTrip(t *testing.T) {
	t.Parallel()

	for serverID := range canonical {
		full := AddNamespace(serverID, "someTool")
		require.Equal(t, serverID, ExtractServerID(full), "round-trip failed for %s", serverID)
		require.Equal(t, "someTool", StripNamespace(full))
	}
}
