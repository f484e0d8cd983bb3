package domain

// zoneMapping maps avalanche.org zone ids to internal zone ids.
var zoneMapping = map[string]string{
	"northwest_mountains": "northwest",
	"southeast_mountains": "southeast",
}

// InternalZone returns the internal zone id for an avalanche.org zone id.
func InternalZone(externalID string) (string, bool) {
	zone, ok := zoneMapping[externalID]
	return zone, ok
}

// ExtractZones maps zone references to internal zone ids, keeping input order
// and duplicates. Unknown zones are dropped.
func ExtractZones(refs []ZoneRef) []string {
	zones := make([]string, 0, len(refs))
	for _, ref := range refs {
		if zone, ok := InternalZone(ref.ZoneID); ok {
			zones = append(zones, zone)
		}
	}
	return zones
}
