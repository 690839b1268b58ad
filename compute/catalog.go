package compute

// catalog is the pre-seeded, immutable machine-type set spec §4.2
// describes ("names map to an immutable (vcpus, memory_mib) tuple"). The
// same (vcpus, memory_mib) families are offered in every zone.
var catalogFamilies = []MachineType{
	{Name: "micro-1", VCPUs: 1, MemoryMiB: 512},
	{Name: "small-2", VCPUs: 1, MemoryMiB: 1024},
	{Name: "standard-2", VCPUs: 2, MemoryMiB: 4096},
	{Name: "standard-4", VCPUs: 4, MemoryMiB: 8192},
	{Name: "standard-8", VCPUs: 8, MemoryMiB: 16384},
	{Name: "highmem-4", VCPUs: 4, MemoryMiB: 16384},
	{Name: "highmem-8", VCPUs: 8, MemoryMiB: 32768},
}

// Zones lists the zones the catalogue is pre-seeded across.
var Zones = []string{"us-central1-a", "us-central1-b", "us-east1-b", "europe-west1-b"}

// Catalog returns every MachineType in the given zone.
func Catalog(zone string) []MachineType {
	out := make([]MachineType, 0, len(catalogFamilies))
	for _, f := range catalogFamilies {
		m := f
		m.Zone = zone
		out = append(out, m)
	}
	return out
}

// LookupMachineType resolves a short name or fully-qualified path (spec
// §4.2: "accepts either the short name or the fully-qualified path and
// extracts the short name") to a catalogue entry for zone.
func LookupMachineType(zone, nameOrPath string) (MachineType, bool) {
	name := extractShortName(nameOrPath)
	for _, f := range catalogFamilies {
		if f.Name == name {
			f.Zone = zone
			return f, true
		}
	}
	return MachineType{}, false
}

// extractShortName takes the last path segment of a machineType URL, or
// returns the input unchanged if it has no slashes.
func extractShortName(nameOrPath string) string {
	for i := len(nameOrPath) - 1; i >= 0; i-- {
		if nameOrPath[i] == '/' {
			return nameOrPath[i+1:]
		}
	}
	return nameOrPath
}
