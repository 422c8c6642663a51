package stripcodesig

import "fmt"

// ArchReport summarizes one architecture slice's patch run, the structured
// form of the original's "Patch report (%d): %u instructions patched, %u
// bad instructions, patches bypassed: %s" line.
type ArchReport struct {
	// CPUType is the Mach-O CPU type this slice targeted (CPUTypeI386 or
	// CPUTypeX8664); zero for a thin (non-fat) binary with no fat_arch
	// entry to read it from.
	CPUType int32
	Patched int
	Bad     int
	// Bypassed is true when the prescan gate rejected this slice as
	// garbage, in which case Patched and Bad reflect only the prescan,
	// never a full-section scan; it is also true when the slice's
	// __TEXT,__text section could not be located, in which case no scan
	// ran and both counts are zero.
	Bypassed bool
	// CodeSignatureStripped reports whether StripCodeSignature found and
	// removed a signature for this slice.
	CodeSignatureStripped bool
}

func (r ArchReport) String() string {
	bypassed := "NO"
	if r.Bypassed {
		bypassed = "YES"
	}
	return fmt.Sprintf("%d instructions patched, %d bad instructions, patches bypassed: %s", r.Patched, r.Bad, bypassed)
}

// Report is the result of a full patch run across every architecture
// slice a container held (one entry for a thin binary, one per Intel
// slice for a fat binary).
type Report struct {
	Kind         Kind
	Archs        []ArchReport
	TotalPatched int
}

// Add folds an ArchReport into the running total, the way main()'s
// total_patches accumulator does across fat_arch entries.
func (r *Report) Add(a ArchReport) {
	r.Archs = append(r.Archs, a)
	r.TotalPatched += a.Patched
}
