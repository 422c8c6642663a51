package stripcodesig

import (
	"fmt"
	"io"
)

// Tunables governing the scanner's padding/garbage heuristics. Names and
// values match REST_SIZE/PRESCAN_SIZE/PRESCAN_MAX_BAD in insn_patcher.c.
const (
	// RestSize is the quarantine window (in bytes) after a bad or
	// REST-flagged instruction during which NeedsPatch instructions are
	// skipped rather than patched, on the theory that they're probably
	// inside garbage the decoder is misinterpreting as code.
	RestSize = 25

	// PrescanSize caps how many bytes of a section the prescan pass looks
	// at before deciding whether the section looks like real code.
	PrescanSize = 1000

	// PrescanMaxBad is the prescan bad-instruction count at which the whole
	// section is given up on (the section is bypassed once the count
	// reaches this value).
	PrescanMaxBad = 20
)

// Scanner walks a borrowed byte region with DecodeLength, optionally
// patching as it goes. It never allocates and never copies region; all of
// its state is the cursor bookkeeping a single scan needs.
type Scanner struct {
	Region   []byte
	BaseAddr uint64
	Mode     Mode
	Extended bool
}

// Scan walks the full region once. When mutate is true, TryPatch is
// invoked on every NeedsPatch instruction outside the REST quarantine
// window, and region is mutated in place. When w is non-nil, a line is
// written per instruction describing what the scanner saw or did,
// mirroring the verbose branch of scan_text_section; the decision logic
// itself doesn't change with or without a writer, only whether it narrates.
func (s *Scanner) Scan(mutate bool, w io.Writer) (badCount, patchCount int) {
	// Decoding and patching may read past the last scanned byte into the
	// slack the caller leaves beyond len(s.Region) (see EffectiveTextSize),
	// so work on the full capacity and stop the walk at len(s.Region).
	region := s.Region[:cap(s.Region)]
	pos := 0
	end := len(s.Region)
	lastBad := -1

	for pos < end {
		length, status := DecodeLength(region[pos:], s.Mode, s.Extended)
		addr := s.BaseAddr + uint64(pos)

		switch {
		case length == Invalid:
			s.trace(w, addr, "(bad)")
			lastBad = pos
			badCount++
			pos++
			continue

		case length == Unsupported:
			s.trace(w, addr, "(unsupported)")
			lastBad = pos
			badCount++
			pos++
			continue
		}

		if status&StatusPadding != 0 {
			n := paddingRun(region, pos, end)
			s.trace(w, addr, fmt.Sprintf("(%d bytes padding)", n))
			pos += n
			continue
		}

		if status&StatusRest != 0 {
			lastBad = pos
			s.trace(w, addr, "(will rest)")
		}

		if status&StatusNeedsPatch == 0 {
			pos += length
			continue
		}

		if !mutate || (lastBad >= 0 && pos-lastBad <= RestSize) {
			s.trace(w, addr, "(skipped patch)")
			pos += length
			continue
		}

		if TryPatch(region, pos, s.Mode, s.Extended) {
			patchCount++
			s.trace(w, addr, "(patched)")
		} else {
			s.trace(w, addr, "(unrecognized patch)")
		}
		pos += length
	}

	return badCount, patchCount
}

// paddingRun measures a run of repeated filler bytes (0x00 or 0x90) the
// same way scan_text_section does: count forward from pos while the byte
// matches region[pos], capped at the region's end.
func paddingRun(region []byte, pos, end int) int {
	n := 1
	for pos+n < end && region[pos+n] == region[pos] {
		n++
	}
	return n
}

func (s *Scanner) trace(w io.Writer, addr uint64, note string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%08x: %s\n", addr, note)
}

// ScanSection runs the prescan-then-patch sequence patch_text_segment
// drives: a bounded prescan that never mutates, gating on PrescanMaxBad,
// followed (if the gate passes) by a full scan that patches when patch is
// true. bypassed reports whether the prescan rejected the section as
// garbage, in which case neither scan mutated anything beyond the prescan
// itself (which never mutates regardless).
func ScanSection(region []byte, baseAddr uint64, mode Mode, extended bool, patch bool, w io.Writer) (badCount, patchCount int, bypassed bool) {
	prescanRegion := region
	if len(prescanRegion) > PrescanSize {
		prescanRegion = prescanRegion[:PrescanSize]
	}
	prescanner := &Scanner{Region: prescanRegion, BaseAddr: baseAddr, Mode: mode, Extended: extended}
	prescanBad, _ := prescanner.Scan(false, w)
	if w != nil {
		fmt.Fprintf(w, "prescan found %d bad instructions\n", prescanBad)
	}
	if prescanBad >= PrescanMaxBad {
		if w != nil {
			fmt.Fprintln(w, "text section appears to contain garbage, bypassing patcher")
		}
		return prescanBad, 0, true
	}

	scanner := &Scanner{Region: region, BaseAddr: baseAddr, Mode: mode, Extended: extended}
	badCount, patchCount = scanner.Scan(patch, w)
	if w != nil {
		fmt.Fprintf(w, "complete scan found %d bad instructions\n", badCount)
	}
	return badCount, patchCount, false
}
