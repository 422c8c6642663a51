package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/tvi/stripcodesig"
)

// patchBuffer dispatches on the container kind the same way the original
// patcher's main() switches on the magic bytes it read: a thin 32- or
// 64-bit Mach-O is patched directly, a fat binary is walked architecture
// by architecture via ForEachArchitecture, skipping anything that isn't
// Intel. mutate controls whether TryPatch and StripCodeSignature actually
// touch data, or whether this is a --dry-run/report pass.
func patchBuffer(data []byte, extended, mutate bool, w io.Writer) (*stripcodesig.Report, error) {
	kind := stripcodesig.DetectKind(data)
	report := &stripcodesig.Report{Kind: kind}

	switch kind {
	case stripcodesig.KindMachO32:
		a, err := patchSlice(data, stripcodesig.Mode32, false, extended, mutate, w)
		if err != nil {
			return nil, err
		}
		report.Add(a)

	case stripcodesig.KindMachO64:
		a, err := patchSlice(data, stripcodesig.Mode64, true, extended, mutate, w)
		if err != nil {
			return nil, err
		}
		report.Add(a)

	case stripcodesig.KindFat:
		if w != nil {
			fmt.Fprintln(w, "patching universal binary")
		}
		err := stripcodesig.ForEachArchitecture(data, func(cpuType int32, offset, size uint32) error {
			if offset+size > uint32(len(data)) {
				return stripcodesig.ErrSectionNotFound
			}
			slice := data[offset : offset+size]

			switch cpuType {
			case stripcodesig.CPUTypeX8664:
				a, err := patchSlice(slice, stripcodesig.Mode64, true, extended, mutate, w)
				if err != nil {
					return err
				}
				a.CPUType = cpuType
				report.Add(a)
			case stripcodesig.CPUTypeI386:
				a, err := patchSlice(slice, stripcodesig.Mode32, false, extended, mutate, w)
				if err != nil {
					return err
				}
				a.CPUType = cpuType
				report.Add(a)
			default:
				if w != nil {
					fmt.Fprintf(w, "skipping non-Intel architecture (cpu type %#x)\n", cpuType)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, stripcodesig.ErrNotMachO
	}

	return report, nil
}

// patchSlice runs the prescan-then-patch sequence over one architecture's
// __TEXT,__text section and, when mutate is true, strips its code
// signature. Failing to locate the section mirrors the original's
// "bypassing patcher" behavior (report it and move on) rather than
// failing the whole run; a bad section-size computation is a harder
// error, since it means the container itself is malformed.
func patchSlice(data []byte, mode stripcodesig.Mode, is64 bool, extended, mutate bool, w io.Writer) (stripcodesig.ArchReport, error) {
	var (
		offset     uint32
		addr, size uint64
		err        error
	)
	if is64 {
		offset, addr, size, err = stripcodesig.LocateText64(data)
	} else {
		offset, addr, size, err = stripcodesig.LocateText32(data)
	}
	if err != nil {
		if w != nil {
			fmt.Fprintf(w, "text section appears to contain garbage, bypassing patcher: %v\n", err)
		}
		return stripcodesig.ArchReport{Bypassed: true}, nil
	}

	size, err = stripcodesig.EffectiveTextSize(len(data), offset, size)
	if err != nil {
		return stripcodesig.ArchReport{}, err
	}

	region := data[offset : uint64(offset)+size]
	bad, patched, bypassed := stripcodesig.ScanSection(region, addr, mode, extended, mutate, w)
	report := stripcodesig.ArchReport{Bad: bad, Patched: patched, Bypassed: bypassed}

	if mutate {
		removed, err := stripcodesig.StripCodeSignature(data, is64)
		switch {
		case err == nil:
			report.CodeSignatureStripped = removed
		case errors.Is(err, stripcodesig.ErrNoCodeSignature):
			if w != nil {
				fmt.Fprintln(w, "no code signature found, skipping")
			}
		default:
			return report, err
		}
	}

	return report, nil
}
