package stripcodesig

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors Mach-O helpers return, so callers can errors.Is against
// them instead of string-matching.
var (
	ErrNotMachO        = errors.New("stripcodesig: not a recognized Mach-O container")
	ErrSectionNotFound = errors.New("stripcodesig: __TEXT,__text section not found")
	ErrNoCodeSignature = errors.New("stripcodesig: no code signature load command present")
)

// Kind identifies the container format at the start of a buffer.
type Kind int

const (
	KindUnknown Kind = iota
	KindMachO32
	KindMachO64
	KindFat
)

// DetectKind inspects the first four bytes of data the same way the
// original patcher's main() does: direct byte comparison against the
// three magic numbers it understands, not a generic signature table.
func DetectKind(data []byte) Kind {
	if len(data) < 4 {
		return KindUnknown
	}
	switch {
	case data[0] == 0xce && data[1] == 0xfa && data[2] == 0xed && data[3] == 0xfe:
		return KindMachO32
	case data[0] == 0xcf && data[1] == 0xfa && data[2] == 0xed && data[3] == 0xfe:
		return KindMachO64
	case data[0] == 0xca && data[1] == 0xfe && data[2] == 0xba && data[3] == 0xbe:
		return KindFat
	default:
		return KindUnknown
	}
}

// CPU types fat_arch entries carry (big-endian on disk). Only the two
// Intel types are ever dispatched to; anything else is reported to the
// caller as skipped.
const (
	CPUTypeI386  = 0x00000007
	CPUTypeX8664 = 0x01000007
)

const (
	lcSegment          = 0x1
	lcSegment64        = 0x19
	lcCodeSignature    = 0x1d
	lcDylibCodeSignDRS = 0x2b
)

const (
	machHeaderSize32 = 28 // magic,cputype,cpusubtype,filetype,ncmds,sizeofcmds,flags
	machHeaderSize64 = 32 // same + reserved

	segCmdSize32  = 56 // cmd,cmdsize,segname[16],vmaddr,vmsize,fileoff,filesize,maxprot,initprot,nsects,flags
	sectSize32    = 68 // sectname[16],segname[16],addr,size,offset,align,reloff,nreloc,flags,reserved1,reserved2
	segCmdSize64  = 72 // cmd,cmdsize,segname[16],vmaddr(8),vmsize(8),fileoff(8),filesize(8),maxprot,initprot,nsects,flags
	sectSize64    = 80 // sectname[16],segname[16],addr(8),size(8),offset,align,reloff,nreloc,flags,reserved1,reserved2,reserved3
	ncmdsOffset   = 16 // same position in both 32- and 64-bit mach_header
	sizeofcmdsOff = ncmdsOffset + 4
)

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// LocateText32 walks a 32-bit Mach-O header's load commands looking for
// __TEXT,__text, the way getsectforpatch/getsegforpatch do: a linear scan
// stepping by each command's own cmdsize, since load commands aren't
// uniformly sized. Ported as one function instead of the original's
// two (get segment, then get section within it) since nothing else in
// this package needs the bare segment lookup on its own.
func LocateText32(data []byte) (offset uint32, addr, size uint64, err error) {
	return locateText(data, machHeaderSize32, lcSegment, segCmdSize32, sectSize32, false)
}

// LocateText64 is LocateText32 for 64-bit Mach-O headers.
func LocateText64(data []byte) (offset uint32, addr, size uint64, err error) {
	return locateText(data, machHeaderSize64, lcSegment64, segCmdSize64, sectSize64, true)
}

func locateText(data []byte, headerSize int, wantSegCmd uint32, segCmdSize, sectSize int, is64 bool) (offset uint32, addr, size uint64, err error) {
	if len(data) < headerSize {
		return 0, 0, 0, ErrNotMachO
	}
	ncmds := binary.LittleEndian.Uint32(data[ncmdsOffset : ncmdsOffset+4])

	pos := headerSize
	for i := uint32(0); i < ncmds; i++ {
		if pos+8 > len(data) {
			return 0, 0, 0, ErrSectionNotFound
		}
		cmd := binary.LittleEndian.Uint32(data[pos : pos+4])
		cmdsize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		if cmdsize < 8 || pos+cmdsize > len(data) {
			return 0, 0, 0, ErrSectionNotFound
		}

		if cmd == wantSegCmd && pos+segCmdSize <= len(data) {
			segname := cstring(data[pos+8 : pos+24])
			if segname == "__TEXT" {
				var nsects uint32
				if is64 {
					nsects = binary.LittleEndian.Uint32(data[pos+64 : pos+68])
				} else {
					nsects = binary.LittleEndian.Uint32(data[pos+48 : pos+52])
				}
				sectBase := pos + segCmdSize
				for s := uint32(0); s < nsects; s++ {
					so := sectBase + int(s)*sectSize
					if so+sectSize > len(data) {
						break
					}
					sectname := cstring(data[so : so+16])
					if sectname != "__text" {
						continue
					}
					if is64 {
						addr = binary.LittleEndian.Uint64(data[so+32 : so+40])
						size = binary.LittleEndian.Uint64(data[so+40 : so+48])
						offset = binary.LittleEndian.Uint32(data[so+48 : so+52])
					} else {
						addr = uint64(binary.LittleEndian.Uint32(data[so+32 : so+36]))
						size = uint64(binary.LittleEndian.Uint32(data[so+36 : so+40]))
						offset = binary.LittleEndian.Uint32(data[so+40 : so+44])
					}
					return offset, addr, size, nil
				}
			}
		}

		pos += cmdsize
	}

	return 0, 0, 0, ErrSectionNotFound
}

// EffectiveTextSize applies the same 16-byte tail-shrink rule
// patch_text_segment does: the scanner's maximum instruction length is 15
// bytes, so it must never be let loose within 16 bytes of the mapped
// buffer's end. textOffset+textSize must not exceed mapSize at all; if it
// comes within 16 bytes of mapSize, textSize is trimmed down so the
// scanner always has slack to read past the last real instruction.
func EffectiveTextSize(mapSize int, textOffset uint32, textSize uint64) (uint64, error) {
	tmp := uint64(textOffset) + textSize
	if tmp > uint64(mapSize) {
		return 0, fmt.Errorf("stripcodesig: text section offset+size exceeds mapping size: %w", ErrSectionNotFound)
	}
	if tmp+16 > uint64(mapSize) {
		textSize -= 16 - (uint64(mapSize) - tmp)
	}
	return textSize, nil
}

// StripCodeSignature zeroes the linkedit data referenced by
// LC_CODE_SIGNATURE and LC_DYLIB_CODE_SIGN_DRS (the dylib code-sign
// "designated requirement set" entries) and removes both load commands
// from the header in place, decrementing ncmds/sizeofcmds to match.
// removed reports whether either load command was found; err is
// ErrNoCodeSignature when neither was.
func StripCodeSignature(data []byte, is64 bool) (removed bool, err error) {
	headerSize := machHeaderSize32
	if is64 {
		headerSize = machHeaderSize64
	}
	if len(data) < headerSize {
		return false, ErrNotMachO
	}
	ncmds := int(binary.LittleEndian.Uint32(data[ncmdsOffset : ncmdsOffset+4]))

	var sigPos, drsPos = -1, -1
	pos := headerSize
	for i := 0; i < ncmds; i++ {
		if pos+8 > len(data) {
			break
		}
		cmd := binary.LittleEndian.Uint32(data[pos : pos+4])
		cmdsize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		switch cmd {
		case lcCodeSignature:
			sigPos = pos
		case lcDylibCodeSignDRS:
			drsPos = pos
		}
		if cmdsize < 8 {
			break
		}
		pos += cmdsize
	}

	if sigPos < 0 && drsPos < 0 {
		return false, ErrNoCodeSignature
	}

	zeroLinkeditCmd(data, sigPos)
	zeroLinkeditCmd(data, drsPos)
	return true, nil
}

// zeroLinkeditCmd zeroes the bytes referenced by a 16-byte
// linkedit_data_command at pos (cmd,cmdsize,dataoff,datasize) and then the
// command struct itself, decrementing the header's ncmds/sizeofcmds.
// pos < 0 means "not present"; a no-op.
func zeroLinkeditCmd(data []byte, pos int) {
	if pos < 0 {
		return
	}
	cmdsize := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
	dataoff := binary.LittleEndian.Uint32(data[pos+8 : pos+12])
	datasize := binary.LittleEndian.Uint32(data[pos+12 : pos+16])

	for i := uint32(0); i < datasize && int(dataoff)+int(i) < len(data); i++ {
		data[int(dataoff)+int(i)] = 0
	}

	ncmds := binary.LittleEndian.Uint32(data[ncmdsOffset : ncmdsOffset+4])
	binary.LittleEndian.PutUint32(data[ncmdsOffset:ncmdsOffset+4], ncmds-1)
	sizeofcmds := binary.LittleEndian.Uint32(data[sizeofcmdsOff : sizeofcmdsOff+4])
	binary.LittleEndian.PutUint32(data[sizeofcmdsOff:sizeofcmdsOff+4], sizeofcmds-cmdsize)

	for i := 0; i < 16; i++ {
		data[pos+i] = 0
	}
}

// ForEachArchitecture walks a fat (universal) binary's fat_header/fat_arch
// table (big-endian on disk, per the Mach-O fat format) and invokes fn for
// every architecture slice, passing its CPU type and its byte range within
// data. Iteration stops at the first error fn returns.
func ForEachArchitecture(data []byte, fn func(cpuType int32, offset, size uint32) error) error {
	if len(data) < 8 {
		return ErrNotMachO
	}
	nfat := binary.BigEndian.Uint32(data[4:8])
	pos := 8
	for i := uint32(0); i < nfat; i++ {
		if pos+20 > len(data) {
			return ErrSectionNotFound
		}
		cpuType := int32(binary.BigEndian.Uint32(data[pos : pos+4]))
		offset := binary.BigEndian.Uint32(data[pos+8 : pos+12])
		size := binary.BigEndian.Uint32(data[pos+12 : pos+16])
		if err := fn(cpuType, offset, size); err != nil {
			return err
		}
		pos += 20
	}
	return nil
}
