package stripcodesig

// newSysenterTrap replaces the eight bytes of a 32-bit SYSENTER trampoline
// (popl %edx; movl %esp,%ecx; sysenter; nopl (%eax)) with a trap into
// INT 0xFC that preserves the same register it was handed: popl %ecx;
// int $0xfc; pushl %ecx; ret; nopl (%eax). Same length, same calling
// convention as seen from the trampoline's caller.
var newSysenterTrap = [8]byte{0x59, 0xcd, 0xfc, 0x51, 0xc3, 0x0f, 0x1f, 0x00}

// TryPatch attempts one of the fixed, length-preserving instruction
// rewrites this package knows about, at region[pos:]. It reports whether a
// rewrite happened; region is mutated in place on success. Scanner only
// calls TryPatch at offsets DecodeLength already flagged with
// StatusNeedsPatch, so every byte pattern checked here is expected to
// match — a false return means the bytes didn't actually match the
// expected form (SYSENTER trampoline shape in particular) and the
// instruction is left untouched.
//
// The CPUID, FISTTP and LDDQU checks read up to 3 bytes from pos onward.
// The SYSENTER trampoline's backward/forward peek is bounds-checked: when
// the 3 bytes before pos or the 5 bytes from pos onward do not fit in
// region, the trampoline is not matched and TryPatch returns false.
func TryPatch(region []byte, pos int, mode Mode, extended bool) bool {
	insn := region[pos:]

	if extended {
		if (insn[0]&0xf0) == 0xd0 && ((insn[1]>>3)&7) == 1 {
			// FISTTP -> FISTP: same operand, reg field changed.
			switch insn[0] {
			case 0xdf, 0xdb: // word/dword form: FISTP is reg 3
				insn[1] |= 3 << 3
			case 0xdd: // qword form: only exists as DF/7
				insn[0] = 0xdf
				insn[1] |= 7 << 3
			default:
				return false
			}
			return true
		}

		if insn[0] == 0xf2 && insn[1] == 0x0f && insn[2] == 0xf0 {
			// LDDQU Vo,Mo -> MOVDQU Vo,Mo: opcode bytes only, ModR/M
			// (and whatever SIB/displacement follows) untouched.
			insn[0] = 0xf3
			insn[1] = 0x0f
			insn[2] = 0x6f
			return true
		}
	}

	if insn[0] == 0x0f && insn[1] == 0xa2 { // CPUID -> INT 0xFB
		insn[0] = 0xcd
		insn[1] = 0xfb
		return true
	}

	if !mode.is64() && insn[0] == 0x0f && insn[1] == 0x34 { // SYSENTER
		begin, ok := sysenterTrapWindow(region, pos)
		if !ok {
			return false
		}
		copy(region[begin:begin+len(newSysenterTrap)], newSysenterTrap[:])
		return true
	}

	return false
}

// sysenterTrapWindow checks whether region[pos] sits at the "0f 34" of a
// known 32-bit sysenter trampoline: popl %edx; movl %esp,%ecx (the 3 bytes
// before), sysenter itself, then nopl (%eax) (the 3 bytes after, all
// checked). It returns the start of the 8-byte window to rewrite.
func sysenterTrapWindow(region []byte, pos int) (int, bool) {
	if pos < 3 || pos+5 > len(region) {
		return 0, false
	}
	if region[pos-3] != 0x5a || region[pos-2] != 0x89 || region[pos-1] != 0xe1 {
		return 0, false
	}
	if region[pos+2] != 0x0f || region[pos+3] != 0x1f || region[pos+4] != 0x00 {
		return 0, false
	}
	return pos - 3, true
}
