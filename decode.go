package stripcodesig

// Mode selects the addressing/operand-size rules the decoder applies.
// There is no 16-bit mode here; spec.md scopes this to 32- and 64-bit code.
type Mode int

const (
	Mode32 Mode = iota
	Mode64
)

func (m Mode) is64() bool { return m == Mode64 }

// Status carries auxiliary decode outcomes that aren't representable in
// the signed length return alone. Bit positions match STATUS_* in
// insn_patcher.c.
type Status uint8

const (
	StatusNeedsPatch Status = 1 << iota
	StatusPadding
	StatusRest
)

// Length sentinels returned by DecodeLength. Any positive value is a valid
// instruction length in bytes.
const (
	Invalid     = 0
	Unsupported = -1
)

// DecodeLength returns the byte length of the instruction at buf[0], along
// with status bits describing anything the caller needs to act on (padding
// runs, REST-profile candidates, pending patches). It does not disassemble:
// no mnemonic or operand value is ever produced, only the byte count needed
// to step over the instruction.
//
// buf must have at least 15 bytes available (the architectural maximum
// x86 instruction length); DecodeLength does not bounds-check each read,
// mirroring the pointer walk in the original decoder it's ported from.
// Scanner callers guarantee this by keeping a trailing slack window — see
// scan.go and macho.go's EffectiveTextSize.
func DecodeLength(buf []byte, mode Mode, extended bool) (int, Status) {
	var status Status
	var flag Flags
	var prefix PrefixSet
	pos := 0

	var opcode byte
	for {
		flag &^= IsPrefix | IsREX
		opcode = buf[pos]
		pos++
		flag |= oneByteTable[opcode]
		if !mode.is64() {
			flag &^= IsREX
		}
		if flag&(IsPrefix|IsREX) == 0 {
			break
		}
		prefix |= prefixClass[opcode]
	}

	if !extended && opcode == 0xea {
		flag &^= Special // JMP Ap is SPECIAL only in the extended profile
	}

	var extInfo extOpcode
	if flag&IsTwoByte != 0 {
		opcode = buf[pos]
		pos++
		extInfo = twoByteTable[opcode]
		flag |= extInfo.flags
		if !extended && opcode == 0xf0 {
			flag &^= NeedsPatch // LDDQU patch is extended-profile only
		}

		if flag&(Esc3B38|Esc3B3A) != 0 {
			table := &threeByte38Table
			if flag&Esc3B3A != 0 {
				table = &threeByte3ATable
			}
			opcode = buf[pos]
			pos++
			extInfo = table[opcode]
			flag |= extInfo.flags
		}

		effective := prefix &^ (PrefREX | PrefREXW)
		if effective&(PrefF2|PrefF3|Pref66) == 0 {
			effective |= PrefNone
		}
		if extInfo.prefixes != 0 && extInfo.prefixes&effective == 0 {
			flag |= Undefined
		}
	}

	if flag&groupMask != 0 {
		gid := groupOf(flag)
		if !extended && gid == grpFistTP {
			// Non-extended profile: DB/DD/DF reg 1 is plain ESC to
			// coprocessor, not a group dispatch.
			flag = (flag &^ groupMask) | HasModRM
		} else {
			reg := (buf[pos] >> 3) & 7
			flag |= groupTable[gid][reg]
			if !extended && gid == grp5 && (reg == 4 || reg == 5) {
				flag &^= Special // JMP Ev/Mp is SPECIAL only in the extended profile
			}
		}
	}

	if flag&Undefined != 0 {
		return Invalid, status
	}
	if mode.is64() && flag&IA32Only != 0 {
		return Invalid, status
	}

	if flag&Special != 0 {
		switch {
		case flag&(Esc3B38|Esc3B3A) != 0:
			// No three-byte opcode is marked SPECIAL today; kept as a
			// safety net against future table edits.
			return Unsupported, status
		case flag&IsTwoByte != 0:
			switch opcode {
			case 0x00, 0x01, 0x02, 0x03, 0x06, 0x07, 0x08, 0x09,
				0x20, 0x21, 0x22, 0x23, 0x24, 0x26,
				0x30, 0x32, 0x35,
				0xa0, 0xa1, 0xa8, 0xa9, 0xaa, 0xb2, 0xb4, 0xb5:
				// accepted, falls through to normal sizing
			default:
				return Unsupported, status
			}
		default:
			switch opcode {
			case 0x06, 0x07, 0x0e, 0x16, 0x17, 0x1e, 0x1f, 0x27, 0x2f, 0x37, 0x3f,
				0xc4, 0xc5, 0xcf, 0xd4, 0xd5, 0x63:
				// accepted, falls through to normal sizing
			case 0x00:
				// A two-byte null instruction almost certainly means we're
				// decoding garbage or have reached padding.
				if buf[pos] == 0x00 {
					status |= StatusPadding
					return 1, status
				}
			case 0x90:
				if prefix&PrefF3 == 0 { // make sure not PAUSE
					status |= StatusPadding
					return 1, status
				}
			case 0xff, 0xea:
				// An absolute unconditional jump is often followed by
				// garbage; tell the caller what follows is probably
				// invalid. Only reachable here when extended (see the
				// strips above), matching the original's
				// EXTENDED_PATCHER-only REST cases.
				status |= StatusRest
			default:
				return Unsupported, status
			}
		}
	}

	if flag&NeedsPatch != 0 {
		status |= StatusNeedsPatch
	}

	if flag&operandFlags == 0 {
		return pos, status
	}

	switch {
	case mode.is64() && flag&CheckREX != 0:
		switch {
		case prefix&PrefREXW != 0:
			flag |= HasImm64
		case prefix&Pref66 != 0:
			flag |= HasImm16
		default:
			flag |= HasImm32
		}
	case flag&Check66 != 0:
		if prefix&Pref66 != 0 {
			flag |= HasImm16
		} else {
			flag |= HasImm32
		}
	case flag&Check67 != 0:
		if mode.is64() {
			if prefix&Pref67 != 0 {
				flag |= HasImm32
			} else {
				flag |= HasImm64
			}
		} else {
			if prefix&Pref67 != 0 {
				flag |= HasImm16
			} else {
				flag |= HasImm32
			}
		}
	}

	if flag&HasModRM != 0 {
		modrm := buf[pos]
		pos++
		mrMod := modrm >> 6
		rm := modrm & 7

		if prefix&Pref67 != 0 {
			switch {
			case mrMod == 1:
				flag |= HasDisp8
			case mrMod == 2:
				flag |= HasDisp16
			case mrMod == 0 && rm == 6:
				flag |= HasDisp16
			}
		} else {
			switch {
			case mrMod == 1:
				flag |= HasDisp8
			case mrMod == 2:
				flag |= HasDisp32
			case mrMod == 0 && rm == 5:
				flag |= HasDisp32 // RIP-relative in 64-bit mode, disp32 in 32-bit mode
			}
			if mrMod < 3 && rm == 4 {
				sibBase := buf[pos] & 7
				pos++
				if mrMod == 0 && sibBase == 5 {
					flag |= HasDisp32
				}
			}
		}
	}

	if flag&HasImm8 != 0 {
		pos++
	}
	if flag&HasImm16 != 0 {
		pos += 2
	}
	if flag&HasImm32 != 0 {
		pos += 4
	}
	if flag&HasImm64 != 0 {
		pos += 8
	}
	if flag&HasDisp8 != 0 {
		pos++
	}
	if flag&HasDisp16 != 0 {
		pos += 2
	}
	if flag&HasDisp32 != 0 {
		pos += 4
	}

	return pos, status
}
