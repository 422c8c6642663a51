package stripcodesig

// Flags describes the behavior of a single opcode table position: which
// structural pieces follow it (ModR/M, prefixes, escapes), how its
// immediate/displacement are sized, and what the scanner/patcher should do
// with it. Ported from the OP_* bit definitions in the original C decoder
// (insn_patcher.c); the bit positions are kept identical so the table data
// below reads the same way the original does.
type Flags uint32

const (
	HasModRM Flags = 1 << iota
	IsPrefix
	IsREX
	IsTwoByte
	Esc3B38
	Esc3B3A
	HasImm8
	HasImm16
	HasImm32
	HasImm64
	Check66
	Check67
	CheckREX
	HasDisp8
	HasDisp16
	HasDisp32
	Undefined
	IA32Only
	NeedsPatch
	Special
)

// operandFlags is the mask of bits that mean "this opcode has an operand
// encoding to walk" (ModR/M, immediate, or displacement).
const operandFlags = HasModRM | HasImm8 | HasImm16 | HasImm32 | HasImm64 |
	Check66 | Check67 | CheckREX | HasDisp8 | HasDisp16 | HasDisp32

// The group index travels in the top byte of the flags word, exactly as
// OP_GROUP/OP_GROUP_MASK/OP_GROUP_EXTRACT do in the C source.
const (
	groupShift = 24
	groupMask  = Flags(0xff) << groupShift
)

func withGroup(id groupID) Flags { return Flags(id) << groupShift }

func groupOf(f Flags) groupID { return groupID((f & groupMask) >> groupShift) }

// groupID names a ModR/M.reg-indexed sub-table. Values match GRP_* in the
// original source so the group table below lines up with its comments.
type groupID uint8

const (
	grp1 groupID = iota + 1
	grp2
	grp3A
	grp3B
	grp4
	grp5
	grp6
	grp7
	grp8
	grp9
	grp10
	grp11
	grp12
	grp13
	grp14
	grp15
	grp16
	grp17A
	grp17B
	grpFistTP
	numGroups
)

// PrefixSet is a bitset of prefix classes seen before an opcode, not the
// raw prefix bytes themselves. Bit positions match PREF_* in the C source.
type PrefixSet uint32

const (
	PrefNone PrefixSet = 1 << iota // synthesized when no SSE-relevant prefix was seen
	PrefF0                         // LOCK
	PrefF2                         // REPNE (or SSE)
	PrefF3                         // REP (or SSE)
	Pref2E                         // CS segment override
	Pref36                         // SS segment override
	Pref3E                         // DS segment override
	Pref26                         // ES segment override
	Pref64                         // FS segment override
	Pref65                         // GS segment override
	Pref66                         // operand-size override (or SSE)
	Pref67                         // address-size override
	PrefREX                        // REX byte, operand size unchanged
	PrefREXW                       // REX byte, REX.W set
)

// PrefSSEAll is the prefix set SSE-era two-/three-byte opcodes usually
// allow: no prefix at all, or one of the three SSE-distinguishing ones.
const PrefSSEAll = PrefNone | PrefF3 | Pref66 | PrefF2

// extOpcode is a two- or three-byte opcode table entry: a flag bitset plus
// the set of prefixes the opcode requires (zero means "don't care").
type extOpcode struct {
	flags    Flags
	prefixes PrefixSet
}

var (
	prefixClass      [256]PrefixSet
	oneByteTable     [256]Flags
	twoByteTable     [256]extOpcode
	threeByte38Table [256]extOpcode
	threeByte3ATable [256]extOpcode
	groupTable       [numGroups][8]Flags
)

func init() {
	buildPrefixClass()
	buildOneByteTable()
	buildTwoByteTable()
	buildThreeByte38Table()
	buildThreeByte3ATable()
	buildGroupTable()
}

func buildPrefixClass() {
	prefixClass[0xf0] = PrefF0
	prefixClass[0xf2] = PrefF2
	prefixClass[0xf3] = PrefF3
	prefixClass[0x2e] = Pref2E
	prefixClass[0x36] = Pref36
	prefixClass[0x3e] = Pref3E
	prefixClass[0x26] = Pref26
	prefixClass[0x64] = Pref64
	prefixClass[0x65] = Pref65
	prefixClass[0x66] = Pref66
	prefixClass[0x67] = Pref67
	for b := 0x40; b <= 0x47; b++ {
		prefixClass[b] = PrefREX // operand size unchanged
	}
	for b := 0x48; b <= 0x4f; b++ {
		prefixClass[b] = PrefREXW // 64-bit operand size
	}
}

// buildGroupTable fills in the ModR/M.reg-indexed sub-tables (GRP_1..GRP_17B
// plus the extended-profile FISTTP group), ported from group_table[][8] in
// insn_patcher.c. Groups 4, 5, 6, 7, 8, 9, 13, 14 and 15 mark UNDEFINED reg
// values explicitly (the array's zero value of Flags(0) would otherwise mean
// "no operand, bare opcode", which is a real, distinct encoding for other
// groups such as GRP_11).
func buildGroupTable() {
	t := &groupTable

	for reg := 0; reg < 8; reg++ {
		t[grp1][reg] = HasModRM // ADD, OR, ADC, SBB, AND, SUB, XOR, CMP
		t[grp2][reg] = HasModRM // ROL, ROR, RCL, RCR, SHL, SHR, SAL, SAR
	}

	t[grp3A][0] = HasModRM | HasImm8 // TEST Eb,Ib
	t[grp3A][1] = HasModRM | HasImm8 // TEST Eb,Ib (alias)
	for reg := 2; reg < 8; reg++ {
		t[grp3A][reg] = HasModRM // NOT, NEG, MUL, IMUL, DIV, IDIV AL/rAX
	}

	t[grp3B][0] = HasModRM | Check66 // TEST Ev,Iz
	t[grp3B][1] = HasModRM | Check66 // TEST Ev,Iz (alias)
	for reg := 2; reg < 8; reg++ {
		t[grp3B][reg] = HasModRM
	}

	t[grp4][0] = HasModRM // INC Eb
	t[grp4][1] = HasModRM // DEC Eb
	for reg := 2; reg < 8; reg++ {
		t[grp4][reg] = Undefined
	}

	for reg := 0; reg < 4; reg++ {
		t[grp5][reg] = HasModRM // INC Ev, DEC Ev, CALL Ev, CALL Mp
	}
	// JMP Ev (reg 4) / JMP Mp (reg 5): SPECIAL only in the extended
	// profile. Baked in here as the extended-profile superset; decode.go
	// strips the SPECIAL bit back out when running non-extended.
	t[grp5][4] = HasModRM | Special
	t[grp5][5] = HasModRM | Special
	t[grp5][6] = HasModRM // PUSH Ev
	t[grp5][7] = Undefined

	for reg := 0; reg < 6; reg++ {
		t[grp6][reg] = HasModRM | Special // SLDT, STR, LLDT, LTR, VERR, VERW
	}
	t[grp6][6] = Undefined
	t[grp6][7] = Undefined

	for reg := 0; reg < 5; reg++ {
		t[grp7][reg] = HasModRM | Special // SGDT, SIDT, LGDT, LIDT, SMSW
	}
	t[grp7][5] = Undefined
	t[grp7][6] = HasModRM | Special // LMSW
	t[grp7][7] = HasModRM | Special // INVLPG / SWAPGS / RDTSCP

	for reg := 0; reg < 4; reg++ {
		t[grp8][reg] = Undefined
	}
	for reg := 4; reg < 8; reg++ {
		t[grp8][reg] = HasModRM | HasImm8 // BT, BTS, BTR, BTC
	}

	t[grp9][0] = Undefined
	t[grp9][1] = HasModRM // CMPXCHG Mq
	for reg := 2; reg < 6; reg++ {
		t[grp9][reg] = Undefined
	}
	t[grp9][6] = HasModRM
	t[grp9][7] = HasModRM

	for reg := 0; reg < 8; reg++ {
		t[grp10][reg] = HasModRM // POP Ev
	}

	for reg := 0; reg < 8; reg++ {
		t[grp11][reg] = 0 // UD2, no operand bytes to size here
	}

	t[grp12][0] = HasModRM
	for reg := 1; reg < 8; reg++ {
		t[grp12][reg] = HasModRM
	}

	t[grp13][2] = HasModRM | HasImm8 // PSRLW
	t[grp13][4] = HasModRM | HasImm8 // PSRAW
	t[grp13][6] = HasModRM | HasImm8 // PSLLW
	t[grp13][0], t[grp13][1], t[grp13][3], t[grp13][5], t[grp13][7] = Undefined, Undefined, Undefined, Undefined, Undefined

	t[grp14][2] = HasModRM | HasImm8 // PSRLD
	t[grp14][4] = HasModRM | HasImm8 // PSRAD
	t[grp14][6] = HasModRM | HasImm8 // PSLLD
	t[grp14][0], t[grp14][1], t[grp14][3], t[grp14][5], t[grp14][7] = Undefined, Undefined, Undefined, Undefined, Undefined

	t[grp15][2] = HasModRM | HasImm8 // PSRLQ / PSRLDQ
	t[grp15][3] = HasModRM | HasImm8
	t[grp15][6] = HasModRM | HasImm8 // PSLLQ / PSLLDQ
	t[grp15][7] = HasModRM | HasImm8
	t[grp15][0], t[grp15][1], t[grp15][4], t[grp15][5] = Undefined, Undefined, Undefined, Undefined

	for reg := 0; reg < 8; reg++ {
		t[grp16][reg] = HasModRM // FXSAVE/FXRSTOR, LDMXCSR/STMXCSR, XSAVE/XRSTOR, LFENCE/MFENCE/CLFLUSH/SFENCE
	}

	for reg := 0; reg < 8; reg++ {
		t[grp17A][reg] = HasModRM // PREFETCHNTA/T0/T1/T2, HINT_NOP
		t[grp17B][reg] = HasModRM // HINT_NOP
	}

	// Extended-profile only: FISTTP recognition for DF/1, DB/1, DD/1.
	// decode.go falls back to plain HasModRM for this group when the
	// extended profile is off, matching the C source's non-#ifdef branch.
	t[grpFistTP][0] = HasModRM
	t[grpFistTP][1] = HasModRM | NeedsPatch // FISTTP
	for reg := 2; reg < 8; reg++ {
		t[grpFistTP][reg] = HasModRM
	}
}

// buildOneByteTable fills the legacy opcode map, ported line for line from
// one_byte_table in insn_patcher.c. Entries for 0xDB/0xDD/0xDF and 0xEA are
// baked in as their extended-profile form; decode.go adjusts them back down
// for the non-extended profile (see the comments above grpFistTP and
// grp5[4]/grp5[5]).
func buildOneByteTable() {
	t := &oneByteTable

	t[0x00] = HasModRM | Special // ADD Eb,Gb (doubles as the zero-padding detector)
	t[0x01] = HasModRM           // ADD Ev,Gv
	t[0x02] = HasModRM           // ADD Gb,Eb
	t[0x03] = HasModRM           // ADD Gv,Ev
	t[0x04] = HasImm8            // ADD AL,Ib
	t[0x05] = Check66            // ADD rAX,Iz
	t[0x06] = IA32Only | Special // PUSH ES
	t[0x07] = IA32Only | Special // POP ES

	t[0x08] = HasModRM
	t[0x09] = HasModRM
	t[0x0a] = HasModRM
	t[0x0b] = HasModRM
	t[0x0c] = HasImm8
	t[0x0d] = Check66
	t[0x0e] = IA32Only | Special // PUSH CS
	t[0x0f] = IsTwoByte          // two-byte escape

	t[0x10] = HasModRM
	t[0x11] = HasModRM
	t[0x12] = HasModRM
	t[0x13] = HasModRM
	t[0x14] = HasImm8
	t[0x15] = Check66
	t[0x16] = IA32Only | Special // PUSH SS
	t[0x17] = IA32Only | Special // POP SS

	t[0x18] = HasModRM
	t[0x19] = HasModRM
	t[0x1a] = HasModRM
	t[0x1b] = HasModRM
	t[0x1c] = HasImm8
	t[0x1d] = Check66
	t[0x1e] = IA32Only | Special // PUSH DS
	t[0x1f] = IA32Only | Special // POP DS

	t[0x20] = HasModRM
	t[0x21] = HasModRM
	t[0x22] = HasModRM
	t[0x23] = HasModRM
	t[0x24] = HasImm8
	t[0x25] = Check66
	t[0x26] = IsPrefix           // ES segment override
	t[0x27] = IA32Only | Special // DAA

	t[0x28] = HasModRM
	t[0x29] = HasModRM
	t[0x2a] = HasModRM
	t[0x2b] = HasModRM
	t[0x2c] = HasImm8
	t[0x2d] = Check66
	t[0x2e] = IsPrefix           // CS segment override / branch-not-taken hint
	t[0x2f] = IA32Only | Special // DAS

	t[0x30] = HasModRM
	t[0x31] = HasModRM
	t[0x32] = HasModRM
	t[0x33] = HasModRM
	t[0x34] = HasImm8
	t[0x35] = Check66
	t[0x36] = IsPrefix           // SS segment override
	t[0x37] = IA32Only | Special // AAA

	t[0x38] = HasModRM
	t[0x39] = HasModRM
	t[0x3a] = HasModRM
	t[0x3b] = HasModRM
	t[0x3c] = HasImm8
	t[0x3d] = Check66
	t[0x3e] = IsPrefix           // DS segment override / branch-taken hint
	t[0x3f] = IA32Only | Special // AAS

	// The one-byte INC/DEC forms (0x40..0x4F) don't exist in x86-64; those
	// bytes are reassigned to the REX prefix. Tagging them IsREX is enough
	// for length decoding: in 32-bit mode decode.go masks IsREX back off
	// and they fall through as bare single-byte opcodes.
	for b := 0x40; b <= 0x4f; b++ {
		t[b] = IsREX
	}

	for b := 0x50; b <= 0x5f; b++ {
		t[b] = 0 // PUSH/POP r64
	}

	t[0x60] = IA32Only             // PUSHA/PUSHAD
	t[0x61] = IA32Only             // POPA/POPAD
	t[0x62] = IA32Only | HasModRM  // BOUND Gv,Ma
	t[0x63] = HasModRM | Special   // ARPL Ew,Gw / MOVSXD Gv,Ed
	t[0x64] = IsPrefix             // FS segment override
	t[0x65] = IsPrefix             // GS segment override
	t[0x66] = IsPrefix             // operand-size override
	t[0x67] = IsPrefix             // address-size override

	t[0x68] = Check66             // PUSH Iz
	t[0x69] = HasModRM | Check66  // IMUL Gv,Ev,Iz
	t[0x6a] = HasImm8             // PUSH Ib
	t[0x6b] = HasModRM | HasImm8  // IMUL Gv,Ev,Ib
	t[0x6c] = 0                   // INS Yb,DX
	t[0x6d] = 0                   // INS Yz,DX
	t[0x6e] = 0                   // OUTS DX,Xb
	t[0x6f] = 0                   // OUTS DX,Xz

	for b := 0x70; b <= 0x7f; b++ {
		t[b] = HasImm8 // Jcc Jb
	}

	t[0x80] = withGroup(grp1) | HasImm8 // group 1 (Eb,Ib)
	t[0x81] = withGroup(grp1) | Check66 // group 1 (Ev,Iz)
	t[0x82] = IA32Only | withGroup(grp1) | HasImm8
	t[0x83] = withGroup(grp1) | HasImm8 // group 1 (Ev,Ib)
	t[0x84] = HasModRM                  // TEST Eb,Gb
	t[0x85] = HasModRM                  // TEST Ev,Gv
	t[0x86] = HasModRM                  // XCHG Eb,Gb
	t[0x87] = HasModRM                  // XCHG Ev,Gv

	t[0x88] = HasModRM // MOV Eb,Gb
	t[0x89] = HasModRM // MOV Ev,Gv
	t[0x8a] = HasModRM // MOV Gb,Eb
	t[0x8b] = HasModRM // MOV Gv,Ev
	t[0x8c] = HasModRM // MOV Mw/Rv,Sw
	t[0x8d] = HasModRM // LEA Gv,M
	t[0x8e] = HasModRM // MOV Sw,Mw/Rv
	t[0x8f] = withGroup(grp10)

	t[0x90] = Special // NOP / PAUSE (with F3 prefix)
	for b := 0x91; b <= 0x97; b++ {
		t[b] = 0 // XCHG r,rAX
	}

	t[0x98] = 0 // CBW/CWDE/CDQE
	t[0x99] = 0 // CWD/CDQ/CQO
	t[0x9a] = IA32Only | Check66 | HasImm16
	t[0x9b] = 0 // WAIT
	t[0x9c] = 0 // PUSHF
	t[0x9d] = 0 // POPF
	t[0x9e] = 0 // SAHF
	t[0x9f] = 0 // LAHF

	t[0xa0] = Check67
	t[0xa1] = Check67
	t[0xa2] = Check67
	t[0xa3] = Check67
	t[0xa4] = 0 // MOVS Yb,Xb
	t[0xa5] = 0 // MOVS Yv,Xv
	t[0xa6] = 0 // CMPS Yb,Xb
	t[0xa7] = 0 // CMPS Yv,Xv

	t[0xa8] = HasImm8
	t[0xa9] = Check66
	for b := 0xaa; b <= 0xaf; b++ {
		t[b] = 0
	}

	for b := 0xb0; b <= 0xb7; b++ {
		t[b] = HasImm8 // MOV r8,Ib
	}
	for b := 0xb8; b <= 0xbf; b++ {
		t[b] = Check66 | CheckREX // MOV r,Iv
	}

	t[0xc0] = withGroup(grp2) | HasImm8
	t[0xc1] = withGroup(grp2) | HasImm8
	t[0xc2] = HasImm16 // RETN Iw
	t[0xc3] = 0        // RETN
	t[0xc4] = IA32Only | HasModRM | Special // LES Gz,Mp
	t[0xc5] = IA32Only | HasModRM | Special // LDS Gz,Mp
	t[0xc6] = withGroup(grp12) | HasImm8
	t[0xc7] = withGroup(grp12) | Check66

	t[0xc8] = HasImm16 | HasImm8 // ENTER Iw,Ib
	t[0xc9] = 0                  // LEAVE
	t[0xca] = HasImm16           // RETF Iw
	t[0xcb] = 0                  // RETF
	t[0xcc] = 0                  // INT3
	t[0xcd] = HasImm8            // INT Ib
	t[0xce] = IA32Only           // INTO
	t[0xcf] = Special            // IRET

	for b := 0xd0; b <= 0xd3; b++ {
		t[b] = withGroup(grp2)
	}
	t[0xd4] = IA32Only | HasImm8 | Special // AAM Ib
	t[0xd5] = IA32Only | HasImm8 | Special // AAD Ib
	t[0xd6] = IA32Only                     // SALC
	t[0xd7] = 0                            // XLAT

	t[0xd8] = HasModRM      // ESC to coprocessor
	t[0xd9] = HasModRM      // ESC to coprocessor
	t[0xda] = HasModRM      // ESC to coprocessor
	t[0xdb] = withGroup(grpFistTP)
	t[0xdc] = HasModRM
	t[0xdd] = withGroup(grpFistTP)
	t[0xde] = HasModRM
	t[0xdf] = withGroup(grpFistTP)

	for b := 0xe0; b <= 0xe7; b++ {
		t[b] = HasImm8 // LOOP/LOOPE/LOOPNE/JCXZ, IN/OUT Ib
	}

	t[0xe8] = Check66 // CALL Jz
	t[0xe9] = Check66 // JMP Jz
	t[0xea] = IA32Only | Check66 | HasImm16 | Special // JMP Ap (SPECIAL is extended-profile only)
	t[0xeb] = HasImm8                                 // JMP Jb
	for b := 0xec; b <= 0xef; b++ {
		t[b] = 0
	}

	t[0xf0] = IsPrefix // LOCK
	t[0xf1] = 0        // INT1
	t[0xf2] = IsPrefix // REPNE
	t[0xf3] = IsPrefix // REP/REPE
	t[0xf4] = 0        // HLT
	t[0xf5] = 0        // CMC
	t[0xf6] = withGroup(grp3A)
	t[0xf7] = withGroup(grp3B)

	t[0xf8] = 0 // CLC
	t[0xf9] = 0 // STC
	t[0xfa] = 0 // CLI
	t[0xfb] = 0 // STI
	t[0xfc] = 0 // CLD
	t[0xfd] = 0 // STD
	t[0xfe] = withGroup(grp4)
	t[0xff] = withGroup(grp5)
}

// buildTwoByteTable fills the 0F xx map, ported from two_byte_table in
// insn_patcher.c. 0xF0 (LDDQU) is baked in as its extended-profile form
// (NeedsPatch set); decode.go strips that bit when running non-extended.
func buildTwoByteTable() {
	t := &twoByteTable

	t[0x00] = extOpcode{withGroup(grp6), 0}
	t[0x01] = extOpcode{withGroup(grp7), 0}
	t[0x02] = extOpcode{HasModRM | Special, 0} // LAR Gv,Ew
	t[0x03] = extOpcode{HasModRM | Special, 0} // LSL Gv,Ew
	t[0x04] = extOpcode{Undefined, 0}
	t[0x05] = extOpcode{0, 0} // SYSCALL
	t[0x06] = extOpcode{Special, 0} // CLTS
	t[0x07] = extOpcode{Special, 0} // SYSRET

	t[0x08] = extOpcode{Special, 0} // INVD
	t[0x09] = extOpcode{Special, 0} // WBINVD
	t[0x0a] = extOpcode{Undefined, 0}
	t[0x0b] = extOpcode{0, 0} // UD2
	t[0x0c] = extOpcode{Undefined, 0}
	t[0x0d] = extOpcode{HasModRM, 0} // PREFETCHx M
	t[0x0e] = extOpcode{0, 0}        // FEMMS
	t[0x0f] = extOpcode{Undefined, 0} // 3DNow!

	t[0x10] = extOpcode{HasModRM, PrefSSEAll}
	t[0x11] = extOpcode{HasModRM, PrefSSEAll}
	t[0x12] = extOpcode{HasModRM, PrefSSEAll}
	t[0x13] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x14] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x15] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x16] = extOpcode{HasModRM, PrefNone | PrefF3 | Pref66}
	t[0x17] = extOpcode{HasModRM, PrefNone | Pref66}

	t[0x18] = extOpcode{withGroup(grp17A), 0}
	for b := 0x19; b <= 0x1f; b++ {
		t[b] = extOpcode{withGroup(grp17B), 0}
	}

	t[0x20] = extOpcode{HasModRM | Special, 0} // MOV Rd,Cd
	t[0x21] = extOpcode{HasModRM | Special, 0} // MOV Rd,Dd
	t[0x22] = extOpcode{HasModRM | Special, 0} // MOV Cd,Rd
	t[0x23] = extOpcode{HasModRM | Special, 0} // MOV Dd,Rd
	t[0x24] = extOpcode{HasModRM | Special, 0} // MOV Rd,Td
	t[0x25] = extOpcode{Undefined, 0}
	t[0x26] = extOpcode{HasModRM | Special, 0} // MOV Td,Rd
	t[0x27] = extOpcode{Undefined, 0}

	t[0x28] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x29] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x2a] = extOpcode{HasModRM, PrefSSEAll}
	t[0x2b] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x2c] = extOpcode{HasModRM, PrefSSEAll}
	t[0x2d] = extOpcode{HasModRM, PrefSSEAll}
	t[0x2e] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x2f] = extOpcode{HasModRM, PrefNone | Pref66}

	t[0x30] = extOpcode{Special, 0}    // WRMSR
	t[0x31] = extOpcode{0, 0}          // RDTSC
	t[0x32] = extOpcode{Special, 0}    // RDMSR
	t[0x33] = extOpcode{0, 0}          // RDPMC
	t[0x34] = extOpcode{NeedsPatch, 0} // SYSENTER
	t[0x35] = extOpcode{Special, 0}    // SYSEXIT
	t[0x36] = extOpcode{Undefined, 0}
	t[0x37] = extOpcode{Undefined, 0}

	t[0x38] = extOpcode{Esc3B38, 0}
	t[0x39] = extOpcode{Undefined, 0}
	t[0x3a] = extOpcode{Esc3B3A, 0}
	for b := 0x3b; b <= 0x3f; b++ {
		t[b] = extOpcode{Undefined, 0}
	}

	for b := 0x40; b <= 0x4f; b++ {
		t[b] = extOpcode{HasModRM, 0} // CMOVcc Gv,Ev
	}

	t[0x50] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x51] = extOpcode{HasModRM, PrefSSEAll}
	t[0x52] = extOpcode{HasModRM, PrefNone | PrefF3}
	t[0x53] = extOpcode{HasModRM, PrefNone | PrefF3}
	t[0x54] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x55] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x56] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x57] = extOpcode{HasModRM, PrefNone | Pref66}

	t[0x58] = extOpcode{HasModRM, PrefSSEAll}
	t[0x59] = extOpcode{HasModRM, PrefSSEAll}
	t[0x5a] = extOpcode{HasModRM, PrefSSEAll}
	t[0x5b] = extOpcode{HasModRM, PrefNone | PrefF3 | Pref66}
	t[0x5c] = extOpcode{HasModRM, PrefSSEAll}
	t[0x5d] = extOpcode{HasModRM, PrefSSEAll}
	t[0x5e] = extOpcode{HasModRM, PrefSSEAll}
	t[0x5f] = extOpcode{HasModRM, PrefSSEAll}

	for b := 0x60; b <= 0x68; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66}
	}
	t[0x69] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x6a] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x6b] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x6c] = extOpcode{HasModRM, Pref66}
	t[0x6d] = extOpcode{HasModRM, Pref66}
	t[0x6e] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x6f] = extOpcode{HasModRM, PrefNone | PrefF3 | Pref66}

	t[0x70] = extOpcode{HasModRM | HasImm8, PrefSSEAll}
	t[0x71] = extOpcode{withGroup(grp13), PrefNone | Pref66}
	t[0x72] = extOpcode{withGroup(grp14), PrefNone | Pref66}
	t[0x73] = extOpcode{withGroup(grp15), PrefNone | Pref66}
	t[0x74] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x75] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x76] = extOpcode{HasModRM, PrefNone | Pref66}
	t[0x77] = extOpcode{0, PrefNone} // EMMS

	t[0x78] = extOpcode{HasModRM, 0} // VMREAD
	t[0x79] = extOpcode{HasModRM, 0} // VMWRITE
	t[0x7a] = extOpcode{Undefined, 0}
	t[0x7b] = extOpcode{Undefined, 0}
	t[0x7c] = extOpcode{HasModRM, PrefNone | Pref66 | PrefF2}
	t[0x7d] = extOpcode{HasModRM, PrefNone | Pref66 | PrefF2}
	t[0x7e] = extOpcode{HasModRM, PrefNone | PrefF3 | Pref66}
	t[0x7f] = extOpcode{HasModRM, PrefNone | PrefF3 | Pref66}

	for b := 0x80; b <= 0x8f; b++ {
		t[b] = extOpcode{Check66, 0} // Jcc Jv
	}

	for b := 0x90; b <= 0x9f; b++ {
		t[b] = extOpcode{HasModRM, 0} // SETcc Eb
	}

	t[0xa0] = extOpcode{Special, 0}    // PUSH FS
	t[0xa1] = extOpcode{Special, 0}    // POP FS
	t[0xa2] = extOpcode{NeedsPatch, 0} // CPUID
	t[0xa3] = extOpcode{HasModRM, 0}   // BT Ev,Gv
	t[0xa4] = extOpcode{HasModRM | HasImm8, 0}
	t[0xa5] = extOpcode{HasModRM, 0}
	t[0xa6] = extOpcode{Undefined, 0}
	t[0xa7] = extOpcode{Undefined, 0}

	t[0xa8] = extOpcode{Special, 0} // PUSH GS
	t[0xa9] = extOpcode{Special, 0} // POP GS
	t[0xaa] = extOpcode{Special, 0} // RSM
	t[0xab] = extOpcode{HasModRM, 0}
	t[0xac] = extOpcode{HasModRM | HasImm8, 0}
	t[0xad] = extOpcode{HasModRM, 0}
	t[0xae] = extOpcode{withGroup(grp16), 0}
	t[0xaf] = extOpcode{HasModRM, 0} // IMUL Gv,Ev

	t[0xb0] = extOpcode{HasModRM, 0}
	t[0xb1] = extOpcode{HasModRM, 0}
	t[0xb2] = extOpcode{HasModRM | Special, 0} // LSS Gz,Mp
	t[0xb3] = extOpcode{HasModRM, 0}
	t[0xb4] = extOpcode{HasModRM | Special, 0} // LFS Gz,Mp
	t[0xb5] = extOpcode{HasModRM | Special, 0} // LGS Gz,Mp
	t[0xb6] = extOpcode{HasModRM, 0}           // MOVZX Gv,Eb
	t[0xb7] = extOpcode{HasModRM, 0}           // MOVZX Gv,Ew

	t[0xb8] = extOpcode{HasModRM, PrefF3} // POPCNT
	t[0xb9] = extOpcode{withGroup(grp11), 0}
	t[0xba] = extOpcode{withGroup(grp8), 0}
	t[0xbb] = extOpcode{HasModRM, 0} // BTC
	t[0xbc] = extOpcode{HasModRM, 0} // BSF
	t[0xbd] = extOpcode{HasModRM, 0} // BSR
	t[0xbe] = extOpcode{HasModRM, 0} // MOVSX Gv,Eb
	t[0xbf] = extOpcode{HasModRM, 0} // MOVSX Gv,Ew

	t[0xc0] = extOpcode{HasModRM, 0} // XADD Eb,Gb
	t[0xc1] = extOpcode{HasModRM, 0} // XADD Ev,Gv
	t[0xc2] = extOpcode{HasModRM | HasImm8, PrefSSEAll}
	t[0xc3] = extOpcode{HasModRM, PrefNone} // MOVNTI
	t[0xc4] = extOpcode{HasModRM | HasImm8, PrefNone | Pref66}
	t[0xc5] = extOpcode{HasModRM | HasImm8, PrefNone | Pref66}
	t[0xc6] = extOpcode{HasModRM | HasImm8, PrefNone | Pref66}
	t[0xc7] = extOpcode{withGroup(grp9), 0}

	for b := 0xc8; b <= 0xcf; b++ {
		t[b] = extOpcode{0, 0} // BSWAP
	}

	t[0xd0] = extOpcode{HasModRM, Pref66 | PrefF2}
	for b := 0xd1; b <= 0xd5; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66}
	}
	t[0xd6] = extOpcode{HasModRM, PrefF3 | Pref66 | PrefF2}
	t[0xd7] = extOpcode{HasModRM, PrefNone | Pref66}

	for b := 0xd8; b <= 0xdf; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66}
	}

	for b := 0xe0; b <= 0xe5; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66}
	}
	t[0xe6] = extOpcode{HasModRM, PrefF3 | Pref66 | PrefF2}
	t[0xe7] = extOpcode{HasModRM, PrefNone | Pref66}

	for b := 0xe8; b <= 0xef; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66}
	}

	// LDDQU Vo,Mo: NeedsPatch is extended-profile only; decode.go strips it
	// back out under the non-extended profile.
	t[0xf0] = extOpcode{HasModRM | NeedsPatch, PrefF2}

	for b := 0xf1; b <= 0xfe; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66}
	}

	t[0xff] = extOpcode{Undefined, 0}
}

// buildThreeByte38Table fills the 0F 38 xx map. Most of this space is
// undefined for SSSE3/SSE4-era CPUs; everything not explicitly set below
// defaults to Undefined, matching the [lo ... hi] = {UNDEFINED,0} ranges in
// three_byte_38_table.
func buildThreeByte38Table() {
	t := &threeByte38Table
	for i := range t {
		t[i] = extOpcode{Undefined, 0}
	}

	for b := 0x00; b <= 0x03; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66} // PSHUFB, PHADDW/D, PHADDSW
	}
	for b := 0x04; b <= 0x0b; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66} // PMADDUBSW, PHSUBW/D/SW, PSIGNB/W/D, PMULHRSW
	}

	t[0x10] = extOpcode{HasModRM, Pref66} // PBLENDVB
	t[0x14] = extOpcode{HasModRM, Pref66} // BLENDVPS
	t[0x15] = extOpcode{HasModRM, Pref66} // BLENDVPD
	t[0x17] = extOpcode{HasModRM, Pref66} // PTEST

	for b := 0x1c; b <= 0x1e; b++ {
		t[b] = extOpcode{HasModRM, PrefNone | Pref66} // PABSB/W/D
	}

	for b := 0x20; b <= 0x25; b++ {
		t[b] = extOpcode{HasModRM, Pref66} // PMOVSXBW..PMOVSXDQ
	}

	t[0x28] = extOpcode{HasModRM, Pref66} // PMULDQ
	t[0x29] = extOpcode{HasModRM, Pref66} // PCMPEQQ
	t[0x2a] = extOpcode{HasModRM, Pref66} // MOVNTDQA
	t[0x2b] = extOpcode{HasModRM, Pref66} // PACKUSDW

	for b := 0x30; b <= 0x35; b++ {
		t[b] = extOpcode{HasModRM, Pref66} // PMOVZXBW..PMOVZXDQ
	}

	for b := 0x37; b <= 0x41; b++ {
		t[b] = extOpcode{HasModRM, Pref66} // PCMPGTQ, PMINSB/D, PMINUW/D, PMAXSB/D, PMAXUW/D, PMULLD, PHMINPOSUW
	}

	t[0xf0] = extOpcode{HasModRM, PrefF2} // CRC32 Vo,Qq
	t[0xf1] = extOpcode{HasModRM, PrefF2} // CRC32 Vo,Qq
}

// buildThreeByte3ATable fills the 0F 3A xx map, ported from
// three_byte_3a_table. As with the 38 map, unlisted positions default to
// Undefined. Every populated entry in this map carries an 8-bit immediate.
func buildThreeByte3ATable() {
	t := &threeByte3ATable
	for i := range t {
		t[i] = extOpcode{Undefined, 0}
	}

	for b := 0x08; b <= 0x0f; b++ {
		t[b] = extOpcode{HasModRM | HasImm8, Pref66} // ROUNDPS/PD/SS/SD, BLENDPS/PD, PBLENDW, PALIGNR
	}
	if threeByte3AAllowsNone(0x0f) {
		t[0x0f] = extOpcode{HasModRM | HasImm8, PrefNone | Pref66} // PALIGNR also allows no prefix (MMX form)
	}

	for b := 0x14; b <= 0x17; b++ {
		t[b] = extOpcode{HasModRM | HasImm8, Pref66} // PEXTRB/W/D/Q, EXTRACTPS
	}

	for b := 0x20; b <= 0x22; b++ {
		t[b] = extOpcode{HasModRM | HasImm8, Pref66} // PINSRB, INSERTPS, PINSRD/Q
	}

	t[0x40] = extOpcode{HasModRM | HasImm8, Pref66} // DPPS
	t[0x41] = extOpcode{HasModRM | HasImm8, Pref66} // DPPD
	t[0x42] = extOpcode{HasModRM | HasImm8, Pref66} // MPSADBW

	for b := 0x60; b <= 0x63; b++ {
		t[b] = extOpcode{HasModRM | HasImm8, Pref66} // PCMPESTRM/I, PCMPISTRM/I
	}
}

// threeByte3AAllowsNone exists only to name the PALIGNR MMX-form exception
// inline above without a magic boolean.
func threeByte3AAllowsNone(opcode int) bool { return opcode == 0x0f }
