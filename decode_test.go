package stripcodesig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// pad extends b with trailing NOPs so DecodeLength always has its required
// 15-byte lookahead window available, regardless of the instruction under
// test's actual length.
func pad(b ...byte) []byte {
	out := make([]byte, 0, len(b)+16)
	out = append(out, b...)
	for len(out) < len(b)+16 {
		out = append(out, 0x90)
	}
	return out
}

func TestDecodeLength_CPUID(t *testing.T) {
	buf := pad(0x0f, 0xa2)
	length, status := DecodeLength(buf, Mode64, false)
	assert.Equal(t, 2, length)
	assert.NotZero(t, status&StatusNeedsPatch)
}

func TestDecodeLength_AddAxImm16With66Prefix(t *testing.T) {
	// 66 81 C0 34 12 -- ADD AX, 0x1234
	buf := pad(0x66, 0x81, 0xc0, 0x34, 0x12)
	length, _ := DecodeLength(buf, Mode64, false)
	assert.Equal(t, 5, length)
}

func TestDecodeLength_MovRaxImm64(t *testing.T) {
	buf := pad(0x48, 0xb8, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08)
	length, _ := DecodeLength(buf, Mode64, false)
	assert.Equal(t, 10, length)
}

func TestDecodeLength_Lddqu(t *testing.T) {
	buf := pad(0xf2, 0x0f, 0xf0, 0x05, 0x11, 0x22, 0x33, 0x44)
	length, status := DecodeLength(buf, Mode64, true)
	assert.Equal(t, 8, length)
	assert.NotZero(t, status&StatusNeedsPatch)
}

func TestDecodeLength_LdddquNonExtendedHasNoPatchBit(t *testing.T) {
	buf := pad(0xf2, 0x0f, 0xf0, 0x05, 0x11, 0x22, 0x33, 0x44)
	length, status := DecodeLength(buf, Mode64, false)
	assert.Equal(t, 8, length)
	assert.Zero(t, status&StatusNeedsPatch)
}

func TestDecodeLength_Fisttp(t *testing.T) {
	buf := pad(0xdb, 0x0a)
	length, status := DecodeLength(buf, Mode32, true)
	assert.Equal(t, 2, length)
	assert.NotZero(t, status&StatusNeedsPatch)
}

func TestDecodeLength_FisttpNonExtendedIsPlainModRM(t *testing.T) {
	buf := pad(0xdb, 0x0a)
	length, status := DecodeLength(buf, Mode32, false)
	assert.Equal(t, 2, length)
	assert.Zero(t, status&StatusNeedsPatch)
}

func TestDecodeLength_PaddingZeroRun(t *testing.T) {
	buf := pad(0x00, 0x00)
	length, status := DecodeLength(buf, Mode64, false)
	assert.Equal(t, 1, length)
	assert.NotZero(t, status&StatusPadding)
}

func TestDecodeLength_NopIsPaddingButPauseIsNot(t *testing.T) {
	nop := pad(0x90, 0x90)
	length, status := DecodeLength(nop, Mode64, false)
	assert.Equal(t, 1, length)
	assert.NotZero(t, status&StatusPadding)

	pause := pad(0xf3, 0x90)
	length, status = DecodeLength(pause, Mode64, false)
	assert.Equal(t, 2, length)
	assert.Zero(t, status&StatusPadding)
}

func TestDecodeLength_UndefinedOpcodeIsInvalid(t *testing.T) {
	buf := pad(0x0f, 0x04) // two-byte opcode 0F 04 is undefined
	length, _ := DecodeLength(buf, Mode64, false)
	assert.Equal(t, Invalid, length)
}

func TestDecodeLength_Ia32OnlyUnderLongModeIsInvalid(t *testing.T) {
	buf := pad(0x06) // PUSH ES, invalid in 64-bit mode
	length, _ := DecodeLength(buf, Mode64, false)
	assert.Equal(t, Invalid, length)
}

func TestDecodeLength_Ia32OnlyUnder32BitModeIsValid(t *testing.T) {
	buf := pad(0x06) // PUSH ES
	length, _ := DecodeLength(buf, Mode32, false)
	assert.Equal(t, 1, length)
}

func TestDecodeLength_ModRMDisp8(t *testing.T) {
	// 8B 45 10 -- MOV EAX, [EBP+0x10]
	buf := pad(0x8b, 0x45, 0x10)
	length, _ := DecodeLength(buf, Mode32, false)
	assert.Equal(t, 3, length)
}

func TestDecodeLength_ModRMSIBDisp32(t *testing.T) {
	// 8B 04 25 78 56 34 12 -- MOV EAX, [0x12345678]
	buf := pad(0x8b, 0x04, 0x25, 0x78, 0x56, 0x34, 0x12)
	length, _ := DecodeLength(buf, Mode32, false)
	assert.Equal(t, 7, length)
}

func TestDecodeLength_RipRelative64(t *testing.T) {
	// 8B 05 78 56 34 12 -- MOV EAX, [RIP+0x12345678]
	buf := pad(0x8b, 0x05, 0x78, 0x56, 0x34, 0x12)
	length, _ := DecodeLength(buf, Mode64, false)
	assert.Equal(t, 6, length)
}

func TestDecodeLength_JmpExtendedSetsRest(t *testing.T) {
	// FF E0 -- JMP RAX (group 5, reg 4)
	buf := pad(0xff, 0xe0)
	_, status := DecodeLength(buf, Mode64, true)
	assert.NotZero(t, status&StatusRest)
}

func TestDecodeLength_JmpNonExtendedHasNoRest(t *testing.T) {
	buf := pad(0xff, 0xe0)
	_, status := DecodeLength(buf, Mode64, false)
	assert.Zero(t, status&StatusRest)
}
