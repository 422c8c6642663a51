package stripcodesig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithGroupAndGroupOfRoundTrip(t *testing.T) {
	f := withGroup(grp5) | HasModRM
	assert.Equal(t, grp5, groupOf(f))
	assert.NotZero(t, f&HasModRM)
}

func TestOneByteTable_Group1Opcodes(t *testing.T) {
	assert.Equal(t, grp1, groupOf(oneByteTable[0x80]))
	assert.NotZero(t, oneByteTable[0x80]&HasImm8)

	assert.Equal(t, grp1, groupOf(oneByteTable[0x81]))
	assert.NotZero(t, oneByteTable[0x81]&Check66)

	assert.NotZero(t, oneByteTable[0x82]&IA32Only)
}

func TestOneByteTable_Grp5DispatchesJmpAsSpecial(t *testing.T) {
	assert.Equal(t, grp5, groupOf(oneByteTable[0xff]))
	assert.NotZero(t, groupTable[grp5][4]&Special) // JMP Ev
	assert.NotZero(t, groupTable[grp5][5]&Special) // JMP Mp
	assert.NotZero(t, groupTable[grp5][7]&Undefined)
}

func TestGroupTable_FistTPOnlyReg1NeedsPatch(t *testing.T) {
	assert.Zero(t, groupTable[grpFistTP][0]&NeedsPatch)
	assert.NotZero(t, groupTable[grpFistTP][1]&NeedsPatch)
	assert.NotZero(t, groupTable[grpFistTP][1]&HasModRM)
}

func TestTwoByteTable_CpuidNeedsPatch(t *testing.T) {
	assert.NotZero(t, twoByteTable[0xa2].flags&NeedsPatch)
}

func TestOneByteTable_ZeroOpcodeDoublesAsPaddingDetector(t *testing.T) {
	assert.NotZero(t, oneByteTable[0x00]&Special)
	assert.NotZero(t, oneByteTable[0x00]&HasModRM)
}

func TestPrefixClass_SSEDistinguishingBytes(t *testing.T) {
	assert.Equal(t, Pref66, prefixClass[0x66])
	assert.Equal(t, PrefF2, prefixClass[0xf2])
	assert.Equal(t, PrefF3, prefixClass[0xf3])
}

func TestOneByteTable_RexRangeTaggedIsREX(t *testing.T) {
	// REX prefixes occupy 0x40-0x4f; the table marks them IsREX
	// unconditionally, decode.go is what masks that off in 32-bit mode.
	assert.NotZero(t, oneByteTable[0x40]&IsREX)
	assert.NotZero(t, oneByteTable[0x4f]&IsREX)
}
