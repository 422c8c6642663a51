package stripcodesig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryPatch_Cpuid(t *testing.T) {
	buf := []byte{0x0f, 0xa2, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	ok := TryPatch(buf, 0, Mode64, false)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xcd, 0xfb}, buf[:2])
}

func TestTryPatch_Lddqu(t *testing.T) {
	buf := []byte{0xf2, 0x0f, 0xf0, 0x05, 0x11, 0x22, 0x33, 0x44}
	ok := TryPatch(buf, 0, Mode64, true)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xf3, 0x0f, 0x6f, 0x05, 0x11, 0x22, 0x33, 0x44}, buf)
}

func TestTryPatch_LddquRequiresExtended(t *testing.T) {
	buf := []byte{0xf2, 0x0f, 0xf0, 0x05, 0x11, 0x22, 0x33, 0x44}
	ok := TryPatch(buf, 0, Mode64, false)
	assert.False(t, ok)
	assert.Equal(t, byte(0xf2), buf[0])
}

func TestTryPatch_FisttpWordAndDword(t *testing.T) {
	// DB 0A -> DB 1A (dword form, reg 1 -> reg 3)
	buf := []byte{0xdb, 0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	ok := TryPatch(buf, 0, Mode32, true)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xdb, 0x1a}, buf[:2])

	// DF 0A -> DF 1A (word form, reg 1 -> reg 3)
	buf2 := []byte{0xdf, 0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	ok = TryPatch(buf2, 0, Mode32, true)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xdf, 0x1a}, buf2[:2])
}

func TestTryPatch_FisttpQwordChangesOpcodeByte(t *testing.T) {
	// DD 0A -> DF 3A (qword form only exists as DF/7)
	buf := []byte{0xdd, 0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	ok := TryPatch(buf, 0, Mode32, true)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xdf, 0x3a}, buf[:2])
}

func TestTryPatch_SysenterTrampoline(t *testing.T) {
	buf := []byte{0x5a, 0x89, 0xe1, 0x0f, 0x34, 0x0f, 0x1f, 0x00}
	ok := TryPatch(buf, 3, Mode32, false)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x59, 0xcd, 0xfc, 0x51, 0xc3, 0x0f, 0x1f, 0x00}, buf)
}

func TestTryPatch_SysenterTrampolineRejectsMismatch(t *testing.T) {
	buf := []byte{0x5a, 0x89, 0xe2 /* wrong */, 0x0f, 0x34, 0x0f, 0x1f, 0x00}
	ok := TryPatch(buf, 3, Mode32, false)
	assert.False(t, ok)
}

func TestTryPatch_SysenterNotRecognizedIn64BitMode(t *testing.T) {
	buf := []byte{0x5a, 0x89, 0xe1, 0x0f, 0x34, 0x0f, 0x1f, 0x00}
	ok := TryPatch(buf, 3, Mode64, false)
	assert.False(t, ok)
}

func TestTryPatch_UnrecognizedBytesReturnFalse(t *testing.T) {
	buf := []byte{0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90}
	ok := TryPatch(buf, 0, Mode64, true)
	assert.False(t, ok)
}
