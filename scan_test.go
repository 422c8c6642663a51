package stripcodesig

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanner_PatchesCpuidOutsideRestWindow(t *testing.T) {
	region := make([]byte, 0, RestSize+32)
	region = append(region, 0x90) // one real instruction to seed a non-garbage cursor
	for len(region) < RestSize+2 {
		region = append(region, 0x90)
	}
	region = append(region, 0x0f, 0xa2) // CPUID
	region = append(region, make([]byte, 16)...)

	s := &Scanner{Region: region, Mode: Mode64, Extended: false}
	bad, patched := s.Scan(true, nil)
	assert.Zero(t, bad)
	assert.Equal(t, 1, patched)

	idx := bytes.Index(region, []byte{0xcd, 0xfb})
	assert.NotEqual(t, -1, idx, "expected CPUID to be rewritten to INT 0xFB")
}

func TestScanner_SkipsPatchInsideRestWindow(t *testing.T) {
	region := []byte{0x00, 0x01} // ADD Eb,Gb with a non-zero second byte: decodes as a normal 2-byte instruction, not padding
	region = append(region, bytes.Repeat([]byte{0x90}, RestSize-3)...)
	region = append(region, 0x0f, 0xa2) // CPUID, still inside the REST_SIZE quarantine
	region = append(region, make([]byte, 16)...)

	// Force a "bad" instruction at the very start so lastBad is set close to
	// the CPUID bytes.
	region[0] = 0xff
	region[1] = 0xff // invalid under Mode64 without a group reg that resolves

	s := &Scanner{Region: region, Mode: Mode64, Extended: false}
	_, patched := s.Scan(true, nil)
	assert.Zero(t, patched, "patch inside the REST_SIZE window after a bad instruction must be skipped")
}

func TestScanner_NonMutatingScanNeverWrites(t *testing.T) {
	region := []byte{0x0f, 0xa2, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90}
	before := append([]byte(nil), region...)

	s := &Scanner{Region: region, Mode: Mode64, Extended: false}
	_, patched := s.Scan(false, nil)
	assert.Zero(t, patched)
	assert.Equal(t, before, region)
}

func TestScanner_PaddingRunIsSkippedInOneHop(t *testing.T) {
	region := bytes.Repeat([]byte{0x00}, 10)
	region = append(region, 0x0f, 0xa2)
	region = append(region, make([]byte, 16)...)

	s := &Scanner{Region: region, Mode: Mode64, Extended: false}
	var trace bytes.Buffer
	bad, _ := s.Scan(false, &trace)
	assert.Zero(t, bad)
	assert.Contains(t, trace.String(), "00000000: (10 bytes padding)")
}

func TestScanSection_BypassesGarbageSections(t *testing.T) {
	region := bytes.Repeat([]byte{0xf1}, PrescanSize+32) // 0xF1 (INT1) decodes fine; use a byte sequence unlikely to decode cleanly instead
	for i := range region {
		region[i] = 0x0f // lone two-byte escape prefix with no valid successor tends to misdecode repeatedly
	}

	_, _, bypassed := ScanSection(region, 0, Mode64, false, true, nil)
	assert.True(t, bypassed)
}
