package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnsupported(t *testing.T) {
	_, err := New(4, 2, 1, Horizontal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMapper))
}

func TestNROMMirrorsSingleBank(t *testing.T) {
	m, err := New(0, 1, 1, Vertical)
	require.NoError(t, err)

	lo, ok := m.CPUMapRead(0x8123)
	require.True(t, ok)
	hi, ok := m.CPUMapRead(0xC123)
	require.True(t, ok)
	assert.Equal(t, lo, hi)
	assert.Equal(t, uint32(0x0123), lo)

	_, ok = m.CPUMapRead(0x6000)
	assert.False(t, ok)

	_, ok = m.CPUMapWrite(0x8000, 0xFF)
	assert.False(t, ok, "PRG ROM is not writable")

	_, ok = m.PPUMapWrite(0x0010)
	assert.False(t, ok, "CHR ROM is not writable")
	assert.Equal(t, Vertical, m.Mirroring())
}

func TestNROMWithCHRRAM(t *testing.T) {
	m, err := New(0, 2, 0, Horizontal)
	require.NoError(t, err)

	mapped, ok := m.PPUMapWrite(0x1ABC)
	require.True(t, ok)
	assert.Equal(t, uint32(0x1ABC), mapped)

	mapped, ok = m.CPUMapRead(0xFFFC)
	require.True(t, ok)
	assert.Equal(t, uint32(0x7FFC), mapped)
}

func TestUxROMBankSwitch(t *testing.T) {
	m, err := New(2, 8, 0, Vertical)
	require.NoError(t, err)

	mapped, _ := m.CPUMapRead(0xC000)
	assert.Equal(t, uint32(7*PRGBankSize), mapped, "last bank fixed at $C000")

	m.CPUMapWrite(0x8000, 3)
	mapped, _ = m.CPUMapRead(0x8001)
	assert.Equal(t, uint32(3*PRGBankSize+1), mapped)

	m.Reset()
	mapped, _ = m.CPUMapRead(0x8001)
	assert.Equal(t, uint32(1), mapped)
}

func TestCNROMSelectsCHRBank(t *testing.T) {
	m, err := New(3, 2, 4, Horizontal)
	require.NoError(t, err)

	m.CPUMapWrite(0x8000, 2)
	mapped, ok := m.PPUMapRead(0x0005)
	require.True(t, ok)
	assert.Equal(t, uint32(2*CHRBankSize+5), mapped)
}

func loadMMC1(m Mapper, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		m.CPUMapWrite(addr, value>>i&1)
	}
}

func TestMMC1SerialLoad(t *testing.T) {
	m, err := New(1, 8, 4, Horizontal)
	require.NoError(t, err)

	// fix last bank at $C000, 16KB switching at $8000, vertical mirroring
	loadMMC1(m, 0x8000, 0x0E)
	assert.Equal(t, Vertical, m.Mirroring())

	loadMMC1(m, 0xE000, 0x05)
	mapped, _ := m.CPUMapRead(0x8000)
	assert.Equal(t, uint32(5*PRGBankSize), mapped)
	mapped, _ = m.CPUMapRead(0xC000)
	assert.Equal(t, uint32(7*PRGBankSize), mapped)

	// 4KB CHR mode
	loadMMC1(m, 0x8000, 0x1F)
	assert.Equal(t, Horizontal, m.Mirroring())
	loadMMC1(m, 0xA000, 0x03)
	loadMMC1(m, 0xC000, 0x06)
	mapped, _ = m.PPUMapRead(0x0001)
	assert.Equal(t, uint32(3*0x1000+1), mapped)
	mapped, _ = m.PPUMapRead(0x1001)
	assert.Equal(t, uint32(6*0x1000+1), mapped)
}

func TestMMC1ResetBit(t *testing.T) {
	m, err := New(1, 4, 0, Horizontal)
	require.NoError(t, err)

	m.CPUMapWrite(0x8000, 1)
	m.CPUMapWrite(0x8000, 1)
	m.CPUMapWrite(0x8000, 0x80)
	// a full load after the reset lands in control, not in a half-filled register
	loadMMC1(m, 0x8000, 0x02)
	assert.Equal(t, Vertical, m.Mirroring())
}

func TestMMC1ControlWriteRemapsPRG(t *testing.T) {
	m, err := New(1, 8, 0, Horizontal)
	require.NoError(t, err)

	// bank 5 selected while $8000 is switchable
	loadMMC1(m, 0xE000, 0x05)
	mapped, _ := m.CPUMapRead(0x8000)
	require.Equal(t, uint32(5*PRGBankSize), mapped)

	// fix first bank at $8000: the selected bank moves to $C000 at once
	loadMMC1(m, 0x8000, 0x0B)
	mapped, _ = m.CPUMapRead(0x8000)
	assert.Equal(t, uint32(0), mapped)
	mapped, _ = m.CPUMapRead(0xC000)
	assert.Equal(t, uint32(5*PRGBankSize), mapped)

	// 32KB mode drops the low bit of the bank number
	loadMMC1(m, 0x8000, 0x03)
	mapped, _ = m.CPUMapRead(0x8000)
	assert.Equal(t, uint32(2*0x8000), mapped)
	mapped, _ = m.CPUMapRead(0xFFFF)
	assert.Equal(t, uint32(2*0x8000+0x7FFF), mapped)

	// the reset bit returns to fixed-last mode with the same register
	m.CPUMapWrite(0x8000, 0x80)
	mapped, _ = m.CPUMapRead(0x8000)
	assert.Equal(t, uint32(5*PRGBankSize), mapped)
	mapped, _ = m.CPUMapRead(0xC000)
	assert.Equal(t, uint32(7*PRGBankSize), mapped)
}
