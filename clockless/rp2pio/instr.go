package rp2pio

import (
	"math"

	"github.com/pkg/errors"
)

// Instruction opcodes, bits 15..13 of every PIO instruction word.
const (
	_INSTR_BITS_JMP = 0x0000
	_INSTR_BITS_OUT = 0x6000
	_INSTR_BITS_MOV = 0xa000
	_INSTR_BITS_SET = 0xe000

	// Bit mask for instruction code
	_INSTR_BITS_Msk = 0xe000
)

type SrcDest uint8

const (
	SrcDestPins    SrcDest = 0
	SrcDestX       SrcDest = 1
	SrcDestY       SrcDest = 2
	SrcDestPinDirs SrcDest = 4
)

type JmpCond uint8

const (
	// No condition, always jumps.
	JmpAlways JmpCond = iota
	// Jump if X is zero.
	JmpXZero
)

// ErrClkDiv is returned when a bit period cannot be reached by the
// state machine clock divider.
var ErrClkDiv = errors.New("rp2pio: clock divider out of range")

func encodeInstrAndArgs(instr uint16, arg1 uint8, arg2 uint8) uint16 {
	return instr | (uint16(arg1) << 5) | uint16(arg2&0x1f)
}

func encodeInstrAndSrcDest(instr uint16, dest SrcDest, value uint8) uint16 {
	return encodeInstrAndArgs(instr, uint8(dest)&7, value)
}

func EncodeJmp(addr uint8, condition JmpCond) uint16 {
	return encodeInstrAndArgs(_INSTR_BITS_JMP, uint8(condition&0b111), addr)
}

func EncodeOut(dest SrcDest, value uint8) uint16 {
	return encodeInstrAndSrcDest(_INSTR_BITS_OUT, dest, value)
}

func EncodeMov(dest SrcDest, src SrcDest) uint16 {
	return encodeInstrAndSrcDest(_INSTR_BITS_MOV, dest, uint8(src)&7)
}

func EncodeSet(dest SrcDest, value uint8) uint16 {
	return encodeInstrAndSrcDest(_INSTR_BITS_SET, dest, value)
}

func EncodeNOP() uint16 {
	return EncodeMov(SrcDestY, SrcDestY)
}

// Assembler encodes instructions for programs using SidesetBits mandatory
// side-set bits. Side-set values take the top of the delay field, so the
// longest delay shrinks to 2^(5-SidesetBits)-1 cycles.
type Assembler struct {
	SidesetBits uint8
}

// Instr is one instruction under construction.
type Instr struct {
	asm  Assembler
	word uint16
}

func (asm Assembler) Out(dest SrcDest, bitCount uint8) Instr {
	return Instr{asm, EncodeOut(dest, bitCount)}
}

func (asm Assembler) Jmp(addr uint8, cond JmpCond) Instr {
	return Instr{asm, EncodeJmp(addr, cond)}
}

func (asm Assembler) Nop() Instr {
	return Instr{asm, EncodeNOP()}
}

// MaxDelay returns the longest delay an instruction can carry.
func (asm Assembler) MaxDelay() uint8 {
	return 1<<(5-asm.SidesetBits) - 1
}

// Side sets the side-set pin value for the instruction.
func (in Instr) Side(value uint8) Instr {
	n := in.asm.SidesetBits
	in.word = in.word&^(uint16(1<<n-1)<<(13-n)) | uint16(value)<<(13-n)
	return in
}

// Delay adds cycles idle cycles after the instruction.
func (in Instr) Delay(cycles uint8) Instr {
	in.word = in.word&^(uint16(in.asm.MaxDelay())<<8) | uint16(cycles&in.asm.MaxDelay())<<8
	return in
}

func (in Instr) Encode() uint16 { return in.word }

// splitClkdiv splits a divider in 1/256ths into the CLKDIV register fields:
//
//	Frequency = clock freq / (CLKDIV_INT + CLKDIV_FRAC / 256)
func splitClkdiv(clkdiv uint64) (whole uint16, frac uint8, err error) {
	if clkdiv > 256*math.MaxUint16 {
		return 0, 0, errors.Wrap(ErrClkDiv, "too large period or CPU frequency")
	} else if clkdiv < 256 {
		return 0, 0, errors.Wrap(ErrClkDiv, "too small period or CPU frequency")
	}
	whole = uint16(clkdiv / 256)
	frac = uint8(clkdiv % 256)
	return whole, frac, nil
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
