// Package telemetry implements the fixed-size, CRC-checked frame a board
// writes to its UART on every main-loop pass, reporting what the
// Transmission FSM is rendering at that moment, and that cmd/keyermonitor
// decodes on the other end. Adapted from the teacher's protocol.Frame: a
// CRC32-protected, terminal-byte-delimited radio frame keyed by SenderID
// and Seq for a multi-device pairing protocol. A keyer board has exactly
// one telemetry source, sends no acknowledgement, and needs no pairing
// handshake, so the frame collapses to a fixed six-byte payload carrying
// just what keyermonitor needs to render: when, what element, and the key
// line's state. The frame has no length byte (every frame is FrameSize
// bytes); the CRC32 and terminal byte shape survive unchanged.
package telemetry

import (
	"encoding/binary"
	"hash/crc32"
)

const (
	timestampSize = 4
	elementSize   = 1
	keyedSize     = 1
	crcSize       = 4
	terminalSize  = 1

	// FrameSize is the fixed on-wire size of every telemetry frame.
	FrameSize = timestampSize + elementSize + keyedSize + crcSize + terminalSize

	terminal byte = 0x55
)

// ElementCode mirrors element.Element's three values plus Rest, sent while
// the board is quiescent so keyermonitor can tell silence from a dead link.
type ElementCode byte

const (
	CodeRest ElementCode = iota
	CodeDit
	CodeDah
	CodeCharSpace
)

func (c ElementCode) String() string {
	switch c {
	case CodeDit:
		return "Dit"
	case CodeDah:
		return "Dah"
	case CodeCharSpace:
		return "CharSpace"
	default:
		return "Rest"
	}
}

// Frame is one telemetry record.
type Frame struct {
	TimestampMS uint32
	Element     ElementCode
	Keyed       bool
}

// Encode serialises f into a FrameSize-byte buffer ready to write to a UART.
func Encode(f Frame) []byte {
	data := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(data[0:4], f.TimestampMS)
	data[4] = byte(f.Element)
	if f.Keyed {
		data[5] = 1
	}
	crc := crc32.ChecksumIEEE(data[:6])
	binary.LittleEndian.PutUint32(data[6:10], crc)
	data[10] = terminal
	return data
}

// Decode parses one frame out of the first FrameSize bytes of data. It
// reports false if there are too few bytes, the terminal byte is wrong, or
// the CRC does not match — the caller (a byte-at-a-time resync reader) is
// expected to drop one byte and retry rather than treat this as fatal.
func Decode(data []byte) (Frame, bool) {
	if len(data) < FrameSize {
		return Frame{}, false
	}
	if data[FrameSize-1] != terminal {
		return Frame{}, false
	}
	crc := binary.LittleEndian.Uint32(data[6:10])
	if crc32.ChecksumIEEE(data[:6]) != crc {
		return Frame{}, false
	}
	return Frame{
		TimestampMS: binary.LittleEndian.Uint32(data[0:4]),
		Element:     ElementCode(data[4]),
		Keyed:       data[5] != 0,
	}, true
}
