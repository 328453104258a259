package protocol

import (
	"strconv"
	"strings"
)

const (
	// ProtocolUnknown marks a capture the receiver could not attribute to a
	// known protocol.
	ProtocolUnknown ProtocolID = -1

	// MaxChunk is the largest duration a single wire token may carry.
	MaxChunk = 65535

	// MaxRawPulses bounds the pulse count accepted for replay. It matches the
	// receiver's capture buffer.
	MaxRawPulses = 1024

	// padOdd and padEven follow a 65535 chunk when splitting a long duration.
	// Which one is used depends on the 1-based position of the pulse.
	padOdd  = ", 0, "
	padEven = ",  0,"
)

// ProtocolID identifies the protocol decoder that recognised a capture.
type ProtocolID int

func (p ProtocolID) String() string {
	if p == ProtocolUnknown {
		return "UNKNOWN"
	}
	return strconv.Itoa(int(p))
}

// CapturedSignal is one received IR burst. Pulses alternate mark and space,
// starting with a mark, in microseconds.
type CapturedSignal struct {
	Protocol ProtocolID
	Pulses   []uint32
}

// PulseCount returns the number of durations in the signal
func (s CapturedSignal) PulseCount() int {
	return len(s.Pulses)
}

// FromRawCapture converts a receiver buffer into a CapturedSignal. The first
// buffer entry is the idle gap preceding the burst and is dropped. Protocol ids
// below ProtocolUnknown are normalised to it.
func FromRawCapture(protocol ProtocolID, buf []uint32) CapturedSignal {
	if protocol < ProtocolUnknown {
		protocol = ProtocolUnknown
	}
	sig := CapturedSignal{Protocol: protocol}
	if len(buf) > 1 {
		sig.Pulses = append([]uint32(nil), buf[1:]...)
	}
	return sig
}

// EncodeRaw renders a capture as "<protocol>;<count>:<d1>,...,<dn>,".
func EncodeRaw(sig CapturedSignal) string {
	var b strings.Builder
	b.Grow(8 + 7*len(sig.Pulses))

	b.WriteString(strconv.Itoa(int(sig.Protocol)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(len(sig.Pulses)))
	b.WriteByte(':')

	for i, d := range sig.Pulses {
		writePulse(&b, d, i+1)
	}
	return b.String()
}

func writePulse(b *strings.Builder, d uint32, position int) {
	pad := padEven
	if position%2 == 1 {
		pad = padOdd
	}
	for ; d > MaxChunk; d -= MaxChunk {
		b.WriteString("65535")
		b.WriteString(pad)
	}
	b.WriteString(strconv.FormatUint(uint64(d), 10))
	b.WriteByte(',')
}

// DecodeRaw parses "<count>:<d1>,<d2>,..." into a signal ready for replay.
// An optional "<protocol>;" prefix, as produced by EncodeRaw, is honoured.
//
// Only a missing ':' or a non-positive count is fatal. Individual durations
// are read leniently: garbage and negative values become 0, and tokens
// missing from the end of the list decode as 0.
func DecodeRaw(text string) (CapturedSignal, error) {
	sig := CapturedSignal{Protocol: ProtocolUnknown}

	head, body, ok := strings.Cut(text, ":")
	if !ok {
		return sig, newFormatError("raw", "missing ':' after pulse count", text)
	}
	if proto, count, tagged := strings.Cut(head, ";"); tagged {
		sig.Protocol = ProtocolID(atoi(proto))
		head = count
	}

	count := atoi(head)
	if count <= 0 {
		return sig, newFormatError("raw", "pulse count must be positive", text)
	}
	if count > MaxRawPulses {
		return sig, newFormatError("raw", "pulse count exceeds "+strconv.Itoa(MaxRawPulses), text)
	}

	sig.Pulses = make([]uint32, count)
	rest := body
	for i := range sig.Pulses {
		var tok string
		tok, rest, _ = strings.Cut(rest, ",")
		if v := atoi(tok); v > 0 {
			sig.Pulses[i] = uint32(v)
		}
	}
	return sig, nil
}
