package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// ACFieldCount is the number of comma separated fields in an A/C command.
const ACFieldCount = 18

// OpMode is the operating mode of an air conditioner.
type OpMode int

const (
	ModeOff OpMode = iota - 1
	ModeAuto
	ModeCool
	ModeHeat
	ModeDry
	ModeFan
)

func (m OpMode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeAuto:
		return "auto"
	case ModeCool:
		return "cool"
	case ModeHeat:
		return "heat"
	case ModeDry:
		return "dry"
	case ModeFan:
		return "fan"
	default:
		return fmt.Sprintf("OpMode(%d)", int(m))
	}
}

// FanSpeed is the requested fan speed.
type FanSpeed int

const (
	FanAuto FanSpeed = iota
	FanMin
	FanLow
	FanMedium
	FanHigh
	FanMax
)

func (f FanSpeed) String() string {
	switch f {
	case FanAuto:
		return "auto"
	case FanMin:
		return "min"
	case FanLow:
		return "low"
	case FanMedium:
		return "medium"
	case FanHigh:
		return "high"
	case FanMax:
		return "max"
	default:
		return fmt.Sprintf("FanSpeed(%d)", int(f))
	}
}

// SwingV is the vertical vane position.
type SwingV int

const (
	SwingVOff SwingV = iota - 1
	SwingVAuto
	SwingVHighest
	SwingVHigh
	SwingVMiddle
	SwingVLow
	SwingVLowest
)

func (s SwingV) String() string {
	switch s {
	case SwingVOff:
		return "off"
	case SwingVAuto:
		return "auto"
	case SwingVHighest:
		return "highest"
	case SwingVHigh:
		return "high"
	case SwingVMiddle:
		return "middle"
	case SwingVLow:
		return "low"
	case SwingVLowest:
		return "lowest"
	default:
		return fmt.Sprintf("SwingV(%d)", int(s))
	}
}

// SwingH is the horizontal vane position.
type SwingH int

const (
	SwingHOff SwingH = iota - 1
	SwingHAuto
	SwingHLeftMax
	SwingHLeft
	SwingHMiddle
	SwingHRight
	SwingHRightMax
	SwingHWide
)

func (s SwingH) String() string {
	switch s {
	case SwingHOff:
		return "off"
	case SwingHAuto:
		return "auto"
	case SwingHLeftMax:
		return "leftmax"
	case SwingHLeft:
		return "left"
	case SwingHMiddle:
		return "middle"
	case SwingHRight:
		return "right"
	case SwingHRightMax:
		return "rightmax"
	case SwingHWide:
		return "wide"
	default:
		return fmt.Sprintf("SwingH(%d)", int(s))
	}
}

// ACCommand is the complete desired state of an air conditioner. The appliance
// codec selected by Protocol turns it into an IR burst.
type ACCommand struct {
	Protocol ProtocolID
	Model    int
	Power    bool
	Mode     OpMode
	Degrees  float64
	Celsius  bool
	Fan      FanSpeed
	SwingV   SwingV
	SwingH   SwingH
	Quiet    bool
	Turbo    bool
	Econo    bool
	Light    bool
	Filter   bool
	Clean    bool
	Beep     bool
	Sleep    int // minutes, negative disables
	Clock    int // minutes past midnight, negative disables
}

// EncodeAC renders cmd as the 18 field wire form.
func EncodeAC(cmd ACCommand) string {
	fields := []string{
		strconv.Itoa(int(cmd.Protocol)),
		strconv.Itoa(cmd.Model),
		boolField(cmd.Power),
		strconv.Itoa(int(cmd.Mode)),
		strconv.FormatFloat(cmd.Degrees, 'f', -1, 64),
		boolField(cmd.Celsius),
		strconv.Itoa(int(cmd.Fan)),
		strconv.Itoa(int(cmd.SwingV)),
		strconv.Itoa(int(cmd.SwingH)),
		boolField(cmd.Quiet),
		boolField(cmd.Turbo),
		boolField(cmd.Econo),
		boolField(cmd.Light),
		boolField(cmd.Filter),
		boolField(cmd.Clean),
		boolField(cmd.Beep),
		strconv.Itoa(cmd.Sleep),
		strconv.Itoa(cmd.Clock),
	}
	return strings.Join(fields, ",")
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// DecodeAC parses the 18 field wire form. The only hard failure is a missing
// separator after the protocol field; every later field is read leniently and
// fields absent from a short payload take their zero value.
func DecodeAC(text string) (ACCommand, error) {
	var cmd ACCommand

	first, rest, ok := strings.Cut(text, ",")
	if !ok {
		return cmd, newFormatError("ac", "missing ',' after protocol", text)
	}
	cmd.Protocol = ProtocolID(atoi(first))

	f := fieldScanner{rest: rest, more: true}
	cmd.Model = f.nextInt()
	cmd.Power = f.nextBool()
	cmd.Mode = OpMode(f.nextInt())
	cmd.Degrees = f.nextFloat()
	cmd.Celsius = f.nextBool()
	cmd.Fan = FanSpeed(f.nextInt())
	cmd.SwingV = SwingV(f.nextInt())
	cmd.SwingH = SwingH(f.nextInt())
	cmd.Quiet = f.nextBool()
	cmd.Turbo = f.nextBool()
	cmd.Econo = f.nextBool()
	cmd.Light = f.nextBool()
	cmd.Filter = f.nextBool()
	cmd.Clean = f.nextBool()
	cmd.Beep = f.nextBool()
	cmd.Sleep = f.nextInt()
	cmd.Clock = f.nextInt()

	return cmd, nil
}

// fieldScanner hands out comma separated fields left to right. Once the input
// is exhausted every further field is empty.
type fieldScanner struct {
	rest string
	more bool
}

func (f *fieldScanner) next() string {
	if !f.more {
		return ""
	}
	var tok string
	tok, f.rest, f.more = strings.Cut(f.rest, ",")
	return tok
}

func (f *fieldScanner) nextInt() int       { return atoi(f.next()) }
func (f *fieldScanner) nextFloat() float64 { return atof(f.next()) }
func (f *fieldScanner) nextBool() bool     { return atoi(f.next()) > 0 }
