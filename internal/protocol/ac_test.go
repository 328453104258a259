package protocol

import (
	"errors"
	"testing"
)

const sampleAC = "10,1,1,1,25,1,2,4,2,1,0,1,1,0,0,1,-1,-1"

func TestDecodeAC(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ACCommand
		wantErr bool
	}{
		{
			name:  "sample command",
			input: sampleAC,
			want: ACCommand{
				Protocol: 10,
				Model:    1,
				Power:    true,
				Mode:     ModeCool,
				Degrees:  25,
				Celsius:  true,
				Fan:      FanLow,
				SwingV:   SwingVLow,
				SwingH:   SwingHLeft,
				Quiet:    true,
				Econo:    true,
				Light:    true,
				Beep:     true,
				Sleep:    -1,
				Clock:    -1,
			},
		},
		{
			name:  "fractional degrees and large boolean",
			input: "20,0,5,2,21.5,0,0,-1,-1,0,3,0,0,0,0,0,30,720",
			want: ACCommand{
				Protocol: 20,
				Power:    true,
				Mode:     ModeHeat,
				Degrees:  21.5,
				SwingV:   SwingVOff,
				SwingH:   SwingHOff,
				Turbo:    true,
				Sleep:    30,
				Clock:    720,
			},
		},
		{
			name:  "garbage fields become zero",
			input: "10,abc,1,x,hot,1",
			want: ACCommand{
				Protocol: 10,
				Power:    true,
				Celsius:  true,
			},
		},
		{
			name:  "short payload leaves trailing fields zero",
			input: "10,",
			want:  ACCommand{Protocol: 10},
		},
		{
			name:  "negative boolean is false",
			input: "1,0,-1",
			want:  ACCommand{Protocol: 1},
		},
		{
			name:    "no separator",
			input:   "10",
			wantErr: true,
		},
		{
			name:    "empty payload",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAC(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeAC() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrFormat) {
					t.Errorf("DecodeAC() error = %v, want ErrFormat", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DecodeAC() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeAC(t *testing.T) {
	cmd, err := DecodeAC(sampleAC)
	if err != nil {
		t.Fatalf("DecodeAC() error = %v", err)
	}
	if got := EncodeAC(cmd); got != sampleAC {
		t.Errorf("EncodeAC() = %q, want %q", got, sampleAC)
	}

	half := ACCommand{Protocol: 4, Mode: ModeDry, Degrees: 18.5, Fan: FanMax, SwingV: SwingVAuto, SwingH: SwingHWide}
	want := "4,0,0,3,18.5,0,5,0,6,0,0,0,0,0,0,0,0,0"
	if got := EncodeAC(half); got != want {
		t.Errorf("EncodeAC() = %q, want %q", got, want)
	}
}

func TestACRoundTrip(t *testing.T) {
	cmds := []ACCommand{
		{Protocol: 10, Model: 2, Power: true, Mode: ModeFan, Degrees: 77, Fan: FanHigh, SwingV: SwingVHighest, SwingH: SwingHRightMax, Clean: true, Filter: true, Sleep: -1, Clock: 95},
		{Protocol: ProtocolUnknown, Mode: ModeOff, Degrees: 16.25},
	}
	for _, cmd := range cmds {
		got, err := DecodeAC(EncodeAC(cmd))
		if err != nil {
			t.Fatalf("DecodeAC() error = %v", err)
		}
		if got != cmd {
			t.Errorf("DecodeAC(EncodeAC(%+v)) = %+v", cmd, got)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{ModeOff.String(), "off"},
		{ModeCool.String(), "cool"},
		{OpMode(9).String(), "OpMode(9)"},
		{FanMedium.String(), "medium"},
		{SwingVLowest.String(), "lowest"},
		{SwingHLeftMax.String(), "leftmax"},
		{ProtocolUnknown.String(), "UNKNOWN"},
		{ProtocolID(10).String(), "10"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
