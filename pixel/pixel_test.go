package pixel

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name                string
		bitsAllocated       int
		pixelRepresentation int
		want                Format
		wantErr             bool
	}{
		{"1-bit", 1, 0, Uint8, false},
		{"8-bit unsigned", 8, 0, Uint8, false},
		{"8-bit signed stays unsigned", 8, 1, Uint8, false},
		{"12-bit unsigned", 12, 0, Uint16, false},
		{"16-bit unsigned", 16, 0, Uint16, false},
		{"16-bit signed", 16, 1, Int16, false},
		{"32-bit", 32, 0, 0, true},
		{"zero", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.bitsAllocated, tt.pixelRepresentation)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("Resolve(%d, %d) error = %v, want ErrUnsupportedFormat",
						tt.bitsAllocated, tt.pixelRepresentation, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%d, %d) unexpected error: %v", tt.bitsAllocated, tt.pixelRepresentation, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%d, %d) = %s, want %s", tt.bitsAllocated, tt.pixelRepresentation, got, tt.want)
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	tests := []struct {
		name   string
		buf    Buffer
		lo, hi int32
	}{
		{"uint8", Buffer{Format: Uint8, U8: []uint8{10, 20, 30, 40}}, 10, 40},
		{"uint16", Buffer{Format: Uint16, U16: []uint16{700, 3, 65535}}, 3, 65535},
		{"int16", Buffer{Format: Int16, I16: []int16{-1024, 0, 3071}}, -1024, 3071},
		{"single", Buffer{Format: Int16, I16: []int16{-5}}, -5, -5},
		{"empty", NewBuffer(Uint8, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.buf.MinMax()
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("MinMax() = (%d, %d), want (%d, %d)", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestFromBytes(t *testing.T) {
	raw := []byte{0x01, 0x80, 0xFF, 0xFF}

	le := FromBytes(Uint16, raw, binary.LittleEndian)
	if diff := cmp.Diff([]uint16{0x8001, 0xFFFF}, le.U16); diff != "" {
		t.Errorf("little endian uint16 mismatch (-want +got):\n%s", diff)
	}

	be := FromBytes(Int16, raw, binary.BigEndian)
	if diff := cmp.Diff([]int16{0x0180, -1}, be.I16); diff != "" {
		t.Errorf("big endian int16 mismatch (-want +got):\n%s", diff)
	}

	u8 := FromBytes(Uint8, raw, binary.LittleEndian)
	if diff := cmp.Diff(raw, []byte(u8.U8)); diff != "" {
		t.Errorf("uint8 mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertSignExtends(t *testing.T) {
	src := Buffer{Format: Uint16, U16: []uint16{0x0FFF, 0x0800, 0x07FF, 0}}

	got, err := src.Convert(Int16, 12)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if diff := cmp.Diff([]int16{-1, -2048, 2047, 0}, got.I16); diff != "" {
		t.Errorf("sign extension mismatch (-want +got):\n%s", diff)
	}

	if _, err := src.Convert(Uint8, 8); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("narrowing error = %v, want ErrUnsupportedFormat", err)
	}
}
