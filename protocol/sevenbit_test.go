package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestBytePairingRoundTrip(t *testing.T) {
	// Every 8-bit value must survive the pair encoding exactly.
	for v := 0; v <= 0xFF; v++ {
		pairs := EncodeBytes([]byte{byte(v)})
		if len(pairs) != 2 {
			t.Fatalf("EncodeBytes(0x%02X) emitted %d bytes, want 2", v, len(pairs))
		}
		if pairs[0]&0x80 != 0 || pairs[1]&0x80 != 0 {
			t.Fatalf("EncodeBytes(0x%02X) = % X, not 7-bit clean", v, pairs)
		}
		raw, err := DecodeBytes(pairs)
		if err != nil {
			t.Fatalf("DecodeBytes(% X) error: %v", pairs, err)
		}
		if len(raw) != 1 || raw[0] != byte(v) {
			t.Fatalf("round trip of 0x%02X = % X", v, raw)
		}
	}
}

func TestUint14RoundTrip(t *testing.T) {
	// Every 14-bit value must survive the pair encoding exactly.
	for v := 0; v <= 0x3FFF; v++ {
		lsb, msb, err := EncodeUint14(v)
		if err != nil {
			t.Fatalf("EncodeUint14(%d) error: %v", v, err)
		}
		if lsb&0x80 != 0 || msb&0x80 != 0 {
			t.Fatalf("EncodeUint14(%d) = 0x%02X 0x%02X, not 7-bit clean", v, lsb, msb)
		}
		if got := DecodeUint14(lsb, msb); got != v {
			t.Fatalf("round trip of %d = %d", v, got)
		}
	}
}

func TestEncodeUint14Rejects(t *testing.T) {
	for _, v := range []int{-1, 0x4000, 1 << 20} {
		if _, _, err := EncodeUint14(v); !errors.Is(err, ErrValueOutOfRange) {
			t.Errorf("EncodeUint14(%d) error = %v, want ErrValueOutOfRange", v, err)
		}
	}
}

func TestEncodePairTruncates(t *testing.T) {
	tests := []struct {
		v       int
		lsb     byte
		msb     byte
		decoded int
	}{
		{0, 0x00, 0x00, 0},
		{1, 0x01, 0x00, 1},
		{144, 0x10, 0x01, 144},
		{0x3FFF, 0x7F, 0x7F, 0x3FFF},
		{0x4000, 0x00, 0x00, 0}, // bit 14 falls off
	}
	for _, tt := range tests {
		lsb, msb := EncodePair(tt.v)
		if lsb != tt.lsb || msb != tt.msb {
			t.Errorf("EncodePair(%d) = 0x%02X 0x%02X, want 0x%02X 0x%02X",
				tt.v, lsb, msb, tt.lsb, tt.msb)
		}
		if got := DecodePair(lsb, msb); got != tt.decoded {
			t.Errorf("DecodePair(EncodePair(%d)) = %d, want %d", tt.v, got, tt.decoded)
		}
	}
}

func TestDecodePairMasksHighBits(t *testing.T) {
	if got := DecodePair(0xFF, 0xFF); got != 0x3FFF {
		t.Errorf("DecodePair(0xFF, 0xFF) = %d, want %d", got, 0x3FFF)
	}
}

func TestDecodeBytesOddLength(t *testing.T) {
	if _, err := DecodeBytes([]byte{0x01, 0x00, 0x02}); !errors.Is(err, ErrOddPairLength) {
		t.Errorf("DecodeBytes(3 bytes) error = %v, want ErrOddPairLength", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		wire []byte
	}{
		{"empty", "", nil},
		{"ascii", "AB", []byte{0x41, 0x00, 0x42, 0x00}},
		{"high bytes", "\xc3\xa9", []byte{0x43, 0x01, 0x29, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := EncodeString(tt.in)
			if !bytes.Equal(wire, tt.wire) {
				t.Fatalf("EncodeString(%q) = % X, want % X", tt.in, wire, tt.wire)
			}
			out, err := DecodeString(wire)
			if err != nil {
				t.Fatalf("DecodeString(% X) error: %v", wire, err)
			}
			if out != tt.in {
				t.Fatalf("round trip of %q = %q", tt.in, out)
			}
		})
	}
}
