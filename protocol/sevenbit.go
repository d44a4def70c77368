package protocol

import "fmt"

// Firmata payloads are 7-bit clean: every data byte keeps its high bit zero
// so it can never be mistaken for a command byte. Multi-byte values cross the
// wire as pairs, least significant seven bits first.

// EncodePair splits v into its Firmata byte pair (LSB then MSB). Values wider
// than 14 bits are truncated; use EncodeUint14 to reject them instead.
func EncodePair(v int) (lsb, msb byte) {
	return byte(v) & 0x7F, byte(v>>7) & 0x7F
}

// DecodePair reassembles a value from its byte pair. Only the low seven bits
// of each byte contribute.
func DecodePair(lsb, msb byte) int {
	return int(lsb&0x7F) | int(msb&0x7F)<<7
}

// EncodeUint14 splits v into its byte pair, rejecting values outside the
// 14-bit range.
func EncodeUint14(v int) (lsb, msb byte, err error) {
	if v < 0 || v > MaxUint14 {
		return 0, 0, fmt.Errorf("%w: %d", ErrValueOutOfRange, v)
	}
	lsb, msb = EncodePair(v)
	return lsb, msb, nil
}

// DecodeUint14 reassembles a 14-bit value from its byte pair. It is
// DecodePair under a name that states the width.
func DecodeUint14(lsb, msb byte) int {
	return DecodePair(lsb, msb)
}

// EncodeBytes expands raw octets into their two-byte wire form, doubling the
// length. Each octet becomes its low seven bits followed by its high bit.
func EncodeBytes(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, b&0x7F, b>>7)
	}
	return out
}

// DecodeBytes collapses a paired payload back into raw octets. The payload
// must hold an even number of bytes.
func DecodeBytes(pairs []byte) ([]byte, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddPairLength, len(pairs))
	}
	out := make([]byte, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, pairs[i]&0x7F|pairs[i+1]<<7)
	}
	return out, nil
}

// EncodeString expands s into its two-byte wire form, one pair per byte of
// the string.
func EncodeString(s string) []byte {
	return EncodeBytes([]byte(s))
}

// DecodeString collapses a paired payload into a string.
func DecodeString(pairs []byte) (string, error) {
	raw, err := DecodeBytes(pairs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
