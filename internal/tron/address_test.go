package tron

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"testing"
)

func TestCodecEncode_KnownAddress(t *testing.T) {
	// Адрес контракта USDT TRC20 в основной сети.
	raw, err := hex.DecodeString("41a614f803b6fd780986a42c78ec9c7f77e6ded13c")
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}

	codec := NewCodec()

	got := codec.Encode(raw)
	want := "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	if got != want {
		t.Fatalf("Encode = %s, want %s", got, want)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec()

	tests := []struct {
		name string
		raw  []byte
	}{
		{
			name: "zero payload",
			raw:  append([]byte{AccountVersionByte}, make([]byte, 20)...),
		},
		{
			name: "sequential payload",
			raw: append([]byte{AccountVersionByte},
				0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
				0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14),
		},
		{
			name: "high bytes",
			raw: append([]byte{AccountVersionByte},
				0xff, 0xfe, 0xfd, 0xfc, 0xfb, 0xfa, 0xf9, 0xf8, 0xf7, 0xf6,
				0xf5, 0xf4, 0xf3, 0xf2, 0xf1, 0xf0, 0xef, 0xee, 0xed, 0xec),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := codec.Encode(tt.raw)

			decoded, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if !bytes.Equal(decoded, tt.raw) {
				t.Fatalf("round trip: got %x, want %x", decoded, tt.raw)
			}
			if decoded[0] != AccountVersionByte {
				t.Fatalf("version byte not preserved: %x", decoded[0])
			}
		})
	}
}

func TestCodecDecode_ChecksumMismatch(t *testing.T) {
	codec := NewCodec()

	raw := append([]byte{AccountVersionByte}, make([]byte, 20)...)
	encoded := codec.Encode(raw)

	// Порча одного символа должна ломать контрольную сумму.
	corrupted := []byte(encoded)
	if corrupted[len(corrupted)-1] == '2' {
		corrupted[len(corrupted)-1] = '3'
	} else {
		corrupted[len(corrupted)-1] = '2'
	}

	_, err := codec.Decode(string(corrupted))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestCodecDecode_TooShort(t *testing.T) {
	codec := NewCodec()

	// "111" декодируется в три нулевых байта: короче контрольной суммы.
	_, err := codec.Decode("111")
	if !errors.Is(err, ErrAddressTooShort) {
		t.Fatalf("expected ErrAddressTooShort, got %v", err)
	}
}

func TestCodecDecode_InvalidBase58(t *testing.T) {
	codec := NewCodec()

	// Символ 0 не входит в алфавит base58.
	if _, err := codec.Decode("0OIl"); err == nil {
		t.Fatalf("expected error for invalid base58 input")
	}
}

func TestCodecWithChecksumHash(t *testing.T) {
	defaultCodec := NewCodec()
	altCodec := NewCodec(WithChecksumHash(sha512.New))

	raw := append([]byte{AccountVersionByte}, make([]byte, 20)...)

	encoded := altCodec.Encode(raw)
	if encoded == defaultCodec.Encode(raw) {
		t.Fatalf("alternate hash must produce a different checksum")
	}

	decoded, err := altCodec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatalf("round trip with alternate hash: got %x, want %x", decoded, raw)
	}

	if _, err := defaultCodec.Decode(encoded); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("default codec must reject alternate checksum, got %v", err)
	}
}
