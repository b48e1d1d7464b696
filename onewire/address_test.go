package onewire

import "testing"

func TestCRC8(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{"empty", nil, 0x00},
		{"check string", []byte("123456789"), 0xA1},
		{"DS18B20 rom", []byte{0x28, 0xFF, 0x4B, 0x3C, 0xA1, 0x16, 0x05}, 0xAF},
		{"DS2432 rom", []byte{0xB3, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, 0x44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CRC8(tt.data); got != tt.want {
				t.Errorf("CRC8() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestNewAddress(t *testing.T) {
	a := NewAddress(0xB3, 0x060504030201)

	if uint64(a) != 0x44060504030201B3 {
		t.Errorf("packed value = 0x%016X, want 0x44060504030201B3", uint64(a))
	}
	if a.Family() != 0xB3 {
		t.Errorf("Family() = 0x%02X, want 0xB3", a.Family())
	}
	if a.ID() != 0x060504030201 {
		t.Errorf("ID() = 0x%012X, want 0x060504030201", a.ID())
	}
	if a.CRC() != 0x44 {
		t.Errorf("CRC() = 0x%02X, want 0x44", a.CRC())
	}
	if !a.Valid() {
		t.Error("NewAddress must produce a valid CRC")
	}
}

func TestAddressBytes(t *testing.T) {
	a := NewAddress(0xB3, 0x060504030201)
	want := [8]byte{0xB3, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x44}

	if a.Bytes() != want {
		t.Errorf("Bytes() = %X, want %X", a.Bytes(), want)
	}
}

func TestAddressString(t *testing.T) {
	tests := []struct {
		family byte
		id     uint64
		want   string
	}{
		{0xB3, 0x060504030201, "b3-060504030201"},
		{0xB3, 0x00FBC90A, "b3-000000fbc90a"},
		{0x28, 0x05164B3CA1FF, "28-05164b3ca1ff"},
	}

	for _, tt := range tests {
		if got := NewAddress(tt.family, tt.id).String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("b3-000000fbc90a")
	if err != nil {
		t.Fatalf("ParseAddress() error: %v", err)
	}
	if uint64(a) != 0x3F000000FBC90AB3 {
		t.Errorf("packed value = 0x%016X, want 0x3F000000FBC90AB3", uint64(a))
	}

	// Round trip through the sysfs form.
	if a.String() != "b3-000000fbc90a" {
		t.Errorf("String() = %q after parse", a.String())
	}
}

func TestParseAddressErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"b3",
		"xx-000000fbc90a",
		"b3-zzzz",
		"b3-1000000000000", // 49 bits
	} {
		if _, err := ParseAddress(s); err == nil {
			t.Errorf("ParseAddress(%q): expected error", s)
		}
	}
}

func TestAddressFromBytes(t *testing.T) {
	rom := [8]byte{0xB3, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x44}

	a, err := AddressFromBytes(rom)
	if err != nil {
		t.Fatalf("AddressFromBytes() error: %v", err)
	}
	if a != NewAddress(0xB3, 0x060504030201) {
		t.Errorf("address = 0x%016X", uint64(a))
	}
	if a.Bytes() != rom {
		t.Error("Bytes() must round-trip the wire form")
	}

	rom[7] ^= 0x01
	if _, err := AddressFromBytes(rom); err == nil {
		t.Error("corrupted CRC must be rejected")
	}
}
