package protocol

import "testing"

func TestCRC16(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{"empty", []byte{}, 0xFFFF},
		{"check", []byte("123456789"), 0x4B37},
		{"write", []byte{0x82, 0x10, 0x00, 0x00, 0x01}, 0x1E99},
		{"read", []byte{0x83, 0x00, 0x14, 0x01}, 0x60E7},
		{"ack", []byte{0x82, 0x4F, 0x4B}, 0xEFA5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CRC16(tc.data); got != tc.expected {
				t.Errorf("CRC16(% X) = 0x%04X, want 0x%04X", tc.data, got, tc.expected)
			}
		})
	}
}

func TestCRC16Different(t *testing.T) {
	data1 := []byte{0x01, 0x02, 0x03}
	data2 := []byte{0x01, 0x02, 0x04}

	if CRC16(data1) == CRC16(data2) {
		t.Errorf("CRC16 collision: both inputs produced %04X", CRC16(data1))
	}
}
