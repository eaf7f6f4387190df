package pix

import "fmt"

const (
	crcInit = 0xFFFF
	crcPoly = 0x1021
)

// Checksum computes the CRC-16/CCITT-FALSE of the payload string and returns
// it as four uppercase hex digits, the form banking apps expect at the tail
// of a BR Code. Each character is processed as a single byte, high bit first,
// with no final XOR.
func Checksum(payload string) string {
	crc := uint16(crcInit)
	for i := 0; i < len(payload); i++ {
		crc ^= uint16(payload[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
