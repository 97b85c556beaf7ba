package hostlink

// CRC16 calculates CRC-16/MCRF4XX (poly 0x1021 reflected, init 0xFFFF)
// over data, the same checksum the Klipper serial protocol uses.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc & 0xFF)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}
