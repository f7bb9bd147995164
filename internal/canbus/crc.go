package canbus

// The dongle firmware uses the MSB-first CRC-32 variant of the STM32 hardware
// unit (polynomial 0x04C11DB7, no reflection) with a zero seed.
const crcPoly = 0x04C11DB7

var crcTable = makeTable()

func makeTable() [256]uint32 {
	var table [256]uint32
	for i := range table {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ crcPoly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// Checksum computes the frame CRC over data.
func Checksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
