package parser

// unlockShuffle is the nibble substitution table for locked level tables.
var unlockShuffle = [16]uint32{
	0xb, 0xc, 0xa, 0x0,
	0x8, 0xf, 0x2, 0x1,
	0x6, 0x4, 0x9, 0x3,
	0xd, 0x5, 0x7, 0xe,
}

// unlock de-obfuscates a locked level table. Each byte is split into two
// nibbles; every nibble is shifted back by a key-derived amount while a
// ring counter walks the key four bits at a time.
func unlock(src []byte, key uint32) []byte {
	dst := make([]byte, len(src))
	sum := unlockShuffle[((key>>24)+(key>>16)+(key>>8)+key)&0xf]

	ring := uint32(16)
	next := func() uint32 {
		d := sum + (key >> ring) + unlockShuffle[(key>>ring)&0xf]
		if ring == 0 {
			ring = 16
		} else {
			ring -= 4
		}
		return d
	}

	for i, b := range src {
		upper := uint32(b>>4) - next()
		lower := uint32(b) - next()
		dst[i] = byte((upper<<4)&0xf0 | lower&0xf)
	}
	return dst
}
