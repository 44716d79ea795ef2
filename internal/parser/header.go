package parser

// TRE header field offsets, relative to the start of the subfile.
const (
	offSignature   = 0x02
	offLocked      = 0x0D
	offBounds      = 0x15 // center lon/lat int24, half width/height uint24
	offLevels      = 0x21 // level table offset u32, size u32
	offSubdivs     = 0x29 // subdivision table offset u32, size u32
	offPolygonExt  = 0x54 // {offset u32, size u32, itemSize u16}
	offPointExt    = 0x62
	offUnlockKey   = 0xAA
	extDescLen     = 10
	minHeaderLen   = 0x31
	signature      = "GARMIN TRE"
	maxLevelRecord = 64 // level records per table, including ones past the last marker
)

// ExtendedSection locates an optional type-to-level table. A zero value
// means the table is absent.
type ExtendedSection struct {
	Offset   uint32
	Size     uint32
	ItemSize uint16
}

// Present reports whether the descriptor points at a table.
func (e ExtendedSection) Present() bool {
	return e.Offset != 0 || e.Size != 0 || e.ItemSize != 0
}

// Header holds the fixed TRE header fields the decoders depend on.
type Header struct {
	Length  uint16
	Locked  bool
	Key     uint32 // level table unlock key, valid when Locked
	Bounds  Rect
	Levels  Section
	Subdivs Section
	Polygon ExtendedSection
	Point   ExtendedSection
}

// Section is an {offset, size} pair pointing at a table in the subfile.
type Section struct {
	Offset uint32
	Size   uint32
}

// decodeHeader reads the TRE header at the start of the subfile.
//
// Header layout (little-endian):
//
//	0x00 u16   header length
//	0x02 [10]  "GARMIN TRE"
//	0x0D u8    locked flag
//	0x15 i24   center longitude, i24 center latitude
//	0x1B u24   half width, u24 half height
//	0x21 u32   level table offset, u32 size
//	0x29 u32   subdivision table offset, u32 size
//	0x54 [10]  polygon extended descriptor (header length >= 0x5E)
//	0x62 [10]  point extended descriptor (header length >= 0x6C)
//	0xAA u32   unlock key (header length >= 0xAE)
func decodeHeader(c *Cursor) (*Header, error) {
	hdr := &Header{}

	length, err := c.U16At(0)
	if err != nil {
		return nil, tableError("header", 0, ErrMalformedHeader, "header length", err)
	}
	hdr.Length = length
	if length < minHeaderLen || int64(length) > c.Size() {
		return nil, tableError("header", 0, ErrMalformedHeader,
			"unusable header length", nil)
	}

	// All header reads stay inside the declared header.
	hc, err := c.Window(0, int64(length))
	if err != nil {
		return nil, tableError("header", 0, ErrMalformedHeader, "", err)
	}

	if err := hc.Seek(offSignature); err != nil {
		return nil, tableError("header", offSignature, ErrMalformedHeader, "", err)
	}
	sig, err := hc.Bytes(len(signature))
	if err != nil {
		return nil, tableError("header", offSignature, ErrMalformedHeader, "signature", err)
	}
	if string(sig) != signature {
		return nil, tableError("header", offSignature, ErrMalformedHeader,
			"missing "+signature+" signature", nil)
	}

	locked, err := hc.U8At(offLocked)
	if err != nil {
		return nil, tableError("header", offLocked, ErrMalformedHeader, "locked flag", err)
	}
	hdr.Locked = locked != 0

	if err := hc.Seek(offBounds); err != nil {
		return nil, tableError("header", offBounds, ErrMalformedHeader, "", err)
	}
	bounds, err := readCenteredRect(hc, 0)
	if err != nil {
		return nil, tableError("header", offBounds, ErrMalformedHeader, "global bounds", err)
	}
	hdr.Bounds = bounds

	// Level and subdivision section pointers follow the bounds directly.
	if hdr.Levels, err = readSection(hc); err != nil {
		return nil, tableError("header", offLevels, ErrMalformedHeader, "level section", err)
	}
	if hdr.Subdivs, err = readSection(hc); err != nil {
		return nil, tableError("header", offSubdivs, ErrMalformedHeader, "subdivision section", err)
	}

	if length >= offPolygonExt+extDescLen {
		if hdr.Polygon, err = readExtendedSection(hc, offPolygonExt); err != nil {
			return nil, tableError("header", offPolygonExt, ErrMalformedHeader, "polygon descriptor", err)
		}
	}
	if length >= offPointExt+extDescLen {
		if hdr.Point, err = readExtendedSection(hc, offPointExt); err != nil {
			return nil, tableError("header", offPointExt, ErrMalformedHeader, "point descriptor", err)
		}
	}

	if hdr.Locked {
		if length < offUnlockKey+4 {
			return nil, tableError("levels", offUnlockKey, ErrMalformedLevelTable,
				"locked archive without unlock key", nil)
		}
		if hdr.Key, err = hc.U32At(offUnlockKey); err != nil {
			return nil, tableError("header", offUnlockKey, ErrMalformedHeader, "unlock key", err)
		}
	}

	return hdr, nil
}

// readCenteredRect reads a center point and half extents and returns the
// rectangle center ± extents. Half extents are scaled by shift.
//
// Used for the header bounds, where extents are uint24 and unscaled.
func readCenteredRect(c *Cursor, shift uint) (Rect, error) {
	lon, err := c.I24()
	if err != nil {
		return Rect{}, err
	}
	lat, err := c.I24()
	if err != nil {
		return Rect{}, err
	}
	halfW, err := c.U24()
	if err != nil {
		return Rect{}, err
	}
	halfH, err := c.U24()
	if err != nil {
		return Rect{}, err
	}
	return centered(lon, lat, int64(halfW)<<shift, int64(halfH)<<shift), nil
}

func readSection(c *Cursor) (Section, error) {
	off, err := c.U32()
	if err != nil {
		return Section{}, err
	}
	size, err := c.U32()
	if err != nil {
		return Section{}, err
	}
	return Section{Offset: off, Size: size}, nil
}

func readExtendedSection(c *Cursor, at int64) (ExtendedSection, error) {
	if err := c.Seek(at); err != nil {
		return ExtendedSection{}, err
	}
	sec, err := readSection(c)
	if err != nil {
		return ExtendedSection{}, err
	}
	itemSize, err := c.U16()
	if err != nil {
		return ExtendedSection{}, err
	}
	return ExtendedSection{Offset: sec.Offset, Size: sec.Size, ItemSize: itemSize}, nil
}
