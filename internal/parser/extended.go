package parser

import (
	"errors"
)

// TypeMap maps an object type code to the minimum level id at which objects
// of that type are drawn.
type TypeMap map[uint16]uint8

// TypeTable is the result of one best-effort extended table pass.
type TypeTable struct {
	Types   TypeMap
	Skipped []error // *ErrSkippedEntry per unsupported entry, or the read error that ended the pass
}

// decodeTypeTable reads one optional type-to-level table. Failures never
// abort the decode: unsupported entries are skipped, and a read that runs
// off the subfile ends the pass with the entries read so far.
//
// Entry layout:
//
//	itemSize 2: u8 type,  u8 min level
//	itemSize 3: u16 type, u8 min level
//
// Duplicate type codes overwrite earlier entries.
func decodeTypeTable(c *Cursor, name string, sec ExtendedSection) TypeTable {
	table := TypeTable{Types: make(TypeMap)}
	if !sec.Present() || sec.Size == 0 {
		return table
	}
	if sec.ItemSize == 0 {
		table.Skipped = append(table.Skipped,
			&ErrSkippedEntry{Table: name, Offset: int64(sec.Offset), ItemSize: 0})
		return table
	}

	tc, err := c.Window(int64(sec.Offset), int64(sec.Size))
	if err != nil {
		table.Skipped = append(table.Skipped, err)
		return table
	}

	count := int(sec.Size / uint32(sec.ItemSize))
	for i := 0; i < count; i++ {
		at := int64(sec.Offset) + int64(i)*int64(sec.ItemSize)
		if err := tc.Seek(at); err != nil {
			table.Skipped = append(table.Skipped, err)
			return table
		}

		var code uint16
		switch sec.ItemSize {
		case 2:
			v, err := tc.U8()
			if err != nil {
				table.Skipped = append(table.Skipped, err)
				return table
			}
			code = uint16(v)
		case 3:
			v, err := tc.U16()
			if err != nil {
				table.Skipped = append(table.Skipped, err)
				return table
			}
			code = v
		default:
			table.Skipped = append(table.Skipped,
				&ErrSkippedEntry{Table: name, Offset: at, ItemSize: sec.ItemSize})
			continue
		}

		minLevel, err := tc.U8()
		if err != nil {
			table.Skipped = append(table.Skipped, err)
			return table
		}
		table.Types[code] = minLevel
	}

	if rem := sec.Size % uint32(sec.ItemSize); rem != 0 {
		table.Skipped = append(table.Skipped, &ErrSkippedEntry{
			Table:    name,
			Offset:   int64(sec.Offset) + int64(count)*int64(sec.ItemSize),
			ItemSize: sec.ItemSize,
		})
	}
	return table
}

// SkippedEntries counts the unsupported entries in a table pass, ignoring
// the read error that may have ended it.
func (t TypeTable) SkippedEntries() int {
	n := 0
	for _, err := range t.Skipped {
		if errors.Is(err, ErrUnsupportedExtendedEntry) {
			n++
		}
	}
	return n
}
