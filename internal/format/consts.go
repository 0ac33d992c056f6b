// Package format decodes, checks and corrects the sectioned .tbl table format.
//
// A table is laid out as (all integers little-endian):
//
//	Offset  Size  Description
//	------  ----  ---------------------------------------------------------
//	 0x00    2    total_entries (u16)
//	 0x02    4    section_count (i32)
//	 0x06    ..   section_count x { name: C string, declared_count: i32 }
//	 ..      ..   entries until EOF: { entry_type: C string, block_size: u16,
//	              payload: block_size bytes }
//	 ..      ..   optional zero padding
//
// Decoding threads an explicit cursor: every reader takes a byte offset and
// returns the offset of the next structure.
package format

const (
	// HeaderSize is the fixed size of the table header.
	HeaderSize = 6
	// TotalEntriesOffset is the offset of the u16 entry total.
	TotalEntriesOffset = 0x00
	// SectionCountOffset is the offset of the i32 section count.
	SectionCountOffset = 0x02
	// BlockSizeSize is the width of an entry's block_size field.
	BlockSizeSize = 2
	// SectionCountSize is the width of a section's declared_count field.
	SectionCountSize = 4
	// MaxSections bounds section_count; real tables declare one or two.
	MaxSections = 256
	// MaxBlockSize is the largest payload a u16 block_size can describe.
	MaxBlockSize = 0xFFFF
)
