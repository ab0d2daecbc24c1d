package dex

type Header struct {
	Magic         [8]byte
	Checksum      uint32
	Signature     [20]byte
	FileSize      uint32
	HeaderSize    uint32
	EndianTag     uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

// Version returns the three-digit format version from the magic, e.g. "035".
func (h *Header) Version() string {
	return string(h.Magic[4:7])
}

// File is a parsed DEX image with every id table resolved to strings.
type File struct {
	Header  Header
	Strings []string
	Types   []string
	Protos  []Proto
	Fields  []FieldID
	Methods []MethodID
	Classes []*ClassDef
}
