package explorer

import (
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
)

// Format is the container a file was recognised as.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatJava    Format = "java"
	FormatBedrock Format = "bedrock"
	FormatRegion  Format = "region"
)

const regionSector = 4096

// Sniff guesses the container of data from its leading bytes.
//
// Compressed input is always Java edition. A Bedrock file starts with two
// little-endian Int32 fields followed by a compound tag, where the second
// field fits in the rest of the file. Region files are whole 4 KiB sectors
// with at least the two header sectors. Anything starting with a compound
// tag type is taken as uncompressed Java edition NBT.
func Sniff(data []byte) Format {
	if nbt.DetectCompression(data) != nbt.CompressionNone {
		return FormatJava
	}
	if len(data) > 8 && data[8] == byte(nbt.TagCompound) {
		length := int64(int32(binary.LittleEndian.Uint32(data[4:8])))
		if length > 0 && length <= int64(len(data)-8) {
			return FormatBedrock
		}
	}
	if len(data) >= 2*regionSector && len(data)%regionSector == 0 {
		return FormatRegion
	}
	if len(data) > 0 && data[0] == byte(nbt.TagCompound) {
		return FormatJava
	}
	return FormatUnknown
}

// sniffPath prefers the file extension for region files, which can
// otherwise be mistaken for other formats when the header is sparse.
func sniffPath(path string, data []byte) Format {
	if strings.EqualFold(filepath.Ext(path), ".mca") {
		return FormatRegion
	}
	return Sniff(data)
}
