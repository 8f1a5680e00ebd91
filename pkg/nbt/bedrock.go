package nbt

import (
	"bytes"
	"fmt"
	"math"
)

// bedrockHeaderSize is the version and payload length fields.
const bedrockHeaderSize = 8

// DecodeBedrock decodes a Bedrock level file: an Int32 version, an Int32
// payload length and one NBT document. Bytes beyond the declared length are
// ignored. When the declared length disagrees with what the document
// actually occupied, an ErrLengthMismatch is added to the document warnings,
// or returned if opts.StrictLength is set.
func DecodeBedrock(data []byte, opts Options) (int32, *Document, error) {
	raw, err := Decompress(data, opts.Compression)
	if err != nil {
		return 0, nil, err
	}

	r := NewReader(raw, opts.ByteOrder, opts.Strings)
	version, err := r.ReadInt32()
	if err != nil {
		return 0, nil, err
	}
	length, err := r.ReadInt32()
	if err != nil {
		return 0, nil, err
	}

	payload := raw[bedrockHeaderSize:]
	if length >= 0 && int(length) <= len(payload) {
		payload = payload[:length]
	}

	pr := NewReader(payload, opts.ByteOrder, opts.Strings)
	doc, err := ReadDocument(pr, opts)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Offset += bedrockHeaderSize
		}
		return 0, nil, err
	}
	doc.Envelope = &Envelope{Version: version, PayloadLength: length}

	if consumed := pr.Offset(); int(length) != consumed {
		mismatch := &DecodeError{
			Offset: bedrockHeaderSize + consumed,
			Err:    fmt.Errorf("%w: header says %d bytes, document used %d", ErrLengthMismatch, length, consumed),
		}
		if opts.StrictLength {
			return 0, nil, mismatch
		}
		doc.Warnings = append(doc.Warnings, mismatch)
	}
	return version, doc, nil
}

// EncodeBedrock encodes doc behind a Bedrock envelope carrying version. The
// payload length is always computed; doc.Envelope is ignored.
func EncodeBedrock(version int32, doc *Document, opts Options) ([]byte, error) {
	var payload bytes.Buffer
	w := NewWriterOptions(&payload, opts.ByteOrder, opts.Strings)
	if err := WriteDocument(w, doc, opts); err != nil {
		return nil, err
	}
	if payload.Len() > math.MaxInt32 {
		return nil, &EncodeError{Err: ErrInvalidLength}
	}

	var out bytes.Buffer
	out.Grow(bedrockHeaderSize + payload.Len())
	hw := NewWriterOptions(&out, opts.ByteOrder, opts.Strings)
	hw.putInt32(version)
	hw.putInt32(int32(payload.Len()))
	hw.write(payload.Bytes())
	if err := hw.Err(); err != nil {
		return nil, err
	}
	return Compress(out.Bytes(), opts.Compression)
}
