// Package ico encodes multi-resolution Windows icon files whose entries hold
// PNG-compressed images, and decodes their directory for inspection.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
)

const (
	headerSize = 6
	entrySize  = 16

	// typeIcon is the ICONDIR type value for .ico (2 would be .cur).
	typeIcon = 1

	// MaxSize is the largest edge an entry can describe.
	MaxSize = 256
)

// ErrNoImages is returned by Encode when given an empty image list.
var ErrNoImages = errors.New("ico: no images to encode")

// Entry is one ICONDIRENTRY as read from a file.
type Entry struct {
	Width    int
	Height   int
	Planes   uint16
	BitCount uint16
	Size     uint32
	Offset   uint32
}

// header mirrors the on-disk ICONDIR.
type header struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

// dirEntry mirrors the on-disk ICONDIRENTRY.
type dirEntry struct {
	Width    uint8
	Height   uint8
	Colors   uint8
	Reserved uint8
	Planes   uint16
	BitCount uint16
	Size     uint32
	Offset   uint32
}

// Encode writes images as a single .ico to w. Entries keep the order of
// images. Each image must be square and no larger than MaxSize.
func Encode(w io.Writer, images []image.Image) error {
	if len(images) == 0 {
		return ErrNoImages
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	payloads := make([][]byte, len(images))
	dims := make([]int, len(images))
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return fmt.Errorf("ico: image %d is %dx%d, want square", i, b.Dx(), b.Dy())
		}
		if b.Dx() <= 0 || b.Dx() > MaxSize {
			return fmt.Errorf("ico: image %d size %d out of range 1..%d", i, b.Dx(), MaxSize)
		}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, img); err != nil {
			return fmt.Errorf("ico: encoding image %d: %w", i, err)
		}
		payloads[i] = buf.Bytes()
		dims[i] = b.Dx()
	}

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, header{Type: typeIcon, Count: uint16(len(images))}); err != nil {
		return err
	}

	offset := uint32(headerSize + entrySize*len(images))
	for i, p := range payloads {
		e := dirEntry{
			Width:    sizeByte(dims[i]),
			Height:   sizeByte(dims[i]),
			Planes:   1,
			BitCount: 32,
			Size:     uint32(len(p)),
			Offset:   offset,
		}
		if err := binary.Write(&out, binary.LittleEndian, e); err != nil {
			return err
		}
		offset += uint32(len(p))
	}
	for _, p := range payloads {
		out.Write(p)
	}

	_, err := w.Write(out.Bytes())
	return err
}

// DecodeDir reads the ICONDIR header and entries from r.
func DecodeDir(r io.Reader) ([]Entry, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("ico: reading header: %w", err)
	}
	if h.Reserved != 0 || h.Type != typeIcon {
		return nil, fmt.Errorf("ico: not an icon file (reserved=%d type=%d)", h.Reserved, h.Type)
	}

	entries := make([]Entry, 0, h.Count)
	for i := 0; i < int(h.Count); i++ {
		var e dirEntry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return nil, fmt.Errorf("ico: reading entry %d: %w", i, err)
		}
		entries = append(entries, Entry{
			Width:    edge(e.Width),
			Height:   edge(e.Height),
			Planes:   e.Planes,
			BitCount: e.BitCount,
			Size:     e.Size,
			Offset:   e.Offset,
		})
	}
	return entries, nil
}

// DecodeImage extracts the PNG payload of entry e from an in-memory icon file.
func DecodeImage(data []byte, e Entry) (image.Image, error) {
	end := uint64(e.Offset) + uint64(e.Size)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("ico: entry data [%d:%d] beyond file length %d", e.Offset, end, len(data))
	}
	return png.Decode(bytes.NewReader(data[e.Offset:end]))
}

// sizeByte stores 256 as 0, as the format requires.
func sizeByte(n int) uint8 {
	if n >= MaxSize {
		return 0
	}
	return uint8(n)
}

func edge(b uint8) int {
	if b == 0 {
		return MaxSize
	}
	return int(b)
}
