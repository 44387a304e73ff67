// Package testutil builds image fixtures for tests: JPEGs with hand-assembled EXIF
// segments and small directory trees.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Rational is an unsigned EXIF rational
type Rational struct {
	Num, Den uint32
}

// DMS builds a degrees/minutes/seconds triplet
func DMS(deg, min, sec uint32) []Rational {
	return []Rational{{deg, 1}, {min, 1}, {sec, 1}}
}

// EXIF lists the tags written into a fixture; zero values are left out
type EXIF struct {
	Orientation int
	DateTime    string
	Latitude    []Rational
	Longitude   []Rational
}

const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5

	tagOrientation  = 0x0112
	tagDateTime     = 0x0132
	tagGPSPointer   = 0x8825
	tagGPSLatRef    = 0x0001
	tagGPSLatitude  = 0x0002
	tagGPSLonRef    = 0x0003
	tagGPSLongitude = 0x0004
)

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

var le = binary.LittleEndian

// TIFF encodes the tags as a little-endian TIFF structure as found after "Exif\0\0"
func (x *EXIF) TIFF() []byte {
	var ifd0 []entry
	if x.Orientation != 0 {
		v := make([]byte, 2)
		le.PutUint16(v, uint16(x.Orientation))
		ifd0 = append(ifd0, entry{tagOrientation, typeShort, 1, v})
	}
	if x.DateTime != "" {
		s := append([]byte(x.DateTime), 0)
		ifd0 = append(ifd0, entry{tagDateTime, typeASCII, uint32(len(s)), s})
	}

	var gps []entry
	if x.Latitude != nil {
		gps = append(gps, entry{tagGPSLatRef, typeASCII, 2, []byte("N\x00")})
		gps = append(gps, entry{tagGPSLatitude, typeRational, uint32(len(x.Latitude)), rationals(x.Latitude)})
	}
	if x.Longitude != nil {
		gps = append(gps, entry{tagGPSLonRef, typeASCII, 2, []byte("E\x00")})
		gps = append(gps, entry{tagGPSLongitude, typeRational, uint32(len(x.Longitude)), rationals(x.Longitude)})
	}

	if len(gps) > 0 {
		// pointer value is patched once the size of IFD0 is known
		ifd0 = append(ifd0, entry{tagGPSPointer, typeLong, 1, make([]byte, 4)})
	}

	const headerLen = 8
	ifd0Bytes := encodeIFD(ifd0, headerLen)
	if len(gps) > 0 {
		gpsOffset := uint32(headerLen + len(ifd0Bytes))
		le.PutUint32(ifd0[len(ifd0)-1].data, gpsOffset)
		ifd0Bytes = encodeIFD(ifd0, headerLen)
		ifd0Bytes = append(ifd0Bytes, encodeIFD(gps, gpsOffset)...)
	}

	out := []byte{'I', 'I', 42, 0, 0, 0, 0, 0}
	le.PutUint32(out[4:], headerLen)
	return append(out, ifd0Bytes...)
}

// encodeIFD lays out one IFD at offset followed by its out-of-line values
func encodeIFD(entries []entry, offset uint32) []byte {
	dirLen := 2 + 12*len(entries) + 4
	dir := make([]byte, dirLen)
	var extra []byte

	le.PutUint16(dir, uint16(len(entries)))
	for i, e := range entries {
		p := dir[2+12*i:]
		le.PutUint16(p[0:], e.tag)
		le.PutUint16(p[2:], e.typ)
		le.PutUint32(p[4:], e.count)
		if len(e.data) <= 4 {
			copy(p[8:12], e.data)
			continue
		}
		le.PutUint32(p[8:], offset+uint32(dirLen+len(extra)))
		extra = append(extra, e.data...)
		if len(extra)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	// next IFD offset stays zero
	return append(dir, extra...)
}

func rationals(rs []Rational) []byte {
	b := make([]byte, 8*len(rs))
	for i, r := range rs {
		le.PutUint32(b[8*i:], r.Num)
		le.PutUint32(b[8*i+4:], r.Den)
	}
	return b
}

// Fill returns the color of pixel (x, y)
type Fill func(x, y int) color.Color

// Solid fills the whole image with one color
func Solid(c color.Color) Fill {
	return func(int, int) color.Color { return c }
}

// HalvesLeftRight paints the left half left and the right half right
func HalvesLeftRight(w int, left, right color.Color) Fill {
	return func(x, _ int) color.Color {
		if x < w/2 {
			return left
		}
		return right
	}
}

// Image renders a w x h image with fill
func Image(w, h int, fill Fill) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill(x, y))
		}
	}
	return img
}

// JPEG encodes a w x h image and splices an APP1 EXIF segment after SOI when x is not nil
func JPEG(w, h int, fill Fill, x *EXIF) []byte {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, Image(w, h, fill), &jpeg.Options{Quality: 100}); err != nil {
		panic("failed to create test JPEG: " + err.Error())
	}
	data := buf.Bytes()
	if x == nil {
		return data
	}

	payload := append([]byte("Exif\x00\x00"), x.TIFF()...)
	app1 := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(app1[2:], uint16(len(payload)+2))
	app1 = append(app1, payload...)

	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...) // SOI
	out = append(out, app1...)
	return append(out, data[2:]...)
}

// PNG encodes a w x h image, PNG files carry no EXIF block
func PNG(w, h int, fill Fill) []byte {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, Image(w, h, fill)); err != nil {
		panic("failed to create test PNG: " + err.Error())
	}
	return buf.Bytes()
}

// WriteFile writes data at root/rel, creating parent directories, and returns the full path
func WriteFile(t testing.TB, root, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
