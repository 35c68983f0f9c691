package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// largeRead is the size above which readBytes copies incrementally, so a
// hostile length field cannot force a huge allocation up front.
const largeRead = 1 << 16

type reader struct {
	r   io.Reader
	err error

	// body is set when the reader walks an attribute body held in memory.
	body *bytes.Reader
}

func newBodyReader(info []byte) *reader {
	br := bytes.NewReader(info)
	return &reader{r: br, body: br}
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n <= largeRead {
		buf := make([]byte, n)
		_, r.err = io.ReadFull(r.r, buf)
		return buf
	}
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.r, int64(n))
	if err == io.EOF && copied < int64(n) {
		err = io.ErrUnexpectedEOF
	}
	r.err = err
	return buf.Bytes()
}

func (r *reader) readU2s() []uint16 {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = r.readU2()
	}
	return out
}

// failure describes the sticky error. Running out of bytes inside an
// attribute body means its declared length was wrong, which is a format
// error; running out of the file itself is an I/O error.
func (r *reader) failure(what string) error {
	var fe *FormatError
	if errors.As(r.err, &fe) {
		return r.err
	}
	if r.body != nil {
		return corruptf("%s truncated: %v", what, r.err)
	}
	return fmt.Errorf("read %s: %w", what, r.err)
}

// finish reports a body that was truncated or not fully consumed.
func (r *reader) finish(name string) error {
	if r.err != nil {
		return r.failure(name + " attribute")
	}
	if r.body != nil && r.body.Len() != 0 {
		return corruptf("%s attribute has %d trailing bytes", name, r.body.Len())
	}
	return nil
}

type writer struct {
	buf []byte
}

func (w *writer) u1(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u2(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *writer) u4(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) u2s(vs []uint16) {
	w.u2(uint16(len(vs)))
	for _, v := range vs {
		w.u2(v)
	}
}

func decodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	i := 0
	for i < len(bytes) {
		b := bytes[i]
		if b&0x80 == 0 {
			runes = append(runes, rune(b))
			i++
		} else if b&0xE0 == 0xC0 {
			if i+1 >= len(bytes) {
				break
			}
			r := rune(b&0x1F)<<6 | rune(bytes[i+1]&0x3F)
			runes = append(runes, r)
			i += 2
		} else if b&0xF0 == 0xE0 {
			if i+2 >= len(bytes) {
				break
			}
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(bytes) && bytes[i+3] == 0xED {
				low := rune(bytes[i+3]&0x0F)<<12 | rune(bytes[i+4]&0x3F)<<6 | rune(bytes[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		} else {
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}

// encodeModifiedUtf8 is the inverse of decodeModifiedUtf8: NUL becomes two
// bytes and supplementary characters become surrogate pairs.
func encodeModifiedUtf8(s string) []byte {
	out := make([]byte, 0, len(s))
	put3 := func(r rune) {
		out = append(out, byte(0xE0|(r>>12)), byte(0x80|((r>>6)&0x3F)), byte(0x80|(r&0x3F)))
	}
	for _, r := range s {
		switch {
		case r != 0 && r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, byte(0xC0|(r>>6)), byte(0x80|(r&0x3F)))
		case r < 0x10000:
			put3(r)
		default:
			r -= 0x10000
			put3(0xD800 + (r >> 10))
			put3(0xDC00 + (r & 0x3FF))
		}
	}
	return out
}
