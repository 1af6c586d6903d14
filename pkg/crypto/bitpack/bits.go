// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedshare.
//
// go-seedshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package bitpack

import "fmt"

// Writer accumulates bit fields of arbitrary width, MSB first.
type Writer struct {
	buf   []byte
	acc   uint64
	nbits int
	total int
}

// NewWriter returns a Writer with capacity for sizeHint bits.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, ByteCount(sizeHint))}
}

// WriteBits appends the low n bits of v. n must be in [0, 32].
func (w *Writer) WriteBits(v uint32, n int) {
	if n < 0 || n > 32 {
		panic(fmt.Sprintf("bitpack: invalid field width %d", n))
	}
	if n == 0 {
		return
	}
	w.acc = w.acc<<uint(n) | uint64(v)&(1<<uint(n)-1)
	w.nbits += n
	w.total += n
	for w.nbits >= 8 {
		w.nbits -= 8
		w.buf = append(w.buf, byte(w.acc>>uint(w.nbits)))
	}
	w.acc &= 1<<uint(w.nbits) - 1
}

// WriteBytes appends every bit of p.
func (w *Writer) WriteBytes(p []byte) {
	for _, b := range p {
		w.WriteBits(uint32(b), 8)
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return w.total
}

// Bytes returns a copy of the written bits with the final partial byte
// zero padded. The Writer remains usable.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf), ByteCount(w.total))
	copy(out, w.buf)
	if w.nbits > 0 {
		out = append(out, byte(w.acc<<uint(8-w.nbits)))
	}
	return out
}

// Reader consumes bit fields of arbitrary width, MSB first.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// ReadBits returns the next n bits as the low bits of the result.
// n must be in [0, 32].
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("bitpack: invalid field width %d", n)
	}
	if n > r.Remaining() {
		return 0, fmt.Errorf("%w: want %d, have %d", ErrShortRead, n, r.Remaining())
	}
	var v uint32
	for n > 0 {
		byteIdx := r.pos / 8
		bitOff := r.pos % 8
		avail := 8 - bitOff
		take := avail
		if take > n {
			take = n
		}
		chunk := uint32(r.data[byteIdx]) >> uint(avail-take) & (1<<uint(take) - 1)
		v = v<<uint(take) | chunk
		r.pos += take
		n -= take
	}
	return v, nil
}

// ReadBytes reads n whole bytes, which need not be byte aligned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n*8 > r.Remaining() {
		return nil, fmt.Errorf("%w: want %d bytes, have %d bits", ErrShortRead, n, r.Remaining())
	}
	out := make([]byte, n)
	for i := range out {
		v, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}
