// Package bitarray provides utilities for operating on densely-packed arrays of
// booleans.
package bitarray

import (
	"fmt"
	"math/bits"
	"math/rand"
	"strings"
)

// TODO: this could be more efficient on many architectures if we used larger
//   blocks than 8-bit bytes.

// A Dense is a bit array where every bit is explicitly represented.
type Dense struct {
	bits []byte
	len  int
}

const blockSize = 8

// NewDense returns a new Dense whose data is a copy of data, and whose length
// is bitLen. If bitLen is longer than data, then trailing zeros are added. If
// bitLen is negative, then it is inferred from data.
func NewDense(data []byte, bitLen int) Dense {
	if bitLen < 0 {
		bitLen = len(data) * blockSize
	}
	b := make([]byte, BytesFor(bitLen))
	copy(b, data)
	d := Dense{bits: b, len: bitLen}
	d.clearTail()
	return d
}

// Empty returns an empty, dense bit array.
func Empty() Dense {
	return Dense{}
}

// Random returns a Dense of n bits drawn independently and uniformly from rng.
// n <= 0 yields an empty array.
func Random(n int, rng *rand.Rand) Dense {
	if n <= 0 {
		return Empty()
	}
	buf := make([]byte, BytesFor(n))
	rng.Read(buf)
	return NewDense(buf, n)
}

// FromString converts a string of '1's and '0's to a Dense, ignoring spaces.
func FromString(s string) (Dense, error) {
	d := Dense{}
	for _, c := range s {
		switch c {
		case '1':
			d.AppendBit(true)
		case '0':
			d.AppendBit(false)
		case ' ':
			continue
		default:
			return Dense{}, fmt.Errorf("invalid bit string rep: %q", s)
		}
	}
	return d, nil
}

// Size returns the number of bits in d.
func (d Dense) Size() int {
	return d.len
}

// ByteSize returns the number of bytes necessary to represent d.
func (d Dense) ByteSize() int {
	return BytesFor(d.len)
}

// Data returns a copy of the bytes data underlying d.
func (d Dense) Data() []byte {
	data := make([]byte, len(d.bits))
	copy(data, d.bits)
	return data
}

// Get returns the bit at idx. Reads past the end of d return false.
func (d Dense) Get(idx int) bool {
	if idx < 0 || idx >= d.len {
		return false
	}
	return 0 < d.bits[idx/blockSize]&(1<<(idx%blockSize))
}

// AppendBit adds a single bit to the end of d.
func (d *Dense) AppendBit(bit bool) {
	pos := d.len % blockSize
	d.len++
	if pos == 0 {
		d.bits = append(d.bits, 0)
	}
	if bit {
		d.bits[len(d.bits)-1] |= 1 << pos
	}
}

// And computes a bitwise AND operation between d and other. If one of the two
// is shorter than the other, then trailing 0s are implicitly added to make the
// sizes match.
func (d Dense) And(other Dense) Dense {
	short := other
	if d.len < other.len {
		short = d
	}
	r := Dense{
		bits: make([]byte, 0, BytesFor(short.len)),
		len:  short.len,
	}
	for i := range short.bits {
		r.bits = append(r.bits, d.byteAt(i)&other.byteAt(i))
	}
	return r
}

// XOr computes a bitwise XOR operation between d and other. If one of the two
// is shorter than the other, then trailing 0s are implicitly added to make the
// sizes match.
func (d Dense) XOr(other Dense) Dense {
	long := d
	if d.len < other.len {
		long = other
	}
	r := Dense{
		bits: make([]byte, 0, BytesFor(long.len)),
		len:  long.len,
	}
	for i := range long.bits {
		r.bits = append(r.bits, d.byteAt(i)^other.byteAt(i))
	}
	return r
}

// XNor computes a bitwise equality operation between d and other. If one of the
// two is shorter than the other, then trailing 0s are implicitly added to make
// the sizes match.
func (d Dense) XNor(other Dense) Dense {
	long := d
	if d.len < other.len {
		long = other
	}
	r := Dense{
		bits: make([]byte, 0, BytesFor(long.len)),
		len:  long.len,
	}
	for i := range long.bits {
		r.bits = append(r.bits, ^d.byteAt(i)^other.byteAt(i))
	}
	r.clearTail()
	return r
}

// CountOnes returns the total number of bits set in d.
func (d Dense) CountOnes() int {
	var sum int
	for _, b := range d.bits {
		sum += bits.OnesCount8(b)
	}
	return sum
}

// Select selects a subset of bits from d, according to which bits are set in
// mask.
func (d Dense) Select(mask Dense) Dense {
	var r Dense
	for i := 0; i < d.len; i++ {
		if !mask.Get(i) {
			continue
		}
		r.AppendBit(d.Get(i))
	}
	return r
}

// String renders d as a string of '0's and '1's, lowest index first.
func (d Dense) String() string {
	var sb strings.Builder
	for i := 0; i < d.len; i++ {
		if d.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// BytesFor returns the number of bytes needed to hold n bits.
func BytesFor(n int) int {
	return (n + blockSize - 1) / blockSize
}

// clearTail zeroes the unused high bits of the final block, so that bytewise
// operations like CountOnes and Data never observe garbage past len.
func (d *Dense) clearTail() {
	if d.len%blockSize == 0 || len(d.bits) == 0 {
		return
	}
	overdraw := blockSize - d.len%blockSize
	d.bits[len(d.bits)-1] = d.bits[len(d.bits)-1] << overdraw >> overdraw
}

func (d Dense) byteAt(i int) byte {
	if i >= len(d.bits) {
		return 0
	}
	return d.bits[i]
}
