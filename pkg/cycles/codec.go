package cycles

import (
	"encoding/binary"
	"math"

	"github.com/matzehuels/trigen/pkg/errors"
)

// MarshalBinary encodes the set as a little-endian u32 cycle count followed,
// for each cycle in order, by a u16 length and that many u16 vertex ids.
func (s *Set) MarshalBinary() ([]byte, error) {
	if uint64(s.Len()) > math.MaxUint32 {
		return nil, errors.New(errors.ErrCodeOutOfRange, "cycle count %d exceeds u32", s.Len())
	}
	buf := binary.LittleEndian.AppendUint32(nil, uint32(s.Len()))
	for c := range s.All() {
		if err := errors.ValidateCodecValue("cycle length", c.Len()); err != nil {
			return nil, err
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(c.Len()))
		for _, v := range c.v {
			if err := errors.ValidateCodecValue("vertex id", v); err != nil {
				return nil, err
			}
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		}
	}
	return buf, nil
}

// UnmarshalBinary replaces the contents of s with the decoded set. Cycles
// are re-canonicalized on the way in.
func (s *Set) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errors.New(errors.ErrCodeMalformedData, "cycle set: truncated count")
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]
	out := NewSet()
	for k := uint32(0); k < count; k++ {
		if len(data) < 2 {
			return errors.New(errors.ErrCodeMalformedData, "cycle %d: truncated length", k)
		}
		n := int(binary.LittleEndian.Uint16(data))
		data = data[2:]
		if len(data) < 2*n {
			return errors.New(errors.ErrCodeMalformedData, "cycle %d: truncated vertices", k)
		}
		seq := make([]int, n)
		for i := range seq {
			seq[i] = int(binary.LittleEndian.Uint16(data[2*i:]))
		}
		data = data[2*n:]
		c, err := New(seq...)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedData, err, "cycle %d", k)
		}
		out.Add(c)
	}
	if len(data) != 0 {
		return errors.New(errors.ErrCodeMalformedData, "cycle set: %d trailing bytes", len(data))
	}
	*s = *out
	return nil
}
