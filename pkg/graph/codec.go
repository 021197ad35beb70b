package graph

import (
	"encoding/binary"

	"github.com/matzehuels/trigen/pkg/errors"
)

// opTags maps op kinds to their 2-byte codec tags.
var opTags = map[OpKind][2]byte{
	OpAddVertex: {'v', ' '},
	OpAddEdge:   {'e', ' '},
	OpDelEdge:   {'d', ' '},
}

// MarshalBinary encodes h in the little-endian history format.
func (h History) MarshalBinary() ([]byte, error) {
	if err := errors.ValidateTag(h.Root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutOfRange, err, "root tag")
	}
	if err := errors.ValidateCodecValue("transformation count", len(h.Steps)); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 4+len(h.Steps)*16)
	buf = append(buf, h.Root...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(h.Steps)))
	for _, t := range h.Steps {
		if err := errors.ValidateTag(string(t.Algorithm)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeOutOfRange, err, "algorithm tag")
		}
		if err := errors.ValidateCodecValue("operation count", len(t.Ops)); err != nil {
			return nil, err
		}
		buf = append(buf, t.Algorithm...)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(t.Ops)))
		for _, op := range t.Ops {
			tag, ok := opTags[op.Kind]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "unknown op kind %q", rune(op.Kind))
			}
			buf = append(buf, tag[:]...)
			if op.Kind == OpAddVertex {
				continue
			}
			if err := errors.ValidateCodecValue("vertex id", op.I); err != nil {
				return nil, err
			}
			if err := errors.ValidateCodecValue("vertex id", op.J); err != nil {
				return nil, err
			}
			buf = binary.LittleEndian.AppendUint16(buf, uint16(op.I))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(op.J))
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes the little-endian history format into h.
// On error h is left unchanged.
func (h *History) UnmarshalBinary(data []byte) error {
	r := reader{data: data}
	root := r.tag()
	count := r.u16()
	if r.err != nil {
		return r.err
	}

	out := History{Root: root}
	if count > 0 {
		out.Steps = make([]Transformation, 0, count)
	}
	for n := 0; n < int(count); n++ {
		t := Transformation{Algorithm: Algorithm(r.tag())}
		nops := r.u16()
		if r.err != nil {
			return r.err
		}
		t.Ops = make([]Op, 0, nops)
		for k := 0; k < int(nops); k++ {
			tag := r.tag()
			if r.err != nil {
				return r.err
			}
			op, err := decodeOp(tag)
			if err != nil {
				return err
			}
			if op.Kind != OpAddVertex {
				op.I = int(r.u16())
				op.J = int(r.u16())
				if r.err != nil {
					return r.err
				}
			}
			t.Ops = append(t.Ops, op)
		}
		out.Steps = append(out.Steps, t)
	}
	if r.pos != len(data) {
		return errors.New(errors.ErrCodeMalformedData, "history has %d trailing bytes", len(data)-r.pos)
	}
	*h = out
	return nil
}

func decodeOp(tag string) (Op, error) {
	for kind, t := range opTags {
		if string(t[:]) == tag {
			return Op{Kind: kind}, nil
		}
	}
	return Op{}, errors.New(errors.ErrCodeMalformedData, "unknown op tag %q", tag)
}

// reader is a sticky-error cursor over a byte slice.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = errors.New(errors.ErrCodeMalformedData,
			"truncated at byte %d: need %d more, have %d", r.pos, n, len(r.data)-r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) tag() string {
	b := r.take(2)
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}
