package flat

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

const (
	magic      = "DMVF0001"
	headerSize = len(magic) + 8
)

// MarshalBinary encodes the index as an opaque blob.
func (i *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, headerSize, headerSize+len(i.data)*4)
	copy(out, magic)
	binary.LittleEndian.PutUint32(out[len(magic):], uint32(i.dim))
	binary.LittleEndian.PutUint32(out[len(magic)+4:], uint32(i.Len()))
	return append(out, EncodeVector(i.data)...), nil
}

// UnmarshalBinary restores the index from a blob written by MarshalBinary.
// Malformed input returns an error wrapping domain.ErrIndexIntegrity.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize || string(data[:len(magic)]) != magic {
		return fmt.Errorf("%w: not a flat index blob", domain.ErrIndexIntegrity)
	}
	dim := int(binary.LittleEndian.Uint32(data[len(magic):]))
	n := int(binary.LittleEndian.Uint32(data[len(magic)+4:]))
	if dim <= 0 {
		return fmt.Errorf("%w: flat index blob has dimension %d", domain.ErrIndexIntegrity, dim)
	}
	body := data[headerSize:]
	if len(body) != n*dim*4 {
		return fmt.Errorf("%w: flat index blob holds %d bytes, want %d for %d vectors of dimension %d",
			domain.ErrIndexIntegrity, len(body), n*dim*4, n, dim)
	}
	vec, err := DecodeVector(body)
	if err != nil {
		return err
	}
	i.dim = dim
	i.data = vec
	return nil
}

// Decode restores an index from a blob written by MarshalBinary.
func Decode(data []byte) (*Index, error) {
	idx := &Index{}
	if err := idx.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return idx, nil
}

// EncodeVector encodes float32 values as little-endian IEEE 754 bytes.
func EncodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for j, v := range vec {
		binary.LittleEndian.PutUint32(b[j*4:], math.Float32bits(v))
	}
	return b
}

// DecodeVector decodes bytes produced by EncodeVector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: vector blob length %d is not a multiple of 4", domain.ErrIndexIntegrity, len(b))
	}
	vec := make([]float32, len(b)/4)
	for j := range vec {
		vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[j*4:]))
	}
	return vec, nil
}
