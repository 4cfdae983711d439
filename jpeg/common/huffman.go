package common

import "fmt"

type huffEntry struct {
	value  byte
	length uint8  // Code bits resolved at this level, 0 if empty
	sub    uint16 // 1-based second-level table index for long-code prefixes
}

// HuffmanTable is a canonical JPEG Huffman table arranged as a two-level
// lookup. The first level is indexed by the next 8 bits of the stream;
// prefixes of codes longer than 8 bits point at a 256-entry second-level
// table indexed by the following 8 bits.
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte

	first  [256]huffEntry
	second [][256]huffEntry
}

// NewHuffmanTable builds a table from code length counts and symbol values
func NewHuffmanTable(bits [16]int, values []byte) (*HuffmanTable, error) {
	total := 0
	for _, n := range bits {
		if n < 0 {
			return nil, ErrInvalidDHT
		}
		total += n
	}
	if total > 256 || total > len(values) {
		return nil, fmt.Errorf("%w: %d codes, %d values", ErrInvalidDHT, total, len(values))
	}

	h := &HuffmanTable{Bits: bits, Values: values[:total]}

	code := 0
	k := 0
	for l := 1; l <= 16; l++ {
		n := bits[l-1]
		if code+n > 1<<uint(l) {
			return nil, fmt.Errorf("%w: code space overflow at length %d", ErrInvalidDHT, l)
		}
		for i := 0; i < n; i++ {
			h.insert(code, l, values[k])
			code++
			k++
		}
		code <<= 1
	}
	return h, nil
}

func (h *HuffmanTable) insert(code, length int, value byte) {
	if length <= 8 {
		shift := 8 - length
		base := code << uint(shift)
		for j := 0; j < 1<<uint(shift); j++ {
			h.first[base+j] = huffEntry{value: value, length: uint8(length)}
		}
		return
	}

	prefix := code >> uint(length-8)
	if h.first[prefix].sub == 0 {
		h.second = append(h.second, [256]huffEntry{})
		h.first[prefix].sub = uint16(len(h.second))
	}
	sub := &h.second[h.first[prefix].sub-1]

	rest := length - 8
	shift := 8 - rest
	base := (code & (1<<uint(rest) - 1)) << uint(shift)
	for j := 0; j < 1<<uint(shift); j++ {
		sub[base+j] = huffEntry{value: value, length: uint8(rest)}
	}
}

// Codes returns the canonical code of every symbol, keyed by symbol value.
// Each entry holds the code in its low bits and its length.
func (h *HuffmanTable) Codes() map[byte]HuffmanCode {
	codes := make(map[byte]HuffmanCode, len(h.Values))
	code := 0
	k := 0
	for l := 1; l <= 16; l++ {
		for i := 0; i < h.Bits[l-1]; i++ {
			codes[h.Values[k]] = HuffmanCode{Code: uint16(code), Length: l}
			code++
			k++
		}
		code <<= 1
	}
	return codes
}

// HuffmanCode is a canonical code assignment
type HuffmanCode struct {
	Code   uint16
	Length int
}

// ParseDHT parses a DHT segment payload, calling fn for every table it
// defines. class is 0 for DC/lossless tables and 1 for AC tables.
func ParseDHT(data []byte, fn func(class, id int, t *HuffmanTable) error) error {
	for len(data) > 0 {
		if len(data) < 17 {
			return ErrInvalidDHT
		}
		class := int(data[0] >> 4)
		id := int(data[0] & 0x0F)
		if class > 1 || id > 3 {
			return fmt.Errorf("%w: class %d id %d", ErrInvalidDHT, class, id)
		}

		var bits [16]int
		total := 0
		for i := 0; i < 16; i++ {
			bits[i] = int(data[1+i])
			total += bits[i]
		}
		if len(data) < 17+total {
			return ErrInvalidDHT
		}

		t, err := NewHuffmanTable(bits, data[17:17+total])
		if err != nil {
			return err
		}
		if err := fn(class, id, t); err != nil {
			return err
		}
		data = data[17+total:]
	}
	return nil
}
