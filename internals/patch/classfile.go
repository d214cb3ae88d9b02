package patch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const classMagic = 0xCAFEBABE

const tagUtf8 = 1

// payload size of every constant pool entry but Utf8
var constantSizes = map[byte]int{
	3:  4, // Integer
	4:  4, // Float
	5:  8, // Long
	6:  8, // Double
	7:  2, // Class
	8:  2, // String
	9:  4, // Fieldref
	10: 4, // Methodref
	11: 4, // InterfaceMethodref
	12: 4, // NameAndType
	15: 3, // MethodHandle
	16: 2, // MethodType
	17: 4, // Dynamic
	18: 4, // InvokeDynamic
	19: 2, // Module
	20: 2, // Package
}

var errTruncatedClass = errors.New("truncated class file")

// rewriteClass replaces strings in the constant pool of a class file. String
// constants are length prefixed, the rest of the class does not reference the
// pool by offset, so it is copied as is.
func rewriteClass(data []byte, replace func(string) string) ([]byte, bool, error) {
	if len(data) < 10 || binary.BigEndian.Uint32(data) != classMagic {
		return nil, false, errors.New("not a class file")
	}

	count := int(binary.BigEndian.Uint16(data[8:10]))
	out := bytes.NewBuffer(make([]byte, 0, len(data)))
	out.Write(data[:10])

	changed := false
	pos := 10
	var length [2]byte
	// pool indices start at 1
	for i := 1; i < count; i++ {
		if pos >= len(data) {
			return nil, false, errTruncatedClass
		}
		tag := data[pos]

		if tag == tagUtf8 {
			if pos+3 > len(data) {
				return nil, false, errTruncatedClass
			}
			end := pos + 3 + int(binary.BigEndian.Uint16(data[pos+1:pos+3]))
			if end > len(data) {
				return nil, false, errTruncatedClass
			}
			value := string(data[pos+3 : end])
			replaced := replace(value)
			if replaced != value {
				if len(replaced) > 0xFFFF {
					return nil, false, fmt.Errorf("constant #%d is too long after replacing", i)
				}
				changed = true
			}
			binary.BigEndian.PutUint16(length[:], uint16(len(replaced)))
			out.WriteByte(tagUtf8)
			out.Write(length[:])
			out.WriteString(replaced)
			pos = end
			continue
		}

		size, ok := constantSizes[tag]
		if !ok {
			return nil, false, fmt.Errorf("unknown constant pool tag %d at #%d", tag, i)
		}
		if pos+1+size > len(data) {
			return nil, false, errTruncatedClass
		}
		out.Write(data[pos : pos+1+size])
		pos += 1 + size
		// long and double take two slots
		if tag == 5 || tag == 6 {
			i++
		}
	}
	out.Write(data[pos:])

	return out.Bytes(), changed, nil
}
