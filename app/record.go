package main

// Record is a decoded table-leaf payload: the record header's serial types
// are resolved against their value bytes, in column order.
type Record struct {
	Values []Value
}

// DecodeRecord parses a cell payload in the record format (spec §4.5):
// varint header_length | serial_type* | value*.
func DecodeRecord(payload []byte) (*Record, error) {
	headerLen, n, ok := decodeVarint(payload)
	if !ok {
		return nil, NewDatabaseError("decode_record", ErrShortRecord, map[string]interface{}{
			"reason": "header length varint truncated",
		})
	}
	if int(headerLen) > len(payload) {
		return nil, NewDatabaseError("decode_record", ErrShortRecord, map[string]interface{}{
			"header_length": headerLen,
			"payload_bytes": len(payload),
		})
	}

	var serialTypes []uint64
	pos := n
	for pos < int(headerLen) {
		st, consumed, ok := decodeVarint(payload[pos:])
		if !ok {
			return nil, NewDatabaseError("decode_record", ErrShortRecord, map[string]interface{}{
				"reason": "serial type varint truncated",
			})
		}
		serialTypes = append(serialTypes, st)
		pos += consumed
	}
	if pos != int(headerLen) {
		return nil, NewDatabaseError("decode_record", ErrInvalidFormat, map[string]interface{}{
			"reason": "serial type list does not align with header length",
		})
	}

	values := make([]Value, 0, len(serialTypes))
	bodyPos := int(headerLen)
	for _, st := range serialTypes {
		size, ok := serialTypeSize(st)
		if !ok {
			return nil, NewDatabaseError("decode_record", ErrUnsupportedSerialType, map[string]interface{}{
				"serial_type": st,
			})
		}
		if bodyPos+size > len(payload) {
			return nil, NewDatabaseError("decode_record", ErrShortRecord, map[string]interface{}{
				"reason": "value runs past payload",
			})
		}
		v, err := decodeSerialValue(st, payload[bodyPos:bodyPos+size])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		bodyPos += size
	}

	return &Record{Values: values}, nil
}

// ColumnValue returns the value at the given 0-based column index,
// substituting rowid when the stored value is the NULL placeholder SQLite
// writes for an INTEGER PRIMARY KEY alias column (spec §4.5, rowid aliasing
// edge case). isRowidAlias is decided by the schema layer from the CREATE
// TABLE column definition, not from the record itself.
func (r *Record) ColumnValue(index int, rowID int64, isRowidAlias bool) (Value, error) {
	if index < 0 || index >= len(r.Values) {
		if isRowidAlias {
			return IntValue(rowID), nil
		}
		return Value{}, NewDatabaseError("column_value", ErrUnknownColumn, map[string]interface{}{
			"index": index,
		})
	}
	v := r.Values[index]
	if isRowidAlias && v.Kind == KindNull {
		return IntValue(rowID), nil
	}
	return v, nil
}
