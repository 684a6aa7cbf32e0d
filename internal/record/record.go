// Package record encodes and decodes the log entries written by the
// storage engine. A record is one of two tagged variants, Set or Remove,
// serialized as a self-delimiting JSON object so a stream of concatenated
// records can be decoded without any separator between them.
package record

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind tags which variant a Record carries.
type Kind string

const (
	KindSet    Kind = "set"
	KindRemove Kind = "remove"
)

// Record is a single log entry: either Set{Key,Value} or Remove{Key}.
// Value is only meaningful when Kind == KindSet.
type Record struct {
	Kind  Kind   `json:"kind"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Set builds a Set record.
func Set(key, value string) Record {
	return Record{Kind: KindSet, Key: key, Value: value}
}

// Remove builds a Remove record.
func Remove(key string) Record {
	return Record{Kind: KindRemove, Key: key}
}

// Encode serializes a record to its on-disk byte representation.
func Encode(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("record: encode: %w", err)
	}
	return data, nil
}

// Decoder reads a sequence of concatenated records from a stream, reporting
// the byte offset at which each record began.
type Decoder struct {
	json *json.Decoder
}

// NewDecoder wraps r in a record Decoder. r is consumed as a stream of
// concatenated JSON objects with no separators required between them.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{json: json.NewDecoder(r)}
}

// Next decodes the next record in the stream, returning the byte offset at
// which it began. It returns io.EOF when the stream is exhausted cleanly.
// Any other error indicates the record at offset could not be decoded; the
// caller should treat the remainder of the stream as unrecoverable and stop.
func (d *Decoder) Next() (offset int64, rec Record, err error) {
	offset = d.json.InputOffset()
	if err = d.json.Decode(&rec); err != nil {
		return offset, Record{}, err
	}
	return offset, rec, nil
}
