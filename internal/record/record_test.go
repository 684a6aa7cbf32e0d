package record

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"set", Set("a", "1")},
		{"set empty value", Set("a", "")},
		{"remove", Remove("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.rec)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			dec := NewDecoder(bytes.NewReader(data))
			_, got, err := dec.Next()
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if got != tt.rec {
				t.Errorf("Next() = %+v, want %+v", got, tt.rec)
			}
		})
	}
}

func TestDecoderConcatenatedStreamReportsOffsets(t *testing.T) {
	var buf bytes.Buffer
	records := []Record{Set("a", "1"), Set("a", "2"), Remove("a")}
	var wantOffsets []int64
	for _, r := range records {
		wantOffsets = append(wantOffsets, int64(buf.Len()))
		data, err := Encode(r)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		buf.Write(data)
	}

	dec := NewDecoder(&buf)
	for i, want := range records {
		offset, got, err := dec.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if offset != wantOffsets[i] {
			t.Errorf("record %d: offset = %d, want %d", i, offset, wantOffsets[i])
		}
		if got != want {
			t.Errorf("record %d = %+v, want %+v", i, got, want)
		}
	}

	if _, _, err := dec.Next(); err != io.EOF {
		t.Errorf("Next() at end of stream error = %v, want io.EOF", err)
	}
}

func TestDecoderStopsAtCorruption(t *testing.T) {
	data, err := Encode(Set("a", "1"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	corrupted := append(data, []byte(`{"kind":"set","ke`)...)

	dec := NewDecoder(bytes.NewReader(corrupted))
	_, first, err := dec.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if first != Set("a", "1") {
		t.Fatalf("first record = %+v, want Set(a,1)", first)
	}

	if _, _, err := dec.Next(); err == nil {
		t.Fatal("Next() on truncated trailing record: want error, got nil")
	}
}
