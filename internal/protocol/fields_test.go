package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestDecodeFields(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		verify  func(t *testing.T, fields []Field)
	}{
		{
			name: "single int field",
			data: "ff010184b3ee93",
			verify: func(t *testing.T, fields []Field) {
				if len(fields) != 1 {
					t.Fatalf("got %d fields, want 1", len(fields))
				}
				f := fields[0]
				if f.ID != 1 || f.Type != FieldInt {
					t.Errorf("field = %s, want id=1 type=Int", f)
				}
				raw, ok := f.IntView()
				if !ok {
					t.Fatal("IntView not available on Int field")
				}
				if raw.Uint32() != 0x84B3EE93 {
					t.Errorf("Uint32() = 0x%08X, want 0x84B3EE93", raw.Uint32())
				}
			},
		},
		{
			name: "firmware version field splits into halves",
			data: "ff020100010015",
			verify: func(t *testing.T, fields []Field) {
				raw, _ := fields[0].IntView()
				if raw.Int16Hi() != 1 || raw.Int16Lo() != 21 {
					t.Errorf("halves = %d.%d, want 1.21", raw.Int16Hi(), raw.Int16Lo())
				}
			},
		},
		{
			name: "timestamped int",
			data: "ff010365932547ff00000001",
			verify: func(t *testing.T, fields []Field) {
				v, ok := fields[0].Value.(TimestampedIntValue)
				if !ok {
					t.Fatalf("value = %T, want TimestampedIntValue", fields[0].Value)
				}
				if v.Timestamp != 0x65932547 {
					t.Errorf("timestamp = 0x%08X, want 0x65932547", v.Timestamp)
				}
				if v.Raw.Int32() != 1 {
					t.Errorf("value = %d, want 1", v.Raw.Int32())
				}
			},
		},
		{
			// Device name field from a DEVICE_INFO capture:
			// "SC503 [1765] 1" with its trailing null.
			name: "timestamped text",
			data: "ff030465932547ff5343353033205b313736355d203100",
			verify: func(t *testing.T, fields []Field) {
				text, ok := fields[0].Text()
				if !ok {
					t.Fatal("Text not available")
				}
				if text != "SC503 [1765] 1" {
					t.Errorf("text = %q, want %q", text, "SC503 [1765] 1")
				}
				if ts, _ := fields[0].Timestamp(); ts != 0x65932547 {
					t.Errorf("timestamp = 0x%08X, want 0x65932547", ts)
				}
			},
		},
		{
			name: "timeseries with two samples",
			data: "ff000b691c89f0ff691c8a2cff02ff560b560aff560f5611ff",
			verify: func(t *testing.T, fields []Field) {
				v, ok := fields[0].Series()
				if !ok {
					t.Fatal("Series not available")
				}
				if v.Start != 0x691C89F0 || v.End != 0x691C8A2C {
					t.Errorf("range = 0x%08X..0x%08X", v.Start, v.End)
				}
				want := []Sample{{Hi: 0x560B, Lo: 0x560A}, {Hi: 0x560F, Lo: 0x5611}}
				if !reflect.DeepEqual(v.Samples, want) {
					t.Errorf("samples = %v, want %v", v.Samples, want)
				}
			},
		},
		{
			name: "multiple fields preserve order and duplicate ids",
			data: "ff010184b3ee93" + "ff010365932547ff00000001" + "ff020100010015",
			verify: func(t *testing.T, fields []Field) {
				if len(fields) != 3 {
					t.Fatalf("got %d fields, want 3", len(fields))
				}
				if fields[0].ID != 1 || fields[1].ID != 1 || fields[2].ID != 2 {
					t.Errorf("ids = %d,%d,%d, want 1,1,2", fields[0].ID, fields[1].ID, fields[2].ID)
				}
				if fields[0].Type != FieldInt || fields[1].Type != FieldTimestampedInt {
					t.Error("duplicate id fields were reordered or merged")
				}
			},
		},
		{
			name: "unknown type folds tail into one field",
			data: "ff010184b3ee93" + "ff057fdeadbeefcafe",
			verify: func(t *testing.T, fields []Field) {
				if len(fields) != 2 {
					t.Fatalf("got %d fields, want 2", len(fields))
				}
				f := fields[1]
				if f.ID != 0x05 || f.Type != FieldType(0x7F) {
					t.Errorf("unknown field header = id %d type %s", f.ID, f.Type)
				}
				v, ok := f.Value.(UnknownValue)
				if !ok {
					t.Fatalf("value = %T, want UnknownValue", f.Value)
				}
				if !bytes.Equal(v.Raw, mustHex(t, "deadbeefcafe")) {
					t.Errorf("raw = % X", v.Raw)
				}
			},
		},
		{
			name:    "bad field marker",
			data:    "00010184b3ee93",
			wantErr: ErrFieldMarker,
		},
		{
			name:    "missing sub marker in timestamped int",
			data:    "ff0103659325470000000001",
			wantErr: ErrFieldMarker,
		},
		{
			name:    "int field runs off the end",
			data:    "ff010184b3",
			wantErr: ErrFieldTruncated,
		},
		{
			name:    "unterminated text",
			data:    "ff030465932547ff53433530",
			wantErr: ErrFieldTruncated,
		},
		{
			name:    "invalid utf8 text",
			data:    "ff030465932547ffff8000",
			wantErr: ErrFieldText,
		},
		{
			name:    "timeseries missing trailing marker",
			data:    "ff000b691c89f0ff691c8a2cff01ff560b560a00",
			wantErr: ErrFieldMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := DecodeFields(mustHex(t, tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeFields() error: %v", err)
			}
			tt.verify(t, fields)
		})
	}
}

func TestDecodeFieldsStrict(t *testing.T) {
	data := mustHex(t, "ff057fdeadbeef")

	if _, err := DecodeFieldsStrict(data); !errors.Is(err, ErrUnknownFieldType) {
		t.Errorf("strict err = %v, want ErrUnknownFieldType", err)
	}
	if _, err := DecodeFields(data); err != nil {
		t.Errorf("lenient err = %v, want nil", err)
	}
}

func TestEncodeFieldsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{
			name:   "int fields",
			fields: []Field{NewIntField(1, RawIntFromUint32(0x84B3EE93)), NewIntField(2, RawIntFromUint16Pair(1, 21))},
		},
		{
			name:   "timestamped int",
			fields: []Field{NewTimestampedIntField(6, 0x678EF359, RawIntFromInt32(0x11))},
		},
		{
			name:   "text",
			fields: []Field{NewTextField(3, 0x65932547, "SC503 [1765] 1")},
		},
		{
			name:   "empty text",
			fields: []Field{NewTextField(3, 0, "")},
		},
		{
			name: "timeseries",
			fields: []Field{NewTimeseriesField(7, 1_700_000_000, 1_700_000_060, []Sample{
				{Hi: 10, Lo: 20}, {Hi: 30, Lo: 40},
			})},
		},
		{
			name: "mixed sequence with duplicate ids",
			fields: []Field{
				NewIntField(0, RawIntFromInt32(11)),
				NewTimestampedIntField(1, 0x65932547, RawIntFromInt32(1)),
				NewIntField(1, RawIntFromInt32(-1)),
				NewTextField(3, 0x65932547, "Bat 1"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := EncodeFields(tt.fields)
			decoded, err := DecodeFields(wire)
			if err != nil {
				t.Fatalf("DecodeFields() error: %v", err)
			}
			if !reflect.DeepEqual(decoded, tt.fields) {
				t.Errorf("round trip mismatch:\n got %v\nwant %v", decoded, tt.fields)
			}

			// Every decoded field must start at a 0xFF marker.
			off := 0
			for range decoded {
				if wire[off] != Marker {
					t.Errorf("field does not start with 0xFF at offset %d", off)
				}
				off = nextFieldOffset(t, wire, off)
			}
		})
	}
}

// nextFieldOffset re-derives the field length from the wire bytes, keeping
// the marker-position check independent of the decoder internals.
func nextFieldOffset(t *testing.T, wire []byte, off int) int {
	t.Helper()
	switch FieldType(wire[off+2]) {
	case FieldInt:
		return off + 7
	case FieldTimestampedInt:
		return off + 12
	case FieldTimestampedText:
		for i := off + 8; i < len(wire); i++ {
			if wire[i] == 0x00 {
				return i + 1
			}
		}
	case FieldTimeseries:
		count := int(wire[off+13])
		return off + 14 + count*5 + 1
	}
	t.Fatalf("cannot size field at offset %d", off)
	return 0
}

func TestTimeseriesEncodedLength(t *testing.T) {
	// Encoded length is 3 header bytes + 12 fixed data bytes + 5 per
	// sample (the 12 includes the trailing marker).
	for _, n := range []int{0, 1, 2, 10, 225} {
		samples := make([]Sample, n)
		wire := EncodeFields([]Field{NewTimeseriesField(0, 0, 0, samples)})
		want := 3 + 11 + 5*n + 1
		if len(wire) != want {
			t.Errorf("n=%d: encoded length = %d, want %d", n, len(wire), want)
		}
	}
}

func TestRawIntViews(t *testing.T) {
	r := RawInt{0x84, 0xB3, 0xEE, 0x93}

	if r.Uint32() != 0x84B3EE93 {
		t.Errorf("Uint32() = 0x%08X", r.Uint32())
	}
	if r.Int32() != -2068582765 {
		t.Errorf("Int32() = %d", r.Int32())
	}
	if r.Uint16Hi() != 0x84B3 || r.Uint16Lo() != 0xEE93 {
		t.Errorf("uint16 halves = 0x%04X, 0x%04X", r.Uint16Hi(), r.Uint16Lo())
	}
	if r.Int16Hi() != -31565 || r.Int16Lo() != -4461 {
		t.Errorf("int16 halves = %d, %d", r.Int16Hi(), r.Int16Lo())
	}
}
