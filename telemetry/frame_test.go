package telemetry

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		f    Frame
	}{
		{"rest, key up", Frame{TimestampMS: 0, Element: CodeRest, Keyed: false}},
		{"dit, keyed", Frame{TimestampMS: 42, Element: CodeDit, Keyed: true}},
		{"dah, keyed", Frame{TimestampMS: 123456, Element: CodeDah, Keyed: true}},
		{"char space, unkeyed", Frame{TimestampMS: 999, Element: CodeCharSpace, Keyed: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Encode(tt.f)
			if len(data) != FrameSize {
				t.Fatalf("Encode: got %d bytes, want %d", len(data), FrameSize)
			}
			got, ok := Decode(data)
			if !ok {
				t.Fatal("Decode: reported failure on data Encode just produced")
			}
			if got != tt.f {
				t.Fatalf("Decode round-trip: got %+v, want %+v", got, tt.f)
			}
		})
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	data := Encode(Frame{TimestampMS: 1, Element: CodeDit, Keyed: true})
	if _, ok := Decode(data[:FrameSize-1]); ok {
		t.Fatal("Decode accepted a truncated frame")
	}
}

func TestDecodeRejectsBadTerminal(t *testing.T) {
	data := Encode(Frame{TimestampMS: 1, Element: CodeDit, Keyed: true})
	data[FrameSize-1] = 0x00
	if _, ok := Decode(data); ok {
		t.Fatal("Decode accepted a frame with a corrupted terminal byte")
	}
}

func TestDecodeRejectsBadCRC(t *testing.T) {
	data := Encode(Frame{TimestampMS: 1, Element: CodeDah, Keyed: false})
	data[0] ^= 0xFF // corrupt the timestamp after the CRC was computed over it
	if _, ok := Decode(data); ok {
		t.Fatal("Decode accepted a frame with a mismatched CRC")
	}
}

func TestElementCodeString(t *testing.T) {
	cases := map[ElementCode]string{
		CodeRest:      "Rest",
		CodeDit:       "Dit",
		CodeDah:       "Dah",
		CodeCharSpace: "CharSpace",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("ElementCode(%d).String() = %q, want %q", code, got, want)
		}
	}
}
