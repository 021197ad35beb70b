package bucket

import (
	"testing"

	"github.com/matzehuels/trigen/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Bucket
	}{
		{"6_9_rt", Bucket{6, 9, "rt"}},
		{"7_11_c1.jsonl.gz", Bucket{7, 11, "c1"}},
		{"12_18_e2", Bucket{12, 18, "e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "6_9", "a_9_rt", "6_9_RT", "6_9_toolongtype", "6_-1_rt", "6_9_rt_x"} {
		if _, err := Parse(in); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want INVALID_INPUT", in, err)
		}
	}
}

func TestString(t *testing.T) {
	b := Of(7, 11, "c1")
	if b.String() != "7_11_c1" {
		t.Errorf("String = %q", b.String())
	}
	if MustParse(b.String()) != b {
		t.Error("String does not round trip through Parse")
	}
}
