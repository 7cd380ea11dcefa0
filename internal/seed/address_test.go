package seed

import (
	"errors"
	"fmt"
	"testing"
)

func TestSegmentAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr error
	}{
		{
			name:  "simple address",
			input: "456 Oak Ave, Portland, OR 97201",
			want: Address{
				Street:  "456 Oak Ave",
				City:    "Portland",
				State:   "OR",
				ZipCode: "97201",
				Country: "USA",
			},
		},
		{
			name:  "street with apartment segment",
			input: "123 Main St, Apt 4, Springfield, IL 62704",
			want: Address{
				Street:  "123 Main St, Apt 4",
				City:    "Springfield",
				State:   "IL",
				ZipCode: "62704",
				Country: "USA",
			},
		},
		{
			name:  "suite and floor segments",
			input: "1 Market Plaza, Suite 300, Floor 3, San Francisco, CA 94105",
			want: Address{
				Street:  "1 Market Plaza, Suite 300, Floor 3",
				City:    "San Francisco",
				State:   "CA",
				ZipCode: "94105",
				Country: "USA",
			},
		},
		{
			name:  "extra text around state and zip",
			input: "789 Pine Rd, Austin, TX 73301-1234",
			want: Address{
				Street:  "789 Pine Rd",
				City:    "Austin",
				State:   "TX",
				ZipCode: "73301",
				Country: "USA",
			},
		},
		{
			name:    "single segment",
			input:   "Main St",
			wantErr: ErrInvalidAddressFormat,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrInvalidAddressFormat,
		},
		{
			name:    "lowercase state",
			input:   "456 Oak Ave, Portland, or 97201",
			wantErr: ErrInvalidStateZipFormat,
		},
		{
			name:    "four digit zip",
			input:   "456 Oak Ave, Portland, OR 9720",
			wantErr: ErrInvalidStateZipFormat,
		},
		{
			name:    "missing state and zip",
			input:   "456 Oak Ave, Portland",
			wantErr: ErrInvalidStateZipFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SegmentAddress(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SegmentAddress(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SegmentAddress(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SegmentAddress(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// Segmenting the reconstruction of a well-formed address must yield the
// same four fields again.
func TestSegmentAddress_Idempotent(t *testing.T) {
	inputs := []string{
		"456 Oak Ave, Portland, OR 97201",
		"123 Main St, Apt 4, Springfield, IL 62704",
		"1 Market Plaza, Suite 300, Floor 3, San Francisco, CA 94105",
	}

	for _, input := range inputs {
		first, err := SegmentAddress(input)
		if err != nil {
			t.Fatalf("SegmentAddress(%q) error = %v", input, err)
		}

		rebuilt := fmt.Sprintf("%s, %s, %s %s", first.Street, first.City, first.State, first.ZipCode)
		second, err := SegmentAddress(rebuilt)
		if err != nil {
			t.Fatalf("SegmentAddress(%q) error = %v", rebuilt, err)
		}

		if first != second {
			t.Errorf("re-segmenting %q: got %+v, want %+v", rebuilt, second, first)
		}
	}
}
