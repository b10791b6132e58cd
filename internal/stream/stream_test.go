package stream

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		column  string
		want    []float64
		wantErr bool
	}{
		{
			name:   "first column default",
			input:  "1.5\n2.5\n3.5\n",
			column: "",
			want:   []float64{1.5, 2.5, 3.5},
		},
		{
			name:   "column by index",
			input:  "a,1\nb,2\nc,3\n",
			column: "1",
			want:   []float64{1, 2, 3},
		},
		{
			name:   "column by header name",
			input:  "ts,speed\n0,4.5\n1,5.5\n",
			column: "speed",
			want:   []float64{4.5, 5.5},
		},
		{
			name:   "header skipped without name",
			input:  "speed\n4.5\n5.5\n",
			column: "",
			want:   []float64{4.5, 5.5},
		},
		{
			name:    "missing header name",
			input:   "ts,speed\n0,4.5\n",
			column:  "velocity",
			wantErr: true,
		},
		{
			name:    "bad value mid-stream",
			input:   "1\ntwo\n3\n",
			column:  "",
			wantErr: true,
		},
		{
			name:    "column out of range",
			input:   "1,2\n",
			column:  "5",
			wantErr: true,
		},
		{
			name:   "empty input",
			input:  "",
			column: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input), tt.column)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadJSONL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		field   string
		want    []float64
		wantErr bool
	}{
		{
			name:  "default field",
			input: `{"value": 1}` + "\n" + `{"value": 2.5}` + "\n",
			want:  []float64{1, 2.5},
		},
		{
			name:  "named field",
			input: `{"speed": 3.25, "value": 9}` + "\n",
			field: "speed",
			want:  []float64{3.25},
		},
		{
			name:  "bare numbers",
			input: "1\n2\n\n3\n",
			want:  []float64{1, 2, 3},
		},
		{
			name:    "missing field",
			input:   `{"speed": 1}` + "\n",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "non-numeric field",
			input:   `{"value": "fast"}` + "\n",
			wantErr: true,
		},
		{
			name:    "invalid json",
			input:   "{not json}\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadJSONL(strings.NewReader(tt.input), tt.field)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	got, err := ParseValues(" 1, 2.5 ,3 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2.5, 3}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseValues("1,x"); err == nil {
		t.Error("expected error for invalid float")
	}

	got, err = ParseValues("  ")
	if err != nil || got != nil {
		t.Errorf("ParseValues(blank) = %v, %v; want nil, nil", got, err)
	}
}
