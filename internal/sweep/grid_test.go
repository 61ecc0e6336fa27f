package sweep

import (
	"reflect"
	"testing"
)

func TestParseAxis(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		want      Axis
		expectErr bool
	}{
		{
			name:  "single value",
			input: "lr=0.1",
			want:  Axis{Name: "lr", Values: []string{"0.1"}},
		},
		{
			name:  "multiple values",
			input: "lr=0.1,0.01,0.001",
			want:  Axis{Name: "lr", Values: []string{"0.1", "0.01", "0.001"}},
		},
		{
			name:  "empty entries skipped",
			input: "seed=1,,2,",
			want:  Axis{Name: "seed", Values: []string{"1", "2"}},
		},
		{
			name:      "missing equals",
			input:     "lr",
			expectErr: true,
		},
		{
			name:      "missing name",
			input:     "=0.1",
			expectErr: true,
		},
		{
			name:      "no values",
			input:     "lr=,",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			axis, err := ParseAxis(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", axis)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(axis, tc.want) {
				t.Fatalf("unexpected axis: %+v want %+v", axis, tc.want)
			}
		})
	}
}

func TestCombinationsOrder(t *testing.T) {
	var g Grid
	g.Add(Axis{Name: "lr", Values: []string{"0.1", "0.01"}})
	g.Add(Axis{Name: "seed", Values: []string{"1", "2", "3"}})

	if g.Size() != 6 {
		t.Fatalf("unexpected size: %d want 6", g.Size())
	}

	points := g.Combinations()
	want := []string{
		"lr=0.1 seed=1",
		"lr=0.1 seed=2",
		"lr=0.1 seed=3",
		"lr=0.01 seed=1",
		"lr=0.01 seed=2",
		"lr=0.01 seed=3",
	}
	if len(points) != len(want) {
		t.Fatalf("unexpected combination count: %d want %d", len(points), len(want))
	}
	for i, p := range points {
		if p.String() != want[i] {
			t.Fatalf("unexpected point %d: %q want %q", i, p.String(), want[i])
		}
	}
}

func TestCombinationsEmptyGrid(t *testing.T) {
	var g Grid
	if !g.Empty() {
		t.Fatalf("zero grid should be empty")
	}
	if points := g.Combinations(); points != nil {
		t.Fatalf("expected no combinations, got %v", points)
	}
}

func TestPointKwargs(t *testing.T) {
	p := Point{{Name: "lr", Value: "0.1"}, {Name: "seed", Value: "2"}}
	want := map[string]string{"lr": "0.1", "seed": "2"}
	if got := p.Kwargs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected kwargs: %#v want %#v", got, want)
	}
}
