package names

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "Smith, John", want: []string{"Smith, John"}},
		{in: "Smith, John and Jane Doe", want: []string{"Smith, John", "Jane Doe"}},
		{in: "{Barnes and Noble} and Doe", want: []string{"{Barnes and Noble}", "Doe"}},
		{in: "A AND B", want: []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Split(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Name
	}{
		{in: "Smith, John", want: Name{First: []string{"John"}, Last: []string{"Smith"}}},
		{in: "John Smith", want: Name{First: []string{"John"}, Last: []string{"Smith"}}},
		{in: "Ludwig van Beethoven", want: Name{First: []string{"Ludwig"}, Von: []string{"van"}, Last: []string{"Beethoven"}}},
		{in: "van der Berg, Jan", want: Name{First: []string{"Jan"}, Von: []string{"van", "der"}, Last: []string{"Berg"}}},
		{in: "Garcia Marquez, Gabriel", want: Name{First: []string{"Gabriel"}, Last: []string{"Garcia", "Marquez"}}},
		{in: "King, Jr, Martin Luther", want: Name{First: []string{"Martin", "Luther"}, Last: []string{"King"}, Jr: []string{"Jr"}}},
		{in: "{World Health Organization}", want: Name{Last: []string{"{World Health Organization}"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "  ", "a, b, c, d", "{unbalanced", "closing}", ", John"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalid", in, err)
		}
	}
}

func TestFamilies(t *testing.T) {
	got := Families("Smith, John and a, b, c, d and Garcia Marquez, Gabriel")
	want := []string{"Smith", "GarciaMarquez"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Families() = %q, want %q", got, want)
	}
}

func TestPretty(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "John Smith and Jane Doe", want: "Smith, John and Doe, Jane"},
		{in: "Smith", want: "Smith"},
		{in: "Ludwig van Beethoven", want: "van Beethoven, Ludwig"},
		{in: "a, b, c, d", want: "a, b, c, d"},
	}
	for _, tt := range tests {
		if got := Pretty(tt.in); got != tt.want {
			t.Errorf("Pretty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
