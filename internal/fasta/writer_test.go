package fasta

import (
	"reflect"
	"strings"
	"testing"
)

func TestWriteWraps(t *testing.T) {
	recs := []Record{{Label: "s1", Residues: []string{"PRO", "HYP", "601", "632", "SAR"}}}
	var sb strings.Builder
	if err := Write(&sb, recs, WriteOptions{Columns: 2}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := ">s1\nPRO-HYP\n601-632\nSAR\n"
	if sb.String() != want {
		t.Fatalf("got %q, want %q", sb.String(), want)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		">seq1\nAla-Gly-Ser\n>seq2\nAla-Gly\n",
		"> Sequence 1 \n208 PRO 208 632 314\n>Sequence 2\n211 . 624\n",
		">x\nA\n>y\nB-C\nD\n>z\nHYP HYP-HYP\n",
	}
	p := DefaultParser()
	for _, in := range inputs {
		first, err := p.ParseString(in)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		for _, cols := range []int{0, 1, 3} {
			var sb strings.Builder
			if err := Write(&sb, first.Records, WriteOptions{Columns: cols}); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			second, err := p.ParseString(sb.String())
			if err != nil {
				t.Fatalf("reparse failed: %v", err)
			}
			if !reflect.DeepEqual(first.Records, second.Records) {
				t.Fatalf("round trip mismatch (cols=%d):\n%+v\n%+v", cols, first.Records, second.Records)
			}
		}
	}
}

func TestFormatUsesDefaultDelimiter(t *testing.T) {
	got := Format([]Record{{Label: "a", Residues: []string{"PRO", "HYP"}}})
	if got != ">a\nPRO-HYP\n" {
		t.Fatalf("unexpected format output %q", got)
	}
}
