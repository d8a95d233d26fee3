package fasta

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseSimple(t *testing.T) {
	input := ">seq1\nAla-Gly-Ser\n>seq2\nAla-Gly\n"
	res, err := DefaultParser().ParseString(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.Records[0].Label != "seq1" || !reflect.DeepEqual(res.Records[0].Residues, []string{"Ala", "Gly", "Ser"}) {
		t.Fatalf("unexpected first record: %+v", res.Records[0])
	}
	if res.Records[1].Label != "seq2" || !reflect.DeepEqual(res.Records[1].Residues, []string{"Ala", "Gly"}) {
		t.Fatalf("unexpected second record: %+v", res.Records[1])
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
}

func TestParseWhitespaceSeparated(t *testing.T) {
	input := "> Sequence 1 \n208 PRO 208 632\n> Sequence 2 \n211 632 HYP\n"
	res, err := DefaultParser().ParseString(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Record{
		{Label: "Sequence 1", Residues: []string{"208", "PRO", "208", "632"}},
		{Label: "Sequence 2", Residues: []string{"211", "632", "HYP"}},
	}
	if !reflect.DeepEqual(res.Records, want) {
		t.Fatalf("got %+v, want %+v", res.Records, want)
	}
}

func TestParseMultiLineAndCase(t *testing.T) {
	input := "  >a\n\tala-Gly\n\n  Ser-\n-PRO\n>b\nALA\n"
	res, err := DefaultParser().ParseString(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Records[0].Residues; !reflect.DeepEqual(got, []string{"ala", "Gly", "Ser", "PRO"}) {
		t.Fatalf("unexpected residues: %v", got)
	}
	if res.Records[1].Residues[0] == res.Records[0].Residues[0] {
		t.Fatalf("codes must be case sensitive")
	}
}

func TestParseInputOrder(t *testing.T) {
	labels := []string{"zeta", "alpha", "mid", "beta", "omega"}
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString(">" + l + "\nPRO-HYP\n")
	}
	res, err := DefaultParser().ParseString(sb.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != len(labels) {
		t.Fatalf("expected %d records, got %d", len(labels), len(res.Records))
	}
	for i, l := range labels {
		if res.Records[i].Label != l {
			t.Errorf("record %d: got label %q, want %q", i, res.Records[i].Label, l)
		}
	}
}

func TestParseLenientWarnings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		records  int
		kinds    []WarningKind
		firstRec string
	}{
		{
			"text before header",
			"junk line\n>s1\nAla\n",
			1,
			[]WarningKind{KindOrphanText},
			"s1",
		},
		{
			"header without residues",
			">empty\n>s2\nAla-Gly\n",
			1,
			[]WarningKind{KindEmptyRecord},
			"s2",
		},
		{
			"trailing header",
			">s1\nAla\n>dangling\n",
			1,
			[]WarningKind{KindEmptyRecord},
			"s1",
		},
		{
			"empty label",
			">\nAla\n",
			1,
			[]WarningKind{KindEmptyLabel},
			"seq1",
		},
		{
			"only delimiters",
			">s1\n- - --\n>s2\nPRO\n",
			1,
			[]WarningKind{KindEmptyRecord},
			"s2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DefaultParser().ParseString(tt.input)
			if err != nil {
				t.Fatalf("lenient parse returned error: %v", err)
			}
			if len(res.Records) != tt.records {
				t.Fatalf("expected %d records, got %d", tt.records, len(res.Records))
			}
			if res.Records[0].Label != tt.firstRec {
				t.Errorf("first record label = %q, want %q", res.Records[0].Label, tt.firstRec)
			}
			var kinds []WarningKind
			for _, w := range res.Warnings {
				kinds = append(kinds, w.Kind)
			}
			if !reflect.DeepEqual(kinds, tt.kinds) {
				t.Errorf("warning kinds = %v, want %v", kinds, tt.kinds)
			}
		})
	}
}

func TestParseStrict(t *testing.T) {
	p := &Parser{Delimiter: "-", Policy: Strict}
	_, err := p.ParseString("junk\n>s1\nAla\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Warning.Kind != KindOrphanText || perr.Warning.Line != 1 {
		t.Fatalf("unexpected parse error: %+v", perr.Warning)
	}

	res, err := p.ParseString(">s1\nAla\n")
	if err != nil {
		t.Fatalf("valid input failed in strict mode: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n\n\t\n"} {
		res, err := DefaultParser().ParseString(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Records) != 0 || len(res.Warnings) != 0 {
			t.Fatalf("expected nothing for %q, got %+v", in, res)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("STRICT") != Strict {
		t.Errorf("STRICT should map to Strict")
	}
	if ParsePolicy("") != Lenient || ParsePolicy("warn") != Lenient {
		t.Errorf("unknown policies should be lenient")
	}
}
