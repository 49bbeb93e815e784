package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func run(t *testing.T, name string, args ...string) (string, error) {
	t.Helper()
	v := viper.New()
	v.Set("TAX_RATE", "0")

	cmd := summaryCmd(v)
	switch name {
	case "quote":
		cmd = quoteCmd(v)
	case "countries":
		cmd = countriesCmd(v)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "summary", "20.00:2", "--method", "colissimo")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "total     47.99") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = run(t, "summary", "65:1", "--method", "colissimo")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "shipping  0.00") {
		t.Fatalf("expected free shipping at threshold:\n%s", out)
	}
}

func TestSummaryAbroad(t *testing.T) {
	out, err := run(t, "summary", "20:2", "--country", "Belgique", "--method", "destination")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "calculated at destination") || !strings.Contains(out, "total     40.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSummaryRejectsUnknownCountry(t *testing.T) {
	if _, err := run(t, "summary", "20:2", "--country", "Atlantis"); err == nil {
		t.Fatal("expected unsupported country error")
	}
}

func TestQuoteCommand(t *testing.T) {
	out, err := run(t, "quote", "France", "50")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"colissimo", "relay", "express", "(free)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCountriesCommand(t *testing.T) {
	out, err := run(t, "countries")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "FR") || !strings.Contains(out, "BE") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestParseLines(t *testing.T) {
	lines, err := parseLines([]string{"9.99:3", "5"})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0].Quantity != 3 || lines[1].Quantity != 1 {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if _, err := parseLines([]string{"abc:1"}); err == nil {
		t.Fatal("expected price error")
	}
	if _, err := parseLines([]string{"1:0"}); err == nil {
		t.Fatal("expected quantity error")
	}
}
