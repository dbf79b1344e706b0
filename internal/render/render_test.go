package render

import (
	"strings"
	"testing"
)

func TestTablePadsColumnsToTheWidestCell(t *testing.T) {
	output := Table(
		[]string{"ID", "NAME"},
		[][]string{
			{"1", "Darjeeling First Flush"},
			{"23", "Tulsi"},
		},
	)

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "1   ") {
		t.Fatalf("expected the ID column padded to two characters, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "23  Tulsi") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestTableWithNoRowsStillRendersTheHeader(t *testing.T) {
	output := Table([]string{"KEY", "LABEL"}, nil)
	if !strings.Contains(output, "KEY") || !strings.Contains(output, "LABEL") {
		t.Fatalf("expected headers in output, got %q", output)
	}
}

func TestPageLine(t *testing.T) {
	output := PageLine(2, 3, 23)
	if !strings.Contains(output, "page 2 of 3 (23 total)") {
		t.Fatalf("unexpected page line %q", output)
	}
}

func TestDeniedIncludesMessageAndRedirect(t *testing.T) {
	output := Denied("You don't have permission to access this resource", "/dashboard")
	if !strings.Contains(output, "Access Denied") {
		t.Fatalf("expected the heading, got %q", output)
	}
	if !strings.Contains(output, "You don't have permission to access this resource") {
		t.Fatalf("expected the message, got %q", output)
	}
	if !strings.Contains(output, "/dashboard") {
		t.Fatalf("expected the redirect hint, got %q", output)
	}
}
