package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCSVWriterCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summary.csv")

	w, err := NewCSVWriter(path, []string{"Store", "Distance (mi)"})
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.WriteRows([][]string{{"Alpha, Storage", "2.5"}, {"Beta", "N/A"}}); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := "Store,Distance (mi)\n\"Alpha, Storage\",2.5\nBeta,N/A\n"
	if string(got) != want {
		t.Errorf("file content:\n got %q\nwant %q", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []string{"a", "b"}, [][]string{{"1", "2"}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := buf.String(); got != "a,b\n1,2\n" {
		t.Errorf("got %q", got)
	}
}
