package cli

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	surveyio "github.com/matzehuels/surveyplot/pkg/io"
)

func TestWriteSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "surveys")

	paths, err := writeSamples(dir, false)
	if err != nil {
		t.Fatalf("writeSamples: %v", err)
	}
	want := []string{"horizontal.json", "pie.json", "stacked.json"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	for _, p := range paths {
		if _, err := surveyio.ImportJSON(p); err != nil {
			t.Errorf("sample %s does not load: %v", p, err)
		}
	}

	if _, err := writeSamples(dir, false); err == nil {
		t.Error("existing samples were overwritten without --force")
	}
	if _, err := writeSamples(dir, true); err != nil {
		t.Errorf("writeSamples with force: %v", err)
	}
}

func TestSampleCommand(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	if _, err := execute(t, c, "sample", dir); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if got := listDir(t, dir); len(got) != 3 {
		t.Errorf("sample wrote %v", got)
	}

	out, err := execute(t, c, "categories", filepath.Join(dir, "pie.json"))
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if out != "Nein\nJa\n" {
		t.Errorf("categories = %q", out)
	}
}
