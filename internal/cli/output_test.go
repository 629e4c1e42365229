package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

func sampleResult() *types.ImportResult {
	return &types.ImportResult{
		DataDir:     "/project_data",
		LibraryID:   "lib-1",
		LibraryName: "Project Data",
		Folders: []types.FolderResult{
			{Path: "/project_data/genome", FolderID: "F1", FileCount: 2},
		},
	}
}

func TestOutputWriter_JSONEnvelope(t *testing.T) {
	var out, errOut bytes.Buffer
	w := NewOutputWriter(&out, &errOut, types.OutputFormatJSON, false, false).WithTraceID("run-1")
	w.AddWarning("NO_FILES", "nothing to do", "info")

	if err := w.WriteSuccess("import", sampleResult()); err != nil {
		t.Fatalf("WriteSuccess() error = %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("JSON mode wrote to stderr: %q", errOut.String())
	}

	var env types.CLIOutput
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.SchemaVersion != utils.SchemaVersion || env.TraceID != "run-1" || env.Command != "import" {
		t.Errorf("envelope = %+v", env)
	}
	if len(env.Warnings) != 1 || len(env.Errors) != 0 {
		t.Errorf("warnings=%v errors=%v", env.Warnings, env.Errors)
	}
}

func TestOutputWriter_Table(t *testing.T) {
	var out, errOut bytes.Buffer
	w := NewOutputWriter(&out, &errOut, types.OutputFormatTable, false, false)
	w.AddWarning("NOTE", "table warnings go to stderr", "info")

	if err := w.WriteSuccess("import", sampleResult()); err != nil {
		t.Fatalf("WriteSuccess() error = %v", err)
	}
	if !strings.Contains(out.String(), "/project_data/genome") || !strings.Contains(out.String(), "F1") {
		t.Errorf("table = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "NOTE: table warnings go to stderr") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestOutputWriter_EmptyTable(t *testing.T) {
	var out bytes.Buffer
	w := NewOutputWriter(&out, &bytes.Buffer{}, types.OutputFormatTable, false, false)
	if err := w.WriteSuccess("import", &types.ImportResult{DataDir: "/empty"}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "No files found under /empty" {
		t.Errorf("output = %q", out.String())
	}
}

func TestOutputWriter_TableError(t *testing.T) {
	var out, errOut bytes.Buffer
	w := NewOutputWriter(&out, &errOut, types.OutputFormatTable, false, false)
	cliErr := utils.NewCLIError(utils.ErrCodeAuthInvalid, "Invalid password").
		WithContext("suggestedAction", "check the password").
		Build()

	if err := w.WriteError("import", cliErr); err != nil {
		t.Fatal(err)
	}
	want := "Error: AUTH_INVALID: Invalid password\nHint: check the password\n"
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer text", 10, "much lo..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
