package submit

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"CondorFrontEnd/internal/remote"
	"CondorFrontEnd/internal/submitfile"
)

type fakeRunner struct {
	lines []string
	err   error
	calls int
	cmd   string
}

func (r *fakeRunner) Execute(cmd string) ([]string, error) {
	r.calls++
	r.cmd = cmd
	return r.lines, r.err
}

func testDocument(t *testing.T) *submitfile.Document {
	t.Helper()

	job, err := submitfile.NewJob(submitfile.JobParams{
		Executable:  "/bin/sh",
		ProgramFile: "run.sh",
	})
	if err != nil {
		t.Fatalf("unexpected error building job: %v", err)
	}

	res, err := submitfile.NewResource(submitfile.ResourceParams{
		Universe: "vanilla",
	})
	if err != nil {
		t.Fatalf("unexpected error building resource: %v", err)
	}

	doc, err := submitfile.Assemble(job, res, &submitfile.Environment{})
	if err != nil {
		t.Fatalf("unexpected error assembling document: %v", err)
	}
	return doc
}

func retainedSubmitFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob("condor*.submit_file")
	if err != nil {
		t.Fatalf("unexpected glob error: %v", err)
	}
	return matches
}

func TestParseAcknowledgement(t *testing.T) {
	testCases := []struct {
		name      string
		lines     []string
		want      int64
		expectErr bool
	}{
		{
			name:  "single job submitted",
			lines: []string{"line1", "1 job(s) submitted to cluster 482."},
			want:  482,
		},
		{
			name:  "large cluster id",
			lines: []string{"Submitting job(s).", "1 job(s) submitted to cluster 123456789012."},
			want:  123456789012,
		},
		{
			name:      "more than one job",
			lines:     []string{"line1", "2 job(s) submitted to cluster 482."},
			expectErr: true,
		},
		{
			name:      "three integers",
			lines:     []string{"line1", "1 job(s) submitted to cluster 482 on 3."},
			expectErr: true,
		},
		{
			name:      "single line",
			lines:     []string{"1 job(s) submitted to cluster 482."},
			expectErr: true,
		},
		{
			name:      "extra line",
			lines:     []string{"line1", "line2", "1 job(s) submitted to cluster 482."},
			expectErr: true,
		},
		{
			name:      "no integers",
			lines:     []string{"line1", "no digits here."},
			expectErr: true,
		},
		{
			name:      "empty output",
			lines:     nil,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAcknowledgement(tc.lines)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got cluster %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected cluster ID: %d want %d", got, tc.want)
			}
		})
	}
}

func TestSubmitDryRunRetainsFile(t *testing.T) {
	t.Chdir(t.TempDir())

	runner := &fakeRunner{}
	got, err := Submit(testDocument(t), runner, Params{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FailureSentinel {
		t.Fatalf("unexpected cluster ID: %d want %d", got, FailureSentinel)
	}
	if runner.calls != 0 {
		t.Fatalf("dry run must not reach the remote, got %d call(s)", runner.calls)
	}
	if files := retainedSubmitFiles(t); len(files) != 1 {
		t.Fatalf("expected exactly one retained submit file, got %v", files)
	}
}

func TestSubmitReturnsClusterID(t *testing.T) {
	t.Chdir(t.TempDir())

	runner := &fakeRunner{
		lines: []string{"Submitting job(s).", "1 job(s) submitted to cluster 482."},
	}
	got, err := Submit(testDocument(t), runner, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 482 {
		t.Fatalf("unexpected cluster ID: %d want 482", got)
	}
	if !strings.Contains(runner.cmd, "condor_submit ") || !strings.HasPrefix(runner.cmd, "cd ") {
		t.Fatalf("unexpected remote command: %q", runner.cmd)
	}
	if !strings.HasSuffix(runner.cmd, ".submit_file") {
		t.Fatalf("remote command does not target the submit file: %q", runner.cmd)
	}
	if files := retainedSubmitFiles(t); len(files) != 0 {
		t.Fatalf("submit file not cleaned up: %v", files)
	}
}

func TestSubmitKeepRetainsFile(t *testing.T) {
	t.Chdir(t.TempDir())

	runner := &fakeRunner{
		lines: []string{"Submitting job(s).", "1 job(s) submitted to cluster 7."},
	}
	got, err := Submit(testDocument(t), runner, Params{Keep: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("unexpected cluster ID: %d want 7", got)
	}
	if files := retainedSubmitFiles(t); len(files) != 1 {
		t.Fatalf("expected retained submit file, got %v", files)
	}
}

func TestSubmitRemoteStderrSkipsAckParsing(t *testing.T) {
	t.Chdir(t.TempDir())

	// Three stdout lines would be an acknowledgement parse error; the
	// ExecError below must take precedence over any parsing attempt.
	runner := &fakeRunner{
		lines: []string{"one", "two", "three"},
		err: &remote.ExecError{
			Command: "condor_submit",
			Stderr:  []string{"ERROR: Failed to connect to local queue manager"},
		},
	}
	got, err := Submit(testDocument(t), runner, Params{})
	if got != FailureSentinel {
		t.Fatalf("unexpected cluster ID: %d want %d", got, FailureSentinel)
	}
	var execErr *remote.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("unexpected error type: %v", err)
	}
	if files := retainedSubmitFiles(t); len(files) != 0 {
		t.Fatalf("submit file not cleaned up: %v", files)
	}
}
