package submitfile

import (
	"strings"
	"testing"
)

func TestNewJobValidation(t *testing.T) {
	testCases := []struct {
		name   string
		params JobParams
	}{
		{"missing executable", JobParams{}},
		{"unresolvable executable", JobParams{Executable: "no-such-binary-anywhere"}},
		{"bad transfer mode", JobParams{Executable: "/bin/sh", TransferFiles: "MAYBE"}},
		{"bad transfer output", JobParams{Executable: "/bin/sh", TransferOutput: "NEVER"}},
		{"negative runtime", JobParams{Executable: "/bin/sh", RuntimeHours: -1}},
		{"nested extra attrs", JobParams{Executable: "/bin/sh", ExtraAttrs: `{"Requirements": {"a": 1}}`}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewJob(tc.params); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestJobArguments(t *testing.T) {
	job, err := NewJob(JobParams{
		Executable:  "/usr/bin/env",
		ProgramFile: "/work/train.py",
		PosArgs:     []string{"--resume", "last"},
		Kwargs:      map[string]string{"lr": "0.1", "n": "5", "verbose": ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "/work/train.py --resume last --lr 0.1 -n5 --verbose"
	if got := job.Arguments(); got != want {
		t.Fatalf("unexpected arguments: %q want %q", got, want)
	}
}

func TestJobAttributes(t *testing.T) {
	job, err := NewJob(JobParams{
		Executable:    "/bin/sh",
		Tag:           "exp1-",
		ArtifactDir:   "/vol/research/vision/logs",
		RuntimeHours:  8,
		StreamOutput:  true,
		CanCheckpoint: true,
		ExtraAttrs:    `{"GPUJob": true, "AccountingGroup": "group_vision"}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attrs := job.Attributes()
	if attrs[0] != `JobBatchName = "exp1-"` {
		t.Fatalf("tagged job must lead with the batch name, got %q", attrs[0])
	}

	text := strings.Join(attrs, "\n")
	for _, want := range []string{
		"executable = /bin/sh",
		"should_transfer_files = YES",
		"when_to_transfer_output = ON_EXIT_OR_EVICT",
		"stream_output = True",
		"log = /vol/research/vision/logs/exp1-$(cluster).$(process).log",
		"error = /vol/research/vision/logs/exp1-$(cluster).$(process).err",
		"output = /vol/research/vision/logs/exp1-$(cluster).$(process).out",
		"+CanCheckpoint = True",
		"+JobRunTime = 8",
		`+AccountingGroup = "group_vision"`,
		"+GPUJob = true",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("attributes missing %q:\n%s", want, text)
		}
	}
}

func TestJobAttributesDefaults(t *testing.T) {
	job, err := NewJob(JobParams{Executable: "/bin/sh"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attrs := job.Attributes()
	if strings.HasPrefix(attrs[0], "JobBatchName") {
		t.Fatalf("untagged job must not emit a batch name, got %q", attrs[0])
	}

	text := strings.Join(attrs, "\n")
	for _, want := range []string{
		"should_transfer_files = YES",
		"when_to_transfer_output = ON_EXIT_OR_EVICT",
		"stream_output = False",
		"log = $(cluster).$(process).log",
		"+CanCheckpoint = False",
		"+JobRunTime = 0",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("attributes missing %q:\n%s", want, text)
		}
	}
}

func TestJobLogFile(t *testing.T) {
	job, err := NewJob(JobParams{
		Executable:  "/bin/sh",
		Tag:         "exp1-",
		ArtifactDir: "/vol/research/vision/logs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "/vol/research/vision/logs/exp1-482.0.log"
	if got := job.LogFile(482, 0); got != want {
		t.Fatalf("unexpected log file: %q want %q", got, want)
	}
}
