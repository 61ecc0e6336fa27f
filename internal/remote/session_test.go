package remote

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitLines(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty stream",
			input: "",
			want:  nil,
		},
		{
			name:  "trailing newline dropped",
			input: "Submitting job(s).\n1 job(s) submitted to cluster 482.\n",
			want:  []string{"Submitting job(s).", "1 job(s) submitted to cluster 482."},
		},
		{
			name:  "no trailing newline",
			input: "partial",
			want:  []string{"partial"},
		},
		{
			name:  "carriage returns stripped",
			input: "one\r\ntwo\r\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "bare newline is one empty line",
			input: "\n",
			want:  []string{""},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := SplitLines(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected lines: %#v want %#v", got, tc.want)
			}
		})
	}
}

func TestExecErrorMessage(t *testing.T) {
	err := &ExecError{
		Command: "condor_submit x.submit_file",
		Stderr:  []string{"ERROR: on hold", "1 job(s) failed"},
	}
	if msg := err.Error(); !strings.Contains(msg, "ERROR: on hold") {
		t.Fatalf("stderr lines missing from message: %q", msg)
	}

	empty := &ExecError{Command: "true"}
	if msg := empty.Error(); msg == "" {
		t.Fatalf("expected non-empty message")
	}
}
