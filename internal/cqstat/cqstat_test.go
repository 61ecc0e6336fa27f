package cqstat

import (
	"reflect"
	"testing"
)

func TestStatusLetter(t *testing.T) {
	testCases := []struct {
		status int64
		want   string
	}{
		{0, "U"},
		{1, "I"},
		{2, "R"},
		{3, "X"},
		{4, "C"},
		{5, "H"},
		{6, "E"},
		{42, "?"},
	}

	for _, tc := range testCases {
		if got := statusLetter(tc.status); got != tc.want {
			t.Fatalf("unexpected letter for status %d: %q want %q", tc.status, got, tc.want)
		}
	}
}

func TestQueueRows(t *testing.T) {
	const now = 1_700_000_000
	body := `[
		{
			"ClusterId": 482, "ProcId": 0, "Owner": "alice",
			"JobStatus": 2, "JobCurrentStartDate": 1699996400,
			"JobBatchName": "train-resnet",
			"Cmd": "/usr/bin/python3"
		},
		{
			"ClusterId": 483, "ProcId": 1, "Owner": "bob",
			"JobStatus": 1, "RemoteWallClockTime": 9045.0,
			"Cmd": "/vol/research/nlp/run.sh"
		}
	]`

	rows, err := queueRows(body, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{
		{"482.0", "train-resnet", "alice", "R", "01:00:00", "/usr/bin/python3"},
		{"483.1", "run.sh", "bob", "I", "02:30:45", "/vol/research/nlp/run.sh"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows:\n%v\nwant:\n%v", rows, want)
	}
}

func TestQueueRowsRejectsMalformedBody(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"truncated JSON", `[{"ClusterId": 482`},
		{"not an array", `{"ClusterId": 482}`},
		{"plain text", "condor_q: command not found"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := queueRows(tc.body, 0); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
