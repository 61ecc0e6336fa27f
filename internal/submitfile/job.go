/**
 * Copyright (c) 2025 Peking University and Peking University
 * Changsha Institute for Computing and Digital Economy
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package submitfile builds HTCondor submit descriptions from structured
// job and resource parameters.
package submitfile

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"CondorFrontEnd/internal/util"
)

// TransferFiles is the should_transfer_files policy.
type TransferFiles string

const (
	TransferIfNeeded TransferFiles = "IF_NEEDED"
	TransferYes      TransferFiles = "YES"
	TransferNo       TransferFiles = "NO"
)

func ParseTransferFiles(s string) (TransferFiles, error) {
	switch TransferFiles(s) {
	case TransferIfNeeded, TransferYes, TransferNo:
		return TransferFiles(s), nil
	}
	return "", fmt.Errorf("illegal value for should_transfer_files: %q", s)
}

// TransferOutput is the when_to_transfer_output trigger.
type TransferOutput string

const (
	TransferOnExit        TransferOutput = "ON_EXIT"
	TransferOnExitOrEvict TransferOutput = "ON_EXIT_OR_EVICT"
)

func ParseTransferOutput(s string) (TransferOutput, error) {
	switch TransferOutput(s) {
	case TransferOnExit, TransferOnExitOrEvict:
		return TransferOutput(s), nil
	}
	return "", fmt.Errorf("illegal value for when_to_transfer_output: %q", s)
}

// JobParams collects everything that describes the program to run. The zero
// value of the enum fields selects the usual defaults; everything else is
// taken literally.
type JobParams struct {
	Executable  string
	ProgramFile string
	PosArgs     []string
	Kwargs      map[string]string

	TransferFiles  TransferFiles  // default YES
	TransferOutput TransferOutput // default ON_EXIT_OR_EVICT
	StreamOutput   bool
	CanCheckpoint  bool
	RuntimeHours   int

	Tag         string
	ArtifactDir string // default "."

	// ExtraAttrs is a flat JSON object rendered as +Key = value lines.
	ExtraAttrs string
}

// Job is a validated, immutable job description. Build one with NewJob.
type Job struct {
	params     JobParams
	executable string
	arguments  string
	logStem    string
	extraAttrs []util.ExtraAttr
}

// NewJob validates params and resolves the executable to an absolute path.
// A bare executable name that cannot be found on PATH is an error: an empty
// executable line would produce a submit file the scheduler rejects long
// after the mistake was made.
func NewJob(params JobParams) (*Job, error) {
	if params.TransferFiles == "" {
		params.TransferFiles = TransferYes
	} else if _, err := ParseTransferFiles(string(params.TransferFiles)); err != nil {
		return nil, err
	}

	if params.TransferOutput == "" {
		params.TransferOutput = TransferOnExitOrEvict
	} else if _, err := ParseTransferOutput(string(params.TransferOutput)); err != nil {
		return nil, err
	}

	if params.RuntimeHours < 0 {
		return nil, fmt.Errorf("approximate runtime must be a non-negative hour count, got %d", params.RuntimeHours)
	}

	if params.Executable == "" {
		return nil, fmt.Errorf("an executable is required")
	}

	executable := params.Executable
	if !filepath.IsAbs(executable) {
		resolved, err := exec.LookPath(executable)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve executable %q: %w", executable, err)
		}
		executable, err = filepath.Abs(resolved)
		if err != nil {
			return nil, err
		}
	}

	programFile := params.ProgramFile
	if programFile != "" && !filepath.IsAbs(programFile) {
		abs, err := filepath.Abs(programFile)
		if err != nil {
			return nil, err
		}
		programFile = abs
	}
	params.ProgramFile = programFile

	if params.ArtifactDir == "" {
		params.ArtifactDir = "."
	}

	extraAttrs, err := util.ExtraAttrPairs(params.ExtraAttrs)
	if err != nil {
		return nil, err
	}

	return &Job{
		params:     params,
		executable: executable,
		arguments:  buildArguments(programFile, params.PosArgs, params.Kwargs),
		logStem:    filepath.Join(params.ArtifactDir, params.Tag+"$(cluster).$(process)"),
		extraAttrs: extraAttrs,
	}, nil
}

// buildArguments assembles the single arguments string: program file first,
// then positional arguments, then keyword arguments in sorted key order
// (map iteration must not leak into the rendered file). Single-letter keys
// render as -kv, longer ones as --key v; an empty value renders the bare
// flag.
func buildArguments(programFile string, posArgs []string, kwargs map[string]string) string {
	parts := make([]string, 0, 2+len(kwargs))
	if programFile != "" {
		parts = append(parts, programFile)
	}
	if len(posArgs) > 0 {
		parts = append(parts, strings.Join(posArgs, " "))
	}

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := kwargs[k]
		switch {
		case len(k) == 1 && v != "":
			parts = append(parts, "-"+k+v)
		case len(k) == 1:
			parts = append(parts, "-"+k)
		case v != "":
			parts = append(parts, "--"+k+" "+v)
		default:
			parts = append(parts, "--"+k)
		}
	}

	return strings.Join(parts, " ")
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Executable returns the resolved absolute executable path.
func (j *Job) Executable() string { return j.executable }

// Arguments returns the assembled argument string.
func (j *Job) Arguments() string { return j.arguments }

// Attributes renders the job section of the submit file, one key = value
// line per entry, in the order the scheduler configuration expects.
func (j *Job) Attributes() []string {
	attrs := []string{
		fmt.Sprintf("executable = %s", j.executable),
		fmt.Sprintf("arguments = %s", j.arguments),

		fmt.Sprintf("should_transfer_files = %s", j.params.TransferFiles),
		fmt.Sprintf("when_to_transfer_output = %s", j.params.TransferOutput),
		fmt.Sprintf("stream_output = %s", formatBool(j.params.StreamOutput)),

		// logging files
		fmt.Sprintf("log = %s.log", j.logStem),
		fmt.Sprintf("error = %s.err", j.logStem),
		fmt.Sprintf("output = %s.out", j.logStem),

		fmt.Sprintf("+CanCheckpoint = %s", formatBool(j.params.CanCheckpoint)),
		fmt.Sprintf("+JobRunTime = %d", j.params.RuntimeHours),
	}

	for _, attr := range j.extraAttrs {
		attrs = append(attrs, fmt.Sprintf("+%s = %s", attr.Key, attr.Value))
	}

	if j.params.Tag != "" {
		attrs = append([]string{fmt.Sprintf("JobBatchName = %q", j.params.Tag)}, attrs...)
	}

	return attrs
}

// LogFile returns the local path of the scheduler log for a finished
// placement, with the cluster and process placeholders substituted.
func (j *Job) LogFile(cluster int64, process int) string {
	stem := strings.ReplaceAll(j.logStem, "$(cluster)", fmt.Sprintf("%d", cluster))
	stem = strings.ReplaceAll(stem, "$(process)", fmt.Sprintf("%d", process))
	return stem + ".log"
}
