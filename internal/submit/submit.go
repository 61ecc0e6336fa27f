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

// Package submit persists a submit description to a temporary file and
// drives condor_submit against it on the head node.
package submit

import (
	"fmt"
	"os"
	"path/filepath"

	"CondorFrontEnd/internal/submitfile"
	"CondorFrontEnd/internal/util"

	log "github.com/sirupsen/logrus"
)

// FailureSentinel is returned as the cluster ID on dry runs and on any
// failed submission.
const FailureSentinel int64 = -1

// Runner runs one command on the head node. *remote.Session implements it.
type Runner interface {
	Execute(cmd string) ([]string, error)
}

// Params control submit-file retention and whether the submission is
// actually sent to the scheduler.
type Params struct {
	// DryRun writes the submit file and stops; the file is always
	// retained so the operator can inspect it.
	DryRun bool
	// Keep retains the submit file after a real submission.
	Keep bool
}

// Submit writes doc to a temporary submit file in the current directory
// and runs condor_submit against it through runner. It returns the
// cluster ID assigned by the scheduler, or FailureSentinel on dry runs
// and failures. The remote command mirrors the local working directory,
// so the submit file's relative inputs resolve the same on both sides.
func Submit(doc *submitfile.Document, runner Runner, params Params) (int64, error) {
	path, err := writeTempFile(doc)
	if err != nil {
		return FailureSentinel, err
	}
	if !params.Keep && !params.DryRun {
		defer util.RemoveFileIfExists(path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorGeneric,
			Message: fmt.Sprintf("cannot resolve submit file path %s: %v", path, err),
		}
	}

	if params.DryRun {
		log.Infof("Dry run, submit file retained at %s.", absPath)
		return FailureSentinel, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorGeneric,
			Message: fmt.Sprintf("cannot determine working directory: %v", err),
		}
	}

	lines, err := runner.Execute(fmt.Sprintf("cd %s; condor_submit %s", cwd, absPath))
	if err != nil {
		return FailureSentinel, err
	}

	return ParseAcknowledgement(lines)
}

func writeTempFile(doc *submitfile.Document) (string, error) {
	file, err := os.CreateTemp(".", "condor*.submit_file")
	if err != nil {
		return "", &util.CondorError{
			Code:    util.ErrorGeneric,
			Message: fmt.Sprintf("cannot create submit file: %v", err),
		}
	}

	_, err = file.WriteString(doc.Render())
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", &util.CondorError{
			Code:    util.ErrorGeneric,
			Message: fmt.Sprintf("cannot write submit file %s: %v", file.Name(), err),
		}
	}

	log.Debugf("Submit description written to %s.", file.Name())
	return file.Name(), nil
}
