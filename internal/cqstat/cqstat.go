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

package cqstat

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"CondorFrontEnd/internal/remote"
	"CondorFrontEnd/internal/util"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// JobStatus value for a running job in the scheduler's classads.
const jobStatusRunning = 2

func MainCqstat(cmd *cobra.Command, args []string) error {
	config, err := util.ParseConfig(FlagConfigFilePath)
	if err != nil {
		return &util.CondorError{Code: util.ErrorConfig, Message: err.Error()}
	}

	levelName := config.Log.Level
	if cmd.Flags().Changed("debug-level") {
		levelName = FlagDebugLevel
	}
	level, err := util.ParseLogLevel(levelName)
	if err != nil {
		return &util.CondorError{Code: util.ErrorCmdArg, Message: err.Error()}
	}
	util.InitLogger(level)
	util.SetupFileLogging(config.Log.File)

	query := []string{"condor_q", "-json"}
	if FlagAll {
		query = append(query, "-allusers")
	}
	query = append(query, args...)

	sess, err := remote.Dial(&config.Cluster)
	if err != nil {
		var condorErr *util.CondorError
		if errors.As(err, &condorErr) {
			return condorErr
		}
		return &util.CondorError{
			Code:    util.ErrorNetwork,
			Message: fmt.Sprintf("Cannot connect to %s: %v.", config.Cluster.Host, err),
		}
	}
	defer sess.Close()

	// The raw classad JSON is parsed below, not echoed.
	sess.SetOutput(io.Discard)

	lines, err := sess.Execute(strings.Join(query, " "))
	if err != nil {
		var execErr *remote.ExecError
		if errors.As(err, &execErr) {
			return &util.CondorError{
				Code:    util.ErrorRemoteExec,
				Message: fmt.Sprintf("Queue query failed: %s", strings.Join(execErr.Stderr, "; ")),
			}
		}
		return &util.CondorError{Code: util.ErrorRemoteExec, Message: err.Error()}
	}

	// condor_q -json prints nothing at all for an empty queue.
	body := strings.TrimSpace(strings.Join(lines, "\n"))

	if FlagJson {
		if body == "" {
			body = "[]"
		}
		fmt.Println(body)
		return nil
	}
	if body == "" {
		fmt.Println("No jobs in the queue.")
		return nil
	}

	tableData, err := queueRows(body, time.Now().Unix())
	if err != nil {
		return &util.CondorError{Code: util.ErrorCqstatQueryParsing, Message: err.Error()}
	}

	table := tablewriter.NewWriter(os.Stdout)
	util.SetBorderlessTable(table)
	if !FlagNoHeader {
		table.SetHeader([]string{"JobId", "Name", "Owner", "ST", "RunTime", "Cmd"})
	}
	table.AppendBulk(tableData)
	table.Render()
	return nil
}

// queueRows turns the classad array from condor_q -json into table rows.
func queueRows(body string, now int64) ([][]string, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("the queue query did not return valid JSON")
	}
	parsed := gjson.Parse(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("the queue query did not return a classad array")
	}

	ads := parsed.Array()
	tableData := make([][]string, 0, len(ads))
	for _, ad := range ads {
		name := ad.Get("JobBatchName").String()
		if name == "" {
			name = filepath.Base(ad.Get("Cmd").String())
		}
		tableData = append(tableData, []string{
			fmt.Sprintf("%d.%d", ad.Get("ClusterId").Int(), ad.Get("ProcId").Int()),
			name,
			ad.Get("Owner").String(),
			statusLetter(ad.Get("JobStatus").Int()),
			util.SecondTimeFormat(runSeconds(ad, now)),
			ad.Get("Cmd").String(),
		})
	}
	return tableData, nil
}

// runSeconds reports how long the job has been running: wall clock since
// the current start for a running job, accumulated remote wall clock time
// otherwise.
func runSeconds(ad gjson.Result, now int64) int64 {
	if ad.Get("JobStatus").Int() == jobStatusRunning {
		if start := ad.Get("JobCurrentStartDate").Int(); start > 0 && start <= now {
			return now - start
		}
	}
	return int64(ad.Get("RemoteWallClockTime").Float())
}

func statusLetter(status int64) string {
	switch status {
	case 0:
		return "U"
	case 1:
		return "I"
	case 2:
		return "R"
	case 3:
		return "X"
	case 4:
		return "C"
	case 5:
		return "H"
	case 6:
		return "E"
	default:
		return "?"
	}
}
