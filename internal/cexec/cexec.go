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

package cexec

import (
	"errors"
	"fmt"
	"strings"

	"CondorFrontEnd/internal/remote"
	"CondorFrontEnd/internal/util"

	"github.com/spf13/cobra"
)

func MainCexec(cmd *cobra.Command, args []string) error {
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

	if _, err := sess.Execute(strings.Join(args, " ")); err != nil {
		// The remote stderr is already mirrored to the terminal.
		return &util.CondorError{Code: util.ErrorRemoteExec}
	}
	return nil
}
