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
	"CondorFrontEnd/internal/util"

	"github.com/spf13/cobra"
)

var (
	FlagAll      bool
	FlagNoHeader bool
	FlagJson     bool

	FlagConfigFilePath string
	FlagDebugLevel     string

	RootCmd = &cobra.Command{
		Use:     "cqstat [flags] [cluster_id | owner]...",
		Short:   "Show jobs in the scheduler queue",
		Version: util.Version(),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return MainCqstat(cmd, args)
		},
	}
)

func ParseCmdArgs() {
	util.RunEWrapperForLeafCommand(RootCmd)
	util.RunAndHandleExit(RootCmd)
}

func init() {
	RootCmd.SetVersionTemplate(util.VersionTemplate())
	RootCmd.PersistentFlags().StringVarP(&FlagConfigFilePath, "config", "C",
		util.DefaultConfigPath, "Path to configuration file")
	RootCmd.PersistentFlags().StringVarP(&FlagDebugLevel, "debug-level", "",
		"info", "Available debug level: trace, debug, info")

	RootCmd.Flags().BoolVarP(&FlagAll, "all", "a", false,
		"Show jobs of all users, not only your own")
	RootCmd.Flags().BoolVarP(&FlagNoHeader, "noheader", "N", false,
		"no headers on output")
	RootCmd.Flags().BoolVar(&FlagJson, "json", false,
		"Produce JSON output")
}
