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

package csubmit

import (
	"errors"

	"CondorFrontEnd/internal/util"

	"github.com/spf13/cobra"
)

var (
	FlagTag            string
	FlagArtifactDir    string
	FlagTransferFiles  string
	FlagTransferOutput string
	FlagStream         bool
	FlagNoCheckpoint   bool
	FlagRuntime        int
	FlagExtraAttr      string

	FlagUniverse       string
	FlagImage          string
	FlagCpus           uint32
	FlagGpus           uint32
	FlagMem            string
	FlagStornext       bool
	FlagGpuMemMin      uint64
	FlagGpuMemMax      uint64
	FlagCudaCapability float64
	FlagNoPriority     bool
	FlagMachines       string
	FlagExcludes       string
	FlagConstraint     []string
	FlagMount          []string

	FlagNamespace  string
	FlagExportEnvs []string

	FlagFile    string
	FlagSweep   []string
	FlagDryRun  bool
	FlagKeep    bool
	FlagExplain bool
	FlagFollow  bool
	FlagJson    bool

	FlagConfigFilePath string
	FlagDebugLevel     string

	RootCmd = &cobra.Command{
		Use:     "csubmit [flags] executable [program_file [args...]]",
		Short:   "Submit job to the scheduler",
		Version: util.Version(),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !cmd.Flags().Changed("file") {
				return errors.New("requires an executable argument or --file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return MainCsubmit(cmd, args)
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

	// Everything after the executable argument belongs to the job.
	RootCmd.Flags().SetInterspersed(false)

	RootCmd.Flags().StringVarP(&FlagFile, "file", "f", "", "Read the job description from a YAML file")
	RootCmd.Flags().StringVarP(&FlagTag, "tag", "J", "", "Batch name tag, also prefixed to the job's log files")
	RootCmd.Flags().StringVar(&FlagArtifactDir, "artifact-dir", "", "Directory receiving the log, error and output files")
	RootCmd.Flags().StringVar(&FlagTransferFiles, "transfer-files", "", "File transfer mode, supported values: IF_NEEDED, YES, NO (default is YES)")
	RootCmd.Flags().StringVar(&FlagTransferOutput, "transfer-output", "", "When to transfer output, supported values: ON_EXIT, ON_EXIT_OR_EVICT (default is ON_EXIT_OR_EVICT)")
	RootCmd.Flags().BoolVar(&FlagStream, "stream", false, "Stream output while the job runs")
	RootCmd.Flags().BoolVar(&FlagNoCheckpoint, "no-checkpoint", false, "Mark the job as not checkpointable")
	RootCmd.Flags().IntVar(&FlagRuntime, "runtime", 4, "Approximate runtime in hours")
	RootCmd.Flags().StringVar(&FlagExtraAttr, "extra-attr", "", "Extra attributes of the job (in JSON format)")

	RootCmd.Flags().StringVar(&FlagUniverse, "universe", "", "Execution universe, supported values: vanilla, docker (default is docker)")
	RootCmd.Flags().StringVar(&FlagImage, "image", "", "Container image for the docker universe")
	RootCmd.Flags().Uint32VarP(&FlagCpus, "cpus", "c", 1, "Number of CPUs required")
	RootCmd.Flags().Uint32VarP(&FlagGpus, "gpus", "g", 0, "Number of GPUs required")
	RootCmd.Flags().StringVar(&FlagMem, "mem", "", "Amount of real memory, support GB(G, g), MB(M, m), KB(K, k) and Bytes(B), default unit is MB")
	RootCmd.Flags().BoolVar(&FlagStornext, "stornext", false, "Require machines with the Stornext filesystem")
	RootCmd.Flags().Uint64Var(&FlagGpuMemMin, "gpu-mem-min", 2000, "Lower bound of GPU global memory in MB")
	RootCmd.Flags().Uint64Var(&FlagGpuMemMax, "gpu-mem-max", 24000, "Upper bound of GPU global memory in MB")
	RootCmd.Flags().Float64Var(&FlagCudaCapability, "cuda-capability", 2.0, "Minimum CUDA capability")
	RootCmd.Flags().BoolVar(&FlagNoPriority, "no-priority", false, "Request only machines not owned by a project")
	RootCmd.Flags().StringVarP(&FlagMachines, "machines", "w", "", "Machines the job may run on (comma separated list, ranges like vm[01-04] supported)")
	RootCmd.Flags().StringVarP(&FlagExcludes, "exclude", "x", "", "Exclude specific machines (comma separated list, ranges supported)")
	RootCmd.Flags().StringArrayVar(&FlagConstraint, "constraint", nil, "Additional requirement clause, e.g. \"(OpSysMajorVer > 7)\"")
	RootCmd.Flags().StringSliceVar(&FlagMount, "mount", nil, "Extra directories to mount into the container")

	RootCmd.Flags().StringVar(&FlagNamespace, "namespace", "", "Project namespace to mount")
	RootCmd.Flags().StringSliceVar(&FlagExportEnvs, "export-env", nil, "Environment variables to forward to the job")

	RootCmd.Flags().StringArrayVar(&FlagSweep, "sweep", nil, "Sweep axis, format: \"name=value,...\"; one submission per value combination")
	RootCmd.Flags().BoolVar(&FlagDryRun, "dry-run", false, "Write the submit file without submitting")
	RootCmd.Flags().BoolVar(&FlagKeep, "keep", false, "Keep the submit file after submission")
	RootCmd.Flags().BoolVar(&FlagExplain, "explain", false, "Print the requirements expression as a tree")
	RootCmd.Flags().BoolVar(&FlagFollow, "follow", false, "Follow the job's log file after submission")
	RootCmd.Flags().BoolVar(&FlagJson, "json", false, "Output in JSON format")
}
