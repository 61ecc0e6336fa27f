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
	"fmt"
	"os"
	"strconv"
	"strings"

	"CondorFrontEnd/internal/parser"
	"CondorFrontEnd/internal/remote"
	"CondorFrontEnd/internal/submit"
	"CondorFrontEnd/internal/submitfile"
	"CondorFrontEnd/internal/sweep"
	"CondorFrontEnd/internal/util"

	"github.com/nxadm/tail"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

func MainCsubmit(cmd *cobra.Command, args []string) error {
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

	spec := defaultSpec(config)
	if FlagFile != "" {
		if err := loadJobFile(FlagFile, spec); err != nil {
			return &util.CondorError{Code: util.ErrorCsubmitJobFile, Message: err.Error()}
		}
	}
	applyFlags(cmd, spec)
	applyArgs(spec, args)

	grid, err := buildGrid(spec)
	if err != nil {
		return &util.CondorError{Code: util.ErrorCmdArg, Message: err.Error()}
	}

	res, err := buildResource(spec)
	if err != nil {
		return &util.CondorError{Code: util.ErrorCmdArg, Message: err.Error()}
	}

	env := &submitfile.Environment{
		Namespace:  spec.Environment.Namespace,
		ExportEnvs: spec.Environment.ExportEnvs,
	}

	if FlagExplain {
		explainRequirements(res)
	}

	points := grid.Combinations()
	if grid.Empty() {
		points = []sweep.Point{nil}
	}
	if FlagFollow && len(points) > 1 {
		return &util.CondorError{
			Code:    util.ErrorCmdArg,
			Message: "Invalid argument: --follow requires a single submission.",
		}
	}
	if len(points) > 1 && !FlagJson {
		previewSweep(grid)
	}

	var runner submit.Runner
	if !FlagDryRun {
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
		runner = sess
	}

	clusters := make([]int64, 0, len(points))
	var lastJob *submitfile.Job
	for _, point := range points {
		job, err := buildJob(spec, point)
		if err != nil {
			return &util.CondorError{Code: util.ErrorCmdArg, Message: err.Error()}
		}

		doc, err := submitfile.Assemble(job, res, env)
		if err != nil {
			code := util.ErrorGeneric
			if errors.Is(err, submitfile.ErrNamespaceNotFound) || errors.Is(err, submitfile.ErrEnvVarNotSet) {
				code = util.ErrorConfig
			}
			return &util.CondorError{Code: code, Message: err.Error()}
		}

		cluster, err := submit.Submit(doc, runner, submit.Params{DryRun: FlagDryRun, Keep: FlagKeep})
		if err != nil {
			var execErr *remote.ExecError
			if errors.As(err, &execErr) {
				return &util.CondorError{
					Code:    util.ErrorRemoteExec,
					Message: fmt.Sprintf("Submission failed: %s", strings.Join(execErr.Stderr, "; ")),
				}
			}
			var condorErr *util.CondorError
			if errors.As(err, &condorErr) {
				return condorErr
			}
			return &util.CondorError{Code: util.ErrorGeneric, Message: err.Error()}
		}

		if !FlagDryRun && !FlagJson {
			if len(point) > 0 {
				fmt.Printf("Job [%s] submitted to cluster %d.\n", point.String(), cluster)
			} else {
				fmt.Printf("Job submitted to cluster %d.\n", cluster)
			}
		}
		clusters = append(clusters, cluster)
		lastJob = job
	}

	if FlagJson {
		printJsonResult(clusters, lastJob)
	}

	if FlagFollow && !FlagDryRun && len(clusters) == 1 {
		return followLog(lastJob.LogFile(clusters[0], 0))
	}
	return nil
}

// applyFlags overlays every flag the user actually set onto spec. List
// flags append; everything else replaces.
func applyFlags(cmd *cobra.Command, spec *Spec) {
	flags := cmd.Flags()

	if flags.Changed("tag") {
		spec.Job.Tag = FlagTag
	}
	if flags.Changed("artifact-dir") {
		spec.Job.ArtifactDir = FlagArtifactDir
	}
	if flags.Changed("transfer-files") {
		spec.Job.TransferFiles = FlagTransferFiles
	}
	if flags.Changed("transfer-output") {
		spec.Job.TransferOutput = FlagTransferOutput
	}
	if flags.Changed("stream") {
		spec.Job.StreamOutput = FlagStream
	}
	if flags.Changed("no-checkpoint") {
		spec.Job.NoCheckpoint = FlagNoCheckpoint
	}
	if flags.Changed("runtime") {
		spec.Job.RuntimeHours = FlagRuntime
	}

	if flags.Changed("universe") {
		spec.Resource.Universe = FlagUniverse
	}
	if flags.Changed("image") {
		spec.Resource.Image = FlagImage
	}
	if flags.Changed("cpus") {
		spec.Resource.Cpus = FlagCpus
	}
	if flags.Changed("gpus") {
		spec.Resource.Gpus = FlagGpus
	}
	if flags.Changed("mem") {
		spec.Resource.Memory = FlagMem
	}
	if flags.Changed("stornext") {
		spec.Resource.Stornext = FlagStornext
	}
	if flags.Changed("gpu-mem-min") {
		spec.Resource.GpuMemoryMinMb = FlagGpuMemMin
	}
	if flags.Changed("gpu-mem-max") {
		spec.Resource.GpuMemoryMaxMb = FlagGpuMemMax
	}
	if flags.Changed("cuda-capability") {
		spec.Resource.CudaCapability = FlagCudaCapability
	}
	if flags.Changed("no-priority") {
		spec.Resource.NoPriority = FlagNoPriority
	}
	if flags.Changed("machines") {
		spec.Resource.Machines = []string{FlagMachines}
	}
	if flags.Changed("exclude") {
		spec.Resource.ExcludeMachines = []string{FlagExcludes}
	}
	spec.Resource.Constraints = append(spec.Resource.Constraints, FlagConstraint...)
	spec.Resource.Mounts = append(spec.Resource.Mounts, FlagMount...)

	if flags.Changed("namespace") {
		spec.Environment.Namespace = FlagNamespace
	}
	spec.Environment.ExportEnvs = append(spec.Environment.ExportEnvs, FlagExportEnvs...)
}

// applyArgs maps the positional arguments onto the description:
// executable, then the program file, then its arguments verbatim.
func applyArgs(spec *Spec, args []string) {
	if len(args) > 0 {
		spec.Job.Executable = args[0]
	}
	if len(args) > 1 {
		spec.Job.ProgramFile = args[1]
	}
	if len(args) > 2 {
		spec.Job.PosArgs = make([]any, 0, len(args)-2)
		for _, a := range args[2:] {
			spec.Job.PosArgs = append(spec.Job.PosArgs, a)
		}
	}
}

func buildGrid(spec *Spec) (*sweep.Grid, error) {
	var grid sweep.Grid
	for _, ax := range spec.Sweep {
		values := toStrings(ax.Values)
		if ax.Name == "" || len(values) == 0 {
			return nil, fmt.Errorf("invalid sweep axis %q: a name and at least one value are required", ax.Name)
		}
		grid.Add(sweep.Axis{Name: ax.Name, Values: values})
	}
	for _, s := range FlagSweep {
		axis, err := sweep.ParseAxis(s)
		if err != nil {
			return nil, err
		}
		grid.Add(axis)
	}
	return &grid, nil
}

func buildJob(spec *Spec, point sweep.Point) (*submitfile.Job, error) {
	kwargs := toStringMap(spec.Job.Kwargs)
	if len(point) > 0 {
		if kwargs == nil {
			kwargs = make(map[string]string, len(point))
		}
		for k, v := range point.Kwargs() {
			kwargs[k] = v
		}
	}

	extraAttrs, err := extraAttrsJSON(spec.Job.ExtraAttrs)
	if err != nil {
		return nil, err
	}
	if FlagExtraAttr != "" {
		if extraAttrs, err = util.AmendExtraAttrs(extraAttrs, FlagExtraAttr); err != nil {
			return nil, err
		}
	}

	return submitfile.NewJob(submitfile.JobParams{
		Executable:     spec.Job.Executable,
		ProgramFile:    spec.Job.ProgramFile,
		PosArgs:        toStrings(spec.Job.PosArgs),
		Kwargs:         kwargs,
		TransferFiles:  submitfile.TransferFiles(spec.Job.TransferFiles),
		TransferOutput: submitfile.TransferOutput(spec.Job.TransferOutput),
		StreamOutput:   spec.Job.StreamOutput,
		CanCheckpoint:  !spec.Job.NoCheckpoint,
		RuntimeHours:   spec.Job.RuntimeHours,
		Tag:            spec.Job.Tag,
		ArtifactDir:    spec.Job.ArtifactDir,
		ExtraAttrs:     extraAttrs,
	})
}

func buildResource(spec *Spec) (*submitfile.Resource, error) {
	var memoryMb uint64
	if spec.Resource.Memory != "" {
		var err error
		if memoryMb, err = util.ParseMemStringAsMb(spec.Resource.Memory); err != nil {
			return nil, err
		}
	}

	allow, err := expandMachines(spec.Resource.Machines)
	if err != nil {
		return nil, err
	}
	deny, err := expandMachines(spec.Resource.ExcludeMachines)
	if err != nil {
		return nil, err
	}

	return submitfile.NewResource(submitfile.ResourceParams{
		Universe:       submitfile.Universe(spec.Resource.Universe),
		DockerImage:    spec.Resource.Image,
		Cpus:           spec.Resource.Cpus,
		Gpus:           spec.Resource.Gpus,
		MemoryMb:       memoryMb,
		HasStornext:    spec.Resource.Stornext,
		GpuMemoryMinMb: spec.Resource.GpuMemoryMinMb,
		GpuMemoryMaxMb: spec.Resource.GpuMemoryMaxMb,
		CudaCapability: spec.Resource.CudaCapability,
		NoPriority:     spec.Resource.NoPriority,
		MachineAllow:   allow,
		MachineDeny:    deny,
		ExtraMounts:    spec.Resource.Mounts,
		ExtraClauses:   spec.Resource.Constraints,
	})
}

func expandMachines(entries []string) ([]string, error) {
	var machines []string
	for _, entry := range entries {
		expanded, ok := util.ParseHostList(entry)
		if !ok {
			return nil, fmt.Errorf("invalid machine list %q", entry)
		}
		machines = append(machines, expanded...)
	}
	return machines, nil
}

func previewSweep(grid *sweep.Grid) {
	table := tablewriter.NewWriter(os.Stdout)
	util.SetBorderlessTable(table)

	header := []string{"#"}
	for _, ax := range grid.Axes() {
		header = append(header, ax.Name)
	}
	table.SetHeader(header)

	tableData := make([][]string, 0, grid.Size())
	for i, point := range grid.Combinations() {
		row := make([]string, 0, len(point)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, av := range point {
			row = append(row, av.Value)
		}
		tableData = append(tableData, row)
	}
	table.AppendBulk(tableData)
	table.Render()
}

func explainRequirements(res *submitfile.Resource) {
	requirements := res.Requirements()
	if requirements == "" {
		fmt.Println("No requirements clause.")
		return
	}
	expr, err := parser.Parse(requirements)
	if err != nil {
		log.Warnf("Cannot parse requirements %q: %v.", requirements, err)
		return
	}
	fmt.Print(expr.Tree())
}

func printJsonResult(clusters []int64, job *submitfile.Job) {
	out := "{}"
	out, _ = sjson.Set(out, "dry_run", FlagDryRun)
	if len(clusters) == 1 {
		out, _ = sjson.Set(out, "cluster", clusters[0])
		out, _ = sjson.Set(out, "log_file", job.LogFile(clusters[0], 0))
	} else {
		out, _ = sjson.Set(out, "clusters", clusters)
	}
	fmt.Println(out)
}

// followLog tails the job's log file until interrupted. The artifact
// directory lives on the shared filesystem, so the scheduler's writes
// show up locally.
func followLog(path string) error {
	log.Infof("Following %s until interrupted.", path)
	t, err := tail.TailFile(path, tail.Config{Follow: true, ReOpen: true, MustExist: false})
	if err != nil {
		return &util.CondorError{
			Code:    util.ErrorGeneric,
			Message: fmt.Sprintf("Cannot follow %s: %v.", path, err),
		}
	}
	for line := range t.Lines {
		if line.Err != nil {
			return &util.CondorError{
				Code:    util.ErrorGeneric,
				Message: fmt.Sprintf("Lost %s: %v.", path, line.Err),
			}
		}
		fmt.Println(line.Text)
	}
	return nil
}
