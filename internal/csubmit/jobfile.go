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
	"fmt"
	"os"
	"sort"

	"CondorFrontEnd/internal/submitfile"
	"CondorFrontEnd/internal/util"

	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Spec is the full submission description. It is seeded from the
// configuration file, optionally overlaid with a job file and finally
// with command-line flags, in that order.
type Spec struct {
	Job         JobSection         `yaml:"job"`
	Resource    ResourceSection    `yaml:"resource"`
	Environment EnvironmentSection `yaml:"environment"`
	Sweep       []SweepAxis        `yaml:"sweep"`
}

type JobSection struct {
	Executable     string         `yaml:"executable"`
	ProgramFile    string         `yaml:"program_file"`
	PosArgs        []any          `yaml:"pos_args"`
	Kwargs         map[string]any `yaml:"kwargs"`
	TransferFiles  string         `yaml:"transfer_files"`
	TransferOutput string         `yaml:"transfer_output"`
	StreamOutput   bool           `yaml:"stream_output"`
	NoCheckpoint   bool           `yaml:"no_checkpoint"`
	RuntimeHours   int            `yaml:"runtime_hours"`
	Tag            string         `yaml:"tag"`
	ArtifactDir    string         `yaml:"artifact_dir"`
	ExtraAttrs     map[string]any `yaml:"extra_attrs"`
}

type ResourceSection struct {
	Universe        string   `yaml:"universe"`
	Image           string   `yaml:"image"`
	Cpus            uint32   `yaml:"cpus"`
	Gpus            uint32   `yaml:"gpus"`
	Memory          string   `yaml:"memory"`
	Stornext        bool     `yaml:"stornext"`
	GpuMemoryMinMb  uint64   `yaml:"gpu_memory_min_mb"`
	GpuMemoryMaxMb  uint64   `yaml:"gpu_memory_max_mb"`
	CudaCapability  float64  `yaml:"cuda_capability"`
	NoPriority      bool     `yaml:"no_priority"`
	Machines        []string `yaml:"machines"`
	ExcludeMachines []string `yaml:"exclude_machines"`
	Constraints     []string `yaml:"constraints"`
	Mounts          []string `yaml:"mounts"`
}

type EnvironmentSection struct {
	Namespace  string   `yaml:"namespace"`
	ExportEnvs []string `yaml:"export_envs"`
}

type SweepAxis struct {
	Name   string `yaml:"name"`
	Values []any  `yaml:"values"`
}

func defaultSpec(config *util.Config) *Spec {
	return &Spec{
		Job: JobSection{
			TransferFiles:  string(submitfile.TransferYes),
			TransferOutput: string(submitfile.TransferOnExitOrEvict),
			RuntimeHours:   4,
			ArtifactDir:    config.Submit.ArtifactDir,
		},
		Resource: ResourceSection{
			Universe: string(submitfile.UniverseDocker),
			Image:    config.Submit.DefaultImage,
		},
		Environment: EnvironmentSection{
			Namespace: config.Submit.Namespace,
		},
	}
}

// loadJobFile overlays the YAML description at path onto spec. Keys that
// are absent from the file keep their current value.
func loadJobFile(path string, spec *Spec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return fmt.Errorf("cannot parse job file %s: %w", path, err)
	}
	return nil
}

// YAML scalars may arrive as numbers or booleans; the submit file only
// ever sees their text form.
func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func toStrings(vs []any) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, toString(v))
	}
	return out
}

func toStringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = toString(v)
	}
	return out
}

// extraAttrsJSON renders the job file's extra_attrs map as a JSON object,
// keys sorted for determinism.
func extraAttrsJSON(attrs map[string]any) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := "{}"
	for _, k := range keys {
		var err error
		out, err = sjson.Set(out, k, attrs[k])
		if err != nil {
			return "", fmt.Errorf("invalid extra attribute %q: %w", k, err)
		}
	}
	return out, nil
}
