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

package submitfile

import (
	"fmt"
	"strings"

	"CondorFrontEnd/internal/parser"

	"github.com/distribution/reference"
)

// Universe is the scheduler's execution-environment mode.
type Universe string

const (
	UniverseVanilla Universe = "vanilla"
	UniverseDocker  Universe = "docker"
)

func ParseUniverse(s string) (Universe, error) {
	switch Universe(strings.ToLower(s)) {
	case UniverseVanilla:
		return UniverseVanilla, nil
	case UniverseDocker:
		return UniverseDocker, nil
	}
	return "", fmt.Errorf("universe can either be %q or %q, got %q", UniverseVanilla, UniverseDocker, s)
}

// ResourceParams describes the machine resources a job needs. Zero values
// fall back to the cluster's customary defaults, matching the defaults the
// submit tooling has always used.
type ResourceParams struct {
	Universe    Universe // default docker
	DockerImage string

	Cpus     uint32 // default 1
	Gpus     uint32
	MemoryMb uint64 // default 4096

	HasStornext    bool
	GpuMemoryMinMb uint64  // default 2000
	GpuMemoryMaxMb uint64  // default 24000
	CudaCapability float64 // default 2.0
	NoPriority     bool

	MachineAllow []string
	MachineDeny  []string

	// ExtraMounts are appended to the resolved top-level mount in the
	// environment declaration.
	ExtraMounts []string

	// ExtraClauses are caller-supplied requirement expressions, each ANDed
	// after the generated clauses. Every clause must parse.
	ExtraClauses []string
}

// Resource is a validated, immutable resource description. Build one with
// NewResource.
type Resource struct {
	params ResourceParams
}

func NewResource(params ResourceParams) (*Resource, error) {
	if params.Universe == "" {
		params.Universe = UniverseDocker
	} else if _, err := ParseUniverse(string(params.Universe)); err != nil {
		return nil, err
	}

	if params.Universe == UniverseDocker && params.DockerImage == "" {
		return nil, fmt.Errorf("the docker universe requires a container image")
	}
	if params.DockerImage != "" {
		if _, err := reference.ParseNormalizedNamed(params.DockerImage); err != nil {
			return nil, fmt.Errorf("invalid container image %q: %w", params.DockerImage, err)
		}
	}

	if params.Cpus == 0 {
		params.Cpus = 1
	}
	if params.MemoryMb == 0 {
		params.MemoryMb = 4096
	}
	if params.GpuMemoryMinMb == 0 {
		params.GpuMemoryMinMb = 2000
	}
	if params.GpuMemoryMaxMb == 0 {
		params.GpuMemoryMaxMb = 24000
	}
	if params.CudaCapability == 0 {
		params.CudaCapability = 2.0
	}
	if params.Gpus > 0 && params.GpuMemoryMinMb >= params.GpuMemoryMaxMb {
		return nil, fmt.Errorf("GPU memory bounds are inverted: min %d >= max %d",
			params.GpuMemoryMinMb, params.GpuMemoryMaxMb)
	}

	for _, m := range append(append([]string{}, params.MachineAllow...), params.MachineDeny...) {
		if strings.TrimSpace(m) == "" {
			return nil, fmt.Errorf("machine names must not be empty")
		}
	}

	for _, clause := range params.ExtraClauses {
		if _, err := parser.Parse(clause); err != nil {
			return nil, fmt.Errorf("invalid requirement clause %q: %w", clause, err)
		}
	}

	return &Resource{params: params}, nil
}

func (r *Resource) Universe() Universe { return r.params.Universe }

func (r *Resource) ExtraMounts() []string { return r.params.ExtraMounts }

// Requirements joins the non-empty sub-clauses with logical AND, in fixed
// order. A clause whose governing flag or count is unset is omitted
// entirely, never emitted empty.
func (r *Resource) Requirements() string {
	var reqs []string

	if r.params.HasStornext {
		reqs = append(reqs, "(HasStornext)")
	}
	if r.params.Gpus > 0 {
		reqs = append(reqs,
			fmt.Sprintf("(CUDAGlobalMemoryMb > %d)", r.params.GpuMemoryMinMb),
			fmt.Sprintf("(CUDAGlobalMemoryMb < %d)", r.params.GpuMemoryMaxMb),
			fmt.Sprintf("(CUDACapability > %.1f)", r.params.CudaCapability))
	}
	if r.params.NoPriority {
		reqs = append(reqs, "(NotProjectOwned)")
	}
	for _, m := range r.params.MachineDeny {
		reqs = append(reqs, fmt.Sprintf("(Machine != %q)", m))
	}
	if len(r.params.MachineAllow) > 0 {
		eqs := make([]string, 0, len(r.params.MachineAllow))
		for _, m := range r.params.MachineAllow {
			eqs = append(eqs, fmt.Sprintf("(Machine == %q)", m))
		}
		reqs = append(reqs, "("+strings.Join(eqs, " || ")+")")
	}
	reqs = append(reqs, r.params.ExtraClauses...)

	return strings.Join(reqs, " && ")
}

// Attributes renders the system section of the submit file.
func (r *Resource) Attributes() []string {
	attrs := []string{
		fmt.Sprintf("universe = %s", r.params.Universe),
	}
	if r.params.Universe == UniverseDocker {
		attrs = append(attrs, fmt.Sprintf("docker_image = %s", r.params.DockerImage))
	}
	attrs = append(attrs,
		fmt.Sprintf("request_CPUs = %d", r.params.Cpus),
		fmt.Sprintf("request_GPUs = %d", r.params.Gpus),
		fmt.Sprintf("request_memory = %d", r.params.MemoryMb),
	)
	if requirements := r.Requirements(); requirements != "" {
		attrs = append(attrs, fmt.Sprintf("requirements = %s", requirements))
	}
	if r.params.Gpus > 0 {
		attrs = append(attrs, fmt.Sprintf("+GPUMem = %d", r.params.GpuMemoryMinMb))
	}
	return attrs
}
