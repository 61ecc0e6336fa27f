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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectSpaceRoot is where the shared project namespaces are mounted on
// both the workstation and the cluster.
const ProjectSpaceRoot = "/vol/research"

var (
	ErrNamespaceNotFound = errors.New("project namespace not found")
	ErrEnvVarNotSet      = errors.New("environment variable not set")
)

// Environment names what the job expects from its execution environment:
// the project namespace to mount and the local variables to forward.
type Environment struct {
	Namespace  string
	ExportEnvs []string
}

// TopLevelMount resolves the directory the execution environment must
// mount. Working under the home directory mounts home itself; anywhere else
// the named project namespace under ProjectSpaceRoot is used and must
// exist.
func TopLevelMount(namespace string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(cwd, home) {
		// CWD is inside the home directory; not recommended though
		return home, nil
	}

	if namespace == "" {
		return "", fmt.Errorf("%w: no namespace configured and %s is outside the home directory",
			ErrNamespaceNotFound, cwd)
	}

	path := filepath.Join(ProjectSpaceRoot, namespace)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNamespaceNotFound, path)
	}
	return path, nil
}

// Line renders the environment declaration. The mount list is only
// meaningful to the containerized universe; bare-process jobs see the
// shared filesystem anyway. Every exported variable must be present in the
// local process environment.
func (e *Environment) Line(extraMounts []string, docker bool) (string, error) {
	var pairs []string

	if docker {
		mount, err := TopLevelMount(e.Namespace)
		if err != nil {
			return "", err
		}
		dirs := append([]string{mount}, extraMounts...)
		pairs = append(pairs, "mount="+strings.Join(dirs, ","))
	}

	for _, name := range e.ExportEnvs {
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrEnvVarNotSet, name)
		}
		pairs = append(pairs, name+"="+val)
	}

	return fmt.Sprintf("environment = %q", strings.Join(pairs, " ")), nil
}
