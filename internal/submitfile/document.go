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

import "strings"

// Document is one fully assembled submit description, ready to be written
// out and handed to the scheduler.
type Document struct {
	lines []string
}

// Assemble orders the environment declaration, job attributes and resource
// attributes into the canonical submit-file layout, terminated by the queue
// directive.
func Assemble(job *Job, res *Resource, env *Environment) (*Document, error) {
	envLine, err := env.Line(res.ExtraMounts(), res.Universe() == UniverseDocker)
	if err != nil {
		return nil, err
	}

	lines := []string{
		"## HTCondor submit file",
		"#######################",

		"# Job configurations",
		envLine,
	}
	lines = append(lines, job.Attributes()...)

	lines = append(lines, "# System configurations")
	lines = append(lines, res.Attributes()...)

	lines = append(lines,
		"# Queueing",
		"queue")

	return &Document{lines: lines}, nil
}

func (d *Document) Lines() []string {
	return d.lines
}

func (d *Document) Render() string {
	return strings.Join(d.lines, "\n") + "\n"
}
