// Package sweep expands parameter grids into per-job flag assignments,
// one submission per grid point.
package sweep

import (
	"fmt"
	"strings"
)

// Axis is one swept flag and the values it takes.
type Axis struct {
	Name   string
	Values []string
}

// AxisValue is one axis pinned to one of its values.
type AxisValue struct {
	Name  string
	Value string
}

// Point is one cell of the grid: a value for every axis, in the order
// the axes were added.
type Point []AxisValue

// Kwargs returns the point as a flag map, ready to merge into a job's
// keyword arguments.
func (p Point) Kwargs() map[string]string {
	kwargs := make(map[string]string, len(p))
	for _, av := range p {
		kwargs[av.Name] = av.Value
	}
	return kwargs
}

func (p Point) String() string {
	parts := make([]string, 0, len(p))
	for _, av := range p {
		parts = append(parts, av.Name+"="+av.Value)
	}
	return strings.Join(parts, " ")
}

// Grid is an ordered set of axes. The zero value is an empty grid.
type Grid struct {
	axes []Axis
}

// ParseAxis parses a "name=v1,v2,..." sweep declaration.
func ParseAxis(s string) (Axis, error) {
	name, list, found := strings.Cut(s, "=")
	if !found || name == "" {
		return Axis{}, fmt.Errorf("invalid sweep %q: expected name=value,...", s)
	}

	var values []string
	for _, v := range strings.Split(list, ",") {
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return Axis{}, fmt.Errorf("invalid sweep %q: no values", s)
	}

	return Axis{Name: name, Values: values}, nil
}

func (g *Grid) Add(axis Axis) {
	g.axes = append(g.axes, axis)
}

func (g *Grid) Empty() bool {
	return len(g.axes) == 0
}

func (g *Grid) Axes() []Axis {
	return g.axes
}

// Size is the number of grid points.
func (g *Grid) Size() int {
	if len(g.axes) == 0 {
		return 0
	}
	total := 1
	for _, ax := range g.axes {
		total *= len(ax.Values)
	}
	return total
}

// Combinations enumerates every grid point. The first axis added varies
// slowest, so submissions group by leading axes.
func (g *Grid) Combinations() []Point {
	total := g.Size()
	if total == 0 {
		return nil
	}

	points := make([]Point, 0, total)
	for i := 0; i < total; i++ {
		point := make(Point, len(g.axes))
		idx := i
		for a := len(g.axes) - 1; a >= 0; a-- {
			ax := g.axes[a]
			point[a] = AxisValue{Name: ax.Name, Value: ax.Values[idx%len(ax.Values)]}
			idx /= len(ax.Values)
		}
		points = append(points, point)
	}
	return points
}
