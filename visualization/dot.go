// Package visualization renders transition tables as Graphviz diagrams
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/moore"
)

// DOTGenerator generates Graphviz DOT format representations of a table
type DOTGenerator struct {
	table   *moore.Table
	entry   moore.StateID
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowLights     bool
	ShowDwell      bool
	ShowReadings   bool
	ShowSelfLoops  bool
	UseShortCodes  bool
	RankDirection  string // "TB", "LR", "BT", "RL"
	NodeShape      string
	PedStateColor  string
	OpenStateColor string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowLights:     true,
		ShowDwell:      true,
		ShowReadings:   true,
		ShowSelfLoops:  true,
		UseShortCodes:  false,
		RankDirection:  "LR",
		NodeShape:      "box",
		PedStateColor:  "lightyellow",
		OpenStateColor: "lightblue",
	}
}

// NewDOTGenerator creates a new DOT generator for the given table
func NewDOTGenerator(table *moore.Table, entry moore.StateID, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		table:   table,
		entry:   entry,
		options: opts,
	}
}

// Generate creates a DOT representation of the table
func (g *DOTGenerator) Generate() (string, error) {
	if err := g.table.Validate(); err != nil {
		return "", fmt.Errorf("failed to generate states: %w", err)
	}

	var dot strings.Builder

	dot.WriteString("digraph StateMachine {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	dot.WriteString("  // States\n")
	for _, state := range g.table.States() {
		g.generateStateNode(&dot, state)
	}

	dot.WriteString("\n  // Transitions\n")
	for _, edge := range g.table.Edges() {
		g.generateEdge(&dot, edge)
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

func (g *DOTGenerator) name(id moore.StateID) string {
	if g.options.UseShortCodes {
		return id.Code()
	}
	return id.String()
}

// generateStateNode generates a DOT node for a single state
func (g *DOTGenerator) generateStateNode(dot *strings.Builder, state moore.State) {
	fillColor := g.options.OpenStateColor
	label := g.name(state.ID)

	lights := state.Lights()
	if lights.East == moore.Red && lights.North == moore.Red {
		fillColor = g.options.PedStateColor
	}
	if state.ID == g.entry {
		fillColor = "lightgreen"
		label += "\\n(initial)"
	}
	if g.options.ShowLights {
		label += fmt.Sprintf("\\nout=0x%02X", uint8(state.Output))
		label += "\\n" + lights.String()
	}
	if g.options.ShowDwell {
		label += fmt.Sprintf("\\ndwell=%d", uint32(state.Dwell))
	}

	dot.WriteString(fmt.Sprintf("  \"%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
		g.name(state.ID), fillColor, label))
}

// generateEdge writes one edge labelled with the readings that take it
func (g *DOTGenerator) generateEdge(dot *strings.Builder, edge moore.Edge) {
	if edge.From == edge.To && !g.options.ShowSelfLoops {
		return
	}
	if !g.options.ShowReadings || len(edge.Readings) == moore.NumReadings {
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", g.name(edge.From), g.name(edge.To)))
		return
	}

	readings := make([]string, len(edge.Readings))
	for i, r := range edge.Readings {
		readings[i] = fmt.Sprintf("%03b", uint8(r))
	}
	dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\"];\n",
		g.name(edge.From), g.name(edge.To), strings.Join(readings, ",")))
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(table *moore.Table, entry moore.StateID, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(table, entry, options...),
	}
}

// Generate creates an SVG representation of the table
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// GenerateSVG creates an SVG representation of the table
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
