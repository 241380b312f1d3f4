package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/phaser"
	"github.com/anggasct/phaser/pkg/observers"
)

// DOTGenerator generates Graphviz DOT format representations of a phase cycle
type DOTGenerator struct {
	config  phaser.Config
	metrics *observers.MetricsObserver
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowTiming      bool
	ShowCounts      bool
	RankDirection   string // "TB", "LR", "BT", "RL"
	NodeShape       string
	InitialPenWidth int
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowTiming:      true,
		ShowCounts:      true,
		RankDirection:   "LR",
		NodeShape:       "circle",
		InitialPenWidth: 3,
	}
}

// NewDOTGenerator creates a new DOT generator for the given configuration.
// metrics may be nil.
func NewDOTGenerator(config phaser.Config, metrics *observers.MetricsObserver, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		config:  config,
		metrics: metrics,
		options: opts,
	}
}

// Generate creates a DOT representation of the phase cycle
func (g *DOTGenerator) Generate() (string, error) {
	if err := g.config.Validate(); err != nil {
		return "", fmt.Errorf("failed to generate cycle: %w", err)
	}

	var dot strings.Builder

	dot.WriteString("digraph PhaseCycle {\n")
	dot.WriteString(fmt.Sprintf("  label=\"%s\";\n", g.config.Name))
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generatePhases(&dot)
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

// generatePhases generates DOT nodes for both phases
func (g *DOTGenerator) generatePhases(dot *strings.Builder) {
	var visits map[phaser.Phase]int
	if g.metrics != nil && g.options.ShowCounts {
		visits = g.metrics.GetPhaseVisitCounts()
	}

	dot.WriteString("  // Phases\n")
	for _, phase := range []phaser.Phase{phaser.Red, phaser.Green} {
		fillColor := "lightcoral"
		if phase == phaser.Green {
			fillColor = "lightgreen"
		}

		label := phase.String()
		penWidth := 1
		if phase == g.config.InitialPhase {
			label += "\\n(initial)"
			penWidth = g.options.InitialPenWidth
		}
		if visits != nil {
			label += fmt.Sprintf("\\nvisits: %d", visits[phase])
		}

		dot.WriteString(fmt.Sprintf("  \"%s\" [shape=%s style=\"filled\" fillcolor=%s penwidth=%d label=\"%s\"];\n",
			phase, g.options.NodeShape, fillColor, penWidth, label))
	}
	dot.WriteString("\n")
}

// generateTransitions generates DOT edges for the two toggles
func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	var counts map[string]int
	if g.metrics != nil && g.options.ShowCounts {
		counts = g.metrics.GetTransitionCounts()
	}

	dot.WriteString("  // Toggles\n")
	for _, from := range []phaser.Phase{phaser.Red, phaser.Green} {
		to := from.Toggle()

		var parts []string
		if g.options.ShowTiming {
			parts = append(parts, fmt.Sprintf("%v..%v", g.config.MinToggleInterval(), g.config.MaxToggleInterval()))
		}
		if counts != nil {
			parts = append(parts, fmt.Sprintf("x%d", counts[from.String()+"->"+to.String()]))
		}

		if len(parts) == 0 {
			dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", from, to))
			continue
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\"];\n", from, to, strings.Join(parts, "\\n")))
	}
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
func NewSVGGenerator(config phaser.Config, metrics *observers.MetricsObserver, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(config, metrics, options...),
	}
}

// Generate creates an SVG representation of the phase cycle
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
