package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/scriptlint/internal/graph"
	"github.com/hargabyte/scriptlint/internal/lint"
	"github.com/hargabyte/scriptlint/internal/script"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Render the reference graph of a script",
	Long: `Render one of the two reference graphs of a script as a Mermaid flowchart.

Graph Kinds:
  command  conditional source -> every command in its branches (default)
  script   consecutive IDs of a branch script-reference array

Node shapes follow element types; nodes on a cycle are highlighted.

Examples:
  scriptlint graph deploy.yaml                    # Command graph
  scriptlint graph deploy.yaml --kind script      # Script hand-off graph
  scriptlint graph deploy.yaml --from probe       # Only what probe reaches
  scriptlint graph deploy.yaml --from probe --to verify   # Every path between
  scriptlint graph deploy.yaml --order            # Topological order
  scriptlint graph deploy.yaml --cycles           # List cycles`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

var (
	graphKind      string
	graphFrom      string
	graphTo        string
	graphMaxDepth  int
	graphDirection string
	graphOrder     bool
	graphCycles    bool
)

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVar(&graphKind, "kind", lint.KindCommand, "Graph kind (command|script)")
	graphCmd.Flags().StringVar(&graphFrom, "from", "", "Only include nodes reachable from this ID")
	graphCmd.Flags().StringVar(&graphTo, "to", "", "With --from, print every path ending at this ID")
	graphCmd.Flags().IntVar(&graphMaxDepth, "max-depth", graph.DefaultMaxDepth, "Longest path --to will follow")
	graphCmd.Flags().StringVar(&graphDirection, "direction", "LR", "Layout direction (LR|TD)")
	graphCmd.Flags().BoolVar(&graphOrder, "order", false, "Print a topological order instead of a diagram")
	graphCmd.Flags().BoolVar(&graphCycles, "cycles", false, "Print cycles instead of a diagram")
}

func runGraph(cmd *cobra.Command, args []string) error {
	doc, err := script.Load(args[0])
	if err != nil {
		return err
	}
	graphs := lint.BuildGraphs(doc)
	w := cmd.OutOrStdout()

	switch {
	case graphTo != "":
		if graphFrom == "" {
			return fmt.Errorf("--to requires --from")
		}
		g, err := graphs.Select(graphKind)
		if err != nil {
			return err
		}
		paths := g.AllPaths(graphFrom, graphTo, graphMaxDepth)
		if len(paths) == 0 {
			return fmt.Errorf("no path from %s to %s in the %s graph", graphFrom, graphTo, graphKind)
		}
		for _, p := range paths {
			fmt.Fprintln(w, p)
		}
		return nil
	case graphOrder, graphCycles:
		g, err := graphs.Select(graphKind)
		if err != nil {
			return err
		}
		if graphCycles {
			for _, c := range g.FindCycles() {
				fmt.Fprintln(w, graph.FormatCycle(c))
			}
			return nil
		}
		order := g.TopologicalSort()
		if order == nil && g.NodeCount() > 0 {
			return fmt.Errorf("%s graph has cycles; run with --cycles", graphKind)
		}
		fmt.Fprintln(w, strings.Join(order, "\n"))
		return nil
	}

	diagram, err := graphs.Mermaid(graphKind, graphFrom, graphDirection)
	if err != nil {
		return err
	}
	fmt.Fprint(w, diagram)
	return nil
}
