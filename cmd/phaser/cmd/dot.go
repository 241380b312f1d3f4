package cmd

import (
	"fmt"
	"os"

	"github.com/anggasct/phaser"
	"github.com/anggasct/phaser/visualization"
	"github.com/spf13/cobra"
)

// dotCmd represents the dot command
var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "render the phase cycle of a light as Graphviz DOT",
	Long: `dot renders the red/green cycle of a light configuration (--config, or
the defaults) with the toggle interval on each edge. With --svg the graph is
piped through the Graphviz dot binary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := phaser.DefaultConfig()
		if dotConfigPath != "" {
			var err error
			cfg, err = phaser.LoadConfig(dotConfigPath)
			if err != nil {
				return err
			}
		}

		options := visualization.DefaultDOTOptions()
		options.RankDirection = rankDirection

		if svg {
			content, err := visualization.NewSVGGenerator(cfg, nil, options).Generate()
			if err != nil {
				return err
			}
			return writeOutput(cmd, content)
		}

		generator := visualization.NewDOTGenerator(cfg, nil, options)
		if output != "" {
			return generator.GenerateToFile(output)
		}
		content, err := generator.Generate()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	},
}

var dotConfigPath string
var output string
var rankDirection string
var svg bool

func init() {
	rootCmd.AddCommand(dotCmd)

	dotCmd.Flags().StringVarP(&dotConfigPath, "config", "c", "",
		"path of a light configuration (YAML)")
	dotCmd.Flags().StringVarP(&output, "output", "o", "",
		"write to this file instead of stdout")
	dotCmd.Flags().StringVar(&rankDirection, "rankdir", "LR",
		"graph direction (TB, LR, BT, RL)")
	dotCmd.Flags().BoolVar(&svg, "svg", false,
		"render SVG with the Graphviz dot binary")
}

func writeOutput(cmd *cobra.Command, content string) error {
	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	return os.WriteFile(output, []byte(content), 0644)
}
