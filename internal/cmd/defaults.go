package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"
)

// defaultsCmd prints the default scoring parameters of a BLAST program
var defaultsCmd = &cobra.Command{
	Use:                        "defaults [program]",
	Short:                      "Print the default parameters of a BLAST program",
	Run:                        runDefaultsCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Print the parameters 'blastkit search --program-defaults' sets for a
program, as YAML. They can be copied into a settings file or passed as flags.
Without a program, the defaults of every program are printed.`,
	Example: "  blastkit defaults blastn",
	Args:    cobra.MaximumNArgs(1),
}

func init() {
	RootCmd.AddCommand(defaultsCmd)
}

func runDefaultsCmd(cmd *cobra.Command, args []string) {
	programs := maps.Keys(blast.ProgramDefaults)
	slices.Sort(programs)
	if len(args) == 1 {
		programs = args
	}

	if err := writeDefaults(os.Stdout, programs); err != nil {
		rlog.Fatal(err)
	}
}

// writeDefaults writes the default parameters of each program to w as a YAML
// document keyed by program name.
func writeDefaults(w io.Writer, programs []string) error {
	doc := yaml.MapSlice{}
	for _, program := range programs {
		params, err := blast.SearchParams{Program: program}.WithProgramDefaults()
		if err != nil {
			return err
		}

		values := yaml.MapSlice{{Key: "evalue", Value: params.EValue}}
		for _, name := range params.ConditionalParameters()[1:] {
			values = append(values, yaml.MapItem{Key: name, Value: defaultValue(params, name)})
		}
		if params.ScoringMode() != blast.Match {
			values = append(values, yaml.MapItem{Key: "matrix", Value: params.Matrix})
		}
		doc = append(doc, yaml.MapItem{Key: program, Value: values})
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func defaultValue(p blast.SearchParams, name string) string {
	for flag, field := range scoringFlags(&p) {
		if flagParameter(flag) == name {
			return *field
		}
	}
	return ""
}

// flagParameter returns the BLAST+ name of a search flag, eg word-size -> word_size.
func flagParameter(flag string) string {
	if flag == "word-size" {
		return "word_size"
	}
	return flag
}
