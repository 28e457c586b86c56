package cmd

import (
	"log"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rlog is shared with the blast package so commands log the same way.
var rlog = blast.Logger()

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "blastkit",
	Short: `blastkit

Install NCBI BLAST+ and Entrez Direct, search sequences against local or
NCBI databases, build local databases and fetch records from NCBI`,
	Version:          "0.1.0",
	PersistentPreRun: setupRoot,
}

func init() {
	// config is an optional parameter for a settings file (that overrides defaults)
	RootCmd.PersistentFlags().StringP("config", "c", "", "User defined config file that may override all or some default settings")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every command that's run")
	if err := viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config")); err != nil {
		log.Fatal(err)
	}
}

func setupRoot(cmd *cobra.Command, args []string) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		blast.SetVerboseLogging()
	}
}
