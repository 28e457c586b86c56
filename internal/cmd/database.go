package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/Lattice-Automation/blastkit/internal/config"
	"github.com/spf13/cobra"
)

// databaseCmd groups the local database commands
var databaseCmd = &cobra.Command{
	Use:                        "database",
	Short:                      "Make, download, list or delete BLAST databases",
	SuggestionsMinimumDistance: 2,
	Long: `Manage the local BLAST databases in the databases directory of the
settings file. Local databases are searched with 'blastkit search --local-db'.`,
	Aliases: []string{"db", "databases"},
}

// databaseMakeCmd builds a database from FASTA files
var databaseMakeCmd = &cobra.Command{
	Use:                        "make [fasta...]",
	Short:                      "Make a local database from FASTA files",
	Run:                        runDatabaseMakeCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Merge FASTA files, directories of them or globs into a single FASTA file
and build a BLAST database from it with makeblastdb. An existing database
with the same title is replaced.`,
	Example: `  blastkit database make --title my_genes -t nucleotide ./genes/*.fa`,
	Aliases: []string{"build", "add"},
	Args:    cobra.MinimumNArgs(1),
}

// databaseDownloadCmd fetches a pre-formatted NCBI database
var databaseDownloadCmd = &cobra.Command{
	Use:                        "download [name]",
	Short:                      "Download a pre-formatted NCBI database",
	Run:                        runDatabaseDownloadCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Download a pre-formatted NCBI database with update_blastdb.pl so it can
be searched locally. Names can be those of 'blastkit database list --remote'.`,
	Example: "  blastkit database download swissprot",
	Aliases: []string{"get", "update"},
	Args:    cobra.ExactArgs(1),
}

// databaseListCmd lists local or remote databases
var databaseListCmd = &cobra.Command{
	Use:                        "list",
	Short:                      "List local databases",
	Run:                        runDatabaseListCmd,
	SuggestionsMinimumDistance: 2,
	Long: `List the local databases. With --remote, list the NCBI databases that
can be searched for a sequence type instead.`,
	Example: "  blastkit database list\n  blastkit database list --remote -t nucleotide",
	Aliases: []string{"ls"},
}

// databaseDeleteCmd removes a local database
var databaseDeleteCmd = &cobra.Command{
	Use:                        "delete [name]",
	Short:                      "Delete a local database",
	Run:                        runDatabaseDeleteCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    `  blastkit database delete my_genes`,
	Aliases:                    []string{"rm", "remove"},
	Args:                       cobra.ExactArgs(1),
}

func init() {
	databaseMakeCmd.Flags().String("title", "", "name of the new database")
	databaseMakeCmd.Flags().StringP("seq-type", "t", "protein", "sequence type of the FASTA files: protein or nucleotide")
	databaseMakeCmd.Flags().StringP("work-dir", "w", "", "directory for the merged FASTA file (default a temp dir)")
	databaseMakeCmd.Flags().BoolP("yes", "y", false, "don't ask before replacing a database")
	must(databaseMakeCmd.MarkFlagRequired("title"))

	databaseListCmd.Flags().Bool("remote", false, "list the NCBI databases instead")
	databaseListCmd.Flags().StringP("seq-type", "t", "protein", "sequence type of the remote databases")

	databaseCmd.AddCommand(databaseMakeCmd)
	databaseCmd.AddCommand(databaseDownloadCmd)
	databaseCmd.AddCommand(databaseListCmd)
	databaseCmd.AddCommand(databaseDeleteCmd)

	RootCmd.AddCommand(databaseCmd)
}

func runDatabaseMakeCmd(cmd *cobra.Command, args []string) {
	tools := blast.NewTools(config.New())
	title := extractString(cmd, "title")

	interactive := !extractBool(cmd, "yes") && isTerminal(os.Stdin)
	if !confirm(blast.DatabaseWarnings(title, tools.DatabasesDir), os.Stdin, os.Stderr, interactive) {
		rlog.Info("Database not made")
		return
	}

	workDir := extractString(cmd, "work-dir")
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "blastkit-")
		if err != nil {
			rlog.Fatal(err)
		}
		defer os.RemoveAll(tmp)
		workDir = tmp
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := tools.BuildDatabase(ctx, blast.BuildOptions{
		Inputs:  args,
		DBType:  extractSeqType(cmd),
		Title:   title,
		WorkDir: workDir,
	})
	if err != nil {
		rlog.Fatal(err)
	}
	rlog.Infof("Made database %s from %d files at %s", db.Name, len(db.Sources), db.Path)
}

func runDatabaseDownloadCmd(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := blast.DBName(args[0])
	if err := blast.NewTools(config.New()).DownloadDatabase(ctx, name); err != nil {
		rlog.Fatal(err)
	}
	rlog.Infof("Downloaded database %s", name)
}

func runDatabaseListCmd(cmd *cobra.Command, args []string) {
	if extractBool(cmd, "remote") {
		for _, label := range blast.Databases(extractSeqType(cmd)) {
			fmt.Println(label)
		}
		return
	}

	tools := blast.NewTools(config.New())
	names, err := blast.ListLocalDatabases(tools.DatabasesDir)
	if err != nil {
		rlog.Fatal(err)
	}
	printDatabases(os.Stdout, names, tools.LocalDatabase, isTerminal(os.Stdout))
}

func runDatabaseDeleteCmd(cmd *cobra.Command, args []string) {
	tools := blast.NewTools(config.New())
	if err := tools.DeleteDatabase(args[0]); err != nil {
		rlog.Fatal(err)
	}
	rlog.Infof("Deleted database %s from %s", args[0], filepath.Clean(tools.DatabasesDir))
}
