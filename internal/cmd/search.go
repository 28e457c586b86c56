package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/Lattice-Automation/blastkit/internal/config"
	"github.com/spf13/cobra"
)

var (
	programHelp = `BLAST program. Protein queries: blastp, blastp-fast, psi-blast,
delta-blast, tblastn. Nucleotide queries: blastn, megablast, dc-megablast,
blastx, tblastx. Defaults to blastp or blastn`

	remoteDBHelp = `NCBI database to search, as its name (eg nr) or "Label (name)".
'blastkit database list --remote' prints those available per sequence type`
)

// searchCmd is for querying a sequence against a local or remote database
var searchCmd = &cobra.Command{
	Use:                        "search",
	Short:                      "Search a sequence against a BLAST database",
	Run:                        runSearchCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Search the first sequence of a FASTA file against a local database or
against NCBI's servers. The report, the query and the hits are written to
the output directory: <query>.txt, extra/<query>.fasta and
outputSequences.{json,fasta}.

Scoring flags that aren't set are left to BLAST+. --program-defaults sets
them to the program's defaults first; set flags still win.`,
	Example: `  blastkit search -i ./hba.fa -o ./out --seq-type protein --program blastp --remote-db swissprot
  blastkit search -i ./gene.fa -o ./out -t nucleotide --local-db my_genes --program-defaults`,
	Aliases: []string{"blast", "query"},
}

func init() {
	addSearchFlags(searchCmd)
	must(searchCmd.MarkFlagRequired("in"))

	RootCmd.AddCommand(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("in", "i", "", "query FASTA file, its first sequence is searched")
	cmd.Flags().StringP("out", "o", ".", "output directory")
	cmd.Flags().StringP("seq-type", "t", "protein", "sequence type of the query: protein or nucleotide")
	cmd.Flags().StringP("program", "p", "", programHelp)
	cmd.Flags().StringP("remote-db", "r", "", remoteDBHelp)
	cmd.Flags().StringP("local-db", "l", "", "local database to search instead of a remote one")
	cmd.Flags().Bool("update-db", false, "update the local database from NCBI before searching")
	cmd.Flags().IntP("max-entries", "n", 0, "maximum number of hits (default from the settings file)")
	cmd.Flags().StringP("evalue", "e", "", "expectation value threshold (default from the settings file)")
	cmd.Flags().String("word-size", "", "length of the initial exact match")
	cmd.Flags().String("reward", "", "reward for a nucleotide match")
	cmd.Flags().String("penalty", "", "penalty for a nucleotide mismatch")
	cmd.Flags().String("gapopen", "", "cost to open a gap")
	cmd.Flags().String("gapextend", "", "cost to extend a gap")
	cmd.Flags().StringP("matrix", "m", blast.DefaultMatrix, "scoring matrix: "+strings.Join(blast.Matrices, ", "))
	cmd.Flags().Bool("program-defaults", false, "start from the program's default scoring parameters")
	cmd.Flags().BoolP("yes", "y", false, "don't ask before searching with warnings")
}

func runSearchCmd(cmd *cobra.Command, args []string) {
	conf := config.New()
	params := extractSearchParams(cmd, conf)
	if err := params.Validate(); err != nil {
		if helperr := cmd.Help(); helperr != nil {
			log.Fatal(helperr)
		}
		rlog.Fatal(err)
	}

	tools := blast.NewTools(conf)
	interactive := !extractBool(cmd, "yes") && isTerminal(os.Stdin)
	if !confirm(tools.SearchWarnings(params), os.Stdin, os.Stderr, interactive) {
		rlog.Info("Search canceled")
		return
	}

	seqs, err := blast.ReadFasta(extractString(cmd, "in"))
	if err != nil {
		rlog.Fatal(err)
	}
	if len(seqs) == 0 {
		rlog.Fatalf("no sequence in %s", extractString(cmd, "in"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	set, err := tools.Search(ctx, params, seqs[0], extractString(cmd, "out"))
	if err != nil {
		rlog.Fatal(err)
	}
	rlog.Infof("%d sequences written to %s", set.Len(), extractString(cmd, "out"))
}
