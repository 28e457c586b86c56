package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/Lattice-Automation/blastkit/internal/config"
	"github.com/Lattice-Automation/blastkit/internal/ncbi"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const defaultFetchEntries = 20

// fetchCmd is for downloading NCBI records by identifier or keyword
var fetchCmd = &cobra.Command{
	Use:                        "fetch [id...]",
	Short:                      "Fetch sequences or compounds from NCBI",
	Run:                        runFetchCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Fetch protein or nucleotide sequences, or PubChem compounds, with Entrez Direct.
Queries are identifiers or, with --keyword, search terms. They're read from the
arguments or from an ID list file (--list), one query per line:

  P0DTC2
  {"ID": "hemoglobin", "maxEntries": "2"}

Sequences are written to outputSequences.{json,fasta}, or outputSequence.json
for a single identifier. Compound structures are listed in outputSmallMolecules.json.`,
	Example: `  blastkit fetch P0DTC2 -d protein -o ./out
  blastkit fetch hemoglobin --keyword -n 5 -d nucleotide
  blastkit fetch --list ./ids.txt -d compound --keyword`,
	Aliases: []string{"efetch", "get"},
}

// fetchAddCmd appends a query to an ID list file
var fetchAddCmd = &cobra.Command{
	Use:                        "add [id]",
	Short:                      "Add a query to an ID list file",
	Run:                        runFetchAddCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Append a query to an ID list file, creating the file if needed.
Keyword queries keep their maximum number of entries.`,
	Example: `  blastkit fetch add hemoglobin --keyword -n 2 --list ./ids.txt`,
	Args:    cobra.ExactArgs(1),
}

func init() {
	fetchCmd.PersistentFlags().StringP("list", "l", "", "ID list file")
	fetchCmd.PersistentFlags().BoolP("keyword", "k", false, "queries are search terms rather than identifiers")
	fetchCmd.PersistentFlags().IntP("max-entries", "n", defaultFetchEntries, "maximum number of records per keyword")

	fetchCmd.Flags().StringP("db-type", "d", "protein", "database: protein, nucleotide or compound")
	fetchCmd.Flags().StringP("out", "o", ".", "output directory")
	fetchCmd.Flags().Int("threads", 0, "queries fetched at once (default from the settings file)")

	fetchCmd.AddCommand(fetchAddCmd)

	RootCmd.AddCommand(fetchCmd)
}

func runFetchCmd(cmd *cobra.Command, args []string) {
	queries := extractQueries(cmd, args)
	if len(queries) == 0 {
		if helperr := cmd.Help(); helperr != nil {
			rlog.Fatal(helperr)
		}
		rlog.Fatal("no identifiers or keywords to fetch")
	}

	conf := config.New()
	threads := extractInt(cmd, "threads", conf.FetchThreads)
	fetcher := &ncbi.Fetcher{
		Entrez:     ncbi.NewEDirect(conf),
		Downloader: blast.NewDownloader(conf.HTTPTimeout()),
		PubChemURL: conf.PubChemURL,
		DBType:     extractDBType(cmd),
		Mode:       extractSearchMode(cmd),
		Threads:    threads,
		OutDir:     extractString(cmd, "out"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := fetcher.Fetch(ctx, queries)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			rlog.Warn(e)
		}
		if res == nil || ctx.Err() != nil {
			rlog.Fatal("fetch stopped")
		}
	}

	if err = writeFetchOutputs(fetcher, res, singleID(fetcher, queries, cmd)); err != nil {
		rlog.Fatal(err)
	}
}

// singleID reports whether a lone identifier was fetched from the arguments.
func singleID(f *ncbi.Fetcher, queries []ncbi.Query, cmd *cobra.Command) bool {
	return f.Mode == ncbi.ByID && len(queries) == 1 && extractString(cmd, "list") == ""
}

func writeFetchOutputs(f *ncbi.Fetcher, res *ncbi.Result, single bool) error {
	switch {
	case f.DBType == ncbi.SmallMolecule:
		mols, err := ncbi.WriteSmallMolecules(f.OutDir, res)
		if err != nil {
			return err
		}
		rlog.Infof("%d compounds written to %s", len(mols), f.OutDir)
	case single:
		seq, err := ncbi.WriteSingleSequence(f.OutDir, res)
		if err != nil {
			return err
		}
		rlog.Infof("%s written to %s", seq.ID, f.OutDir)
	default:
		set, err := ncbi.WriteSequenceSet(f.OutDir, res)
		if err != nil {
			return err
		}
		rlog.Infof("%d sequences written to %s", set.Len(), f.OutDir)
	}
	return nil
}

// extractQueries reads the queries of the ID list and the arguments.
// Identifier arguments may be comma separated. Keyword arguments are kept
// whole and take --max-entries, as do listed keywords without a limit.
func extractQueries(cmd *cobra.Command, args []string) []ncbi.Query {
	keywords := extractSearchMode(cmd) == ncbi.ByKeyword
	maxEntries := extractInt(cmd, "max-entries", defaultFetchEntries)

	var queries []ncbi.Query
	if list := extractString(cmd, "list"); list != "" {
		listed, err := ncbi.ReadIDList(list)
		if err != nil {
			rlog.Fatal(err)
		}
		for _, q := range listed {
			if keywords && q.MaxEntries == 0 {
				q.MaxEntries = maxEntries
			}
			queries = append(queries, q)
		}
	}

	if keywords {
		for _, arg := range args {
			queries = append(queries, ncbi.Query{ID: arg, MaxEntries: maxEntries})
		}
		return queries
	}

	for _, arg := range args {
		for _, id := range splitStringOn(arg, []rune{' ', ','}) {
			queries = append(queries, ncbi.Query{ID: id})
		}
	}
	return queries
}

func runFetchAddCmd(cmd *cobra.Command, args []string) {
	list := extractString(cmd, "list")
	if list == "" {
		if helperr := cmd.Help(); helperr != nil {
			rlog.Fatal(helperr)
		}
		rlog.Fatal("no ID list file, set it with --list")
	}
	line := ncbi.EntryLine(args[0], extractSearchMode(cmd), extractInt(cmd, "max-entries", defaultFetchEntries))

	f, err := os.OpenFile(list, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		rlog.Fatal(err)
	}
	if _, err = f.WriteString(line); err != nil {
		f.Close()
		rlog.Fatal(err)
	}
	if err = f.Close(); err != nil {
		rlog.Fatal(err)
	}
	rlog.Infof("Added %s to %s", args[0], list)
}
