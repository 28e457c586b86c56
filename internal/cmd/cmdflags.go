package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/Lattice-Automation/blastkit/internal/config"
	"github.com/Lattice-Automation/blastkit/internal/ncbi"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
	"golang.org/x/term"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func extractString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		if helperr := cmd.Help(); helperr != nil {
			log.Fatal(helperr)
		}
		log.Fatalf("failed to parse %s arg: %v", name, err)
	}
	return strings.TrimSpace(value)
}

func extractBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		log.Printf("failed to parse %s arg: %v - will use false", name, err)
		return false
	}
	return value
}

func extractInt(cmd *cobra.Command, name string, defaultValue int) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil || (!cmd.Flags().Changed(name) && value == 0) {
		return defaultValue
	}
	return value
}

func extractSeqType(cmd *cobra.Command) blast.SeqType {
	seqType, err := blast.ParseSeqType(extractString(cmd, "seq-type"))
	if err != nil {
		log.Fatal(err)
	}
	return seqType
}

func extractDBType(cmd *cobra.Command) ncbi.DBType {
	dbType, err := ncbi.ParseDBType(extractString(cmd, "db-type"))
	if err != nil {
		log.Fatal(err)
	}
	return dbType
}

func extractSearchMode(cmd *cobra.Command) ncbi.SearchMode {
	if extractBool(cmd, "keyword") {
		return ncbi.ByKeyword
	}
	return ncbi.ByID
}

// scoringFlags maps the scoring flags of 'blastkit search' to their parameters.
func scoringFlags(p *blast.SearchParams) map[string]*string {
	return map[string]*string{
		"evalue":    &p.EValue,
		"word-size": &p.WordSize,
		"reward":    &p.Reward,
		"penalty":   &p.Penalty,
		"gapopen":   &p.GapOpen,
		"gapextend": &p.GapExtend,
		"matrix":    &p.Matrix,
	}
}

// extractSearchParams reads the search flags. Scoring flags left unset
// fall back to the settings file. With --program-defaults the program's
// BLAST+ defaults are used instead, and only flags that were set override them.
func extractSearchParams(cmd *cobra.Command, conf *config.Config) blast.SearchParams {
	params := blast.SearchParams{
		SeqType:    extractSeqType(cmd),
		RemoteDB:   extractString(cmd, "remote-db"),
		LocalDB:    extractString(cmd, "local-db"),
		UpdateDB:   extractBool(cmd, "update-db"),
		Program:    extractString(cmd, "program"),
		MaxEntries: extractInt(cmd, "max-entries", conf.SearchMaxEntries),
	}
	params.Local = params.LocalDB != ""
	if params.Program == "" {
		params.Program = blast.Programs(params.SeqType)[0]
	}
	if !params.Local && params.RemoteDB == "" {
		params.RemoteDB = blast.Databases(params.SeqType)[0]
	}

	for name, field := range scoringFlags(&params) {
		*field = extractString(cmd, name)
	}
	if !cmd.Flags().Changed("evalue") && conf.SearchEValue != "" {
		params.EValue = conf.SearchEValue
	}

	if !extractBool(cmd, "program-defaults") {
		return params
	}

	withDefaults, err := params.WithProgramDefaults()
	if err != nil {
		log.Fatal(err)
	}
	overrides := scoringFlags(&params)
	for name, field := range scoringFlags(&withDefaults) {
		if cmd.Flags().Changed(name) {
			*field = *overrides[name]
		}
	}
	return withDefaults
}

func splitStringOn(s string, separators []rune) []string {
	splitFunc := func(c rune) bool {
		return slices.Contains(separators, c)
	}

	return strings.FieldsFunc(s, splitFunc)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// confirm logs warnings and, when a user is at the terminal, asks whether
// to continue. It's true when there are no warnings or nobody to ask.
func confirm(warnings []string, in io.Reader, out io.Writer, interactive bool) bool {
	if len(warnings) == 0 {
		return true
	}
	for _, w := range warnings {
		rlog.Warn(w)
	}
	if !interactive {
		return true
	}

	fmt.Fprint(out, "Continue? [y/N] ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printDatabases writes database names one per line or, for a terminal,
// as a table with their type, creation time and sources.
func printDatabases(w io.Writer, names []string, lookup func(string) (blast.Database, bool), table bool) {
	if len(names) == 0 {
		fmt.Fprintln(w, "None found")
		return
	}
	if !table {
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tCREATED\tSOURCES")
	for _, name := range names {
		db, ok := lookup(name)
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, db.Type, db.Created.Format("2006-01-02 15:04"), strings.Join(db.Sources, ","))
	}
	if err := tw.Flush(); err != nil {
		log.Fatal(err)
	}
}
