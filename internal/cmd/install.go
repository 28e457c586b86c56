package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"github.com/Lattice-Automation/blastkit/internal/config"
	"github.com/spf13/cobra"
)

// installCmd downloads and unpacks BLAST+ and Entrez Direct
var installCmd = &cobra.Command{
	Use:                        "install [blast|edirect]",
	Short:                      "Install NCBI BLAST+ and Entrez Direct",
	Run:                        runInstallCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Download the BLAST+ release and Entrez Direct into the tools directory
of the settings file. Both are installed without an argument. Tools that
are already installed are skipped.`,
	Example:   "  blastkit install blast",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"blast", "edirect"},
}

func init() {
	RootCmd.AddCommand(installCmd)
}

func runInstallCmd(cmd *cobra.Command, args []string) {
	conf := config.New()

	var packages []blast.Package
	switch {
	case len(args) == 0:
		packages = []blast.Package{blast.BlastPackage(conf), blast.EDirectPackage(conf)}
	case args[0] == "blast":
		packages = []blast.Package{blast.BlastPackage(conf)}
	case args[0] == "edirect":
		packages = []blast.Package{blast.EDirectPackage(conf)}
	default:
		if helperr := cmd.Help(); helperr != nil {
			rlog.Fatal(helperr)
		}
		rlog.Fatalf("unknown tool %q, expected blast or edirect", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := blast.NewDownloader(conf.HTTPTimeout())
	for _, p := range packages {
		if err := blast.Install(ctx, d, p); err != nil {
			rlog.Fatal(err)
		}
	}

	if version, err := blast.NewTools(conf).Version(ctx); err == nil {
		rlog.Infof("%s is ready", version)
	}
}
