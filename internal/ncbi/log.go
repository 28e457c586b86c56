package ncbi

import "github.com/Lattice-Automation/blastkit/internal/blast"

// rlog is the blastkit logger, so verbose logging covers fetches too
var rlog = blast.Logger()
