package blast

import (
	"strings"

	"golang.org/x/exp/slices"
)

// ProteinDatabases are the remote NCBI protein databases, as "Label (name)".
var ProteinDatabases = []string{
	"Non-redundant (nr)",
	"RefSeq Select (refseq_select_prot)",
	"NCBI_Reference proteins (refseq_protein)",
	"UniProtKB/Swiss-Prot (swissprot)",
	"Patented protein (pataa)",
	"Protein Data Bank (pdb)",
	"Metagenomic (env_nr)",
	"Transcriptome Shotgun Assembly (tsa_nr)",
	"NCBI Mithocondrial Protein Reference Sequences (mito)",
	"CDD database for delta-blast (cdd_delta)",
}

// NucleotideDatabases are the remote NCBI nucleotide databases, as "Label (name)".
var NucleotideDatabases = []string{
	"Nucleotide Collection (nt)",
	"RefSeq Select RNA (refseq_select_rna)",
	"NCBI Reference RNA (refseq_rna)",
	"RefSeq Representative genomes (refseq_representative_genomes)",
	"RefSeq Eukaryotic Representative Genomes (ref_euk_rep_genomes)",
	"RefSeq Prokaryote Representative Genomes (ref_prok_rep_genomes)",
	"Refseq viruses representative genomes (ref_viruses_rep_genomes)",
	"Refseq viroids representative genomes (ref_viroids_rep_genomes)",
	"RefSeq Genome Database (refseq_genomes)",
	"Expressed sequence tags (est)",
	"Transcriptome Shotgun Assembly (tsa_nt)",
	"Patent sequences (patnt)",
	"PDB nucleotide database (pdbnt)",
	"Genomic survey sequences (gss)",
	"Sequence tagged sites (dbsts)",
	"Environmental samples (env_nt)",
	"NCBI Genomic Mithocondrial Reference Sequences (mito)",
}

// NCBIDatabases are the pre-formatted databases update_blastdb.pl can download
// (as of 12/2021, 'update_blastdb.pl --showall' lists the current ones).
var NCBIDatabases = []string{
	"16S_ribosomal_RNA", "18S_fungal_sequences", "28S_fungal_sequences", "Betacoronavirus",
	"ITS_RefSeq_Fungi", "ITS_eukaryote_sequences", "LSU_eukaryote_rRNA", "LSU_prokaryote_rRNA",
	"SSU_eukaryote_rRNA", "env_nt", "env_nr", "human_genome", "landmark", "mito", "mouse_genome",
	"nr", "nt", "pataa", "patnt", "pdbaa", "pdbnt", "ref_euk_rep_genomes", "ref_prok_rep_genomes",
	"ref_viroids_rep_genomes", "ref_viruses_rep_genomes", "refseq_select_rna", "refseq_select_prot",
	"refseq_protein", "refseq_rna", "swissprot", "tsa_nr", "tsa_nt", "taxdb",
}

// Matrices are the substitution matrices BLAST+ accepts.
var Matrices = []string{"PAM30", "PAM70", "PAM250", "BLOSUM80", "BLOSUM62", "BLOSUM45", "BLOSUM50", "BLOSUM90"}

// DefaultMatrix is used by every matrix-scored program unless overridden.
const DefaultMatrix = "BLOSUM62"

// Program families and their subprograms. A family is the BLAST executable
// the user picks for a sequence type; blastp and blastn have subprograms
// that are passed along as -task.
var (
	proteinFamilies    = []string{"blastp", "tblastn"}
	nucleotideFamilies = []string{"blastn", "blastx", "tblastx"}

	blastpPrograms = []string{"blastp", "blastp-fast", "psi-blast", "delta-blast"}
	blastnPrograms = []string{"blastn", "megablast", "dc-megablast"}
)

// BlastpProgramsHelp describes the blastp subprograms.
const BlastpProgramsHelp = `BLASTP simply compares a protein query to a protein database.
BLASTP-FAST is an accelerated version of BLASTP that is very fast and works best if the target percent identity is 50% or more.
PSI-BLAST allows the user to build a PSSM (position-specific scoring matrix) using the results of the first BlastP run.
DELTA-BLAST constructs a PSSM using the results of a Conserved Domain Database search and searches a sequence database.`

// BlastnProgramsHelp describes the blastn subprograms.
const BlastnProgramsHelp = `BLASTN is slow, but allows a word-size down to seven bases.
Megablast is intended for comparing a query to closely related sequences and works best if the target percent identity is 95% or more but is very fast.
Discontiguous megablast uses an initial seed that ignores some bases (allowing mismatches) and is intended for cross-species comparisons.`

// Programs returns every program runnable on a sequence type, with the
// blastp/blastn subprograms replacing their family name.
func Programs(t SeqType) []string {
	if t == Protein {
		return append(slices.Clone(blastpPrograms), "tblastn")
	}
	return append(slices.Clone(blastnPrograms), "blastx", "tblastx")
}

// Families returns the BLAST executables a user picks from for a sequence type.
func Families(t SeqType) []string {
	if t == Protein {
		return proteinFamilies
	}
	return nucleotideFamilies
}

// Databases returns the remote databases for a sequence type.
func Databases(t SeqType) []string {
	if t == Protein {
		return ProteinDatabases
	}
	return NucleotideDatabases
}

// DBName returns the database name in a "Label (name)" string.
// A bare name is returned unchanged.
func DBName(label string) string {
	parts := strings.Split(label, "(")
	name := parts[len(parts)-1]
	return strings.TrimSpace(strings.Split(name, ")")[0])
}

// isProgram reports whether program is in any family or subprogram list.
func isProgram(program string) bool {
	return slices.Contains(Programs(Protein), program) || slices.Contains(Programs(Nucleotide), program)
}
