/*
Package nexus provides a reader for NEXUS files, the block structured text
format used by phylogenetics software (PAUP*, MrBayes, BEAST and friends). The
format is described in:

Maddison, Swofford and Maddison (1997). NEXUS: an extensible file format for
systematic information. Systematic Biology 46(4): 590-621.

The following blocks are understood: TAXA, TREES (including TRANSLATE tables),
and CHARACTERS/DATA with a sequential (non-interleaved) MATRIX. All other blocks
are skipped. Keywords are case insensitive, bracketed comments may appear
anywhere and may nest, and single quoted words use '' for a literal quote.

Tree descriptions are handed to package newick.
*/
package nexus
