/*
Package newick provides facilities for reading and writing trees in the
Newick format. The format used is roughly equivalent to the conventions
established here:
http://evolution.genetics.washington.edu/phylip/newick_doc.html.

Quoted labels use single quotes, with a doubled quote ('') standing for a
literal quote. Bracketed comments ([...], possibly nested) may appear between
any two tokens and are discarded. Branch lengths may be written in exponent
notation (2.5e-3).

This is the dialect found in the TREE commands of NEXUS files, which is the
main consumer of this package.
*/
package newick
