/*
Package fasta writes sequences in FASTA format. It is used to export the
matrix of a NEXUS CHARACTERS block as an aligned FASTA file.

The format used is the one described by NCBI:
http://blast.ncbi.nlm.nih.gov/blastcgihelp.shtml

Residues are written exactly as they are stored, so gap and missing symbols
survive the trip.
*/
package fasta
