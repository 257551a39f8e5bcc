package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the ProteinPaint
	query server and it's
	associated services.
*/
type DataType int
type GenomeBuild string

type Zygosity int
type Ploidy int

