package genomeBuild

import (
	"proteinpaint/api/models/constants"
	"strings"
)

const (
	Unknown constants.GenomeBuild = "Unknown"

	Hg38 constants.GenomeBuild = "hg38"
	Hg19 constants.GenomeBuild = "hg19"
	Hg18 constants.GenomeBuild = "hg18"
	Mm10 constants.GenomeBuild = "mm10"
	Mm9  constants.GenomeBuild = "mm9"
)

func CastToGenomeBuild(text string) constants.GenomeBuild {
	switch strings.ToLower(text) {
	case "hg38", "grch38":
		return Hg38
	case "hg19", "grch37":
		return Hg19
	case "hg18":
		return Hg18
	case "mm10":
		return Mm10
	case "mm9":
		return Mm9
	default:
		return Unknown
	}
}

func IsKnownGenomeBuild(text string) bool {
	// attempt to cast to a genome build and
	// return if unknown
	return CastToGenomeBuild(text) != Unknown
}
