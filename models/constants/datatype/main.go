package datatype

import (
	"proteinpaint/api/models/constants"
)

// Numeric data-type tags carried on the `dt` field of every mutation
// event record in svcnv/vcf track payloads. The values are part of the
// track file format and must not be renumbered.
const (
	Unknown constants.DataType = 0

	SnvIndel       constants.DataType = 1
	FusionRna      constants.DataType = 2
	GeneExpression constants.DataType = 3
	Cnv            constants.DataType = 4
	Sv             constants.DataType = 5
	Itd            constants.DataType = 6
	Del            constants.DataType = 7
	NLoss          constants.DataType = 8
	CLoss          constants.DataType = 9
	Loh            constants.DataType = 10
)

func CastToDataType(dt int) constants.DataType {
	switch dt {
	case 1:
		return SnvIndel
	case 2:
		return FusionRna
	case 3:
		return GeneExpression
	case 4:
		return Cnv
	case 5:
		return Sv
	case 6:
		return Itd
	case 7:
		return Del
	case 8:
		return NLoss
	case 9:
		return CLoss
	case 10:
		return Loh
	default:
		return Unknown
	}
}

func IsKnownDataType(dt int) bool {
	// attempt to cast to a data type and
	// return if unknown
	return CastToDataType(dt) != Unknown
}
