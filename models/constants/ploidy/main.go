package ploidy

import (
	"proteinpaint/api/models/constants"
)

const (
	Unknown constants.Ploidy = iota
	Haploid
	Diploid
	// TODO: handle triploid?
)
