package chromosome

import (
	"fmt"
	"strconv"
	"strings"
)

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 24; i++ {
		humChroms = append(humChroms, fmt.Sprintf("chr%d", i))
	}
	humChroms = append(humChroms, "chrX")
	humChroms = append(humChroms, "chrY")
	humChroms = append(humChroms, "chrM")
	return humChroms
}

// IsValidHumanChromosome accepts both UCSC-style ("chr7") and bare
// ("7") chromosome names; track files use the former, VCF rows may
// carry either.
func IsValidHumanChromosome(text string) bool {
	stripped := strings.TrimPrefix(strings.TrimSpace(text), "chr")

	// Check if number can be represented as an int and is non-zero
	chromNumber, _ := strconv.Atoi(stripped)
	if chromNumber > 0 {
		// It can..
		// Check if it is in range 1-23
		if chromNumber < 24 {
			return true
		}
	} else {
		// No it can't..
		// Check if it is an X, Y..
		loweredText := strings.ToLower(stripped)
		switch loweredText {
		case "x":
			return true
		case "y":
			return true
		}

		// ..or M (MT)
		switch strings.Contains(loweredText, "m") {
		case true:
			return true
		}
	}

	return false
}
