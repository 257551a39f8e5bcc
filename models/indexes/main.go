package indexes

// Gene is the document shape of the `genes` Elasticsearch index used
// to resolve gene symbols to coordinates for `gene2coord`.
type Gene struct {
	Name   string `json:"name"`
	Chrom  string `json:"chrom"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Genome string `json:"genome"`
}
