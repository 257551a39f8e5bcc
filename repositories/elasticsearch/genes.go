package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/indexes"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
)

const genesIndex = "genes"

// GetGeneDocumentsByTermWildcard resolves a wildcard gene-symbol
// search against the `genes` index, optionally restricted to one
// genome build.
func GetGeneDocumentsByTermWildcard(cfg *models.Config, es *elasticsearch.Client,
	ctx context.Context, term string, genome string, size int) ([]indexes.Gene, error) {

	// Nomenclature Search Term
	nomenclatureStringTerm := fmt.Sprintf("*%s*", term)

	// Genome build search term (wildcard by default)
	genomeStringTerm := "*"
	if genome != "" {
		genomeStringTerm = genome
	}

	var buf bytes.Buffer
	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": []map[string]interface{}{{
							"query_string": map[string]interface{}{
								"fields":           []string{"name"},
								"query":            nomenclatureStringTerm,
								"analyze_wildcard": true,
							}}, {
							"query_string": map[string]interface{}{
								"fields":           []string{"genome"},
								"query":            genomeStringTerm,
								"analyze_wildcard": true,
							}},
						},
					}},
				},
			},
		},
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "error encoding gene query", err)
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		fmt.Println(buf.String())
	}

	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(genesIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
	)
	if searchErr != nil {
		return nil, apperror.Wrap(apperror.Internal, "gene search failed", searchErr)
	}
	defer res.Body.Close()

	resultString := res.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Declared an empty interface
	result := make(map[string]interface{})

	// Unmarshal or Decode the JSON to the interface.
	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketIdx := strings.Index(resultString, "] ")
	if bracketIdx == -1 {
		return nil, apperror.New(apperror.Internal, "unexpected gene search response shape")
	}
	if umErr := json.Unmarshal([]byte(resultString[bracketIdx+2:]), &result); umErr != nil {
		return nil, apperror.Wrap(apperror.Internal, "error unmarshalling gene search response", umErr)
	}

	return decodeGeneHits(result)
}

// GetGenesByNames resolves an exact-name lookup for each requested
// symbol; missing symbols are simply absent from the result map.
func GetGenesByNames(cfg *models.Config, es *elasticsearch.Client,
	ctx context.Context, names []string, genome string) (map[string]indexes.Gene, error) {

	gene2coord := make(map[string]indexes.Gene)
	for _, name := range names {
		genes, err := GetGeneDocumentsByTermWildcard(cfg, es, ctx, name, genome, 10)
		if err != nil {
			return nil, err
		}
		for _, gene := range genes {
			if strings.EqualFold(gene.Name, name) {
				gene2coord[name] = gene
				break
			}
		}
	}
	return gene2coord, nil
}

func decodeGeneHits(result map[string]interface{}) ([]indexes.Gene, error) {
	hitsWrapper, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, apperror.New(apperror.Internal, "gene search response missing hits")
	}

	// gather data from "hits"
	docsHits := hitsWrapper["hits"]
	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(docsHits, &allDocHits)

	var genes []indexes.Gene
	for _, r := range allDocHits {
		source := r["_source"]

		// cast map[string]interface{} to struct
		var gene indexes.Gene
		mapstructure.Decode(source, &gene)
		genes = append(genes, gene)
	}

	return genes, nil
}
