package toga

import "strings"

// Column names (and aliases) recognized across TOGA releases.
const (
	ColTranscriptID          = "transcript_id"
	ColQueryTranscript       = "query_transcript"
	ColProjection            = "projection"
	ColTranscript            = "transcript"
	ColChain                 = "chain"
	ColGeneID                = "gene_id"
	ColQueryGene             = "query_gene"
	ColReferenceGene         = "reference_gene"
	ColReferenceTranscript   = "reference_transcript"
	ColLossStatus            = "loss_status"
	ColClass                 = "class"
	ColOrthologyClass        = "orthology_class"
	ColOrthologyRelationship = "orthology_relationship"
	ColRelationship          = "relationship"
	ColRelation              = "relation"
	ColOrthologyScore        = "orthology_score"
	ColOrthologyProbability  = "orthology_probability"
	ColPred                  = "pred"
	ColParalogScore          = "paralog_score"
	ColParalogyScore         = "paralogy_score"
	ColParalogProbability    = "paralog_probability"
	ColLevel                 = "level"
	ColIsoformGroup          = "isoform_group"
)

// LevelProjection is the loss summary level carrying per-projection status.
const LevelProjection = "PROJECTION"

// findColumn returns the index of the first alias present in header, or -1.
// Matching is case-insensitive.
func findColumn(header []string, aliases ...string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return i
			}
		}
	}
	return -1
}
