package schema

var (
	// bucket
	ArtifactBucket     = "artifact-bucket"      // key: researchId, val: markdown content
	ArtifactMetaBucket = "artifact-meta-bucket" // key: researchId, val: json.marshal(ArtifactMeta)
	ConstantsBucket    = "constants-bucket"
)

type ArtifactMeta struct {
	ResearchId string `json:"researchId"`
	Size       int64  `json:"size"`
	Sha256     string `json:"sha256"`
}
