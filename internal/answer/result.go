package answer

// AssignmentResult is the structured record recovered from raw model output.
// Every string field defaults to the empty string so downstream consumers
// never have to distinguish missing from blank.
type AssignmentResult struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Question     string        `json:"question"`
	Answer       string        `json:"answer"`
	Summary      string        `json:"summary"`
	Note         string        `json:"note"`
	More         string        `json:"more"`
	Humanized    bool          `json:"humanized,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
}

// Verification is the fact-check outcome attached to a result after
// generation. The extractor never produces it.
type Verification struct {
	TrustScore float64         `json:"trust_score"`
	Claims     []ClaimCheck    `json:"claims"`
	Citations  []CitationCheck `json:"citations"`
	IsReliable bool            `json:"is_reliable"`
}

// ClaimCheck records the verdict for a single factual claim.
type ClaimCheck struct {
	Claim     string `json:"claim"`
	Status    string `json:"status"`
	Reasoning string `json:"reasoning"`
	Source    string `json:"source"`
}

// CitationCheck records a citation-looking span found in the answer text.
type CitationCheck struct {
	Citation string `json:"citation"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

// Claim verdict values.
const (
	ClaimSupported    = "Supported"
	ClaimContradicted = "Contradicted"
	ClaimUnverified   = "Unverified"
)
