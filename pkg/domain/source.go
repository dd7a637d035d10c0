package domain

// SourceKind tags which external pipeline produced a raw record. The merge
// engine's authoritative-field table is keyed by it.
type SourceKind string

const (
	// SourceSwarm is the social-graph crawler sync.
	SourceSwarm SourceKind = "swarm"
	// SourceEnrichment is a people-data enrichment vendor payload.
	SourceEnrichment SourceKind = "enrichment"
	// SourceSpreadsheet is a manual spreadsheet export import.
	SourceSpreadsheet SourceKind = "spreadsheet"
	// SourceManual is direct operator entry.
	SourceManual SourceKind = "manual"
)

func (k SourceKind) String() string { return string(k) }

// MatchReason explains why a contact was matched to a prospect.
type MatchReason string

const (
	MatchReasonDomain      MatchReason = "domain"
	MatchReasonName        MatchReason = "name"
	MatchReasonFuzzy       MatchReason = "fuzzy"
	MatchReasonWorkHistory MatchReason = "work_history"
)

func (r MatchReason) String() string { return string(r) }

// FirmType classifies an entry in the known-firm reference list.
type FirmType string

const (
	FirmTypeVC           FirmType = "vc"
	FirmTypePE           FirmType = "pe"
	FirmTypeAngelNetwork FirmType = "angel_network"
	FirmTypeAccelerator  FirmType = "accelerator"
)
