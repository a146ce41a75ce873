package domain

// ContributionRunResult summarises one scheduler run. Skipped counts goals
// that were not due or were claimed by an overlapping run.
type ContributionRunResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// ArchivalRunResult summarises one archival sweep.
type ArchivalRunResult struct {
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}
