package engine

// CommitRef is a full commit hash as produced by git
type CommitRef string

// Short returns the abbreviated hash used for display
func (c CommitRef) Short() string {
	if len(c) > 12 {
		return string(c[:12])
	}
	return string(c)
}

// String returns the full hash
func (c CommitRef) String() string {
	return string(c)
}

// CandidateSet is an oldest-first list of commits still to be ported
type CandidateSet []CommitRef

// Strings returns the hashes as plain strings
func (s CandidateSet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

// filter keeps the commits for which keep returns true, preserving order
func (s CandidateSet) filter(keep func(CommitRef) bool) (kept CandidateSet, dropped []CommitRef) {
	kept = make(CandidateSet, 0, len(s))
	for _, c := range s {
		if keep(c) {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	return kept, dropped
}

// Stats counts the commits left after each discovery stage
type Stats struct {
	Listed         int `yaml:"listed"`
	AfterExclusion int `yaml:"afterExclusion"`
	AfterMerged    int `yaml:"afterMerged"`
	CacheHits      int `yaml:"cacheHits"`
}

// Result is the outcome of a discovery run
type Result struct {
	Source     string
	Target     string
	Candidates CandidateSet
	// Excluded holds commits dropped by an exclusion prefix
	Excluded []CommitRef
	// Merged holds commits already mentioned in target's history
	Merged []CommitRef
	Stats  Stats
}
