package matching

// Match score constants for path matching.
// Higher scores indicate more specific matches.
const (
	// ScorePathExact is the score of each literal path segment.
	ScorePathExact = 15

	// ScorePathNamedParams is the score of each {name} path segment.
	ScorePathNamedParams = 12
)

// ScoreMethod is the score for a method match.
const ScoreMethod = 10
