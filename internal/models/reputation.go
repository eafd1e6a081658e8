package models

// ReputationTally is the sum of points a user earned from confirmed stories.
type ReputationTally struct {
	Reps  int
	Stars int
}

type StoryCounts struct {
	Given    int64
	Received int64
	Pending  int64
}
