package app

import "time"

const basePoints = 10

// Score is the pure scoring rule: a correct answer earns the base plus one
// point per whole second left on the clock; a wrong or missing answer earns
// nothing. For any correct answer the result is >= basePoints and
// < basePoints + limit seconds.
func Score(correct bool, elapsed, limit time.Duration) int {
	if !correct {
		return 0
	}
	remaining := limit - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return basePoints + int(remaining/time.Second)
}
