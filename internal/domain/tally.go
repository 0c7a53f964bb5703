package domain

// SumFor returns the total score accumulated by name across every group
// in the collection. Matching is exact, case-sensitive string equality.
// A name that never appears sums to zero; an empty collection or empty
// groups likewise contribute nothing. The function is pure and never
// mutates its input.
func SumFor(c Collection, name string) int {
	total := 0
	for _, group := range c {
		for _, r := range group {
			if r.Name == name {
				total += r.Score
			}
		}
	}
	return total
}

// Aggregate consolidates a collection into a single leaderboard: one
// rating per entry of the first group, in the first group's order, each
// carrying the name's grand total across the entire collection
// (including the first group itself).
//
// The first group defines the universe. Names that only appear in later
// groups are ignored; if the first group repeats a name, the output
// repeats it too, each occurrence carrying the same recomputed total.
//
// The result is freshly allocated on every call, so repeated calls on
// the same input are independent and yield identical output. An empty
// collection or an empty first group yields an empty, non-nil slice.
func Aggregate(c Collection) []Rating {
	if len(c) == 0 {
		return []Rating{}
	}

	universe := c[0]
	leaderboard := make([]Rating, 0, len(universe))
	for _, r := range universe {
		leaderboard = append(leaderboard, Rating{
			Name:  r.Name,
			Score: SumFor(c, r.Name),
		})
	}
	return leaderboard
}
