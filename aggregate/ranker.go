package aggregate

import "sort"

// Rank returns a copy of drugs sorted by total cost descending, ties broken
// by drug name ascending. The input slice is left untouched.
func Rank(drugs []DrugCost) []DrugCost {
	if len(drugs) == 0 {
		return nil
	}
	out := make([]DrugCost, len(drugs))
	copy(out, drugs)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalCost.Cmp(out[j].TotalCost); c != 0 {
			return c > 0
		}
		return out[i].DrugName < out[j].DrugName
	})
	return out
}
