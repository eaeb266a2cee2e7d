package continuum

// Group is the weighted input a Continuum is built from: a mapping of
// member identifier to a strictly positive weight. Order is irrelevant;
// keys must be unique, which the map type guarantees.
type Group map[string]float64

// totalWeight sums the weights of every member in the group.
func (g Group) totalWeight() float64 {
	var w float64
	for _, weight := range g {
		w += weight
	}
	return w
}
