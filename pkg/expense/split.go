package expense

// splitProportionally divides total across the given weights. Each share is
// proportional to its weight; when all weights are zero the split is equal.
// The last share absorbs any floating point remainder so the shares always sum
// to exactly total.
func splitProportionally(total float64, weights []float64) []float64 {
	if len(weights) == 0 {
		return nil
	}
	weightSum := 0.0
	for _, w := range weights {
		weightSum += w
	}

	shares := make([]float64, len(weights))
	allocated := 0.0
	for i, w := range weights {
		if i == len(weights)-1 {
			shares[i] = total - allocated
			break
		}
		var share float64
		if weightSum == 0 {
			share = total / float64(len(weights))
		} else {
			share = total * w / weightSum
		}
		shares[i] = share
		allocated += share
	}
	return shares
}
