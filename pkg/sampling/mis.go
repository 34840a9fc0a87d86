package sampling

// PowerHeuristic weights a sample of strategy f against strategy g with exponent 2.
// nf and ng are the sample counts taken from each strategy.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic weights a sample of strategy f against strategy g proportionally to their densities
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 {
		return 0
	}
	return f / (f + g)
}
