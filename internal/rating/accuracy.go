// Package rating implements the prediction scoring math: Spearman-style
// rank accuracy, tiered rating deltas, and bounded rating application.
// Everything here is pure and storage-free so settlement can be driven
// as a transaction around a mapping function.
package rating

import "github.com/apexline/gridlock/internal/models"

// Accuracy captures how closely a predicted ordering matched the
// official one, plus the derived facts bonuses key on.
type Accuracy struct {
	Correlation    float64 `json:"correlation"`
	Accuracy       float64 `json:"accuracy"`
	ExactPodium    bool    `json:"exact_podium"`
	CorrectWinner  bool    `json:"correct_winner"`
	TopFiveCorrect int     `json:"top_five_correct"`
}

// Evaluate scores a predicted ordering against the official one.
// Drivers missing from the official result contribute zero rank
// difference; only the intersection of the two driver sets is scored.
func Evaluate(predicted, official []models.RankedDriver) Accuracy {
	corr := spearman(predicted, official)
	return Accuracy{
		Correlation:    corr,
		Accuracy:       (corr + 1) / 2 * 100,
		ExactPodium:    exactPodium(predicted, official),
		CorrectWinner:  correctWinner(predicted, official),
		TopFiveCorrect: topFiveOverlap(predicted, official),
	}
}

// spearman computes the rank correlation 1 - 6*S / (n*(n^2-1)) where S
// is the sum of squared position differences. n is the prediction
// length; n <= 1 is degenerate and defined as perfect correlation.
func spearman(predicted, official []models.RankedDriver) float64 {
	n := len(predicted)
	if n <= 1 {
		return 1
	}

	actual := make(map[string]int, len(official))
	for _, r := range official {
		actual[r.DriverID] = r.Position
	}

	sumSquaredDiff := 0
	for _, p := range predicted {
		if pos, ok := actual[p.DriverID]; ok {
			diff := p.Position - pos
			sumSquaredDiff += diff * diff
		}
	}

	return 1 - float64(6*sumSquaredDiff)/float64(n*(n*n-1))
}

// exactPodium reports whether positions 1..3 match identity-for-identity
func exactPodium(predicted, official []models.RankedDriver) bool {
	predTop := topByPosition(predicted, 3)
	actualTop := topByPosition(official, 3)
	if len(actualTop) < 3 || len(predTop) < 3 {
		return false
	}
	for pos := 1; pos <= 3; pos++ {
		if predTop[pos] == "" || predTop[pos] != actualTop[pos] {
			return false
		}
	}
	return true
}

func correctWinner(predicted, official []models.RankedDriver) bool {
	predWinner := driverAt(predicted, 1)
	actualWinner := driverAt(official, 1)
	return predWinner != "" && predWinner == actualWinner
}

// topFiveOverlap counts drivers present in both top-5 sets, regardless
// of exact position within the top 5
func topFiveOverlap(predicted, official []models.RankedDriver) int {
	predTop := make(map[string]bool, 5)
	for _, r := range predicted {
		if r.Position <= 5 {
			predTop[r.DriverID] = true
		}
	}

	count := 0
	for _, r := range official {
		if r.Position <= 5 && predTop[r.DriverID] {
			count++
		}
	}
	return count
}

func driverAt(ordering []models.RankedDriver, position int) string {
	for _, r := range ordering {
		if r.Position == position {
			return r.DriverID
		}
	}
	return ""
}

func topByPosition(ordering []models.RankedDriver, limit int) map[int]string {
	top := make(map[int]string, limit)
	for _, r := range ordering {
		if r.Position <= limit {
			top[r.Position] = r.DriverID
		}
	}
	return top
}
