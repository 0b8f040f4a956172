package rating

import (
	"math"

	"github.com/apexline/gridlock/internal/models"
)

// Bonus points awarded on top of the accuracy band
const (
	WinnerBonus  = 15
	PodiumBonus  = 10
	TopFiveBonus = 5

	// TopFiveThreshold is the minimum top-5 overlap that earns the bonus
	TopFiveThreshold = 4
)

// ExperienceFactor returns the rating volatility for a user who has
// settled the given number of predictions. New players move fast,
// veterans move slowly.
func ExperienceFactor(settledPredictions int) int {
	switch {
	case settledPredictions < 10:
		return 32
	case settledPredictions < 50:
		return 24
	default:
		return 16
	}
}

// BasePoints maps an accuracy percentage to its scoring band. Within a
// band, points interpolate linearly and truncate toward zero, so a band
// is only fully paid out at its top edge.
func BasePoints(accuracy float64) int {
	switch {
	case accuracy >= 99:
		return 50
	case accuracy >= 80:
		return 30 + int(math.Floor((accuracy-80)/19*15))
	case accuracy >= 60:
		return 15 + int(math.Floor((accuracy-60)/20*10))
	case accuracy >= 40:
		return 5 + int(math.Floor((accuracy-40)/20*5))
	default:
		return -20 + int(math.Floor(accuracy/40*15))
	}
}

// ComputeDelta turns an accuracy evaluation into a rating delta and the
// breakdown that explains it. The experience factor scales the raw
// points against the standard volatility of 32.
func ComputeDelta(acc Accuracy, settledPredictions int) (int, models.ScoreBreakdown) {
	breakdown := models.ScoreBreakdown{
		Accuracy:       acc.Accuracy,
		Correlation:    acc.Correlation,
		ExactPodium:    acc.ExactPodium,
		CorrectWinner:  acc.CorrectWinner,
		TopFiveCorrect: acc.TopFiveCorrect,
		BasePoints:     BasePoints(acc.Accuracy),
	}

	if acc.CorrectWinner {
		breakdown.WinnerBonus = WinnerBonus
	}
	if acc.ExactPodium {
		breakdown.PodiumBonus = PodiumBonus
	}
	if acc.TopFiveCorrect >= TopFiveThreshold {
		breakdown.TopFiveBonus = TopFiveBonus
	}

	total := breakdown.BasePoints + breakdown.WinnerBonus + breakdown.PodiumBonus + breakdown.TopFiveBonus
	factor := ExperienceFactor(settledPredictions)
	// Half points round toward +inf, so -4.5 becomes -4, not -5
	delta := int(math.Floor(float64(total)*float64(factor)/32 + 0.5))

	return delta, breakdown
}

// Score is the headline event score shown on leaderboards: the rounded
// accuracy percentage, independent of the rating delta.
func Score(acc Accuracy) int {
	return int(math.Round(acc.Accuracy))
}
