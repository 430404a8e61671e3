package similarity

import (
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/antzucaro/matchr"
	"github.com/mfonda/simhash"
)

const (
	// lengthThreshold selects the algorithm: below it for both texts -
	// exact edit distance, otherwise the approximate fingerprint path
	lengthThreshold = 100
	// fingerprintBits is the simhash width
	fingerprintBits = 64
	// fingerprintStretch is a calibration multiplier applied on the
	// fingerprint path only
	fingerprintStretch = 1.2
)

// Ratio computes a similarity ratio of two normalized strings.
// Short texts are compared by exact edit distance, long ones by
// 64-bit simhash fingerprints with Hamming distance
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	if len(ar) < lengthThreshold && len(br) < lengthThreshold {
		return levenshteinRatio(a, b, len(ar), len(br))
	}
	return fingerprintRatio(a, b)
}

func levenshteinRatio(a, b string, la, lb int) float64 {
	if la == 0 || lb == 0 {
		goapp.Log.Warn().Msg("empty text for edit distance similarity")
		return 0
	}
	distance := matchr.Levenshtein(a, b)
	lMax := la
	if lb > lMax {
		lMax = lb
	}
	return 1 - float64(distance)/float64(lMax)
}

func fingerprintRatio(a, b string) float64 {
	distance := simhash.Compare(fingerprintOf(a), fingerprintOf(b))
	res := 1 - float64(distance)/fingerprintBits
	goapp.Log.Debug().Float64("similarity", res).Msg("fingerprint similarity")
	return res * fingerprintStretch
}

func fingerprintOf(s string) uint64 {
	rs := []rune(s)
	features := make([][]byte, 0, len(rs))
	for _, r := range rs {
		features = append(features, []byte(string(r)))
	}
	if len(features) > 1 {
		features = simhash.Shingle(2, features)
	}
	return simhash.SimhashBytes(features)
}
