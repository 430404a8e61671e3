package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/longbridgeapp/opencc"
)

// punctuation contains ASCII and CJK chars dropped before comparison
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" + "，。！？、；：“”‘’（）《》【】"

var dropRunes = initDropRunes()

func initDropRunes() map[rune]bool {
	res := map[rune]bool{}
	for _, r := range punctuation {
		res[r] = true
	}
	return res
}

var (
	converterOnce sync.Once
	converter     *opencc.OpenCC
)

// t2sConverter returns the process wide traditional->simplified converter.
// The dictionaries are loaded once and shared
func t2sConverter() *opencc.OpenCC {
	converterOnce.Do(func() {
		c, err := opencc.New("t2s")
		if err != nil {
			goapp.Log.Error().Err(err).Msg("can't init t2s converter, script conversion disabled")
			return
		}
		converter = c
	})
	return converter
}

// Normalize drops whitespace and punctuation and unifies the script variant
// (traditional -> simplified) so two texts are compared on equal footing.
// It never fails and is idempotent
func Normalize(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsSpace(r) || dropRunes[r] {
			continue
		}
		sb.WriteRune(r)
	}
	res := sb.String()
	if c := t2sConverter(); c != nil {
		converted, err := c.Convert(res)
		if err != nil {
			goapp.Log.Warn().Err(err).Msg("can't convert to simplified")
		} else {
			res = converted
		}
	}
	return res
}
