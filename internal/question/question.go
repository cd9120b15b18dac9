// Package question picks the correct item and the wrong options for a round.
package question

import (
	"math/rand/v2"

	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/catalog"
)

// Question is the immutable payload of a round before it is stored.
type Question struct {
	Correct      animequiz.Item
	Options      []animequiz.Item
	CorrectIndex int
	Quote        *animequiz.Quote
}

// Generate builds a question for mode with up to n options. Wrong options
// share the correct item's rarity when enough such items exist, otherwise
// they come from the rest of the catalog. A catalog smaller than n yields
// fewer options. mode must already be resolved to image or quote.
//
// rng is not safe for concurrent use; callers serialize access.
func Generate(rng *rand.Rand, cat *catalog.Catalog, mode animequiz.Mode, n int) (Question, error) {
	pool := cat.Pool(mode)
	if len(pool) == 0 {
		return Question{}, animequiz.ErrEmptyPool
	}
	if n < 1 {
		n = 1
	}

	correct := pool[rng.IntN(len(pool))]

	var same, others []animequiz.Item
	for _, it := range cat.Items() {
		if it.ID == correct.ID {
			continue
		}
		others = append(others, it)
		if it.Rarity == correct.Rarity {
			same = append(same, it)
		}
	}

	need := n - 1
	var wrong []animequiz.Item
	if len(same) >= need {
		wrong = sample(rng, same, need)
	} else {
		wrong = sample(rng, others, min(need, len(others)))
	}

	options := append(wrong, correct)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	q := Question{Correct: correct, Options: options}
	for i, it := range options {
		if it.ID == correct.ID {
			q.CorrectIndex = i
			break
		}
	}

	if mode == animequiz.ModeQuote && len(correct.Quotes) > 0 {
		quote := correct.Quotes[rng.IntN(len(correct.Quotes))]
		q.Quote = &quote
	}
	return q, nil
}

// sample draws k distinct items from items without modifying it.
func sample(rng *rand.Rand, items []animequiz.Item, k int) []animequiz.Item {
	buf := make([]animequiz.Item, len(items))
	copy(buf, items)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(buf)-i)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf[:k:k]
}
