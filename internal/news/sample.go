package news

import "math/rand/v2"

// Rand is the source of randomness used for sampling.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide generator.
var DefaultRand Rand = globalRand{}

// DiverseSample picks up to count articles, spreading the picks across
// sources. Every source contributes one random article (in first-seen order)
// before any source contributes a second. Later rounds visit the remaining
// sources in random order. No article is picked twice.
func DiverseSample(pool []Article, count int, rng Rand) []Article {
	if len(pool) == 0 || count <= 0 {
		return []Article{}
	}
	if rng == nil {
		rng = DefaultRand
	}

	var order []string
	bySource := make(map[string][]Article)
	for _, a := range pool {
		if _, ok := bySource[a.Source]; !ok {
			order = append(order, a.Source)
		}
		bySource[a.Source] = append(bySource[a.Source], a)
	}

	want := min(count, len(pool))
	out := make([]Article, 0, want)

	pick := func(source string) {
		remaining := bySource[source]
		i := rng.IntN(len(remaining))
		out = append(out, remaining[i])
		remaining[i] = remaining[len(remaining)-1]
		bySource[source] = remaining[:len(remaining)-1]
	}

	for _, src := range order {
		if len(out) == want {
			return out
		}
		pick(src)
	}

	for len(out) < want {
		var live []string
		for _, src := range order {
			if len(bySource[src]) > 0 {
				live = append(live, src)
			}
		}
		shuffle(live, rng)
		for _, src := range live {
			if len(out) == want {
				break
			}
			pick(src)
		}
	}

	return out
}

// RandomItems returns count articles drawn uniformly without replacement.
// When there are no more than count articles they are returned as given.
func RandomItems(items []Article, count int, rng Rand) []Article {
	if len(items) <= count {
		out := make([]Article, len(items))
		copy(out, items)
		return out
	}
	if rng == nil {
		rng = DefaultRand
	}
	if count <= 0 {
		return []Article{}
	}

	shuffled := append([]Article(nil), items...)
	shuffle(shuffled, rng)
	return shuffled[:count]
}

func shuffle[T any](s []T, rng Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
