package seedwords

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// Word stock for generated contributions. Terms are built as
// adjective-noun pairs; an index suffix keeps them unique past the
// combination space.
var (
	adjectives = []string{
		"quiet", "golden", "restless", "hollow", "vivid", "ancient",
		"tender", "feral", "luminous", "patient", "crooked", "bright",
	}
	nouns = []string{
		"river", "ember", "branch", "meadow", "signal", "harbor",
		"thread", "lantern", "root", "echo", "summit", "grove",
	}
	names = []string{
		"Alex", "Sam", "Robin", "Kai", "Noor", "Dana",
		"Jules", "Ira", "Remy", "Sky", "Lior", "Wren",
	}
)

// randomIndex returns a random index below n using crypto/rand.
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateContributions creates numWords unique contributions, each with
// its own client token so the one-word-per-visitor rule never rejects them.
func generateContributions(ctx context.Context, cfg *Config, stats *Stats) []Contribution {
	logger.Get().Info(ctx, "generating contributions", logger.Int("numWords", cfg.NumWords))

	out := make([]Contribution, cfg.NumWords)
	for i := range out {
		out[i] = Contribution{
			Term:        generateTerm(i),
			DisplayName: names[randomIndex(len(names))] + " " + strconv.Itoa(i),
			ClientToken: uuid.NewString(),
		}
	}
	stats.WordsGenerated = len(out)
	return out
}

// generateTerm builds a unique term for index i. The adjective-noun
// combination space covers the common case; the suffix guarantees
// uniqueness beyond it.
func generateTerm(i int) string {
	adj := adjectives[i%len(adjectives)]
	noun := nouns[(i/len(adjectives))%len(nouns)]
	if i < len(adjectives)*len(nouns) {
		return adj + " " + noun
	}
	return adj + " " + noun + " " + strconv.Itoa(i)
}
