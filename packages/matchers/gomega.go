package matchers

import (
	"fmt"

	"github.com/onsi/gomega/types"
)

// Gomega adapts a gomega matcher, e.g. Gomega(gomega.HaveKey("id")).
// After a failed match Describe returns gomega's failure message for the
// value that failed, so the adapter must not be shared between goroutines.
func Gomega(m types.GomegaMatcher) Matcher {
	return &gomegaAdapter{inner: m}
}

type gomegaAdapter struct {
	inner   types.GomegaMatcher
	failure string
}

func (g *gomegaAdapter) Matches(actual any) bool {
	g.failure = ""
	ok, err := g.inner.Match(actual)
	if err != nil {
		g.failure = err.Error()
		return false
	}
	if !ok {
		g.failure = g.inner.FailureMessage(actual)
	}
	return ok
}

func (g *gomegaAdapter) Describe() string {
	if g.failure != "" {
		return g.failure
	}
	return fmt.Sprintf("%T", g.inner)
}
