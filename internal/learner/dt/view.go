package dt

import "github.com/ShayCichocki/learnlab/internal/present"

// View presents the hypothesis and the discrimination tree.
type View[D comparable] struct {
	Learner *Learner[D]
}

// Hypothesis implements learner.View.
func (v View[D]) Hypothesis(title string) present.Artifact {
	return present.GraphArtifact(title, v.Learner.HypothesisGraph())
}

// Extras implements learner.View.
func (v View[D]) Extras(round string) []present.Artifact {
	g := v.Learner.TreeGraph()
	if g == nil {
		return nil
	}
	return []present.Artifact{present.GraphArtifact("Discrimination tree ("+round+")", g)}
}
