package lstar

import (
	"github.com/ShayCichocki/learnlab/internal/present"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Row groups of the observation table artifact.
const (
	GroupShort = "short"
	GroupLong  = "long"
)

// View presents the hypothesis and the observation table.
type View[D comparable] struct {
	Learner *Learner[D]
}

// Hypothesis implements learner.View.
func (v View[D]) Hypothesis(title string) present.Artifact {
	return present.GraphArtifact(title, v.Learner.Hypothesis().Graph())
}

// Extras implements learner.View.
func (v View[D]) Extras(round string) []present.Artifact {
	t := v.Learner.Table()
	if t == nil {
		return nil
	}
	return []present.Artifact{present.TableArtifact("Observation table ("+round+")", v.table(t))}
}

func (v View[D]) table(t *Table[D]) *present.Table {
	out := &present.Table{}
	for _, s := range t.Suffixes() {
		out.Columns = append(out.Columns, s.String())
	}
	model := v.Learner.model
	add := func(group string, prefixes []models.Word) {
		for _, p := range prefixes {
			row := present.TableRow{Header: p.String(), Group: group}
			for _, cell := range t.Row(p) {
				row.Cells = append(row.Cells, model.Format(cell))
			}
			out.Rows = append(out.Rows, row)
		}
	}
	add(GroupShort, t.ShortPrefixes())
	add(GroupLong, t.LongPrefixes())
	return out
}
