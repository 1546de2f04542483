package lstar

import (
	"strconv"
	"strings"

	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Table is an observation table: rows are prefixes, columns are suffixes and
// each cell holds the output of the column suffix after the row prefix.
type Table[D comparable] struct {
	alphabet models.Alphabet

	short    []models.Word
	long     []models.Word
	suffixes []models.Word

	shortSet  map[models.Word]bool
	longSet   map[models.Word]bool
	suffixSet map[models.Word]bool
	rows      map[models.Word][]D
	cellIDs   map[D]int
	keys      map[models.Word]cachedKey
}

type cachedKey struct {
	cols int
	key  string
}

func newTable[D comparable](alphabet models.Alphabet, suffixes []models.Word) *Table[D] {
	t := &Table[D]{
		alphabet:  alphabet,
		shortSet:  make(map[models.Word]bool),
		longSet:   make(map[models.Word]bool),
		suffixSet: make(map[models.Word]bool),
		rows:      make(map[models.Word][]D),
		cellIDs:   make(map[D]int),
		keys:      make(map[models.Word]cachedKey),
	}
	for _, s := range suffixes {
		t.addSuffix(s)
	}
	t.addShort(models.Word{})
	return t
}

// ShortPrefixes returns the prefixes that represent states.
func (t *Table[D]) ShortPrefixes() []models.Word { return t.short }

// LongPrefixes returns one-symbol extensions of short prefixes that are not
// short themselves.
func (t *Table[D]) LongPrefixes() []models.Word { return t.long }

// Suffixes returns the column labels.
func (t *Table[D]) Suffixes() []models.Word { return t.suffixes }

// Row returns the cells of a prefix, or nil if the prefix has no row.
func (t *Table[D]) Row(prefix models.Word) []D { return t.rows[prefix] }

func (t *Table[D]) addSuffix(s models.Word) bool {
	if t.suffixSet[s] {
		return false
	}
	t.suffixSet[s] = true
	t.suffixes = append(t.suffixes, s)
	return true
}

// addShort makes p a short prefix and adds its extensions as long prefixes.
func (t *Table[D]) addShort(p models.Word) bool {
	if t.shortSet[p] {
		return false
	}
	t.shortSet[p] = true
	t.short = append(t.short, p)

	if t.longSet[p] {
		delete(t.longSet, p)
		long := t.long[:0]
		for _, lp := range t.long {
			if lp != p {
				long = append(long, lp)
			}
		}
		t.long = long
	}
	for i := 0; i < t.alphabet.Size(); i++ {
		ext := p.Append(t.alphabet.Symbol(i))
		if !t.shortSet[ext] && !t.longSet[ext] {
			t.longSet[ext] = true
			t.long = append(t.long, ext)
		}
	}
	return true
}

// fill asks the oracle for every missing cell in a single batch.
func (t *Table[D]) fill(mq oracle.Oracle[D]) error {
	type cell struct {
		prefix models.Word
		col    int
	}
	var (
		batch []*models.Query[D]
		cells []cell
	)
	for _, prefixes := range [][]models.Word{t.short, t.long} {
		for _, p := range prefixes {
			row := t.rows[p]
			for col := len(row); col < len(t.suffixes); col++ {
				batch = append(batch, models.NewQuery[D](p, t.suffixes[col]))
				cells = append(cells, cell{p, col})
			}
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := mq.Process(batch); err != nil {
		return err
	}
	for i, c := range cells {
		row := t.rows[c.prefix]
		if len(row) != c.col {
			panic("lstar: table rows filled out of order")
		}
		t.rows[c.prefix] = append(row, batch[i].Output())
	}
	return nil
}

// rowKey returns a string that is equal for two prefixes iff their rows are.
func (t *Table[D]) rowKey(prefix models.Word) string {
	row := t.rows[prefix]
	if c, ok := t.keys[prefix]; ok && c.cols == len(row) {
		return c.key
	}
	var sb strings.Builder
	for i, v := range row {
		id, ok := t.cellIDs[v]
		if !ok {
			id = len(t.cellIDs)
			t.cellIDs[v] = id
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	key := sb.String()
	t.keys[prefix] = cachedKey{cols: len(row), key: key}
	return key
}

// close moves every long prefix whose row matches no short prefix (nor an
// earlier moved one) into the short prefixes. It reports whether any moved.
// New rows must be filled afterwards.
func (t *Table[D]) close() bool {
	shortRows := make(map[string]bool, len(t.short))
	for _, s := range t.short {
		shortRows[t.rowKey(s)] = true
	}
	candidates := append([]models.Word(nil), t.long...)
	moved := false
	for _, lp := range candidates {
		key := t.rowKey(lp)
		if shortRows[key] {
			continue
		}
		shortRows[key] = true
		t.addShort(lp)
		moved = true
	}
	return moved
}

// findInconsistency returns a suffix a·e that separates two short prefixes
// with equal rows.
func (t *Table[D]) findInconsistency() (models.Word, bool) {
	byRow := make(map[string]models.Word)
	for _, s := range t.short {
		key := t.rowKey(s)
		other, seen := byRow[key]
		if !seen {
			byRow[key] = s
			continue
		}
		for i := 0; i < t.alphabet.Size(); i++ {
			a := t.alphabet.Symbol(i)
			r1, r2 := t.rows[other.Append(a)], t.rows[s.Append(a)]
			for col := range t.suffixes {
				if r1[col] != r2[col] {
					return t.suffixes[col].Prepend(a), true
				}
			}
		}
	}
	return models.Word{}, false
}
