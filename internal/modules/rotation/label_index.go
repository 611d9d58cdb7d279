// Package rotation turns sector-to-sector capital flows into a renderer-ready graph.
package rotation

import "github.com/aristath/sectorflow/internal/domain"

// LabelIndex is a bijection from distinct sector labels to dense indices 0..n-1.
// Indices follow first-seen order: for each flow in input order, the source is
// considered before the target.
type LabelIndex struct {
	labels []string
	index  map[string]int
}

// BuildLabelIndex scans flows in order and assigns each unseen label the next index
func BuildLabelIndex(flows []domain.FlowRecord) *LabelIndex {
	idx := &LabelIndex{
		labels: make([]string, 0, len(flows)),
		index:  make(map[string]int, len(flows)),
	}
	for _, f := range flows {
		idx.add(f.Source)
		idx.add(f.Target)
	}
	return idx
}

func (l *LabelIndex) add(label string) {
	if _, ok := l.index[label]; ok {
		return
	}
	l.index[label] = len(l.labels)
	l.labels = append(l.labels, label)
}

// Len returns the number of distinct labels
func (l *LabelIndex) Len() int {
	return len(l.labels)
}

// Index returns the index assigned to label
func (l *LabelIndex) Index(label string) (int, bool) {
	i, ok := l.index[label]
	return i, ok
}

// Label returns the label at index i. It panics if i is out of range.
func (l *LabelIndex) Label(i int) string {
	return l.labels[i]
}

// Labels returns the labels in index order
func (l *LabelIndex) Labels() []string {
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}
