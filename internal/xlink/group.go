package xlink

// Group collects the records sharing one unique id: alternative
// explanations of the same physical observation.
type Group struct {
	UniqueID int64
	Records  []Record

	// BestScore is the highest score among scored members.
	// HasScore is false when no member carries a score.
	BestScore float64
	HasScore  bool
}

// Groups returns the records grouped by unique id, groups ordered by first
// appearance and members in store order. Records without a unique id are
// skipped. Requires a configured unique id role.
func (s *Store) Groups() ([]Group, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	if !s.keys.Has(KeyUniqueID) {
		return nil, configErr(KeyUniqueID, "grouping requires a unique id column")
	}

	var groups []Group
	index := make(map[int64]int)
	for _, r := range s.records {
		id, ok := r.UniqueID()
		if !ok {
			continue
		}
		i, seen := index[id]
		if !seen {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{UniqueID: id})
		}
		g := &groups[i]
		g.Records = append(g.Records, r.Clone())
		if score, ok := r.Score(); ok && (!g.HasScore || score > g.BestScore) {
			g.BestScore = score
			g.HasScore = true
		}
	}
	return groups, nil
}

// SitePair is an unordered pair of cross-linked residues.
type SitePair struct {
	Protein1 string
	Residue1 int64
	Protein2 string
	Residue2 int64
}

// sitePair orders the two ends so that A-B and B-A map to the same pair.
func sitePair(r Record) SitePair {
	a := SitePair{Protein1: r.Protein1(), Residue1: r.Residue1(), Protein2: r.Protein2(), Residue2: r.Residue2()}
	if a.Protein1 > a.Protein2 || (a.Protein1 == a.Protein2 && a.Residue1 > a.Residue2) {
		a.Protein1, a.Protein2 = a.Protein2, a.Protein1
		a.Residue1, a.Residue2 = a.Residue2, a.Residue1
	}
	return a
}

// UniqueSites returns the distinct unordered site pairs with the number of
// records observing each, in order of first appearance.
func (s *Store) UniqueSites() ([]SitePair, map[SitePair]int) {
	var pairs []SitePair
	counts := make(map[SitePair]int)
	for _, r := range s.records {
		p := sitePair(r)
		if counts[p] == 0 {
			pairs = append(pairs, p)
		}
		counts[p]++
	}
	return pairs, counts
}

// ProteinPairs returns the number of records per unordered protein pair.
func (s *Store) ProteinPairs() map[[2]string]int {
	counts := make(map[[2]string]int)
	for _, r := range s.records {
		a, b := r.Protein1(), r.Protein2()
		if a > b {
			a, b = b, a
		}
		counts[[2]string{a, b}]++
	}
	return counts
}
