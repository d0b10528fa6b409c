package grammar

// Snapshot is a location-free structural description of a context: token
// classes and spellings, definition names, alternative counts and element
// orders. Two constructions of the same grammar have equal snapshots.
type Snapshot struct {
	Tokens      []string
	Definitions []DefinitionSnapshot
}

type DefinitionSnapshot struct {
	Name         string
	Alternatives []string
}

func (c *Context) Snapshot() Snapshot {
	var s Snapshot
	for _, t := range c.tokens {
		s.Tokens = append(s.Tokens, t.String())
	}
	for _, d := range c.defs {
		ds := DefinitionSnapshot{Name: d.Name}
		for _, id := range d.Alts {
			ds.Alternatives = append(ds.Alternatives, c.prods[id].String())
		}
		s.Definitions = append(s.Definitions, ds)
	}
	return s
}
