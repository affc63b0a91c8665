package domain

import "regexp"

var (
	reMentionID = regexp.MustCompile(`<@!?(\d{5,})>`)
	reBareID    = regexp.MustCompile(`\b(\d{5,})\b`)
)

// ParseUserIDs extrae ids de usuario de texto libre: primero menciones <@id>/<@!id>,
// despues ids numericos sueltos de 5+ digitos. Sin duplicados, orden de aparicion.
func ParseUserIDs(input string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	collect := func(re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatch(input, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			seen[m[1]] = struct{}{}
			out = append(out, m[1])
		}
	}
	collect(reMentionID)
	collect(reBareID)
	return out
}

// RecipientSet es un set ordenado por insercion con tope de cardinalidad.
type RecipientSet struct {
	max   int
	ids   []string
	index map[string]struct{}
}

func NewRecipientSet(max int) *RecipientSet {
	return &RecipientSet{max: max, index: map[string]struct{}{}}
}

// Add inserta los ids nuevos hasta llegar al tope. Devuelve cuantos entraron
// y si quedaron ids nuevos afuera por el tope.
func (s *RecipientSet) Add(ids ...string) (added int, dropped bool) {
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		if len(s.ids) >= s.max {
			dropped = true
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
		added++
	}
	return added, dropped
}

// Remove saca cualquier id presente en ids y devuelve cuantos salieron.
func (s *RecipientSet) Remove(ids ...string) int {
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.ids[:0]
	removed := 0
	for _, id := range s.ids {
		if _, ok := drop[id]; ok {
			delete(s.index, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.ids = kept
	return removed
}

func (s *RecipientSet) Reset() {
	s.ids = nil
	s.index = map[string]struct{}{}
}

func (s *RecipientSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *RecipientSet) Len() int   { return len(s.ids) }
func (s *RecipientSet) Full() bool { return len(s.ids) >= s.max }

// IDs devuelve una copia en orden de insercion.
func (s *RecipientSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
