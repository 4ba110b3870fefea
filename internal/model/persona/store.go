package persona

// Store exposes read-only archetype lookup. The selection screen lists the
// whole catalog; session creation resolves one entry by identifier.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore 以固定切片實作 Store。原型目錄在行程生命週期內不變，
// 讀取不需要加鎖。
type MemoryStore struct {
	archetypes []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied
// archetypes, usually Seed().
func NewMemoryStore(archetypes []Persona) *MemoryStore {
	return &MemoryStore{archetypes: append([]Persona(nil), archetypes...)}
}

// List returns a copy of the archetype catalog in display order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.archetypes...)
}

// FindByID resolves an archetype by its identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, a := range s.archetypes {
		if a.ID == id {
			return a, true
		}
	}
	return Persona{}, false
}
