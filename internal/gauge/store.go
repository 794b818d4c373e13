package gauge

// Store maps gauge ids to their series. The set of gauges is fixed at
// construction; looking up an unknown id returns nil.
type Store struct {
	series map[int]*Series
	ids    []int
}

// NewStore creates one series per gauge id, each with the given capacity.
func NewStore(gaugeIDs []int, capacity int) *Store {
	st := &Store{
		series: make(map[int]*Series, len(gaugeIDs)),
		ids:    append([]int(nil), gaugeIDs...),
	}
	for _, id := range gaugeIDs {
		st.series[id] = NewSeries(capacity)
	}
	return st
}

// Series returns the series for a gauge id, or nil for an unknown id.
func (st *Store) Series(id int) *Series { return st.series[id] }

// IDs returns the configured gauge ids in their original order.
func (st *Store) IDs() []int { return st.ids }
