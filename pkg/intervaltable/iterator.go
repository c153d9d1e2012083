package intervaltable

type Iterator[T any] struct {
	current int
	keys    []string
	table   map[string]*entry[T]
}

func (r *Iterator[T]) Value() Entry[T] {
	return r.table[r.keys[r.current]]
}

func (r *Iterator[T]) Name() string {
	return r.keys[r.current]
}

func (r *Iterator[T]) Next() bool {
	r.current++
	return r.current < len(r.keys)
}
