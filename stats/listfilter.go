package stats

type ListFilter struct {
	Kind  *string
	Limit int
}

func (filter ListFilter) SetKind(v string) ListFilter {
	filter.Kind = &v
	return filter
}

func (filter ListFilter) SetLimit(v int) ListFilter {
	filter.Limit = v
	return filter
}
