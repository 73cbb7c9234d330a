package ptr

// Ptr возвращает указатель на значение
func Ptr[T any](v T) *T {
	return &v
}

// Deref разыменовывает указатель, для nil возвращает def
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
