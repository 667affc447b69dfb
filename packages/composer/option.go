package composer

// Option is an optional value. The zero Option is absent. Options of
// comparable types compare with ==, absent equal to absent.
type Option[T comparable] struct {
	v  T
	ok bool
}

func Some[T comparable](v T) Option[T] { return Option[T]{v: v, ok: true} }

func None[T comparable]() Option[T] { return Option[T]{} }

func (o Option[T]) Get() (T, bool) { return o.v, o.ok }

func (o Option[T]) IsSet() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Option[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// overlay returns o when set, base otherwise.
func (o Option[T]) overlay(base Option[T]) Option[T] {
	if o.ok {
		return o
	}
	return base
}
