// Package predicate implements composable predicates.
package predicate

import "github.com/drewr/ledger/lib/common/regex"

type Predicate[T any] func(T) bool

func True[T any](_ T) bool {
	return true
}

func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(t T) bool {
		for _, pred := range preds {
			if !pred(t) {
				return false
			}
		}
		return true
	}
}

func Or[T any](preds ...Predicate[T]) Predicate[T] {
	return func(t T) bool {
		for _, pred := range preds {
			if pred(t) {
				return true
			}
		}
		return false
	}
}

func Not[T any](pred Predicate[T]) Predicate[T] {
	return func(t T) bool {
		return !pred(t)
	}
}

type Named interface {
	Name() string
}

func ByName[T Named](rxs regex.Regexes) Predicate[T] {
	if len(rxs) == 0 {
		return True[T]
	}
	return func(t T) bool {
		return rxs.MatchString(t.Name())
	}
}
