/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"maps"
	"reflect"
	"sync"
)

var (
	indexMapRegistry = make(map[reflect.Type]map[string]string)
	mu               sync.RWMutex
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// RegisterIndexMap associates a Go type T with a key template map (PK, SK, etc.).
// A later registration for the same type replaces the earlier one.
func RegisterIndexMap[T any](idxMap map[string]string) {
	t := typeOf[T]()

	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[t] = maps.Clone(idxMap)
}

// GetIndexMap retrieves a copy of the index map for type T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	t := typeOf[T]()

	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[t]
	if !ok {
		return nil, false
	}
	return maps.Clone(m), true
}
