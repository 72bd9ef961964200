// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics provides a small, dependency-free set of counters, gauges,
// timers and histograms used to instrument the rpc transport. It is not a
// general purpose metrics system; it exists only to give the rpc package
// somewhere to record request counts and latencies.
package metrics

import "sync"

// Registry holds a collection of named metrics.
type Registry interface {
	Each(func(string, interface{}))
	Get(string) interface{}
	GetOrRegister(string, interface{}) interface{}
	Register(string, interface{}) error
	Unregister(string)
}

// DefaultRegistry is the registry used by the package-level constructors.
var DefaultRegistry Registry = NewRegistry()

type standardRegistry struct {
	mu sync.Mutex
	m  map[string]interface{}
}

// NewRegistry creates a new empty registry.
func NewRegistry() Registry {
	return &standardRegistry{m: make(map[string]interface{})}
}

func (r *standardRegistry) Each(f func(string, interface{})) {
	r.mu.Lock()
	snapshot := make(map[string]interface{}, len(r.m))
	for k, v := range r.m {
		snapshot[k] = v
	}
	r.mu.Unlock()
	for k, v := range snapshot {
		f(k, v)
	}
}

func (r *standardRegistry) Get(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[name]
}

func (r *standardRegistry) Register(name string, v interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = v
	return nil
}

func (r *standardRegistry) GetOrRegister(name string, v interface{}) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.m[name]; ok {
		return existing
	}
	r.m[name] = v
	return v
}

func (r *standardRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, name)
}
