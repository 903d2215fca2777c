package redisrepo

import (
	"context"
	"time"

	"bookwall/pkg/cache"
)

// memStore is an in-memory cache.Store used by the tests in this package.
// It mirrors the redis-backed Store contract: missing keys and empty
// sets report cache.ErrNotFound, HSetAll overwrites the whole record.
type memStore struct {
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	strings map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		hashes:  make(map[string]map[string]string),
		sets:    make(map[string]map[string]struct{}),
		strings: make(map[string]string),
	}
}

func (s *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	fields, ok := s.hashes[key]
	if !ok || len(fields) == 0 {
		return nil, cache.ErrNotFound
	}
	out := make(map[string]string, len(fields))
	for f, v := range fields {
		out[f] = v
	}
	return out, nil
}

func (s *memStore) HSetAll(_ context.Context, key string, fields map[string]string, _ time.Duration) error {
	rec := make(map[string]string, len(fields))
	for f, v := range fields {
		rec[f] = v
	}
	s.hashes[key] = rec
	return nil
}

func (s *memStore) SAdd(_ context.Context, key string, _ time.Duration, members ...string) error {
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *memStore) SRem(_ context.Context, key string, members ...string) error {
	set, ok := s.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m)
	}
	return nil
}

func (s *memStore) SMembers(_ context.Context, key string) ([]string, error) {
	set, ok := s.sets[key]
	if !ok || len(set) == 0 {
		return nil, cache.ErrNotFound
	}
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	return members, nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	val, ok := s.strings[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return val, nil
}

func (s *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.strings[key] = value
	return nil
}

func (s *memStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.hashes, key)
		delete(s.sets, key)
		delete(s.strings, key)
	}
	return nil
}

var _ cache.Store = (*memStore)(nil)
