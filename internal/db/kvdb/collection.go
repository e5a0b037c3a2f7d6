// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"encoding/binary"
	"encoding/json"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

// collection stores JSON encoded records keyed by their raw uuid.
type collection[T any] struct {
	name []byte
}

func newCollection[T any](e model.EntityType) collection[T] {
	return collection[T]{name: []byte(e)}
}

func (c collection[T]) get(tx *bolt.Tx, id uuid.UUID) (*T, error) {
	res := tx.Bucket(c.name).Get(id[:])
	if res == nil {
		return nil, db.ErrNotFound
	}
	v := new(T)
	return v, json.Unmarshal(res, v)
}

func (c collection[T]) put(tx *bolt.Tx, id uuid.UUID, v *T) error {
	j, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(c.name).Put(id[:], j)
}

func (c collection[T]) modify(tx *bolt.Tx, id uuid.UUID, fn func(*T)) (*T, error) {
	v, err := c.get(tx, id)
	if err != nil {
		return nil, err
	}
	fn(v)
	return v, c.put(tx, id, v)
}

func (c collection[T]) remove(tx *bolt.Tx, id uuid.UUID) error {
	bucket := tx.Bucket(c.name)
	if bucket.Get(id[:]) == nil {
		return db.ErrNotFound
	}
	return bucket.Delete(id[:])
}

func (c collection[T]) list(tx *bolt.Tx) ([]*T, error) {
	var res []*T
	err := tx.Bucket(c.name).ForEach(func(_, v []byte) error {
		rec := new(T)
		if err := json.Unmarshal(v, rec); err != nil {
			return err
		}
		res = append(res, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// links keeps one nested bucket per parent. Keys are the bucket sequence so
// iteration follows insertion order, values are guest ids.
type links struct {
	name []byte
}

func newLinks(parent model.EntityType) (links, error) {
	e, err := db.LinkEntity(parent)
	if err != nil {
		return links{}, err
	}
	return links{name: []byte(e)}, nil
}

func (l links) guestIDs(tx *bolt.Tx, parentID uuid.UUID) ([]uuid.UUID, error) {
	sub := tx.Bucket(l.name).Bucket(parentID[:])
	if sub == nil {
		return nil, nil
	}
	var ids []uuid.UUID
	err := sub.ForEach(func(_, v []byte) error {
		id, err := uuid.FromBytes(v)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (l links) drop(tx *bolt.Tx, parentID uuid.UUID) error {
	bucket := tx.Bucket(l.name)
	if bucket.Bucket(parentID[:]) == nil {
		return nil
	}
	return bucket.DeleteBucket(parentID[:])
}

func (l links) replace(tx *bolt.Tx, parentID uuid.UUID, guestIDs []uuid.UUID) error {
	if err := l.drop(tx, parentID); err != nil {
		return err
	}
	ids := model.UniqueIDs(guestIDs)
	if len(ids) == 0 {
		return nil
	}
	sub, err := tx.Bucket(l.name).CreateBucket(parentID[:])
	if err != nil {
		return err
	}
	for _, id := range ids {
		seq, err := sub.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		gid := id
		if err := sub.Put(key, gid[:]); err != nil {
			return err
		}
	}
	return nil
}

// dropGuest removes every link that points at guestID.
func (l links) dropGuest(tx *bolt.Tx, guestID uuid.UUID) error {
	bucket := tx.Bucket(l.name)
	var parents [][]byte
	if err := bucket.ForEach(func(k, v []byte) error {
		if v == nil {
			parents = append(parents, append([]byte(nil), k...))
		}
		return nil
	}); err != nil {
		return err
	}
	for _, p := range parents {
		sub := bucket.Bucket(p)
		var stale [][]byte
		if err := sub.ForEach(func(k, v []byte) error {
			if string(v) == string(guestID[:]) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := sub.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}

func createBuckets(bdb *bolt.DB, names ...model.EntityType) error {
	return bdb.Update(func(tx *bolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
