package voxel

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// Grid is the concurrent-read voxel hash table. Keys hash through xxhash,
// a non-cryptographic hash chosen purely for distribution speed over a
// large number of integer-tuple keys.
type Grid struct {
	mu     sync.RWMutex
	shards map[uint64][]*Voxel
	size   int
}

func NewGrid() *Grid {
	return &Grid{shards: make(map[uint64][]*Voxel)}
}

func hashKey(k Key) uint64 {
	var buf [24]byte
	putInt64(buf[0:8], k.X)
	putInt64(buf[8:16], k.Y)
	putInt64(buf[16:24], k.Z)
	return xxhash.Sum64(buf[:])
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

// Get returns the voxel at k, or nil if absent.
func (g *Grid) Get(k Key) *Voxel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h := hashKey(k)
	for _, v := range g.shards[h] {
		if v.Key == k {
			return v
		}
	}
	return nil
}

// Insert adds p to the voxel at its quantized key, creating the voxel if
// needed. Not safe for concurrent calls — the voxelization pass is single
// threaded per block.
func (g *Grid) Insert(p points.Point, voxelSize float64) {
	k := KeyOf(p.X, p.Y, p.Z, voxelSize)
	g.mu.Lock()
	defer g.mu.Unlock()
	h := hashKey(k)
	for _, v := range g.shards[h] {
		if v.Key == k {
			v.pushPoint(p)
			return
		}
	}
	g.shards[h] = append(g.shards[h], newVoxel(k, p))
	g.size++
}

// Len returns the number of distinct voxels.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// Range calls fn for every voxel. fn must not mutate the grid's key set.
func (g *Grid) Range(fn func(*Voxel)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, bucket := range g.shards {
		for _, v := range bucket {
			fn(v)
		}
	}
}

// SearchAdjacentPoints gathers points from the cubic shells around key,
// growing the shell radius until at least minPoints distinct (millimetre
// quantized) points have been collected or maxDepth shells have been
// searched, matching VoxelGrid::search_for_adjacent_points.
func (g *Grid) SearchAdjacentPoints(key Key, maxDepth int64, minPoints int) []points.Point {
	seen := make(map[[3]int64]points.Point)

	collect := func(k Key) {
		v := g.Get(k)
		if v == nil {
			return
		}
		for _, p := range v.Points {
			mk := [3]int64{
				int64(p.X * 1000),
				int64(p.Y * 1000),
				int64(p.Z * 1000),
			}
			if _, ok := seen[mk]; !ok {
				seen[mk] = p
			}
		}
	}

	for layer := int64(1); layer <= maxDepth && int64(len(seen)) < int64(minPoints); layer++ {
		if layer == 1 {
			collect(key)
		}
		for _, shellKey := range key.Shell(layer) {
			collect(shellKey)
		}
	}

	out := make([]points.Point, 0, len(seen))
	for mk := range seen {
		out = append(out, points.Point{
			X: float64(mk[0]) / 1000,
			Y: float64(mk[1]) / 1000,
			Z: float64(mk[2]) / 1000,
		})
	}
	return out
}
