package pathfind

import "container/heap"

// frontier orders branches by cumulative traversal cost. Equal costs pop in
// insertion order so repeated runs over the same world are byte-identical.
type frontier struct {
	items []*frontierItem
	seq   uint64
}

type frontierItem struct {
	branch
	seq uint64
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.items[i], f.items[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.seq < b.seq
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) { f.items = append(f.items, x.(*frontierItem)) }

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	f.items = old[:n-1]
	return it
}

func (f *frontier) push(b branch) {
	f.seq++
	heap.Push(f, &frontierItem{branch: b, seq: f.seq})
}

func (f *frontier) pop() branch {
	return heap.Pop(f).(*frontierItem).branch
}
