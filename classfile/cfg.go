package classfile

import "sort"

// BasicBlock is a maximal straight-line run of instructions covering code
// offsets [Start, End).
type BasicBlock struct {
	Index        int
	Start, End   int
	Instructions []*Instruction

	// Successors are indices of blocks reached by normal control flow,
	// Handlers those reached when an instruction in this block throws.
	Successors   []int
	Handlers     []int
	Predecessors []int
}

func (b *BasicBlock) Last() *Instruction {
	return b.Instructions[len(b.Instructions)-1]
}

type ControlFlowGraph struct {
	Blocks []*BasicBlock

	// blockOf maps every code offset to the index of its block.
	blockOf []int
}

// BlockAt returns the block containing code offset pc, or nil.
func (g *ControlFlowGraph) BlockAt(pc int) *BasicBlock {
	if pc < 0 || pc >= len(g.blockOf) {
		return nil
	}
	return g.Blocks[g.blockOf[pc]]
}

func (g *ControlFlowGraph) Entry() *BasicBlock {
	if len(g.Blocks) == 0 {
		return nil
	}
	return g.Blocks[0]
}

func buildControlFlowGraph(instrs []*Instruction, handlers []ExceptionTableEntry) (*ControlFlowGraph, error) {
	if len(instrs) == 0 {
		return &ControlFlowGraph{}, nil
	}
	isStart := func(pc int) bool {
		return pc >= 0 && pc < len(instrs) && instrs[pc] != nil
	}

	leaders := map[int]bool{0: true}
	for pc, in := range instrs {
		if in == nil {
			continue
		}
		for _, t := range in.BranchTargets() {
			if !isStart(t) {
				return nil, corruptf("%s at %d jumps to %d, which is not an instruction", in.Mnemonic(), pc, t)
			}
			leaders[t] = true
		}
		next := pc + in.Length()
		if (len(in.BranchTargets()) > 0 || !in.FallsThrough()) && next < len(instrs) {
			leaders[next] = true
		}
	}
	for i, h := range handlers {
		start, end, target := int(h.StartPC), int(h.EndPC), int(h.HandlerPC)
		if !isStart(start) || !isStart(target) || (end != len(instrs) && !isStart(end)) {
			return nil, corruptf("exception handler %d does not align with instruction boundaries", i)
		}
		leaders[start] = true
		leaders[target] = true
		if end < len(instrs) {
			leaders[end] = true
		}
	}

	starts := make([]int, 0, len(leaders))
	for pc := range leaders {
		starts = append(starts, pc)
	}
	sort.Ints(starts)

	g := &ControlFlowGraph{blockOf: make([]int, len(instrs))}
	for i, start := range starts {
		end := len(instrs)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		b := &BasicBlock{Index: i, Start: start, End: end}
		for pc := start; pc < end; pc++ {
			g.blockOf[pc] = i
			if instrs[pc] != nil {
				b.Instructions = append(b.Instructions, instrs[pc])
			}
		}
		g.Blocks = append(g.Blocks, b)
	}

	for _, b := range g.Blocks {
		last := b.Last()
		for _, t := range last.BranchTargets() {
			g.link(b, g.blockOf[t])
		}
		if last.FallsThrough() && b.End < len(instrs) {
			g.link(b, g.blockOf[b.End])
		}
		for _, h := range handlers {
			if b.Start < int(h.EndPC) && int(h.StartPC) < b.End {
				b.Handlers = appendUnique(b.Handlers, g.blockOf[h.HandlerPC])
			}
		}
	}
	return g, nil
}

func (g *ControlFlowGraph) link(from *BasicBlock, to int) {
	before := len(from.Successors)
	from.Successors = appendUnique(from.Successors, to)
	if len(from.Successors) > before {
		g.Blocks[to].Predecessors = append(g.Blocks[to].Predecessors, from.Index)
	}
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}
