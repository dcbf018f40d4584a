package configstore

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// runModeGraph is the inheritance graph of run modes. Every node has at most
// one outgoing edge, to its parent.
type runModeGraph struct {
	nodes  map[string]*runModeFields
	parent map[string]string // absent for roots
}

func newRunModeGraph(nodes map[string]*runModeFields) *runModeGraph {
	g := &runModeGraph{nodes: nodes, parent: map[string]string{}}
	for name, n := range nodes {
		switch {
		case n.parent.set:
			g.parent[name] = n.parent.val
		case name != DefaultName:
			g.parent[name] = DefaultName
		}
	}
	return g
}

// checkEdges reports parents that name no run mode and drops those edges.
// The implicit edge to "default" is reported once on the missing default
// entry. It returns the entries whose edge was dropped.
func (g *runModeGraph) checkEdges(is *issues) map[string]bool {
	broken := map[string]bool{}
	var orphans []string
	for _, name := range slices.Sorted(maps.Keys(g.parent)) {
		p := g.parent[name]
		if _, ok := g.nodes[p]; ok {
			continue
		}
		n := g.nodes[name]
		if n.parent.set {
			is.add(&ValidationError{
				Source: n.parent.source, Category: string(CategoryRunModes), Entry: name, Field: keyParent,
				Message: fmt.Sprintf("parent %q is not defined", p), Err: ErrNotFound,
			})
		} else {
			orphans = append(orphans, name)
		}
		broken[name] = true
		delete(g.parent, name)
	}
	if len(orphans) > 0 {
		is.add(&ValidationError{
			Category: string(CategoryRunModes), Entry: DefaultName,
			Message: "required as implicit parent of " + strings.Join(orphans, ", "), Err: ErrNotFound,
		})
	}
	return broken
}

// cycles returns every cycle once, rotated to start at its smallest name.
// The returned set contains each node that is on, or leads into, a cycle.
func (g *runModeGraph) cycles() ([][]string, map[string]bool) {
	const (
		unvisited = iota
		onPath
		done
	)
	state := map[string]int{}
	blocked := map[string]bool{}
	var found [][]string

	for _, start := range slices.Sorted(maps.Keys(g.nodes)) {
		if state[start] != unvisited {
			continue
		}
		var path []string
		cur := start
		for {
			if state[cur] == onPath {
				i := slices.Index(path, cur)
				found = append(found, rotateMin(path[i:]))
				for _, n := range path {
					blocked[n] = true
				}
				break
			}
			if state[cur] == done {
				if blocked[cur] {
					for _, n := range path {
						blocked[n] = true
					}
				}
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			p, ok := g.parent[cur]
			if !ok {
				break
			}
			cur = p
		}
		for _, n := range path {
			state[n] = done
		}
	}
	return found, blocked
}

func rotateMin(cycle []string) []string {
	m := 0
	for i, n := range cycle {
		if n < cycle[m] {
			m = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[m:]...)
	return append(out, cycle[:m]...)
}

// chain returns name followed by its ancestors. The graph must be acyclic
// along this path.
func (g *runModeGraph) chain(name string) []string {
	out := []string{name}
	for p, ok := g.parent[name]; ok; p, ok = g.parent[p] {
		out = append(out, p)
	}
	return out
}

// resolve folds the chain from the root down, children overriding parents.
func (g *runModeGraph) resolve(name string) *runModeFields {
	chain := g.chain(name)
	r := &runModeFields{}
	for _, n := range slices.Backward(chain) {
		overlayRunMode(r, g.nodes[n])
	}
	r.parent = g.nodes[name].parent
	if _, ok := g.parent[name]; ok && !r.parent.set {
		r.parent.val = g.parent[name]
	}
	return r
}

func overlay[T any](dst *field[T], src field[T]) {
	if src.set {
		*dst = src
	}
}

func overlayRunMode(dst, src *runModeFields) {
	overlay(&dst.nBeads, src.nBeads)
	overlay(&dst.umiCutoff, src.umiCutoff)
	overlay(&dst.cleanDGE, src.cleanDGE)
	overlay(&dst.detectTissue, src.detectTissue)
	overlay(&dst.polyATrimming, src.polyATrimming)
	overlay(&dst.countIntronic, src.countIntronic)
	overlay(&dst.countMM, src.countMM)
	overlay(&dst.meshData, src.meshData)
	overlay(&dst.meshType, src.meshType)
	overlay(&dst.meshDiameter, src.meshDiameter)
	overlay(&dst.meshDistance, src.meshDistance)
}

// unsetFields lists required keys r leaves unset. Mesh geometry is only
// required when mesh_data is on.
func (r *runModeFields) unsetFields() []string {
	var out []string
	check := func(key string, set bool) {
		if !set {
			out = append(out, key)
		}
	}
	check(keyNBeads, r.nBeads.set)
	check(keyUMICutoff, r.umiCutoff.set)
	check(keyCleanDGE, r.cleanDGE.set)
	check(keyDetectTissue, r.detectTissue.set)
	check(keyPolyATrimming, r.polyATrimming.set)
	check(keyCountIntronic, r.countIntronic.set)
	check(keyCountMM, r.countMM.set)
	check(keyMeshData, r.meshData.set)
	if r.meshData.val {
		check(keyMeshType, r.meshType.set)
		check(keyMeshDiameter, r.meshDiameter.set)
		check(keyMeshDistance, r.meshDistance.set)
	}
	return out
}

// resolveRunModes runs the reference checks for run modes and returns the
// resolved entries. Entries that cannot be resolved are omitted.
func resolveRunModes(nodes map[string]*runModeFields, is *issues) map[string]*runModeFields {
	g := newRunModeGraph(nodes)
	broken := g.checkEdges(is)

	cycles, blocked := g.cycles()
	for _, c := range cycles {
		head := c[0]
		is.add(&ValidationError{
			Source:   nodes[head].parent.source,
			Category: string(CategoryRunModes), Entry: head, Field: keyParent,
			Message: strings.Join(append(slices.Clone(c), head), " -> "),
			Err:     ErrCyclicInheritance,
		})
	}

	out := make(map[string]*runModeFields, len(nodes))
	for _, name := range slices.Sorted(maps.Keys(nodes)) {
		if blocked[name] || slices.ContainsFunc(g.chain(name), func(n string) bool { return broken[n] }) {
			continue
		}
		r := g.resolve(name)
		for _, key := range r.unsetFields() {
			is.add(&ValidationError{
				Category: string(CategoryRunModes), Entry: name, Field: key,
				Message: "not set along " + strings.Join(g.chain(name), " -> "),
				Err:     ErrUnresolvedField,
			})
		}
		out[name] = r
	}
	return out
}

// resolveFlavors fills unset flavor fields from the default flavor and
// checks bam_tags placeholders against the flavor's own fields.
func resolveFlavors(flavors map[string]*flavorFields, is *issues) map[string]*flavorFields {
	base := flavors[DefaultName]
	out := make(map[string]*flavorFields, len(flavors))
	for _, name := range slices.Sorted(maps.Keys(flavors)) {
		f := *flavors[name]
		if base != nil && name != DefaultName {
			if !f.cell.set {
				f.cell, f.cellRaw = base.cell, base.cellRaw
			}
			if !f.umi.set {
				f.umi, f.umiRaw = base.umi, base.umiRaw
			}
			overlayMissing(&f.bamTags, base.bamTags)
		}

		ok := true
		for _, m := range []struct {
			key string
			set bool
		}{{keyCell, f.cell.set}, {keyUMI, f.umi.set}, {keyBamTags, f.bamTags.set}} {
			if !m.set {
				ok = false
				is.add(&ValidationError{
					Category: string(CategoryBarcodeFlavors), Entry: name, Field: m.key,
					Message: "not set on flavor or default", Err: ErrUnresolvedField,
				})
			}
		}
		if !ok {
			continue
		}

		if err := f.bamTags.val.CheckPlaceholders(flavorFieldNames()); err != nil {
			is.add(&ValidationError{
				Source:   f.bamTags.source,
				Category: string(CategoryBarcodeFlavors), Entry: name, Field: keyBamTags,
				Message: err.Error(), Err: ErrUnknownPlaceholder, Cause: err,
			})
			continue
		}
		out[name] = &f
	}
	return out
}

func overlayMissing[T any](dst *field[T], src field[T]) {
	if !dst.set {
		*dst = src
	}
}

// flavorFieldNames are the placeholders a flavor defines itself.
func flavorFieldNames() []string {
	return []string{keyCell, keyUMI}
}
