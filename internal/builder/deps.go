package builder

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/srcinfo"
)

// fileDependency is one file of a batch and the files it imports
type fileDependency struct {
	Path      string
	DependsOn []string
}

// dependencyGraph tracks imports between the files of a batch. Files keep
// the order they were added in, so every walk is deterministic.
type dependencyGraph struct {
	order []string
	nodes map[string]*fileDependency
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{nodes: make(map[string]*fileDependency)}
}

// AddFile adds a file and its imports
func (dg *dependencyGraph) AddFile(path string, deps []string) {
	if _, exists := dg.nodes[path]; exists {
		return
	}
	dg.order = append(dg.order, path)
	dg.nodes[path] = &fileDependency{Path: path, DependsOn: deps}
}

// Cycles returns every import cycle as the list of files along it, starting
// and ending with the same file. Each cycle is reported once, from the file
// that was added first.
func (dg *dependencyGraph) Cycles() [][]string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(dg.nodes))
	var stack []string
	var cycles [][]string

	var visit func(string)
	visit = func(p string) {
		node, exists := dg.nodes[p]
		if !exists {
			return
		}
		state[p] = active
		stack = append(stack, p)
		for _, dep := range node.DependsOn {
			switch state[dep] {
			case unvisited:
				visit(dep)
			case active:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						cycle := append(append([]string(nil), stack[i:]...), dep)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[p] = done
	}

	for _, p := range dg.order {
		if state[p] == unvisited {
			visit(p)
		}
	}
	return cycles
}

// checkFiles accepts the batch records: duplicate names, missing imports,
// bad public import indices and import cycles are reported here. Files that
// repeat an identical base or batch file are dropped silently.
func (b *builder) checkFiles(batch []*descriptorpb.FileDescriptorProto) {
	for _, in := range batch {
		fd := clone(in)
		b.synthesizeFile(fd)
		name := fd.GetName()
		loc := diag.Location{File: name}

		if name == "" {
			b.diags.Add(diag.NewInvalidName(name, "file name is empty", loc))
			continue
		}
		if existing := b.base.File(name); existing != nil {
			if !proto.Equal(existing.Proto, fd) {
				b.diags.Add(diag.NewDuplicateName(name, diag.Location{File: name, Imported: true}, loc))
			}
			continue
		}
		if prev, ok := b.byName[name]; ok {
			if !proto.Equal(prev.Proto, fd) {
				b.diags.Add(diag.NewDuplicateName(name, diag.Location{File: name}, loc))
			}
			continue
		}

		fs := &fileState{File: &File{Proto: fd}, index: srcinfo.New(fd)}
		b.files = append(b.files, fs)
		b.byName[name] = fs
	}

	graph := newDependencyGraph()
	for _, fs := range b.files {
		deps := fs.Proto.GetDependency()
		for i, dep := range deps {
			if b.lookupFile(dep) == nil {
				b.diags.Add(diag.NewMissingDependency(dep, fs.Name(), fs.at(srcinfo.FileDependency, int32(i))))
			}
		}
		for i, pub := range fs.Proto.GetPublicDependency() {
			if pub < 0 || int(pub) >= len(deps) {
				b.diags.Add(diag.NewInvalidName(fmt.Sprint(pub),
					fmt.Sprintf("public import index %d is out of range", pub),
					fs.at(srcinfo.FilePublicDependency, int32(i))))
			}
		}
		graph.AddFile(fs.Name(), deps)
	}

	for _, cycle := range graph.Cycles() {
		fs := b.byName[cycle[0]]
		at := fs.at()
		for i, dep := range fs.Proto.GetDependency() {
			if dep == cycle[1] {
				at = fs.at(srcinfo.FileDependency, int32(i))
				break
			}
		}
		b.diags.Add(diag.NewImportCycle(cycle, at))
	}

	for _, fs := range b.files {
		fs.visible = b.visibleFrom(fs.File)
	}
}

// visibleFrom returns the files whose symbols f may reference: f itself, its
// imports, and whatever those re-export through public imports
func (b *builder) visibleFrom(f *File) map[string]bool {
	visible := map[string]bool{f.Name(): true}
	var addPublic func(name string)
	addPublic = func(name string) {
		dep := b.lookupFile(name)
		if dep == nil {
			return
		}
		imports := dep.Proto.GetDependency()
		for _, pub := range dep.Proto.GetPublicDependency() {
			if pub < 0 || int(pub) >= len(imports) {
				continue
			}
			if next := imports[pub]; !visible[next] {
				visible[next] = true
				addPublic(next)
			}
		}
	}
	for _, dep := range f.Proto.GetDependency() {
		if !visible[dep] {
			visible[dep] = true
			addPublic(dep)
		}
	}
	return visible
}
