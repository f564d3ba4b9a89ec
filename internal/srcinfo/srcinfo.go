// Package srcinfo maps descriptor source paths to the spans recorded in a
// file's source code info, so diagnostics can point at declarations.
package srcinfo

import (
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
)

// Field numbers used to build source paths
const (
	// Name is the name field of every named declaration
	Name = 1

	FilePackage          = 2
	FileDependency       = 3
	FileMessage          = 4
	FileEnum             = 5
	FileService          = 6
	FileExtension        = 7
	FileOptions          = 8
	FilePublicDependency = 10
	FileSyntax           = 12

	MessageField          = 2
	MessageNested         = 3
	MessageEnum           = 4
	MessageExtensionRange = 5
	MessageExtension      = 6
	MessageOptions        = 7
	MessageOneof          = 8
	MessageReservedRange  = 9
	MessageReservedName   = 10

	FieldName       = 1
	FieldExtendee   = 2
	FieldNumber     = 3
	FieldLabel      = 4
	FieldType       = 5
	FieldTypeName   = 6
	FieldDefault    = 7
	FieldOptions    = 8
	FieldOneofIndex = 9
	FieldJSONName   = 10

	EnumValue         = 2
	EnumOptions       = 3
	EnumReservedRange = 4
	EnumReservedName  = 5

	EnumValueName    = 1
	EnumValueNumber  = 2
	EnumValueOptions = 3

	ServiceMethod  = 2
	ServiceOptions = 3

	MethodInput   = 2
	MethodOutput  = 3
	MethodOptions = 4

	OneofOptions = 2

	RangeStart          = 1
	RangeEnd            = 2
	ExtensionRangeOpts  = 3
	UninterpretedOption = 999
)

// Index looks up spans of one file
type Index struct {
	file  string
	spans map[string][]int32
}

// New indexes the source code info of a file. A file without source code
// info yields locations carrying only the file name and path.
func New(fd *descriptorpb.FileDescriptorProto) *Index {
	idx := &Index{file: fd.GetName()}
	locs := fd.GetSourceCodeInfo().GetLocation()
	if len(locs) == 0 {
		return idx
	}
	idx.spans = make(map[string][]int32, len(locs))
	for _, loc := range locs {
		k := key(loc.GetPath())
		if _, ok := idx.spans[k]; !ok {
			idx.spans[k] = loc.GetSpan()
		}
	}
	return idx
}

// File returns the indexed file's name
func (x *Index) File() string {
	return x.file
}

// Location returns the location of the element at path
func (x *Index) Location(path ...int32) diag.Location {
	loc := diag.Location{File: x.file, Path: slices.Clone(path)}
	if span, ok := x.spans[key(path)]; ok {
		loc.Span = toSpan(span)
	}
	return loc
}

// Nearest returns the location at path, or at the longest prefix of path
// that has a span
func (x *Index) Nearest(path ...int32) diag.Location {
	for n := len(path); n >= 0; n-- {
		if _, ok := x.spans[key(path[:n])]; ok {
			loc := x.Location(path[:n]...)
			loc.Path = slices.Clone(path)
			return loc
		}
	}
	return x.Location(path...)
}

// Child appends elements to a path without aliasing it
func Child(path []int32, elems ...int32) []int32 {
	out := make([]int32, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}

func toSpan(s []int32) *diag.Span {
	switch len(s) {
	case 3:
		return &diag.Span{StartLine: int(s[0]) + 1, StartColumn: int(s[1]) + 1, EndLine: int(s[0]) + 1, EndColumn: int(s[2]) + 1}
	case 4:
		return &diag.Span{StartLine: int(s[0]) + 1, StartColumn: int(s[1]) + 1, EndLine: int(s[2]) + 1, EndColumn: int(s[3]) + 1}
	}
	return nil
}

func key(path []int32) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(p)))
	}
	return b.String()
}
