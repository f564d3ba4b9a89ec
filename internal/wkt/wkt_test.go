package wkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesAreOrderedByImports(t *testing.T) {
	fds := Files()
	require.Len(t, fds, len(Names()))
	assert.Equal(t, DescriptorFile, fds[0].GetName())

	seen := make(map[string]bool)
	for _, fd := range fds {
		for _, dep := range fd.GetDependency() {
			assert.True(t, seen[dep], "%s imports %s before it is listed", fd.GetName(), dep)
		}
		seen[fd.GetName()] = true
	}
}

func TestFilesAreCopies(t *testing.T) {
	a := Files()
	a[0].Package = nil
	assert.Equal(t, "google.protobuf", Files()[0].GetPackage())
	assert.Equal(t, DescriptorFile, Descriptor().GetName())
}
