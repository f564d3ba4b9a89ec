// Package wkt supplies the file descriptor records of the well-known types
// bundled with google.golang.org/protobuf.
package wkt

import (
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/apipb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/sourcecontextpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/typepb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"google.golang.org/protobuf/types/pluginpb"
)

// DescriptorFile is the name of the file declaring the option messages
const DescriptorFile = "google/protobuf/descriptor.proto"

// files lists the bundled descriptors with every file after its imports
var files = []protoreflect.FileDescriptor{
	descriptorpb.File_google_protobuf_descriptor_proto,
	anypb.File_google_protobuf_any_proto,
	sourcecontextpb.File_google_protobuf_source_context_proto,
	typepb.File_google_protobuf_type_proto,
	apipb.File_google_protobuf_api_proto,
	durationpb.File_google_protobuf_duration_proto,
	emptypb.File_google_protobuf_empty_proto,
	fieldmaskpb.File_google_protobuf_field_mask_proto,
	structpb.File_google_protobuf_struct_proto,
	timestamppb.File_google_protobuf_timestamp_proto,
	wrapperspb.File_google_protobuf_wrappers_proto,
	pluginpb.File_google_protobuf_compiler_plugin_proto,
}

// Files returns fresh copies of the well-known file records
func Files() []*descriptorpb.FileDescriptorProto {
	out := make([]*descriptorpb.FileDescriptorProto, 0, len(files))
	for _, fd := range files {
		out = append(out, protodesc.ToFileDescriptorProto(fd))
	}
	return out
}

// Descriptor returns only descriptor.proto, which is enough to interpret
// options
func Descriptor() *descriptorpb.FileDescriptorProto {
	return protodesc.ToFileDescriptorProto(descriptorpb.File_google_protobuf_descriptor_proto)
}

// Names lists the file names in dependency order
func Names() []string {
	out := make([]string, 0, len(files))
	for _, fd := range files {
		out = append(out, fd.Path())
	}
	return out
}
