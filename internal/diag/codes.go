package diag

// Name resolution (DSC1xx)
const (
	ErrDuplicateName        Code = "DSC101"
	ErrTypeNameNotFound     Code = "DSC102"
	ErrInvalidName          Code = "DSC103"
	ErrInvalidTypeReference Code = "DSC104"
	ErrDuplicateJSONName    Code = "DSC105"
)

// Numbering (DSC2xx)
const (
	ErrInvalidRange           Code = "DSC201"
	ErrDuplicateNumber        Code = "DSC202"
	ErrInvalidExtensionNumber Code = "DSC203"
	ErrInvalidFieldNumber     Code = "DSC204"
)

// Values and field shapes (DSC3xx)
const (
	ErrInvalidDefault   Code = "DSC301"
	ErrInvalidEnumValue Code = "DSC302"
	ErrValueInvalidType Code = "DSC303"
	ErrInvalidMapEntry  Code = "DSC304"
	ErrInvalidOneof     Code = "DSC305"
	ErrInvalidLabel     Code = "DSC306"
	ErrInvalidPacked    Code = "DSC307"
)

// Options (DSC4xx)
const (
	ErrOptionAlreadySet   Code = "DSC401"
	ErrUnknownOptionField Code = "DSC402"
	ErrInvalidOptionPath  Code = "DSC403"
)

// Files (DSC5xx)
const (
	ErrMissingDependency Code = "DSC501"
	ErrImportCycle       Code = "DSC502"
)

// Titles holds the short heading shown above a rendered diagnostic
var Titles = map[Code]string{
	ErrDuplicateName:          "duplicate name",
	ErrTypeNameNotFound:       "name not found",
	ErrInvalidName:            "invalid name",
	ErrInvalidTypeReference:   "invalid type reference",
	ErrDuplicateJSONName:      "duplicate JSON name",
	ErrInvalidRange:           "invalid range",
	ErrDuplicateNumber:        "duplicate number",
	ErrInvalidExtensionNumber: "invalid extension number",
	ErrInvalidFieldNumber:     "invalid field number",
	ErrInvalidDefault:         "invalid default",
	ErrInvalidEnumValue:       "invalid enum value",
	ErrValueInvalidType:       "invalid value type",
	ErrInvalidMapEntry:        "invalid map entry",
	ErrInvalidOneof:           "invalid oneof",
	ErrInvalidLabel:           "invalid label",
	ErrInvalidPacked:          "invalid packed option",
	ErrOptionAlreadySet:       "option already set",
	ErrUnknownOptionField:     "unknown option field",
	ErrInvalidOptionPath:      "invalid option path",
	ErrMissingDependency:      "missing dependency",
	ErrImportCycle:            "import cycle",
}

// Title returns the heading for a code, falling back to the code itself
func Title(code Code) string {
	if t, ok := Titles[code]; ok {
		return t
	}
	return string(code)
}
