package xsd

// DataType is the scalar classification of a node.
type DataType int

// Data types.
const (
	String DataType = iota
	Integer
	Long
	Double
	Boolean
	Date
	DateTime
	Time
	Complex
	Mixed
	Any
)

var dataTypeNames = [...]string{
	String:   "STRING",
	Integer:  "INTEGER",
	Long:     "LONG",
	Double:   "DOUBLE",
	Boolean:  "BOOLEAN",
	Date:     "DATE",
	DateTime: "DATETIME",
	Time:     "TIME",
	Complex:  "COMPLEX",
	Mixed:    "MIXED",
	Any:      "ANY",
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return "UNKNOWN"
	}
	return dataTypeNames[t]
}

// IsNumeric reports whether values of the type are JSON numbers.
func (t DataType) IsNumeric() bool {
	return t == Integer || t == Long || t == Double
}

// primitive describes how a built-in XSD type is represented.
type primitive struct {
	dataType    DataType
	placeholder string
}

// lookupPrimitive returns the representation of a built-in XSD type.
// Built-ins without a dedicated case (string, token, anyURI, QName and
// the other string derived types) are strings without a placeholder.
func lookupPrimitive(name string) primitive {
	switch name {
	case "byte", "short", "int", "unsignedShort", "unsignedByte":
		return primitive{Integer, "0"}
	case "integer", "long", "nonNegativeInteger", "nonPositiveInteger", "unsignedLong", "unsignedInt":
		return primitive{Long, "0"}
	case "positiveInteger":
		return primitive{Long, "1"}
	case "negativeInteger":
		return primitive{Long, "-1"}
	case "decimal", "double", "float":
		return primitive{Double, "0.0"}
	case "boolean":
		return primitive{Boolean, "false"}
	case "date":
		return primitive{Date, "2000-01-01"}
	case "dateTime":
		return primitive{DateTime, "2000-01-01T00:00:00Z"}
	case "time":
		return primitive{Time, "00:00:00"}
	case "duration":
		return primitive{String, "P0S"}
	case "anyType":
		return primitive{Any, ""}
	default:
		return primitive{dataType: String}
	}
}
