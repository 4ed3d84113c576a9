package model

// ResponseLength is the response-length category marked on the exam template.
type ResponseLength int

const (
	LengthUnknown ResponseLength = iota
	LengthShort
	LengthLong
)

func (l ResponseLength) String() string {
	switch l {
	case LengthShort:
		return "Short Response"
	case LengthLong:
		return "Long Response"
	default:
		return "Unknown"
	}
}

// SubjectCategory is either SubjectGeneral or the name of a specialized subject.
type SubjectCategory string

const SubjectGeneral SubjectCategory = "General"

func (s SubjectCategory) IsGeneral() bool {
	return s == SubjectGeneral || s == ""
}

// Classification labels a transcript. Ambiguous is set when both length
// markers were found; Length is then LengthUnknown.
type Classification struct {
	Subject   SubjectCategory
	Length    ResponseLength
	Ambiguous bool
}
