package stupidedi

// Segment identifiers for the envelope control segments. These are the
// only segment ids the engine itself needs to recognize directly; every
// other segment id is resolved through a Catalog.
const (
	isaSegmentID = "ISA"
	ieaSegmentID = "IEA"
	gsSegmentID  = "GS"
	geSegmentID  = "GE"
	stSegmentID  = "ST"
	seSegmentID  = "SE"
	hlSegmentID  = "HL"
)

// ISA is positional rather than delimited: 106 bytes including the
// trailing segment terminator, 17 elements.
const (
	isaByteCount             = 106
	isaElementCount          = 17
	isaElementSeparatorIndex = 3
)

// isaIndex* are 0-indexed positions of ISA elements, ISA00 (segment id)
// through ISA16 (component element separator).
const (
	isaIndexSegmentID = iota
	isaIndexAuthInfoQualifier
	isaIndexAuthInfo
	isaIndexSecurityInfoQualifier
	isaIndexSecurityInfo
	isaIndexSenderIDQualifier
	isaIndexSenderID
	isaIndexReceiverIDQualifier
	isaIndexReceiverID
	isaIndexDate
	isaIndexTime
	isaIndexRepetitionSeparator
	isaIndexVersion
	isaIndexControlNumber
	isaIndexAckRequested
	isaIndexUsageIndicator
	isaIndexComponentElementSeparator
)

const (
	ieaIndexFunctionalGroupCount = iota + 1
	ieaIndexControlNumber
)

const (
	gsIndexFunctionalIDCode = iota + 1
	gsIndexSenderCode
	gsIndexReceiverCode
	gsIndexDate
	gsIndexTime
	gsIndexControlNumber
	gsIndexResponsibleAgencyCode
	gsIndexVersion
)

const (
	geIndexIncludedTransactionSets = iota + 1
	geIndexControlNumber
)

const (
	stIndexTransactionSetCode = iota + 1
	stIndexControlNumber
	stIndexVersionCode
)

const (
	seIndexIncludedSegments = iota + 1
	seIndexControlNumber
)

const (
	hlIndexHierarchicalID = iota + 1
	hlIndexParentID
	hlIndexLevelCode
	hlIndexChildCode
)

// isaFieldLen gives the fixed width of each ISA element, left-padded with
// spaces on the wire. The segment id and the two trailing single-byte
// separator fields aren't listed since they're handled positionally by
// the tokenizer rather than padded/trimmed like the others.
// isaIndexRepetitionSeparator is listed here too (width 1) so the offset
// walk in separators.go steps over it correctly; its value is captured
// specially rather than used for padding/trimming like the others.
var isaFieldLen = map[int]int{
	isaIndexAuthInfoQualifier:     2,
	isaIndexAuthInfo:              10,
	isaIndexSecurityInfoQualifier: 2,
	isaIndexSecurityInfo:          10,
	isaIndexSenderIDQualifier:     2,
	isaIndexSenderID:              15,
	isaIndexReceiverIDQualifier:   2,
	isaIndexReceiverID:            15,
	isaIndexDate:                  6,
	isaIndexTime:                  4,
	isaIndexRepetitionSeparator:   1,
	isaIndexVersion:               5,
	isaIndexControlNumber:         9,
	isaIndexAckRequested:          1,
	isaIndexUsageIndicator:        1,
}

// Display names for the two synthetic grouping node kinds that have no
// segment id of their own (a functional group and a transaction set are
// each identified by their GS/ST segment, not by a name on the node).
const (
	functionalGroupName = "FUNCTIONAL_GROUP"
	transactionSetName  = "TRANSACTION_SET"
)

// functionalIdentifierCodes maps a transaction set code to the GS01
// functional identifier code that envelopes it.
var functionalIdentifierCodes = map[string]string{
	"270": "HS",
	"271": "HB",
	"276": "HR",
	"277": "HN",
	"278": "HI",
	"820": "RA",
	"834": "HP",
	"835": "HP",
	"837": "HC",
	"997": "FA",
	"999": "FA",
}
