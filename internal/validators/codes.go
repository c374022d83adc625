package validators

import "slices"

// OperationCodes are the repair operations an estimate line can carry.
var OperationCodes = []string{
	"RPL",  // replace
	"RPR",  // repair
	"R&I",  // remove and install
	"R&R",  // remove and replace
	"REF",  // refinish
	"BLND", // blend
	"SUBL", // sublet
	"ALGN", // align
}

// PartTypes are the sourcing classes of a replacement part.
var PartTypes = []string{
	"OEM",
	"AM",
	"USED",
	"RECON",
	"REMAN",
}

func isOperationCode(code string) bool {
	return slices.Contains(OperationCodes, code)
}

func isPartType(code string) bool {
	return slices.Contains(PartTypes, code)
}
