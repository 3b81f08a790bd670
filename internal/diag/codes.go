package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// registry ingestion
	RegInfo            Code = 1000
	RegMalformedXML    Code = 1001
	RegMissingName     Code = 1002
	RegUnknownCommand  Code = 1003
	RegBadVersion      Code = 1004
	RegDuplicateCmd    Code = 1005
	RegEmptyRegistry   Code = 1006
	RegMissingFeatAttr Code = 1007

	// alias resolution
	AlsInfo       Code = 2000
	AlsDangling   Code = 2001
	AlsCycle      Code = 2002
	AlsTransitive Code = 2003

	// providers
	PrvInfo           Code = 3000
	PrvUnknownAPI     Code = 3001
	PrvRedefined      Code = 3002
	PrvTokenCollision Code = 3003
	PrvBadLoader      Code = 3004

	// emission
	EmtInfo        Code = 4000
	EmtMissingRoot Code = 4001

	// configuration
	CfgInfo      Code = 5000
	CfgParse     Code = 5001
	CfgBadValue  Code = 5002
	CfgNoSources Code = 5003

	// io
	IOInfo      Code = 6000
	IOReadFile  Code = 6001
	IOWriteFile Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	RegInfo:            "Registry information",
	RegMalformedXML:    "Malformed registry XML",
	RegMissingName:     "Registry element without a name",
	RegUnknownCommand:  "Reference to an undefined command",
	RegBadVersion:      "Unparseable feature version",
	RegDuplicateCmd:    "Command defined twice",
	RegEmptyRegistry:   "Document has no <registry> root",
	RegMissingFeatAttr: "Feature without api or number",
	AlsInfo:            "Alias information",
	AlsDangling:        "Alias target is not defined",
	AlsCycle:           "Alias chain loops back on itself",
	AlsTransitive:      "Transitive aliasing after resolution",
	PrvInfo:            "Provider information",
	PrvUnknownAPI:      "Unknown API family",
	PrvRedefined:       "Provider label redefined with different condition or loader",
	PrvTokenCollision:  "Two provider labels sanitize to the same token",
	PrvBadLoader:       "Loader template has no {name} placeholder",
	EmtInfo:            "Emission information",
	EmtMissingRoot:     "Alias member emitted without its root",
	CfgInfo:            "Configuration information",
	CfgParse:           "Configuration file does not parse",
	CfgBadValue:        "Invalid configuration value",
	CfgNoSources:       "No registry documents given",
	IOInfo:             "I/O information",
	IOReadFile:         "Cannot read input",
	IOWriteFile:        "Cannot write output",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ALS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("PRV%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Error lets a bare Code act as an errors.Is target.
func (c Code) Error() string {
	return c.String()
}
