package model

// Severity represents the risk level of an audit finding.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct exposure.
	// Example: the list of third-party hosts contacted by a capture.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor leftovers with limited impact.
	// Examples: software names in image metadata, skipped records.
	SeverityLow

	// SeverityMedium indicates leftovers that identify a device or a person
	// when combined with other data.
	SeverityMedium

	// SeverityHigh indicates leftovers that expose a secret or a name.
	// Examples: a redacted value still present elsewhere, a camera serial number.
	SeverityHigh

	// SeverityCritical indicates leftovers that locate the person who made
	// the capture.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// Finding types produced by the auditors.
const (
	FindingResidualValue   = "residual_value"
	FindingSkippedRecord   = "skipped_record"
	FindingExifGPS         = "exif_gps"
	FindingExifSerial      = "exif_serial"
	FindingExifAuthor      = "exif_author"
	FindingExifCamera      = "exif_camera"
	FindingExifSoftware    = "exif_software"
	FindingThirdPartyHosts = "third_party_hosts"
)

// findingInfoMapping maps finding types to their metadata.
var findingInfoMapping = map[string]FindingInfo{
	FindingExifGPS: {
		Severity:       SeverityCritical,
		Impact:         "An image in the capture carries GPS coordinates that can reveal where it was taken.",
		Recommendation: "Remove the image bodies from the capture or strip their metadata before sharing.",
	},
	FindingResidualValue: {
		Severity:       SeverityHigh,
		Impact:         "A value that was redacted in one place is still readable elsewhere in the document.",
		Recommendation: "Add the field name to the word list or remove the affected entries manually.",
	},
	FindingExifSerial: {
		Severity:       SeverityHigh,
		Impact:         "An image carries the serial number of the device that produced it.",
		Recommendation: "Strip image metadata before sharing the capture.",
	},
	FindingExifAuthor: {
		Severity:       SeverityHigh,
		Impact:         "An image names its author or copyright holder.",
		Recommendation: "Strip image metadata before sharing the capture.",
	},
	FindingExifCamera: {
		Severity:       SeverityMedium,
		Impact:         "An image records the make and model of the camera that produced it.",
		Recommendation: "Strip image metadata before sharing the capture.",
	},
	FindingExifSoftware: {
		Severity:       SeverityLow,
		Impact:         "An image records the software used to edit it.",
		Recommendation: "Strip image metadata if the tooling should not be disclosed.",
	},
	FindingSkippedRecord: {
		Severity:       SeverityLow,
		Impact:         "A name/value record had an unexpected shape and was not considered for redaction.",
		Recommendation: "Review the record manually; its value may still be present.",
	},
	FindingThirdPartyHosts: {
		Severity:       SeverityInfo,
		Impact:         "The capture lists every site the browser contacted, which reveals browsing context.",
		Recommendation: "Remove unrelated entries from the capture before sharing.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
