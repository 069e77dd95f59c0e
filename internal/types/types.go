// =============================================================================
// COVID Trends - Shared Types
// =============================================================================
//
// This package contains the vocabulary shared by the configuration loader,
// the report generators and the CLI, kept here to avoid import cycles.
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDataType is returned for a Pillar 2 data type other than
// testing or death.
var ErrUnknownDataType = errors.New("unknown data type")

// =============================================================================
// REPORT KINDS
// =============================================================================

// Report identifies one of the report generators. Its value doubles as the
// module name in log entries.
type Report string

const (
	ReportTrustDeaths Report = "trust_deaths"
	ReportPillar1     Report = "pillar1"
	ReportPillar2     Report = "pillar2"
)

// Reports lists every report in the order `all` runs them.
var Reports = []Report{ReportTrustDeaths, ReportPillar1, ReportPillar2}

// FileBase is the leading part of the report's output file names.
func (r Report) FileBase() string { return string(r) }

// =============================================================================
// PILLAR 2 DATA TYPES
// =============================================================================

// DataType selects which Pillar 2 series a configuration line describes.
type DataType string

const (
	DataTypeTesting DataType = "testing"
	DataTypeDeath   DataType = "death"
)

// ParseDataType accepts the data type names used in the Pillar 2
// configuration file, ignoring case and surrounding space.
func ParseDataType(s string) (DataType, error) {
	switch DataType(strings.ToLower(strings.TrimSpace(s))) {
	case DataTypeTesting:
		return DataTypeTesting, nil
	case DataTypeDeath:
		return DataTypeDeath, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownDataType, s)
	}
}

// =============================================================================
// PILLAR 1 TIERS
// =============================================================================

// ShortTier shortens the area tier used in Pillar 1 file names:
// "utla..." becomes "upper", "ltla..." becomes "lower" and anything else is
// used unchanged.
func ShortTier(tier string) string {
	switch {
	case strings.HasPrefix(tier, "utla"):
		return "upper"
	case strings.HasPrefix(tier, "ltla"):
		return "lower"
	default:
		return tier
	}
}
