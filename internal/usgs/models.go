// Package usgs is a client for the USGS NWIS Water Services API. It exposes
// the two request shapes the connectors need: instantaneous time-series
// values (nested JSON) and site listings (tab-delimited RDB).
package usgs

import "time"

// Parameter codes for the measurements this system cares about.
const (
	ParamStreamflow         = "00060" // discharge, cubic feet per second
	ParamGageHeight         = "00065" // gage height, feet
	ParamPrecipitation      = "00045" // precipitation, total, inches
	ParamPrecipitationAccum = "00046" // precipitation, accumulated, inches
	ParamTemperatureWater   = "00010" // water temperature, degrees Celsius
	ParamTemperatureAir     = "00020" // air temperature, degrees Celsius
)

// Site type codes used for query filtering.
const (
	SiteTypeStream        = "ST"
	SiteTypeLake          = "LK"
	SiteTypeWell          = "GW"
	SiteTypeSpring        = "SP"
	SiteTypePrecipitation = "PR"
	SiteTypeAtmospheric   = "AT"
)

// Period tokens accepted by the instantaneous-values endpoint (ISO-8601
// durations).
const (
	PeriodDay   = "P1D"
	PeriodWeek  = "P7D"
	PeriodMonth = "P1M"
	PeriodYear  = "P1Y"
)

// Defaults mirroring the NWIS service conventions.
const (
	DefaultBaseURL     = "https://waterservices.usgs.gov/nwis"
	DefaultTimeout     = 30 * time.Second
	DefaultPeriod      = PeriodWeek
	DefaultRadiusMiles = 25.0
	MaxSitesPerRequest = 100 // NWIS limitation
)

// SiteSummary is one parsed row from an RDB site listing.
type SiteSummary struct {
	SiteNo      string
	SiteName    string
	SiteType    string
	Latitude    float64
	Longitude   float64
	StateCd     string
	CountyCd    string
	HucCd       string
	ElevationFt *float64

	// DistanceMiles is set when the listing was requested relative to a
	// reference point.
	DistanceMiles *float64
}

// Reading is one flattened instantaneous value: the cross product of a time
// series, a value group, and a value entry, with site and variable context
// inherited.
type Reading struct {
	SiteNo        string
	SiteName      string
	Latitude      float64
	Longitude     float64
	ParameterCode string
	VariableName  string
	Unit          string
	Timestamp     time.Time
	Value         *float64
	Qualifiers    []string
}

// Wire structs for the instantaneous-values JSON envelope. Only the fields
// the flattener reads are declared; the rest of the payload is ignored.

type ivEnvelope struct {
	Value *ivValue `json:"value"`
}

type ivValue struct {
	TimeSeries []ivTimeSeries `json:"timeSeries"`
}

type ivTimeSeries struct {
	SourceInfo ivSourceInfo   `json:"sourceInfo"`
	Variable   ivVariable     `json:"variable"`
	Values     []ivValueGroup `json:"values"`
}

type ivSourceInfo struct {
	SiteName string       `json:"siteName"`
	SiteCode []ivSiteCode `json:"siteCode"`
	GeoLoc   struct {
		GeogLocation struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geogLocation"`
	} `json:"geoLocation"`
	SiteType []struct {
		Value string `json:"value"`
	} `json:"siteType"`
}

func (s ivSourceInfo) siteNo() string {
	if len(s.SiteCode) > 0 {
		return s.SiteCode[0].Value
	}
	return ""
}

type ivSiteCode struct {
	Value string `json:"value"`
}

type ivVariable struct {
	VariableCode []struct {
		Value string `json:"value"`
	} `json:"variableCode"`
	VariableName string `json:"variableName"`
	Unit         struct {
		UnitCode string `json:"unitCode"`
	} `json:"unit"`
}

func (v ivVariable) parameterCode() string {
	if len(v.VariableCode) > 0 {
		return v.VariableCode[0].Value
	}
	return ""
}

type ivValueGroup struct {
	Value []ivPoint `json:"value"`
}

type ivPoint struct {
	Value      string   `json:"value"`
	Qualifiers []string `json:"qualifiers"`
	DateTime   string   `json:"dateTime"`
}
