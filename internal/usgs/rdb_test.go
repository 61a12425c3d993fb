package usgs

import (
	"strings"
	"testing"
)

const sampleRDB = `# US Geological Survey
# retrieved: 2024-06-01
#
agency_cd	site_no	station_nm	site_tp_cd	dec_lat_va	dec_long_va	state_cd	county_cd	huc_cd	alt_va
5s	15s	50s	7s	16s	16s	2s	3s	16s	8s
USGS	06711565	SOUTH PLATTE RIVER AT ENGLEWOOD, CO	ST	39.6527778	-105.0083333	08	031	10190002	5234.00
USGS	06714215	CLEAR CREEK AT DENVER, CO	ST	39.7880	-105.0560	08	031	10190004
USGS	06701900	NO COORDS SITE	ST			08	031	10190002	5100.00
USGS		MISSING SITE NO	ST	39.70	-105.00	08	031	10190002	5100.00
`

func TestParseRDBSampleListing(t *testing.T) {
	ref := &refPoint{Lat: 39.7392, Lon: -104.9903}
	sites := parseRDB(sampleRDB, ref)

	if len(sites) != 2 {
		t.Fatalf("expected 2 sites (zero-coordinate and no-ID rows discarded), got %d", len(sites))
	}

	// Clear Creek is closer to the reference point than Englewood.
	if sites[0].SiteNo != "06714215" {
		t.Fatalf("expected closest site first, got %s", sites[0].SiteNo)
	}
	if sites[0].DistanceMiles == nil || sites[1].DistanceMiles == nil {
		t.Fatal("distances must be annotated when a reference point is given")
	}
	if *sites[0].DistanceMiles > *sites[1].DistanceMiles {
		t.Fatalf("sites not sorted by distance: %v > %v", *sites[0].DistanceMiles, *sites[1].DistanceMiles)
	}

	first := sites[1]
	if first.SiteName != "SOUTH PLATTE RIVER AT ENGLEWOOD, CO" {
		t.Errorf("unexpected site name %q", first.SiteName)
	}
	if first.SiteType != "ST" || first.StateCd != "08" || first.CountyCd != "031" || first.HucCd != "10190002" {
		t.Errorf("unexpected administrative fields: %+v", first)
	}
	if first.ElevationFt == nil || *first.ElevationFt != 5234.00 {
		t.Errorf("expected elevation 5234.00, got %v", first.ElevationFt)
	}

	// Empty alt_va falls back to nil rather than discarding the row.
	if sites[0].ElevationFt != nil {
		t.Errorf("expected nil elevation for empty alt_va, got %v", *sites[0].ElevationFt)
	}
}

func TestParseRDBHeaderOnly(t *testing.T) {
	in := "# comment only\nagency_cd\tsite_no\tstation_nm\n5s\t15s\t50s\n"
	sites := parseRDB(in, nil)
	if len(sites) != 0 {
		t.Fatalf("expected empty result for header-only input, got %d sites", len(sites))
	}
}

func TestParseRDBEmpty(t *testing.T) {
	if sites := parseRDB("", nil); len(sites) != 0 {
		t.Fatalf("expected empty result for empty input, got %d", len(sites))
	}
	if sites := parseRDB("# only comments\n# nothing else\n", nil); len(sites) != 0 {
		t.Fatalf("expected empty result for comment-only input, got %d", len(sites))
	}
}

func TestParseRDBNoReferencePoint(t *testing.T) {
	sites := parseRDB(sampleRDB, nil)
	for _, s := range sites {
		if s.DistanceMiles != nil {
			t.Fatalf("distance must be nil without a reference point, got %v for %s", *s.DistanceMiles, s.SiteNo)
		}
	}
}

func TestParseRDBExtraAndMissingFields(t *testing.T) {
	in := strings.Join([]string{
		"site_no\tstation_nm\tdec_lat_va\tdec_long_va",
		"15s\t50s\t16s\t16s",
		// Extra trailing field is ignored; a bad latitude resolves to 0 and
		// discards the row.
		"001\tA\t39.5\t-105.1\tEXTRA",
		"002\tB\tnot-a-number\t-105.1",
	}, "\n")

	sites := parseRDB(in, nil)
	if len(sites) != 1 || sites[0].SiteNo != "001" {
		t.Fatalf("expected only site 001, got %+v", sites)
	}
}

func TestParseRDBCRLF(t *testing.T) {
	in := "site_no\tstation_nm\tdec_lat_va\tdec_long_va\r\n15s\t50s\t16s\t16s\r\n003\tC\t40.1\t-104.8\r\n"
	sites := parseRDB(in, nil)
	if len(sites) != 1 || sites[0].SiteNo != "003" || sites[0].Latitude != 40.1 {
		t.Fatalf("CRLF input parsed incorrectly: %+v", sites)
	}
}
