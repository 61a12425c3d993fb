package usgs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/i474232898/water-data-aggregation/internal/geo"
)

// refPoint is the search center used to annotate parsed sites with distance.
type refPoint struct {
	Lat float64
	Lon float64
}

// parseRDB parses a USGS RDB (tab-delimited) site listing. Comment lines are
// prefixed with '#'; the first non-comment line is the header row and the
// line immediately after it is a column-type annotation row, always skipped.
//
// Rows missing a site number, or whose resolved latitude or longitude is
// exactly 0 (no coordinate on file), are discarded. When ref is non-nil each
// site is annotated with its distance from ref and the result is sorted
// ascending by distance, sites without a distance last.
func parseRDB(text string, ref *refPoint) []SiteSummary {
	var sites []SiteSummary

	lines := strings.Split(strings.TrimSpace(text), "\n")

	headerIdx := -1
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return sites
	}

	headers := strings.Split(strings.TrimRight(lines[headerIdx], "\r"), "\t")

	// headerIdx+1 is the type-annotation row.
	for _, line := range lines[headerIdx+2:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				row[h] = strings.TrimSpace(fields[i])
			}
		}

		siteNo := row["site_no"]
		if siteNo == "" {
			continue
		}

		lat := parseCoord(row["dec_lat_va"])
		lon := parseCoord(row["dec_long_va"])
		if lat == 0 || lon == 0 {
			continue
		}

		site := SiteSummary{
			SiteNo:      siteNo,
			SiteName:    row["station_nm"],
			SiteType:    row["site_tp_cd"],
			Latitude:    lat,
			Longitude:   lon,
			StateCd:     row["state_cd"],
			CountyCd:    row["county_cd"],
			HucCd:       row["huc_cd"],
			ElevationFt: parseOptionalFloat(row["alt_va"]),
		}

		if ref != nil {
			d := geo.DistanceMiles(ref.Lat, ref.Lon, lat, lon)
			site.DistanceMiles = &d
		}

		sites = append(sites, site)
	}

	sort.SliceStable(sites, func(i, j int) bool {
		di, dj := sites[i].DistanceMiles, sites[j].DistanceMiles
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	return sites
}

// parseCoord falls back to 0 for missing or unparseable coordinates; callers
// treat 0 as "no coordinate on file".
func parseCoord(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
