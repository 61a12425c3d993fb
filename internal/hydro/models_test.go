package hydro

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestStationIDRoundTrip(t *testing.T) {
	cases := []struct {
		source   string
		vendorID string
	}{
		{"usgs", "01646500"},
		{"siata", "25"},
		{"demo", "a:b:c"},
		{"demo", ":leading"},
	}

	for _, tc := range cases {
		id := EncodeStationID(tc.source, tc.vendorID)
		source, vendorID, err := DecodeStationID(id)
		if err != nil {
			t.Fatalf("decode %q: %v", id, err)
		}
		if source != tc.source || vendorID != tc.vendorID {
			t.Errorf("round trip %q: got (%q, %q), want (%q, %q)", id, source, vendorID, tc.source, tc.vendorID)
		}
	}
}

func TestDecodeStationIDInvalid(t *testing.T) {
	for _, id := range []string{"nodelimiter", "", ":01646500"} {
		_, _, err := DecodeStationID(id)
		var invalid *InvalidRequestError
		if !errors.As(err, &invalid) {
			t.Errorf("DecodeStationID(%q): expected InvalidRequestError, got %v", id, err)
		}
	}
}

func TestMeasurementNullValueSerialization(t *testing.T) {
	m := Measurement{
		StationID:    "usgs:01646500",
		Source:       "usgs",
		VendorID:     "01646500",
		Parameter:    ParameterStreamflow,
		Timestamp:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Value:        nil,
		Unit:         "ft3/s",
		QualityFlags: []string{},
	}

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// A nil value must serialize as an explicit null, not be omitted: "no
	// data at this instant" is a distinct outcome from "record absent".
	v, present := decoded["value"]
	if !present {
		t.Fatal("value field must be present in serialized measurement")
	}
	if v != nil {
		t.Fatalf("expected null value, got %v", v)
	}
}

func TestUnsupportedErrorNamesConnectorAndOperation(t *testing.T) {
	err := Unsupported("siata", "streamflow series retrieval")

	var unsupported *UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError, got %T", err)
	}
	if unsupported.Source != "siata" || unsupported.Operation != "streamflow series retrieval" {
		t.Fatalf("unexpected fields: %+v", unsupported)
	}
	want := "siata does not support streamflow series retrieval"
	if err.Error() != want {
		t.Fatalf("message %q, want %q", err.Error(), want)
	}
}

func TestDataSourceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &DataSourceError{Source: "usgs", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("DataSourceError must unwrap to its cause")
	}
}
