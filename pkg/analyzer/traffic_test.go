package analyzer

import (
	"fmt"
	"reflect"
	"testing"

	"loginsight/pkg/models"
)

func TestAnalyzer_TrafficSummary(t *testing.T) {
	access := []models.AccessLogEntry{
		accessEntry("10.0.0.1", "/home", 200, 50, "Mozilla/5.0"),
		accessEntry("10.0.0.1", "/home", 200, 55, "Mozilla/5.0"),
		accessEntry("10.0.0.2", "/home", 404, 20, "Mozilla/5.0"),
		accessEntry("10.0.0.2", "/login", 401, 80, "Mozilla/5.0"),
	}

	a := New(access, nil, DefaultConfig())
	summary := a.TrafficSummary()

	if summary.TotalRequests != 4 {
		t.Errorf("want 4 total requests, got %d", summary.TotalRequests)
	}
	if summary.ErrorCount != 2 {
		t.Errorf("want 2 errors, got %d", summary.ErrorCount)
	}
	if summary.ErrorRate != 50 {
		t.Errorf("want error rate 50, got %f", summary.ErrorRate)
	}

	wantEndpoints := []models.RankedCount{
		{Name: "/home", Count: 3},
		{Name: "/login", Count: 1},
	}
	if !reflect.DeepEqual(summary.TopEndpoints, wantEndpoints) {
		t.Errorf("want top endpoints %+v, got %+v", wantEndpoints, summary.TopEndpoints)
	}

	wantIPs := []models.RankedCount{
		{Name: "10.0.0.1", Count: 2},
		{Name: "10.0.0.2", Count: 2},
	}
	if !reflect.DeepEqual(summary.TopIPs, wantIPs) {
		t.Errorf("want top IPs %+v, got %+v", wantIPs, summary.TopIPs)
	}
}

func TestAnalyzer_TrafficSummaryTopListLimit(t *testing.T) {
	var access []models.AccessLogEntry
	for i := 0; i < 8; i++ {
		endpoint := fmt.Sprintf("/page-%d", i)
		for j := 0; j <= i; j++ {
			access = append(access, accessEntry("10.0.0.1", endpoint, 200, 30, "Mozilla/5.0"))
		}
	}

	a := New(access, nil, DefaultConfig())
	summary := a.TrafficSummary()

	if len(summary.TopEndpoints) != 5 {
		t.Fatalf("want 5 top endpoints, got %d", len(summary.TopEndpoints))
	}
	if summary.TopEndpoints[0].Name != "/page-7" || summary.TopEndpoints[0].Count != 8 {
		t.Errorf("want top endpoint /page-7 with count 8, got %+v", summary.TopEndpoints[0])
	}
	if summary.TopEndpoints[4].Name != "/page-3" {
		t.Errorf("want fifth endpoint /page-3, got %s", summary.TopEndpoints[4].Name)
	}
}
