package scraper

import (
	"testing"

	"github.com/jobsift/jobsift/internal/models"
)

func TestRemotenessQuery(t *testing.T) {
	cases := []struct {
		preference models.Remoteness
		want       string
	}{
		{models.RemotenessFull, "&remotejob=032b3046-06a3-4876-8dfd-474eb5e7ed11"},
		{models.RemotenessTemporary, "&remotejob=7e3167e4-ccb4-49cb-b761-9bae564a0a63"},
		{models.RemotenessAny, ""},
		{models.RemotenessInPerson, ""},
		{models.RemotenessPartial, ""},
		{models.RemotenessUnknown, ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := remotenessQuery(tc.preference); got != tc.want {
			t.Fatalf("remotenessQuery(%q) = %q, want %q", tc.preference, got, tc.want)
		}
	}
}

func TestClassifyRemoteness(t *testing.T) {
	cases := []struct {
		label string
		want  models.Remoteness
	}{
		{"Remote", models.RemotenessFull},
		{" remote ", models.RemotenessFull},
		{"REMOTE", models.RemotenessFull},
		{"Temporarily remote", models.RemotenessTemporary},
		{"temporarily remote", models.RemotenessTemporary},
		{"Hybrid remote", models.RemotenessUnknown},
		{"", models.RemotenessUnknown},
	}

	for _, tc := range cases {
		if got := classifyRemoteness(tc.label); got != tc.want {
			t.Fatalf("classifyRemoteness(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}
