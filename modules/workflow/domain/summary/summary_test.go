package summary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/modules/workflow/domain/summary"
)

func datasetInput() summary.Input {
	return summary.Input{
		RequesterHandle: "atanaka",
		Type:            request.TypeDatasetAccess,
		GroupName:       "analytics",
		Datasets: []summary.DatasetLine{
			{Name: "Customer Events", Code: "DS-001"},
			{Name: "Billing Ledger", Code: "DS-002"},
		},
		ApplicationNames: []string{"Insights Portal", "Billing Console"},
		GroupOwner:       summary.Person{Name: "Aiko Tanaka", Email: "tanaka@example.com"},
		DataManager:      summary.Person{Name: "Matsumoto", Email: "matsumoto@example.com"},
		DBPManager:       summary.Person{Name: "Ben Carter", Email: "carter@example.com"},
		AppOwners: []summary.AppOwnerLine{
			{Owner: summary.Person{Name: "Chandra Rao", Email: "rao@example.com"}, AppNames: []string{"Insights Portal", "Billing Console"}},
		},
		Reason: "quarterly revenue analysis",
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	first := summary.Render(datasetInput())
	second := summary.Render(datasetInput())
	assert.Equal(t, first, second)
}

func TestRender_DatasetRequestSections(t *testing.T) {
	t.Parallel()

	text := summary.Render(datasetInput())
	lines := strings.Split(text, "\n")

	require.NotEmpty(t, lines)
	assert.Equal(t, "Requester: atanaka", lines[0])
	assert.Equal(t, "Request type: Dataset access", lines[1])
	assert.Equal(t, "Target group: analytics", lines[2])
	assert.Contains(t, text, "Requested datasets:\n1. Billing Ledger (DS-002)\n2. Customer Events (DS-001)")
	assert.Contains(t, text, "Related applications:\n1. Billing Console\n2. Insights Portal")
	assert.Contains(t, text, "App owners:\nChandra Rao (rao@example.com) - Billing Console, Insights Portal")
	assert.Contains(t, text, "Reason: quarterly revenue analysis")
}

func TestRender_UnsetPeopleShowAsNotRegistered(t *testing.T) {
	t.Parallel()

	in := datasetInput()
	in.GroupOwner = summary.Person{}
	in.AppOwners = nil
	text := summary.Render(in)

	assert.Contains(t, text, "Group owner: (not registered)")
	assert.Contains(t, text, "App owners:\n(not registered)")
}

func TestRender_MemberRequest(t *testing.T) {
	t.Parallel()

	text := summary.Render(summary.Input{
		RequesterHandle: "bcarter",
		Type:            request.TypeAddMembers,
		GroupName:       "analytics",
		Members: []summary.Person{
			{Name: "Chandra Rao", Email: "rao@example.com"},
			{Name: "Aiko Tanaka", Email: "tanaka@example.com"},
		},
		GroupOwner:  summary.Person{Name: "Aiko Tanaka", Email: "tanaka@example.com"},
		DataManager: summary.Person{Name: "Matsumoto", Email: "matsumoto@example.com"},
	})

	assert.Contains(t, text, "Request type: Member addition")
	assert.Contains(t, text, "Members:\n1. Aiko Tanaka (tanaka@example.com)\n2. Chandra Rao (rao@example.com)")
	assert.NotContains(t, text, "Requested datasets")
	assert.NotContains(t, text, "App owners")
}

func TestRender_CreateGroup(t *testing.T) {
	t.Parallel()

	text := summary.Render(summary.Input{
		RequesterHandle: "crao",
		Type:            request.TypeCreateGroup,
		NewGroupName:    "ml-platform",
		NewGroupOwner:   summary.Person{Name: "Chandra Rao", Email: "rao@example.com"},
		NewGroupManager: summary.Person{Email: "carter@example.com"},
	})

	assert.Contains(t, text, "Request type: Group creation")
	assert.Contains(t, text, "New group: ml-platform")
	assert.Contains(t, text, "Group owner: Chandra Rao (rao@example.com)")
	assert.Contains(t, text, "DBP manager: carter@example.com")
	assert.NotContains(t, text, "Reason:")
}

func TestRender_EmailOnlyPerson(t *testing.T) {
	t.Parallel()

	p := summary.Person{Email: "rao@example.com"}
	in := datasetInput()
	in.GroupOwner = p
	assert.Contains(t, summary.Render(in), "Group owner: rao@example.com")
}
